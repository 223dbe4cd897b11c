package match

import (
	"time"

	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// LifecycleEvent is the payload published when a match starts, completes, or is reopened by
// an undo. Consumers key on MatchID; a reopened event cancels the preceding completed one.
// Version is the match version the event was saved at, so consumers can drop events that arrive
// after a newer one.
type LifecycleEvent struct {
	EventID         string              `msgpack:"event_id"`
	MatchID         string              `msgpack:"match_id"`
	TournamentID    string              `msgpack:"tournament_id"`
	Round           Round               `msgpack:"round"`
	Status          Status              `msgpack:"status"`
	Version         int64               `msgpack:"version"`
	Winner          scoring.Side        `msgpack:"winner,omitempty"`
	WinnerPlayerIDs []string            `msgpack:"winner_player_ids,omitempty"`
	Sets            []scoring.SetResult `msgpack:"sets,omitempty"`
	OccurredAt      time.Time           `msgpack:"occurred_at"`
}

// NewLifecycleEvent snapshots m into an event payload.
func NewLifecycleEvent(eventID string, m *Match, at time.Time) LifecycleEvent {
	ev := LifecycleEvent{
		EventID:      eventID,
		MatchID:      m.ID,
		TournamentID: m.TournamentID,
		Round:        m.Round,
		Status:       m.Status,
		Version:      m.Version,
		OccurredAt:   at,
	}
	if m.Winner != nil {
		ev.Winner = *m.Winner
		ev.WinnerPlayerIDs = cloneIDs(m.Participant(*m.Winner).PlayerIDs)
	}
	if m.Score != nil {
		ev.Sets = append([]scoring.SetResult(nil), m.Score.Sets...)
	}
	return ev
}
