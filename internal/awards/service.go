package awards

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
)

// NewService creates a new awards Service. pubsub is only used to decode payloads.
func NewService(store Store, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Service {
	return &Service{
		store:   store,
		metrics: metrics,
		pubsub:  pubsub,
	}
}

// Subscribe registers the service on the in-process client.
func (s *Service) Subscribe(local *pubsub.LocalClient) {
	for _, topic := range []pubsub.EventType{pubsub.EventMatchCompleted, pubsub.EventMatchReopened} {
		local.Subscribe(topic, func(data []byte) error {
			return s.Handle(context.Background(), topic, data)
		})
	}
}

// Handle decodes an encoded lifecycle event and applies it. Topics other than match-completed
// and match-reopened are ignored.
func (s *Service) Handle(ctx context.Context, topic pubsub.EventType, data []byte) error {
	var ev match.LifecycleEvent
	if err := s.pubsub.ProcessMessage(data, &ev); err != nil {
		return fmt.Errorf("failed to decode %s event: %w", topic, err)
	}
	switch topic {
	case pubsub.EventMatchCompleted:
		return s.MatchCompleted(ctx, ev)
	case pubsub.EventMatchReopened:
		return s.MatchReopened(ctx, ev)
	}
	log.Debug("Ignoring event", "topic", topic, "matchID", ev.MatchID)
	return nil
}

// MatchCompleted credits every player on the winning side with the points of the match round.
func (s *Service) MatchCompleted(ctx context.Context, ev match.LifecycleEvent) error {
	if ev.Status != match.StatusCompleted || ev.Winner == "" {
		log.Warn("Completed event without a winner, skipping awards", "matchID", ev.MatchID, "status", ev.Status)
		return nil
	}
	if len(ev.WinnerPlayerIDs) == 0 {
		log.Info("Winning side has no registered players, nothing to award", "matchID", ev.MatchID, "winner", ev.Winner)
		return nil
	}

	points := PointsForRound(ev.Round)
	awards := make([]Award, 0, len(ev.WinnerPlayerIDs))
	for _, playerID := range ev.WinnerPlayerIDs {
		awards = append(awards, Award{
			MatchID:   ev.MatchID,
			PlayerID:  playerID,
			Round:     ev.Round,
			Points:    points,
			AwardedAt: ev.OccurredAt,
		})
	}
	credited, err := s.store.CreditAwards(ctx, ev.MatchID, ev.Version, awards)
	if errors.Is(err, ErrStaleEvent) {
		log.Info("Ignoring stale completed event", "matchID", ev.MatchID, "version", ev.Version, "eventID", ev.EventID)
		return nil
	}
	if err != nil {
		log.Error("Failed to credit awards", "matchID", ev.MatchID, "error", err)
		return err
	}
	for i := 0; i < credited; i++ {
		s.metrics.IncAwardsCredited()
	}
	log.Info("Awards credited", "matchID", ev.MatchID, "version", ev.Version, "round", ev.Round, "points", points, "players", credited)
	return nil
}

// MatchReopened revokes the awards of a match whose deciding rally was undone. A reopened event
// that overtakes its completed event still wins, because the completed one is older.
func (s *Service) MatchReopened(ctx context.Context, ev match.LifecycleEvent) error {
	revoked, err := s.store.RevokeAwards(ctx, ev.MatchID, ev.Version)
	if errors.Is(err, ErrStaleEvent) {
		log.Info("Ignoring stale reopened event", "matchID", ev.MatchID, "version", ev.Version, "eventID", ev.EventID)
		return nil
	}
	if err != nil {
		log.Error("Failed to revoke awards", "matchID", ev.MatchID, "error", err)
		return err
	}
	log.Info("Awards revoked", "matchID", ev.MatchID, "version", ev.Version, "players", revoked)
	return nil
}
