package match

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusReady     Status = "READY"
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
)

// Round is the bracket label of a match. Award points are keyed on it.
type Round string

const (
	RoundFinal        Round = "FINAL"
	RoundSemiFinal    Round = "SEMI_FINAL"
	RoundQuarterFinal Round = "QUARTER_FINAL"
)

// Participant is one side of a match: one player for singles, two for doubles.
type Participant struct {
	Name      string   `json:"name"`
	PlayerIDs []string `json:"playerIds"`
}

// Match is a scheduled or played match. Score is nil until the match is started.
type Match struct {
	ID           string              `json:"id"`
	TournamentID string              `json:"tournamentId"`
	Round        Round               `json:"round"`
	Status       Status              `json:"status"`
	SideA        Participant         `json:"sideA"`
	SideB        Participant         `json:"sideB"`
	ScorerID     string              `json:"scorerId,omitempty"`
	Winner       *scoring.Side       `json:"winner,omitempty"`
	StartedAt    *time.Time          `json:"startedAt,omitempty"`
	CompletedAt  *time.Time          `json:"completedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	Version      int64               `json:"version"`
	Score        *scoring.ScoreState `json:"score,omitempty"`
}

// Participant returns the competitor playing on side.
func (m *Match) Participant(side scoring.Side) Participant {
	if side == scoring.SideA {
		return m.SideA
	}
	return m.SideB
}

// Clone returns a deep copy of the match.
func (m *Match) Clone() *Match {
	c := *m
	c.SideA.PlayerIDs = cloneIDs(m.SideA.PlayerIDs)
	c.SideB.PlayerIDs = cloneIDs(m.SideB.PlayerIDs)
	if m.Winner != nil {
		w := *m.Winner
		c.Winner = &w
	}
	if m.StartedAt != nil {
		t := *m.StartedAt
		c.StartedAt = &t
	}
	if m.CompletedAt != nil {
		t := *m.CompletedAt
		c.CompletedAt = &t
	}
	c.Score = m.Score.Clone()
	return &c
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	return append([]string{}, ids...)
}

// store handles database operations for matches.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}
