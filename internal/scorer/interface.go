package scorer

import (
	"context"

	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// Service is the scoring surface consumed by the HTTP server and the CLI.
type Service interface {
	CreateMatch(ctx context.Context, m *match.Match) error
	StartMatch(ctx context.Context, matchID, scorerID string, opts StartOptions) (*scoring.ScoreState, error)
	AddPoint(ctx context.Context, matchID string, side scoring.Side) (*PointResult, error)
	UndoLastPoint(ctx context.Context, matchID string) (*scoring.ScoreState, error)
	GetScore(ctx context.Context, matchID string) (*match.Match, error)
	Verify(ctx context.Context, matchID string) error
}

var _ Service = (*Controller)(nil)
