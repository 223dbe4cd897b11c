package scorer

import (
	"time"

	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

const (
	opCreate = "create"
	opStart  = "start"
	opPoint  = "point"
	opUndo   = "undo"
	opVerify = "verify"

	DefaultLockTimeout = 2 * time.Second
)

// Controller drives match lifecycles. Mutations of one match are serialized by a per-match
// lock and persisted with an optimistic version check.
type Controller struct {
	repo        match.Repository
	metrics     metrics.Metrics
	pubsub      pubsub.PubSubClient
	locks       *lockTable
	lockTimeout time.Duration

	now   func() time.Time
	newID func() string
}

// StartOptions overrides the defaults applied by StartMatch.
type StartOptions struct {
	// Config defaults to scoring.DefaultConfig.
	Config *scoring.MatchConfig
	// InitialServer defaults to scoring.SideA.
	InitialServer scoring.Side
}

// PointResult is returned by AddPoint.
type PointResult struct {
	MatchComplete bool
	Winner        *scoring.Side
	SetComplete   bool
	SetWinner     *scoring.Side
	Score         *scoring.ScoreState
}
