package scorer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// New creates a new Controller. A non-positive lockTimeout falls back to DefaultLockTimeout.
func New(repo match.Repository, metrics metrics.Metrics, pubsub pubsub.PubSubClient, lockTimeout time.Duration) *Controller {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Controller{
		repo:        repo,
		metrics:     metrics,
		pubsub:      pubsub,
		locks:       newLockTable(),
		lockTimeout: lockTimeout,
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// CreateMatch registers a new match. A missing ID is generated; the status defaults to PENDING.
func (c *Controller) CreateMatch(ctx context.Context, m *match.Match) error {
	start := time.Now()
	defer c.observe(opCreate, start)

	if m.ID == "" {
		m.ID = c.newID()
	}
	switch m.Status {
	case "":
		m.Status = match.StatusPending
	case match.StatusPending, match.StatusReady:
	default:
		err := fmt.Errorf("%w: new match %s cannot be %s", ErrInvalidState, m.ID, m.Status)
		c.reject(opCreate, m.ID, err)
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = c.now()
	}
	m.Score = nil
	m.Winner = nil
	m.StartedAt = nil
	m.CompletedAt = nil

	if err := c.repo.CreateMatch(ctx, m); err != nil {
		c.reject(opCreate, m.ID, err)
		return err
	}
	log.Info("Match created", "matchID", m.ID, "tournamentID", m.TournamentID, "round", m.Round, "sideA", m.SideA.Name, "sideB", m.SideB.Name)
	return nil
}

// StartMatch moves a PENDING or READY match to ONGOING with a fresh score.
func (c *Controller) StartMatch(ctx context.Context, matchID, scorerID string, opts StartOptions) (*scoring.ScoreState, error) {
	cfg := scoring.DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}
	server := opts.InitialServer
	if server == "" {
		server = scoring.SideA
	}

	m, err := c.mutate(ctx, opStart, matchID, func(m *match.Match) error {
		if m.Status != match.StatusPending && m.Status != match.StatusReady {
			return fmt.Errorf("%w: match %s is %s", ErrInvalidState, m.ID, m.Status)
		}
		state, err := scoring.NewScoreState(cfg, server)
		if err != nil {
			return err
		}
		at := c.now()
		m.Score = state
		m.Status = match.StatusOngoing
		m.ScorerID = scorerID
		m.StartedAt = &at
		m.Winner = nil
		m.CompletedAt = nil
		return nil
	}, func(m *match.Match) {
		c.metrics.IncMatchesStarted()
		c.publish(pubsub.EventMatchStarted, m)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Match started", "matchID", matchID, "scorerID", scorerID, "initialServer", server, "pointsPerSet", cfg.PointsPerSet, "setsToWin", cfg.SetsToWin)
	return m.Score, nil
}

// AddPoint records a rally won by side. The point that decides the match also completes it.
func (c *Controller) AddPoint(ctx context.Context, matchID string, side scoring.Side) (*PointResult, error) {
	var outcome scoring.PointOutcome
	m, err := c.mutate(ctx, opPoint, matchID, func(m *match.Match) error {
		if m.Status != match.StatusOngoing || m.Score == nil {
			return fmt.Errorf("%w: match %s is %s", ErrMatchNotOngoing, m.ID, m.Status)
		}
		at := c.now()
		out, err := m.Score.AddPoint(side, at)
		if err != nil {
			return err
		}
		outcome = out
		if out.MatchComplete {
			winner := out.Winner
			m.Status = match.StatusCompleted
			m.Winner = &winner
			m.CompletedAt = &at
		}
		return nil
	}, func(m *match.Match) {
		c.metrics.IncPointsScored()
		if outcome.MatchComplete {
			c.metrics.IncMatchesCompleted()
			c.publish(pubsub.EventMatchCompleted, m)
		}
	})
	if err != nil {
		return nil, err
	}

	result := &PointResult{
		MatchComplete: outcome.MatchComplete,
		SetComplete:   outcome.SetComplete,
		Score:         m.Score,
	}
	if outcome.SetComplete {
		setWinner := outcome.SetWinner
		result.SetWinner = &setWinner
		log.Info("Set completed", "matchID", matchID, "set", m.Score.Sets[len(m.Score.Sets)-1].SetNumber, "winner", setWinner)
	}
	if outcome.MatchComplete {
		winner := outcome.Winner
		result.Winner = &winner
		log.Info("Match completed", "matchID", matchID, "winner", winner, "sets", len(m.Score.Sets))
	}
	log.Debug("Point recorded", "matchID", matchID, "side", side, "set", m.Score.CurrentSet, "score", m.Score.CurrentScore, "server", m.Score.CurrentServer)
	return result, nil
}

// UndoLastPoint removes the most recent rally. Undoing the deciding rally reopens the match.
func (c *Controller) UndoLastPoint(ctx context.Context, matchID string) (*scoring.ScoreState, error) {
	var undone scoring.PointOutcome
	var removed scoring.PointEvent
	m, err := c.mutate(ctx, opUndo, matchID, func(m *match.Match) error {
		if m.Score == nil {
			return fmt.Errorf("%w: match %s has not started", scoring.ErrNothingToUndo, m.ID)
		}
		ev, out, err := m.Score.Undo()
		if err != nil {
			return err
		}
		removed, undone = ev, out
		if m.Status == match.StatusCompleted {
			m.Status = match.StatusOngoing
			m.Winner = nil
			m.CompletedAt = nil
		}
		return nil
	}, func(m *match.Match) {
		c.metrics.IncPointsUndone()
		if undone.MatchComplete {
			c.metrics.IncMatchesReopened()
			c.publish(pubsub.EventMatchReopened, m)
		}
	})
	if err != nil {
		return nil, err
	}
	if undone.MatchComplete {
		log.Warn("Match reopened by undo", "matchID", matchID, "previousWinner", undone.Winner)
	}
	log.Info("Point undone", "matchID", matchID, "side", removed.Side, "set", removed.Set, "score", m.Score.CurrentScore)
	return m.Score, nil
}

// GetScore returns a snapshot of the match. It takes no lock.
func (c *Controller) GetScore(ctx context.Context, matchID string) (*match.Match, error) {
	return c.repo.GetMatch(ctx, matchID)
}

// Verify replays the stored history and checks that it reproduces the stored score and status.
func (c *Controller) Verify(ctx context.Context, matchID string) error {
	start := time.Now()
	defer c.observe(opVerify, start)

	m, err := c.repo.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if err := verifyMatch(m); err != nil {
		log.Error("Match failed verification", "matchID", matchID, "error", err)
		return err
	}
	return nil
}

func verifyMatch(m *match.Match) error {
	if m.Score == nil {
		if m.Status == match.StatusOngoing || m.Status == match.StatusCompleted {
			return fmt.Errorf("%w: match %s is %s without a score", scoring.ErrCorruptHistory, m.ID, m.Status)
		}
		return nil
	}
	stored := m.Score
	replayed, err := scoring.Replay(stored.MatchConfig, stored.InitialServer, stored.History)
	if err != nil {
		return err
	}
	if replayed.CurrentSet != stored.CurrentSet || replayed.CurrentScore != stored.CurrentScore || replayed.CurrentServer != stored.CurrentServer {
		return fmt.Errorf("%w: stored set %d %s server %s, replay gives set %d %s server %s", scoring.ErrCorruptHistory,
			stored.CurrentSet, stored.CurrentScore, stored.CurrentServer,
			replayed.CurrentSet, replayed.CurrentScore, replayed.CurrentServer)
	}
	if len(replayed.Sets) != len(stored.Sets) {
		return fmt.Errorf("%w: stored %d completed sets, replay gives %d", scoring.ErrCorruptHistory, len(stored.Sets), len(replayed.Sets))
	}
	for i := range replayed.Sets {
		if replayed.Sets[i] != stored.Sets[i] {
			return fmt.Errorf("%w: set %d differs from replay", scoring.ErrCorruptHistory, i+1)
		}
	}

	winner, decided := replayed.Winner()
	switch {
	case decided && m.Status != match.StatusCompleted:
		return fmt.Errorf("%w: match is decided but status is %s", scoring.ErrCorruptHistory, m.Status)
	case !decided && m.Status == match.StatusCompleted:
		return fmt.Errorf("%w: match is COMPLETED without a winner", scoring.ErrCorruptHistory)
	case decided && (m.Winner == nil || *m.Winner != winner):
		return fmt.Errorf("%w: stored winner does not match replay winner %s", scoring.ErrCorruptHistory, winner)
	}
	return nil
}

// mutate loads the match under its lock, applies fn to a copy and saves it. saved runs after the
// lock is released so a slow publish never blocks other writers; events carry the saved version
// for consumers to order them.
func (c *Controller) mutate(ctx context.Context, op, matchID string, fn func(*match.Match) error, saved func(*match.Match)) (*match.Match, error) {
	start := time.Now()
	defer c.observe(op, start)

	release, err := c.locks.acquire(ctx, matchID, c.lockTimeout)
	if err != nil {
		c.reject(op, matchID, err)
		return nil, err
	}
	defer release()

	stored, err := c.repo.GetMatch(ctx, matchID)
	if err != nil {
		c.reject(op, matchID, err)
		return nil, err
	}
	next := stored.Clone()
	if err := fn(next); err != nil {
		c.reject(op, matchID, err)
		return nil, err
	}
	if err := c.repo.SaveMatch(ctx, next); err != nil {
		c.reject(op, matchID, err)
		return nil, err
	}
	release()
	if saved != nil {
		saved(next)
	}
	return next, nil
}

func (c *Controller) publish(topic pubsub.EventType, m *match.Match) {
	ev := match.NewLifecycleEvent(c.newID(), m, c.now())
	if err := c.pubsub.SendMessage(topic, ev); err != nil {
		c.metrics.IncPublishFailed()
		log.Error("Failed to publish match event", "topic", topic, "matchID", m.ID, "eventID", ev.EventID, "error", err)
		return
	}
	log.Debug("Published match event", "topic", topic, "matchID", m.ID, "eventID", ev.EventID)
}

func (c *Controller) reject(op, matchID string, err error) {
	kind := KindOf(err)
	c.metrics.IncRejected(string(kind))
	switch kind {
	case KindBusy:
		c.metrics.IncLockTimeouts()
	case KindConflict:
		c.metrics.IncSaveConflicts()
	}
	if kind == KindInternal || errors.Is(err, scoring.ErrMatchDecided) {
		log.Error("Scoring operation failed", "op", op, "matchID", matchID, "error", err)
		return
	}
	log.Warn("Scoring operation rejected", "op", op, "matchID", matchID, "kind", kind, "error", err)
}

func (c *Controller) observe(op string, start time.Time) {
	c.metrics.ObserveOperationDuration(op, time.Since(start).Seconds())
}
