package scorer

import (
	"context"
	"sync"

	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/scoring"
)

// MockService is a mock implementation of Service for testing.
type MockService struct {
	mu sync.Mutex

	CreateMatchFunc   func(ctx context.Context, m *match.Match) error
	StartMatchFunc    func(ctx context.Context, matchID, scorerID string, opts StartOptions) (*scoring.ScoreState, error)
	AddPointFunc      func(ctx context.Context, matchID string, side scoring.Side) (*PointResult, error)
	UndoLastPointFunc func(ctx context.Context, matchID string) (*scoring.ScoreState, error)
	GetScoreFunc      func(ctx context.Context, matchID string) (*match.Match, error)
	VerifyFunc        func(ctx context.Context, matchID string) error

	AddPointCalls []AddPointCall
	GetScoreCalls []string
}

// AddPointCall holds the arguments for a call to AddPoint.
type AddPointCall struct {
	MatchID string
	Side    scoring.Side
}

// NewMockService creates a new mock Service.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) CreateMatch(ctx context.Context, mt *match.Match) error {
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(ctx, mt)
	}
	return nil
}

func (m *MockService) StartMatch(ctx context.Context, matchID, scorerID string, opts StartOptions) (*scoring.ScoreState, error) {
	if m.StartMatchFunc != nil {
		return m.StartMatchFunc(ctx, matchID, scorerID, opts)
	}
	return scoring.NewScoreState(scoring.DefaultConfig(), scoring.SideA)
}

func (m *MockService) AddPoint(ctx context.Context, matchID string, side scoring.Side) (*PointResult, error) {
	m.mu.Lock()
	m.AddPointCalls = append(m.AddPointCalls, AddPointCall{MatchID: matchID, Side: side})
	m.mu.Unlock()
	if m.AddPointFunc != nil {
		return m.AddPointFunc(ctx, matchID, side)
	}
	return &PointResult{}, nil
}

func (m *MockService) UndoLastPoint(ctx context.Context, matchID string) (*scoring.ScoreState, error) {
	if m.UndoLastPointFunc != nil {
		return m.UndoLastPointFunc(ctx, matchID)
	}
	return nil, scoring.ErrNothingToUndo
}

func (m *MockService) GetScore(ctx context.Context, matchID string) (*match.Match, error) {
	m.mu.Lock()
	m.GetScoreCalls = append(m.GetScoreCalls, matchID)
	m.mu.Unlock()
	if m.GetScoreFunc != nil {
		return m.GetScoreFunc(ctx, matchID)
	}
	return nil, match.ErrNotFound
}

func (m *MockService) Verify(ctx context.Context, matchID string) error {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, matchID)
	}
	return nil
}
