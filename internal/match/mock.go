package match

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockRepository is an in-memory Repository for testing. It keeps deep copies of saved matches
// and enforces the same version check as the SQL store. It is safe for concurrent use.
type MockRepository struct {
	mu      sync.Mutex
	matches map[string]*Match

	// Spies for method calls. When set they replace the in-memory behaviour.
	CreateMatchFunc func(ctx context.Context, m *Match) error
	GetMatchFunc    func(ctx context.Context, matchID string) (*Match, error)
	SaveMatchFunc   func(ctx context.Context, m *Match) error
	ListMatchesFunc func(ctx context.Context, tournamentID string) ([]*Match, error)

	// Call records
	GetMatchCalls  []string
	SaveMatchCalls []*Match
}

// NewMock creates a new mock instance.
func NewMock() *MockRepository {
	return &MockRepository{
		matches: make(map[string]*Match),
	}
}

// Reset clears all call records.
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetMatchCalls = nil
	m.SaveMatchCalls = nil
}

// Put stores a match as-is, bypassing the version check.
func (m *MockRepository) Put(match *Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[match.ID] = match.Clone()
}

func (m *MockRepository) CreateMatch(ctx context.Context, match *Match) error {
	if m.CreateMatchFunc != nil {
		return m.CreateMatchFunc(ctx, match)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.matches[match.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, match.ID)
	}
	if match.Status == "" {
		match.Status = StatusPending
	}
	match.Version = 0
	m.matches[match.ID] = match.Clone()
	return nil
}

func (m *MockRepository) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	m.mu.Lock()
	m.GetMatchCalls = append(m.GetMatchCalls, matchID)
	m.mu.Unlock()
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(ctx, matchID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, matchID)
	}
	return stored.Clone(), nil
}

func (m *MockRepository) SaveMatch(ctx context.Context, match *Match) error {
	m.mu.Lock()
	m.SaveMatchCalls = append(m.SaveMatchCalls, match.Clone())
	m.mu.Unlock()
	if m.SaveMatchFunc != nil {
		return m.SaveMatchFunc(ctx, match)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.matches[match.ID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, match.ID)
	}
	if stored.Version != match.Version {
		return fmt.Errorf("%w: %s at version %d", ErrConflict, match.ID, match.Version)
	}
	match.Version++
	m.matches[match.ID] = match.Clone()
	return nil
}

func (m *MockRepository) ListMatches(ctx context.Context, tournamentID string) ([]*Match, error) {
	if m.ListMatchesFunc != nil {
		return m.ListMatchesFunc(ctx, tournamentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Match
	for _, stored := range m.matches {
		if tournamentID == "" || stored.TournamentID == tournamentID {
			out = append(out, stored.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Stored returns a copy of the persisted match, or nil.
func (m *MockRepository) Stored(matchID string) *Match {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stored, ok := m.matches[matchID]; ok {
		return stored.Clone()
	}
	return nil
}
