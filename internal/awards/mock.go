package awards

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MockStore is an in-memory Store for testing.
type MockStore struct {
	mu       sync.Mutex
	awards   map[string]map[string]Award
	versions map[string]int64

	CreditAwardsFunc func(ctx context.Context, matchID string, version int64, awards []Award) (int, error)
	RevokeAwardsFunc func(ctx context.Context, matchID string, version int64) (int, error)

	CreditAwardsCalls [][]Award
	RevokeAwardsCalls []string
}

// NewMock creates a new mock Store.
func NewMock() *MockStore {
	return &MockStore{
		awards:   make(map[string]map[string]Award),
		versions: make(map[string]int64),
	}
}

func (m *MockStore) CreditAwards(ctx context.Context, matchID string, version int64, awards []Award) (int, error) {
	m.mu.Lock()
	m.CreditAwardsCalls = append(m.CreditAwardsCalls, append([]Award(nil), awards...))
	m.mu.Unlock()
	if m.CreditAwardsFunc != nil {
		return m.CreditAwardsFunc(ctx, matchID, version, awards)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.claim(matchID, version); err != nil {
		return 0, err
	}
	credited := 0
	for _, a := range awards {
		byPlayer, ok := m.awards[matchID]
		if !ok {
			byPlayer = make(map[string]Award)
			m.awards[matchID] = byPlayer
		}
		if _, ok := byPlayer[a.PlayerID]; ok {
			continue
		}
		byPlayer[a.PlayerID] = a
		credited++
	}
	return credited, nil
}

func (m *MockStore) RevokeAwards(ctx context.Context, matchID string, version int64) (int, error) {
	m.mu.Lock()
	m.RevokeAwardsCalls = append(m.RevokeAwardsCalls, matchID)
	m.mu.Unlock()
	if m.RevokeAwardsFunc != nil {
		return m.RevokeAwardsFunc(ctx, matchID, version)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.claim(matchID, version); err != nil {
		return 0, err
	}
	n := len(m.awards[matchID])
	delete(m.awards, matchID)
	return n, nil
}

// claim mirrors the SQL store's version guard. Callers hold m.mu.
func (m *MockStore) claim(matchID string, version int64) error {
	if last, ok := m.versions[matchID]; ok && version <= last {
		return fmt.Errorf("%w: match %s version %d", ErrStaleEvent, matchID, version)
	}
	m.versions[matchID] = version
	return nil
}

func (m *MockStore) PlayerPoints(ctx context.Context, playerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, byPlayer := range m.awards {
		total += byPlayer[playerID].Points
	}
	return total, nil
}

func (m *MockStore) Leaderboard(ctx context.Context, limit int) ([]PlayerTotal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	totals := make(map[string]*PlayerTotal)
	for _, byPlayer := range m.awards {
		for id, a := range byPlayer {
			pt, ok := totals[id]
			if !ok {
				pt = &PlayerTotal{PlayerID: id}
				totals[id] = pt
			}
			pt.Points += a.Points
			pt.Wins++
		}
	}
	out := make([]PlayerTotal, 0, len(totals))
	for _, pt := range totals {
		out = append(out, *pt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
