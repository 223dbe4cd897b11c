package match_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/shuttle-score/internal/database"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (match.Repository, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return match.New(db), db, teardown
}

func newMatch(id string) *match.Match {
	return &match.Match{
		ID:           id,
		TournamentID: "spring-open",
		Round:        match.RoundSemiFinal,
		SideA:        match.Participant{Name: "Axelsen", PlayerIDs: []string{"p-axelsen"}},
		SideB:        match.Participant{Name: "Momota", PlayerIDs: []string{"p-momota"}},
		CreatedAt:    time.Unix(1_760_000_000, 0),
	}
}

func TestCreateAndGetMatch(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, repo.CreateMatch(ctx, newMatch("m1")))

	got, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, match.StatusPending, got.Status, "new matches default to pending")
	assert.Equal(t, match.RoundSemiFinal, got.Round)
	assert.Equal(t, []string{"p-momota"}, got.SideB.PlayerIDs)
	assert.Equal(t, int64(0), got.Version)
	assert.Nil(t, got.Score)
	assert.Nil(t, got.Winner)
	assert.Nil(t, got.StartedAt)

	err = repo.CreateMatch(ctx, newMatch("m1"))
	assert.ErrorIs(t, err, match.ErrAlreadyExists)
}

func TestGetMatch_NotFound(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()

	_, err := repo.GetMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, match.ErrNotFound)
}

func TestSaveMatch_RoundTripsScoreState(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	require.NoError(t, repo.CreateMatch(ctx, newMatch("m1")))

	m, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)

	state, err := scoring.NewScoreState(scoring.DefaultConfig(), scoring.SideB)
	require.NoError(t, err)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 21; i++ {
		_, err := state.AddPoint(scoring.SideA, at.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	_, err = state.AddPoint(scoring.SideB, at.Add(time.Minute))
	require.NoError(t, err)

	m.Status = match.StatusOngoing
	m.ScorerID = "umpire-7"
	m.StartedAt = &at
	m.Score = state
	require.NoError(t, repo.SaveMatch(ctx, m))
	assert.Equal(t, int64(1), m.Version, "save bumps the version")

	got, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, match.StatusOngoing, got.Status)
	assert.Equal(t, "umpire-7", got.ScorerID)
	assert.Equal(t, int64(1), got.Version)
	require.NotNil(t, got.StartedAt)
	assert.True(t, at.Equal(*got.StartedAt))
	assert.Equal(t, state, got.Score)
}

func TestSaveMatch_KeepsSubsecondTimestamps(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	created := newMatch("m1")
	created.CreatedAt = time.Date(2026, 3, 14, 9, 59, 0, 123456789, time.UTC)
	require.NoError(t, repo.CreateMatch(ctx, created))

	m, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(m.CreatedAt))

	state, err := scoring.NewScoreState(scoring.DefaultConfig(), scoring.SideA)
	require.NoError(t, err)
	started := time.Date(2026, 3, 14, 10, 0, 0, 500_000_001, time.UTC)
	decided := started
	for i := 0; i < 42; i++ {
		decided = started.Add(time.Duration(i)*time.Second + 987_654_321)
		_, err := state.AddPoint(scoring.SideA, decided)
		require.NoError(t, err)
	}
	winner := scoring.SideA
	m.Status = match.StatusCompleted
	m.Winner = &winner
	m.StartedAt = &started
	m.CompletedAt = &decided
	m.Score = state
	require.NoError(t, repo.SaveMatch(ctx, m))

	got, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	require.NotNil(t, got.StartedAt)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, started.Equal(*got.StartedAt))
	last := got.Score.History[len(got.Score.History)-1]
	assert.True(t, got.CompletedAt.Equal(last.Timestamp), "completedAt %s, deciding rally %s", got.CompletedAt, last.Timestamp)
}

func TestSaveMatch_RejectsStaleVersion(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	require.NoError(t, repo.CreateMatch(ctx, newMatch("m1")))

	first, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	second, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)

	first.Status = match.StatusReady
	require.NoError(t, repo.SaveMatch(ctx, first))

	second.Status = match.StatusOngoing
	err = repo.SaveMatch(ctx, second)
	assert.ErrorIs(t, err, match.ErrConflict)
	assert.Equal(t, int64(0), second.Version, "failed save leaves the version alone")

	stored, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, match.StatusReady, stored.Status)
}

func TestSaveMatch_UnknownMatch(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()

	err := repo.SaveMatch(context.Background(), newMatch("ghost"))
	assert.ErrorIs(t, err, match.ErrNotFound)
}

func TestListMatches(t *testing.T) {
	repo, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	a := newMatch("a")
	b := newMatch("b")
	other := newMatch("c")
	other.TournamentID = "autumn-cup"
	for _, m := range []*match.Match{a, b, other} {
		require.NoError(t, repo.CreateMatch(ctx, m))
	}

	spring, err := repo.ListMatches(ctx, "spring-open")
	require.NoError(t, err)
	require.Len(t, spring, 2)
	assert.Equal(t, "a", spring[0].ID)
	assert.Equal(t, "b", spring[1].ID)

	all, err := repo.ListMatches(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMockRepository_EnforcesVersion(t *testing.T) {
	repo := match.NewMock()
	ctx := context.Background()
	require.NoError(t, repo.CreateMatch(ctx, newMatch("m1")))

	first, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)
	second, err := repo.GetMatch(ctx, "m1")
	require.NoError(t, err)

	require.NoError(t, repo.SaveMatch(ctx, first))
	assert.ErrorIs(t, repo.SaveMatch(ctx, second), match.ErrConflict)
	assert.Len(t, repo.SaveMatchCalls, 2)
	assert.Equal(t, []string{"m1", "m1"}, repo.GetMatchCalls)
}
