package awards_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/shuttle-score/internal/awards"
	"github.com/mauv0809/shuttle-score/internal/database"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scorer"
	"github.com/mauv0809/shuttle-score/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedEvent(round match.Round, players ...string) match.LifecycleEvent {
	return match.LifecycleEvent{
		EventID:         "evt-1",
		MatchID:         "m1",
		Round:           round,
		Status:          match.StatusCompleted,
		Version:         7,
		Winner:          scoring.SideB,
		WinnerPlayerIDs: players,
		OccurredAt:      time.Unix(1_760_000_000, 0).UTC(),
	}
}

func TestService_MatchCompleted(t *testing.T) {
	t.Run("credits every winning player", func(t *testing.T) {
		store := awards.NewMock()
		metr := metrics.NewMock()
		svc := awards.NewService(store, metr, pubsub.NewMock())

		require.NoError(t, svc.MatchCompleted(context.Background(), completedEvent(match.RoundSemiFinal, "p1", "p2")))

		require.Len(t, store.CreditAwardsCalls, 1)
		assert.Len(t, store.CreditAwardsCalls[0], 2)
		assert.Equal(t, 50, store.CreditAwardsCalls[0][0].Points)
		assert.Equal(t, 2, metr.AwardsCredited())

		require.NoError(t, svc.MatchCompleted(context.Background(), completedEvent(match.RoundSemiFinal, "p1", "p2")))
		assert.Equal(t, 2, metr.AwardsCredited())
	})

	t.Run("events without a winner are skipped", func(t *testing.T) {
		store := awards.NewMock()
		svc := awards.NewService(store, metrics.NewMock(), pubsub.NewMock())

		ev := completedEvent(match.RoundFinal, "p1")
		ev.Status = match.StatusOngoing
		require.NoError(t, svc.MatchCompleted(context.Background(), ev))
		require.NoError(t, svc.MatchCompleted(context.Background(), completedEvent(match.RoundFinal)))
		assert.Empty(t, store.CreditAwardsCalls)
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store := awards.NewMock()
		store.CreditAwardsFunc = func(ctx context.Context, matchID string, version int64, a []awards.Award) (int, error) {
			return 0, errors.New("db locked")
		}
		svc := awards.NewService(store, metrics.NewMock(), pubsub.NewMock())
		assert.Error(t, svc.MatchCompleted(context.Background(), completedEvent(match.RoundFinal, "p1")))
	})
}

func TestService_HandleDecodesPayload(t *testing.T) {
	store := awards.NewMock()
	local := pubsub.NewLocal()
	svc := awards.NewService(store, metrics.NewMock(), local)
	svc.Subscribe(local)

	require.NoError(t, local.SendMessage(pubsub.EventMatchCompleted, completedEvent(match.RoundFinal, "p1")))
	points, err := store.PlayerPoints(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 100, points)

	require.NoError(t, local.SendMessage(pubsub.EventMatchReopened, match.LifecycleEvent{MatchID: "m1", Status: match.StatusOngoing, Version: 8}))
	assert.Equal(t, []string{"m1"}, store.RevokeAwardsCalls)
	points, err = store.PlayerPoints(context.Background(), "p1")
	require.NoError(t, err)
	assert.Zero(t, points)

	assert.Error(t, svc.Handle(context.Background(), pubsub.EventMatchCompleted, []byte{0xc1}))
}

func TestService_OutOfOrderDelivery(t *testing.T) {
	ctx := context.Background()
	newService := func(t *testing.T) (awards.Store, *awards.Service) {
		t.Helper()
		db, teardown, err := database.InitDB(":memory:", "", "")
		require.NoError(t, err)
		t.Cleanup(teardown)
		store := awards.New(db)
		return store, awards.NewService(store, metrics.NewMock(), pubsub.NewMock())
	}
	reopened := func(version int64) match.LifecycleEvent {
		return match.LifecycleEvent{EventID: "evt-r", MatchID: "m1", Status: match.StatusOngoing, Version: version}
	}
	points := func(t *testing.T, store awards.Store, playerID string) int {
		t.Helper()
		p, err := store.PlayerPoints(ctx, playerID)
		require.NoError(t, err)
		return p
	}

	t.Run("reopened overtakes completed", func(t *testing.T) {
		store, svc := newService(t)
		require.NoError(t, svc.MatchReopened(ctx, reopened(8)))
		require.NoError(t, svc.MatchCompleted(ctx, completedEvent(match.RoundFinal, "p1")))
		assert.Zero(t, points(t, store, "p1"))
	})

	t.Run("second completion delivered first keeps its credit", func(t *testing.T) {
		store, svc := newService(t)
		first := completedEvent(match.RoundFinal, "p1")
		second := completedEvent(match.RoundFinal, "p2")
		second.EventID, second.Winner, second.Version = "evt-2", scoring.SideA, 10

		require.NoError(t, svc.MatchCompleted(ctx, second))
		require.NoError(t, svc.MatchCompleted(ctx, first))
		require.NoError(t, svc.MatchReopened(ctx, reopened(8)))

		assert.Zero(t, points(t, store, "p1"))
		assert.Equal(t, 100, points(t, store, "p2"))
	})

	t.Run("in order delivery", func(t *testing.T) {
		store, svc := newService(t)
		second := completedEvent(match.RoundFinal, "p2")
		second.Version = 10

		require.NoError(t, svc.MatchCompleted(ctx, completedEvent(match.RoundFinal, "p1")))
		require.NoError(t, svc.MatchReopened(ctx, reopened(8)))
		require.NoError(t, svc.MatchCompleted(ctx, second))

		assert.Zero(t, points(t, store, "p1"))
		assert.Equal(t, 100, points(t, store, "p2"))
	})
}

// A full match scored through the controller credits the winners, and undoing the deciding
// rally takes the credit back.
func TestService_FollowsMatchLifecycle(t *testing.T) {
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()
	ctx := context.Background()

	metr := metrics.NewMock()
	local := pubsub.NewLocal()
	store := awards.New(db)
	awards.NewService(store, metr, local).Subscribe(local)
	c := scorer.New(match.New(db), metr, local, time.Second)

	require.NoError(t, c.CreateMatch(ctx, &match.Match{
		ID:    "final",
		Round: match.RoundFinal,
		SideA: match.Participant{Name: "Lee / Wang", PlayerIDs: []string{"p-lee", "p-wang"}},
		SideB: match.Participant{Name: "Ahsan / Setiawan", PlayerIDs: []string{"p-ahsan", "p-setiawan"}},
	}))
	_, err = c.StartMatch(ctx, "final", "umpire-1", scorer.StartOptions{})
	require.NoError(t, err)

	for i := 0; i < 42; i++ {
		_, err := c.AddPoint(ctx, "final", scoring.SideA)
		require.NoError(t, err)
	}
	for _, p := range []string{"p-lee", "p-wang"} {
		points, err := store.PlayerPoints(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, 100, points, p)
	}
	assert.Equal(t, 2, metr.AwardsCredited())

	_, err = c.UndoLastPoint(ctx, "final")
	require.NoError(t, err)
	points, err := store.PlayerPoints(ctx, "p-lee")
	require.NoError(t, err)
	assert.Zero(t, points)
	assert.Zero(t, metr.PublishFailed())
}
