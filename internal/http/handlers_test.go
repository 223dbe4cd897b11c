package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/shuttle-score/internal/awards"
	"github.com/mauv0809/shuttle-score/internal/match"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scorer"
	"github.com/mauv0809/shuttle-score/internal/scoring"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

type testServer struct {
	*Server
	scorer *scorer.MockService
	awards *awards.MockStore
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	scorerSvc := scorer.NewMockService()
	awardStore := awards.NewMock()
	events := awards.NewService(awardStore, metricsSvc, pubsub.NewMock())

	return &testServer{
		Server: NewServer(scorerSvc, events, awardStore, metricsSvc, metrics.NewMetricsHandler(reg)),
		scorer: scorerSvc,
		awards: awardStore,
	}
}

func pushBody(t *testing.T, v any) *strings.Reader {
	t.Helper()
	raw, err := msgpack.Marshal(v)
	require.NoError(t, err)
	body := fmt.Sprintf(`{"subscription":"projects/p/subscriptions/awards","message":{"messageId":"1","data":%q}}`,
		base64.StdEncoding.EncodeToString(raw))
	return strings.NewReader(body)
}

func TestHealthCheckHandler(t *testing.T) {
	s := setupTestServer(t)
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestScoreHandler(t *testing.T) {
	s := setupTestServer(t)
	state, err := scoring.NewScoreState(scoring.DefaultConfig(), scoring.SideA)
	require.NoError(t, err)
	_, err = state.AddPoint(scoring.SideB, time.Unix(1_760_000_000, 0).UTC())
	require.NoError(t, err)
	s.scorer.GetScoreFunc = func(ctx context.Context, matchID string) (*match.Match, error) {
		if matchID != "m1" {
			return nil, fmt.Errorf("%w: %s", match.ErrNotFound, matchID)
		}
		return &match.Match{ID: "m1", Status: match.StatusOngoing, Score: state}, nil
	}

	t.Run("returns the match as json", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/score?matchID=m1", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var body struct {
			Status string `json:"status"`
			Score  struct {
				CurrentSet    int                 `json:"currentSet"`
				CurrentScore  map[string]int      `json:"currentScore"`
				CurrentServer string              `json:"currentServer"`
				History       []map[string]any    `json:"history"`
				MatchConfig   map[string]any      `json:"matchConfig"`
				Sets          []scoring.SetResult `json:"sets"`
			} `json:"score"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "ONGOING", body.Status)
		assert.Equal(t, 1, body.Score.CurrentSet)
		assert.Equal(t, map[string]int{"sideA": 0, "sideB": 1}, body.Score.CurrentScore)
		assert.Equal(t, "sideB", body.Score.CurrentServer)
		assert.Len(t, body.Score.History, 1)
		assert.Equal(t, float64(21), body.Score.MatchConfig["pointsPerSet"])
		assert.NotNil(t, body.Score.Sets)
	})

	t.Run("unknown match is 404", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/score?matchID=nope", nil))
		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body errorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "NOT_FOUND", body.Error)
		assert.False(t, body.Retryable)
	})

	t.Run("missing matchID is 400", func(t *testing.T) {
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/score", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestVerifyHandler(t *testing.T) {
	s := setupTestServer(t)
	s.scorer.VerifyFunc = func(ctx context.Context, matchID string) error {
		if matchID == "bad" {
			return fmt.Errorf("%w: set 1 differs from replay", scoring.ErrCorruptHistory)
		}
		return nil
	}

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/verify?matchID=good", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/verify?matchID=bad", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestStatusForKind(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{match.ErrNotFound, http.StatusNotFound},
		{match.ErrConflict, http.StatusConflict},
		{scorer.ErrMatchNotOngoing, http.StatusConflict},
		{scoring.ErrScoreCapExceeded, http.StatusUnprocessableEntity},
		{scoring.ErrNothingToUndo, http.StatusUnprocessableEntity},
		{scorer.ErrBusy, http.StatusServiceUnavailable},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		rr := httptest.NewRecorder()
		writeError(rr, tc.err)
		assert.Equal(t, tc.want, rr.Code, "%v", tc.err)
	}

	rr := httptest.NewRecorder()
	writeError(rr, scorer.ErrBusy)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestPushHandler(t *testing.T) {
	completed := match.LifecycleEvent{
		EventID:         "evt-1",
		MatchID:         "m1",
		Round:           match.RoundSemiFinal,
		Status:          match.StatusCompleted,
		Version:         44,
		Winner:          scoring.SideA,
		WinnerPlayerIDs: []string{"p1", "p2"},
		OccurredAt:      time.Unix(1_760_000_000, 0).UTC(),
	}

	t.Run("completed then reopened", func(t *testing.T) {
		s := setupTestServer(t)

		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-completed", pushBody(t, completed)))
		require.Equal(t, http.StatusOK, rr.Code)
		points, err := s.awards.PlayerPoints(context.Background(), "p2")
		require.NoError(t, err)
		assert.Equal(t, 50, points)

		rr = httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-reopened", pushBody(t, match.LifecycleEvent{MatchID: "m1", Version: 45})))
		require.Equal(t, http.StatusOK, rr.Code)
		points, err = s.awards.PlayerPoints(context.Background(), "p2")
		require.NoError(t, err)
		assert.Zero(t, points)
	})

	t.Run("reopened delivered before completed", func(t *testing.T) {
		s := setupTestServer(t)

		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-reopened", pushBody(t, match.LifecycleEvent{MatchID: "m1", Version: 45})))
		require.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-completed", pushBody(t, completed)))
		require.Equal(t, http.StatusOK, rr.Code, "late events are acknowledged so they are not redelivered")
		points, err := s.awards.PlayerPoints(context.Background(), "p1")
		require.NoError(t, err)
		assert.Zero(t, points)
	})

	t.Run("dry run applies nothing", func(t *testing.T) {
		s := setupTestServer(t)
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-completed?dry_run=true", pushBody(t, completed)))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, s.awards.CreditAwardsCalls)
	})

	t.Run("store failure asks for redelivery", func(t *testing.T) {
		s := setupTestServer(t)
		s.awards.CreditAwardsFunc = func(ctx context.Context, matchID string, version int64, a []awards.Award) (int, error) {
			return 0, fmt.Errorf("database is locked")
		}
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-completed", pushBody(t, completed)))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	badBodies := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"not base64", `{"message":{"data":"%%%"}}`},
	}
	for _, tc := range badBodies {
		t.Run(tc.name, func(t *testing.T) {
			s := setupTestServer(t)
			rr := httptest.NewRecorder()
			s.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/pubsub/match-completed", strings.NewReader(tc.body)))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	t.Run("wrong method", func(t *testing.T) {
		s := setupTestServer(t)
		rr := httptest.NewRecorder()
		s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pubsub/match-completed", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	s := setupTestServer(t)
	_, err := s.awards.CreditAwards(context.Background(), "f", 1, []awards.Award{{MatchID: "f", PlayerID: "p1", Points: 100}})
	require.NoError(t, err)
	_, err = s.awards.CreditAwards(context.Background(), "sf", 1, []awards.Award{{MatchID: "sf", PlayerID: "p2", Points: 50}})
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var board []awards.PlayerTotal
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	assert.Equal(t, []awards.PlayerTotal{{PlayerID: "p1", Points: 100, Wins: 1}}, board)

	rr = httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=-3", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := setupTestServer(t)
	s.Metrics.IncPointsScored()

	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "scoring_points_scored_total 1")
}
