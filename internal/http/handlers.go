package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scorer"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// ScoreHandler returns the full match, including its score, as JSON.
func (s *Server) ScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "Missing matchID parameter", http.StatusBadRequest)
			return
		}
		m, err := s.Scorer.GetScore(r.Context(), matchID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	}
}

// VerifyHandler replays a match's history and reports whether the stored score agrees.
func (s *Server) VerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "Missing matchID parameter", http.StatusBadRequest)
			return
		}
		if err := s.Scorer.Verify(r.Context(), matchID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Match %s is consistent.", matchID)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			parsed, err := strconv.Atoi(limitStr)
			if err != nil || parsed < 0 {
				log.Warn("Invalid 'limit' parameter provided", "limit_param", limitStr)
				http.Error(w, "Invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = parsed
		}
		board, err := s.Awards.Leaderboard(r.Context(), limit)
		if err != nil {
			log.Error("Failed to load leaderboard", "error", err)
			http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, board)
	}
}

// PushHandler accepts a Pub/Sub push delivery for topic. A non-2xx answer makes Pub/Sub redeliver,
// so only failures worth retrying return 500.
func (s *Server) PushHandler(topic pubsub.EventType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "topic", topic, "body", string(bodyBytes))

		var msg pushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would have applied event", "topic", topic, "messageID", msg.Message.ID)
			w.Write([]byte("OK"))
			return
		}
		if err := s.Events.Handle(r.Context(), topic, rawData); err != nil {
			log.Error("Failed to apply pushed event", "topic", topic, "messageID", msg.Message.ID, "error", err)
			http.Error(w, "Failed to apply event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := scorer.KindOf(err)
	status := statusForKind(kind)
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "kind", kind, "error", err)
	}
	writeJSON(w, status, errorResponse{
		Error:     string(kind),
		Message:   err.Error(),
		Retryable: scorer.IsRetryable(err),
	})
}

func statusForKind(kind scorer.Kind) int {
	switch kind {
	case scorer.KindNotFound:
		return http.StatusNotFound
	case scorer.KindAlreadyExists, scorer.KindConflict, scorer.KindInvalidState, scorer.KindMatchNotOngoing:
		return http.StatusConflict
	case scorer.KindIllegalIncrement, scorer.KindScoreCapExceeded, scorer.KindNothingToUndo,
		scorer.KindUnknownSide, scorer.KindInvalidConfig:
		return http.StatusUnprocessableEntity
	case scorer.KindBusy:
		return http.StatusServiceUnavailable
	case scorer.KindCanceled:
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}
