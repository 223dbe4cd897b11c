package http

import (
	"net/http"

	"github.com/mauv0809/shuttle-score/internal/awards"
	"github.com/mauv0809/shuttle-score/internal/metrics"
	"github.com/mauv0809/shuttle-score/internal/pubsub"
	"github.com/mauv0809/shuttle-score/internal/scorer"
)

func NewServer(scorerSvc scorer.Service, events EventHandler, awardStore awards.Store, metricsSvc metrics.Metrics, metricsHandler http.Handler) *Server {
	server := &Server{
		Scorer:         scorerSvc,
		Events:         events,
		Awards:         awardStore,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// Handlers are wrapped with middleware using the Chain helper,
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("GET /score", Chain(s.ScoreHandler(), paramsMiddleware))
	s.Router.Handle("GET /verify", Chain(s.VerifyHandler(), paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("POST /pubsub/match-completed", Chain(s.PushHandler(pubsub.EventMatchCompleted), paramsMiddleware))
	s.Router.Handle("POST /pubsub/match-reopened", Chain(s.PushHandler(pubsub.EventMatchReopened), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
