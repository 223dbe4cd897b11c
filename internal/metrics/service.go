package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		MatchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_matches_started_total",
			Help: "The total number of matches moved to ONGOING.",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_matches_completed_total",
			Help: "The total number of matches that reached COMPLETED.",
		}),
		MatchesReopened: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_matches_reopened_total",
			Help: "The total number of completed matches reopened by an undo.",
		}),
		PointsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_points_scored_total",
			Help: "The total number of rallies recorded.",
		}),
		PointsUndone: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_points_undone_total",
			Help: "The total number of rallies removed by undo.",
		}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scoring_operations_rejected_total",
			Help: "Scoring operations rejected, by error kind.",
		}, []string{"kind"}),
		LockTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_lock_timeouts_total",
			Help: "Operations that gave up waiting for the per-match lock.",
		}),
		SaveConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_save_conflicts_total",
			Help: "Saves rejected because the match version moved.",
		}),
		PublishFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_events_publish_failed_total",
			Help: "Lifecycle events that could not be published.",
		}),
		AwardsCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scoring_awards_credited_total",
			Help: "Award credits written for match winners.",
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scoring_operation_duration_seconds",
			Help:    "The duration of scoring operations, including persistence.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scoring_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.MatchesStarted,
		s.MatchesCompleted,
		s.MatchesReopened,
		s.PointsScored,
		s.PointsUndone,
		s.Rejected,
		s.LockTimeouts,
		s.SaveConflicts,
		s.PublishFailed,
		s.AwardsCredited,
		s.OperationDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncMatchesStarted() {
	s.MatchesStarted.Inc()
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) IncMatchesReopened() {
	s.MatchesReopened.Inc()
}

func (s *Service) IncPointsScored() {
	s.PointsScored.Inc()
}

func (s *Service) IncPointsUndone() {
	s.PointsUndone.Inc()
}

func (s *Service) IncRejected(kind string) {
	s.Rejected.WithLabelValues(kind).Inc()
}

func (s *Service) IncLockTimeouts() {
	s.LockTimeouts.Inc()
}

func (s *Service) IncSaveConflicts() {
	s.SaveConflicts.Inc()
}

func (s *Service) IncPublishFailed() {
	s.PublishFailed.Inc()
}

func (s *Service) IncAwardsCredited() {
	s.AwardsCredited.Inc()
}

func (s *Service) ObserveOperationDuration(operation string, seconds float64) {
	s.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
