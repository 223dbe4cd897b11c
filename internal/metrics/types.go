package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	MatchesStarted     prometheus.Counter
	MatchesCompleted   prometheus.Counter
	MatchesReopened    prometheus.Counter
	PointsScored       prometheus.Counter
	PointsUndone       prometheus.Counter
	Rejected           *prometheus.CounterVec
	LockTimeouts       prometheus.Counter
	SaveConflicts      prometheus.Counter
	PublishFailed      prometheus.Counter
	AwardsCredited     prometheus.Counter
	OperationDuration  *prometheus.HistogramVec
	StartupTimeSeconds prometheus.Gauge
}
