package metrics

// Metrics defines the interface for collecting application metrics.
type Metrics interface {
	IncMatchesStarted()
	IncMatchesCompleted()
	IncMatchesReopened()
	IncPointsScored()
	IncPointsUndone()
	IncRejected(kind string)
	IncLockTimeouts()
	IncSaveConflicts()
	IncPublishFailed()
	IncAwardsCredited()
	ObserveOperationDuration(operation string, seconds float64)
	SetStartupTime(duration float64)
}
