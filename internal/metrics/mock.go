package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	matchesStarted     int
	matchesCompleted   int
	matchesReopened    int
	pointsScored       int
	pointsUndone       int
	rejected           map[string]int
	lockTimeouts       int
	saveConflicts      int
	publishFailed      int
	awardsCredited     int
	operationDurations map[string][]float64
	startupTime        float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		rejected:           make(map[string]int),
		operationDurations: make(map[string][]float64),
	}
}

func (m *Mock) IncMatchesStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesStarted++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) IncMatchesReopened() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesReopened++
}

func (m *Mock) IncPointsScored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointsScored++
}

func (m *Mock) IncPointsUndone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pointsUndone++
}

func (m *Mock) IncRejected(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[kind]++
}

func (m *Mock) IncLockTimeouts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockTimeouts++
}

func (m *Mock) IncSaveConflicts() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveConflicts++
}

func (m *Mock) IncPublishFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishFailed++
}

func (m *Mock) IncAwardsCredited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.awardsCredited++
}

func (m *Mock) ObserveOperationDuration(operation string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationDurations[operation] = append(m.operationDurations[operation], seconds)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// MatchesStarted returns the number of times IncMatchesStarted was called.
func (m *Mock) MatchesStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesStarted
}

// MatchesCompleted returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

// MatchesReopened returns the number of times IncMatchesReopened was called.
func (m *Mock) MatchesReopened() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesReopened
}

// PointsScored returns the number of times IncPointsScored was called.
func (m *Mock) PointsScored() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointsScored
}

// PointsUndone returns the number of times IncPointsUndone was called.
func (m *Mock) PointsUndone() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointsUndone
}

// Rejected returns how often IncRejected was called with kind.
func (m *Mock) Rejected(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rejected[kind]
}

// LockTimeouts returns the number of times IncLockTimeouts was called.
func (m *Mock) LockTimeouts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lockTimeouts
}

// SaveConflicts returns the number of times IncSaveConflicts was called.
func (m *Mock) SaveConflicts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveConflicts
}

// PublishFailed returns the number of times IncPublishFailed was called.
func (m *Mock) PublishFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publishFailed
}

// AwardsCredited returns the number of times IncAwardsCredited was called.
func (m *Mock) AwardsCredited() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.awardsCredited
}

// OperationDurations returns the durations observed for operation.
func (m *Mock) OperationDurations(operation string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.operationDurations[operation]...)
}
