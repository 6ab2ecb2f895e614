package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	CandidatesFetched   int64
	CandidatesAccepted  int64
	DuplicatesCollapsed int64
	CompletionCalls     int64
	CompletionFailures  int64
	BatchesFailedOpen   int64
	FallbackSelections  int64
	ArticlesPublished   int64

	// Timings
	LastRunDuration time.Duration
	TotalRunTime    time.Duration
	RunCount        int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddCandidatesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesFetched += int64(n)
}

func (m *Metrics) AddCandidatesAccepted(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesAccepted += int64(n)
}

func (m *Metrics) AddDuplicatesCollapsed(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesCollapsed += int64(n)
}

func (m *Metrics) IncrementCompletionCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompletionCalls++
}

func (m *Metrics) IncrementCompletionFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompletionFailures++
}

func (m *Metrics) IncrementBatchesFailedOpen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BatchesFailedOpen++
}

func (m *Metrics) IncrementFallbackSelections() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbackSelections++
}

func (m *Metrics) AddArticlesPublished(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesPublished += int64(n)
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunTime += duration
	m.RunCount++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"candidates_fetched":   m.CandidatesFetched,
		"candidates_accepted":  m.CandidatesAccepted,
		"duplicates_collapsed": m.DuplicatesCollapsed,
		"completion_calls":     m.CompletionCalls,
		"completion_failures":  m.CompletionFailures,
		"batches_failed_open":  m.BatchesFailedOpen,
		"fallback_selections":  m.FallbackSelections,
		"articles_published":   m.ArticlesPublished,
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
