package collect

import (
	"sync"
	"time"
)

// ScrapeStatus is the exporter's own view of the scrape loop: liveness plus
// self-observability counters. Unlike the catalog MetricSet, it is updated
// on failed cycles too.
type ScrapeStatus struct {
	// Up is true when the most recent cycle's upstream calls all succeeded.
	Up bool

	// LastScrape is when the most recent cycle (success or failure) ended.
	LastScrape time.Time

	// LastDuration is how long that cycle took.
	LastDuration time.Duration

	// Cycles counts all completed cycles; Failures the failed subset.
	Cycles   uint64
	Failures uint64
}

// Store is the single piece of state that outlives a scrape cycle. One
// writer (the orchestrator) swaps in a complete MetricSet per successful
// cycle; any number of readers take consistent copies at any time. A reader
// never observes values mixed from two different cycles.
type Store struct {
	mu      sync.RWMutex
	metrics *MetricSet // nil until the first successful cycle
	status  ScrapeStatus
	now     func() time.Time // injectable for deterministic tests
}

// NewStore returns an empty Store: no metrics, liveness down.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Publish replaces the whole MetricSet with one successful cycle's output
// and marks the exporter up. Callers must not modify ms afterwards.
func (s *Store) Publish(ms *MetricSet, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = ms
	s.status.Up = true
	s.status.LastScrape = s.now()
	s.status.LastDuration = took
	s.status.Cycles++
}

// PublishFailure records a failed cycle: liveness goes down, the previously
// published MetricSet is kept untouched (staleness over gaps).
func (s *Store) PublishFailure(took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Up = false
	s.status.LastScrape = s.now()
	s.status.LastDuration = took
	s.status.Cycles++
	s.status.Failures++
}

// Snapshot returns a deep copy of the current MetricSet (nil before the
// first successful cycle) together with the scrape status.
func (s *Store) Snapshot() (*MetricSet, ScrapeStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics.Clone(), s.status
}
