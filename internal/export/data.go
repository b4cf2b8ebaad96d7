package export

import (
	"sync"
	"time"

	"github.com/rohmanhakim/webgrab/internal/extractor"
)

// FailureMarker stands in for a page that could not be fetched. Bundles
// report every URL's outcome, so failures travel alongside records
// instead of disappearing.
type FailureMarker struct {
	URL     string `json:"url"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RunStats summarizes one engine run for the report writers.
type RunStats struct {
	Mode       string    `json:"mode"`
	Seed       string    `json:"seed"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	PagesOK    int       `json:"pagesOk"`
	PagesErr   int       `json:"pagesFailed"`
}

func (s RunStats) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Bundle accumulates the outcome of a run in arrival order. It is safe
// for concurrent use; batch workers append to a shared bundle.
type Bundle struct {
	mu       sync.Mutex
	records  []extractor.PageRecord
	failures []FailureMarker
	stats    RunStats
}

func NewBundle(mode string, seed string) *Bundle {
	return &Bundle{
		records:  []extractor.PageRecord{},
		failures: []FailureMarker{},
		stats: RunStats{
			Mode:      mode,
			Seed:      seed,
			StartedAt: time.Now(),
		},
	}
}

func (b *Bundle) AddRecord(record extractor.PageRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, record)
}

func (b *Bundle) AddFailure(url string, kind string, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = append(b.failures, FailureMarker{URL: url, Kind: kind, Message: message})
}

// Finish seals the stats. Call once, after the last record has been
// added.
func (b *Bundle) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.FinishedAt = time.Now()
	b.stats.PagesOK = len(b.records)
	b.stats.PagesErr = len(b.failures)
}

func (b *Bundle) Records() []extractor.PageRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	records := make([]extractor.PageRecord, len(b.records))
	copy(records, b.records)
	return records
}

func (b *Bundle) Failures() []FailureMarker {
	b.mu.Lock()
	defer b.mu.Unlock()
	failures := make([]FailureMarker, len(b.failures))
	copy(failures, b.failures)
	return failures
}

func (b *Bundle) Stats() RunStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
