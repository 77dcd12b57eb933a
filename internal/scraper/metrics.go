package scraper

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/metrics"
)

// RunMetrics accumulates counters and timings for one run. It mirrors every
// increment into the process-wide Prometheus counters so a long-lived driver
// exposes them on /metrics, while the per-run values feed the end-of-run
// summary.
type RunMetrics struct {
	mu              sync.Mutex
	linksDiscovered int
	succeeded       int
	failed          int
	pagesCompleted  int
	errorsByKind    map[string]int
	start           time.Time
	durations       []time.Duration
}

// NewRunMetrics starts the run clock.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		errorsByKind: make(map[string]int),
		start:        time.Now(),
	}
}

// AddLinksDiscovered counts links found on a listing page.
func (m *RunMetrics) AddLinksDiscovered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linksDiscovered += n
	metrics.LinksDiscovered.Add(float64(n))
}

// RecordSuccess counts a persisted posting and its processing duration.
func (m *RunMetrics) RecordSuccess(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.succeeded++
	m.durations = append(m.durations, d)
	metrics.ScrapesSucceeded.Inc()
}

// RecordFailure counts a posting that could not be scraped.
func (m *RunMetrics) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed++
	metrics.ScrapesFailed.Inc()
}

// PageCompleted counts a fully processed listing page.
func (m *RunMetrics) PageCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pagesCompleted++
	metrics.PagesCompleted.Inc()
}

// RecordError adds an error to the kind histogram.
func (m *RunMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorsByKind[kind]++
	metrics.ErrorsByKind.WithLabelValues(kind).Inc()
}

// Summary derives the run report.
func (m *RunMetrics) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	var successRate float64
	if m.succeeded+m.failed > 0 {
		successRate = float64(m.succeeded) / float64(m.succeeded+m.failed)
	}
	var mean time.Duration
	if len(m.durations) > 0 {
		var total time.Duration
		for _, d := range m.durations {
			total += d
		}
		mean = total / time.Duration(len(m.durations))
	}
	errs := make(map[string]int, len(m.errorsByKind))
	for k, v := range m.errorsByKind {
		errs[k] = v
	}
	return Summary{
		Duration:          time.Since(m.start),
		LinksDiscovered:   m.linksDiscovered,
		SuccessfulScrapes: m.succeeded,
		FailedScrapes:     m.failed,
		PagesCompleted:    m.pagesCompleted,
		SuccessRate:       successRate,
		MeanProcessing:    mean,
		ErrorsByKind:      errs,
	}
}

// Summary is the end-of-run report.
type Summary struct {
	Duration          time.Duration
	LinksDiscovered   int
	SuccessfulScrapes int
	FailedScrapes     int
	PagesCompleted    int
	SuccessRate       float64
	MeanProcessing    time.Duration
	ErrorsByKind      map[string]int
	NewPostings       int
}

// Fields renders the summary as zap fields.
func (s Summary) Fields() []zap.Field {
	return []zap.Field{
		zap.Duration("duration", s.Duration),
		zap.Int("links_discovered", s.LinksDiscovered),
		zap.Int("successful_scrapes", s.SuccessfulScrapes),
		zap.Int("failed_scrapes", s.FailedScrapes),
		zap.Int("pages_completed", s.PagesCompleted),
		zap.Float64("success_rate", s.SuccessRate),
		zap.Duration("mean_processing", s.MeanProcessing),
		zap.Int("new_postings", s.NewPostings),
		zap.Any("errors_by_kind", s.ErrorsByKind),
	}
}
