package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Deps bundles the capabilities an Orchestrator needs. Publisher and
// Snapshots are optional; everything else is required.
type Deps struct {
	Sessions  SessionFactory
	Store     Store
	Extractor Extractor
	Publisher Publisher
	Snapshots SnapshotStore
	Pauser    Pauser
	Logger    *zap.Logger
}

// Orchestrator is the top-level driver for one crawl run: it seeds the dedup
// set, validates the proxy pool, and drains every category sequentially
// through its own session and proxy.
type Orchestrator struct {
	cfg        Config
	deps       Deps
	runID      string
	metrics    *RunMetrics
	dedup      *DedupSet
	fetcher    *PageFetcher
	pipeline   *JobPipeline
	controller *PaginationController
	logger     *zap.Logger
}

// New validates cfg and wires the run components.
func New(cfg Config, deps Deps) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scraper config: %w", err)
	}
	if deps.Sessions == nil || deps.Store == nil || deps.Extractor == nil {
		return nil, fmt.Errorf("sessions, store, and extractor are required")
	}
	if deps.Pauser == nil {
		deps.Pauser = NewTimerPauser()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	runID := uuid.NewString()
	logger := deps.Logger.With(
		zap.String("run_id", runID),
		zap.String("site", cfg.Site),
	)
	m := NewRunMetrics()
	dedup := NewDedupSet()
	fetcher := NewPageFetcher(cfg, m, deps.Snapshots, deps.Pauser, logger)
	pipeline := NewJobPipeline(cfg, fetcher, deps.Extractor, deps.Store, deps.Publisher, dedup, m, deps.Pauser, runID, logger)
	controller := NewPaginationController(cfg, fetcher, pipeline, m, deps.Pauser, logger)

	return &Orchestrator{
		cfg:        cfg,
		deps:       deps,
		runID:      runID,
		metrics:    m,
		dedup:      dedup,
		fetcher:    fetcher,
		pipeline:   pipeline,
		controller: controller,
		logger:     logger,
	}, nil
}

// RunID identifies this run in logs and published events.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run executes the crawl to completion and returns the run summary. A clean
// run that produced no new postings returns ErrNoNewPostings alongside the
// summary. The store handle is released on every exit path, and the summary
// plus a terminal marker are always logged.
func (o *Orchestrator) Run(ctx context.Context) (summary Summary, err error) {
	defer o.deps.Store.Close()
	defer func() {
		o.logger.Info("metrics summary", summary.Fields()...)
		o.logger.Info("scraping ended")
	}()

	seed, serr := o.deps.Store.RecentURLs(ctx, time.Duration(o.cfg.LookbackDays)*24*time.Hour)
	if serr != nil {
		// The lookback query is best-effort; worst case we re-scrape some
		// recent postings.
		o.logger.Warn("failed to load recent URLs; starting with empty dedup set", zap.Error(serr))
		o.metrics.RecordError(KindQuery)
		seed = nil
	}
	o.dedup.Seed(seed)
	seedSize := o.dedup.Len()
	o.logger.Info("seeded dedup set", zap.Int("known_urls", seedSize))

	pool, perr := o.validateProxies(ctx)
	if perr != nil {
		summary = o.summarize(seedSize)
		return summary, perr
	}

	for _, category := range o.cfg.Categories {
		if cerr := o.runCategory(ctx, pool, category); cerr != nil {
			summary = o.summarize(seedSize)
			return summary, cerr
		}
		o.deps.Pauser.Pause(ctx, o.cfg.WaitWindow.Jitter())
	}

	summary = o.summarize(seedSize)
	if summary.NewPostings == 0 {
		// A healthy scraper that found nothing new across every category is
		// itself an anomaly worth surfacing distinctly from a crash.
		return summary, ErrNoNewPostings
	}
	return summary, nil
}

func (o *Orchestrator) validateProxies(ctx context.Context) (*ProxyPool, error) {
	probe, err := o.deps.Sessions.NewSession()
	if err != nil {
		return nil, fmt.Errorf("create probe session: %w", err)
	}
	defer probe.Close()
	return NewProxyPool(ctx, probe, o.cfg.BaseURL, o.cfg.ProxyURLs, o.metrics, o.logger)
}

func (o *Orchestrator) runCategory(ctx context.Context, pool *ProxyPool, category string) error {
	logger := o.logger.With(zap.String("category", category))
	logger.Info("starting category")
	before := o.dedup.Len()

	sess, err := o.deps.Sessions.NewSession()
	if err != nil {
		return fmt.Errorf("create session for category %s: %w", category, err)
	}
	defer sess.Close()

	proxy := pool.Next()
	logger.Info("using proxy", zap.String("proxy", proxy))

	if err := o.controller.RunCategory(ctx, sess, proxy, category); err != nil {
		return err
	}

	logger.Info("completed category", zap.Int("new_postings", o.dedup.Len()-before))
	return nil
}

func (o *Orchestrator) summarize(seedSize int) Summary {
	s := o.metrics.Summary()
	s.NewPostings = o.dedup.Len() - seedSize
	return s
}
