package scraper

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// JobPipeline drives one discovered link through dedup, fetch, extraction,
// and persistence. Fetch and extraction failures are absorbed into metrics
// and a false return; a persistence failure comes back as a FatalError
// because continuing would let the dedup cache drift from the store.
type JobPipeline struct {
	cfg       Config
	fetcher   *PageFetcher
	extractor Extractor
	store     Store
	publisher Publisher
	dedup     *DedupSet
	metrics   *RunMetrics
	pause     Pauser
	runID     string
	logger    *zap.Logger
}

// NewJobPipeline builds a JobPipeline. publisher may be nil.
func NewJobPipeline(
	cfg Config,
	fetcher *PageFetcher,
	extractor Extractor,
	store Store,
	publisher Publisher,
	dedup *DedupSet,
	m *RunMetrics,
	pause Pauser,
	runID string,
	logger *zap.Logger,
) *JobPipeline {
	return &JobPipeline{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		publisher: publisher,
		dedup:     dedup,
		metrics:   m,
		pause:     pause,
		runID:     runID,
		logger:    logger,
	}
}

// Process handles a single link. The bool reports scrape success; a link
// already in the dedup set is an idempotent success with no network call.
// The error is non-nil only for run-fatal conditions.
func (p *JobPipeline) Process(
	ctx context.Context,
	sess Session,
	proxy string,
	category string,
	link string,
	referer string,
) (bool, error) {
	start := time.Now()
	postingURL := p.cfg.PostingURL(link)

	if p.dedup.Contains(postingURL) {
		p.logger.Info("posting already persisted", zap.String("url", postingURL))
		return true, nil
	}

	p.logger.Info("fetching posting", zap.String("url", postingURL))
	doc, err := p.fetcher.FetchDetail(ctx, sess, proxy, postingURL, referer)
	if err != nil {
		p.logger.Error("failed to fetch posting", zap.String("url", postingURL), zap.Error(err))
		p.metrics.RecordFailure()
		kind := classifyError(err)
		if kind == KindOther {
			kind = KindTransport
		}
		p.metrics.RecordError(kind)
		return false, nil
	}

	posting, err := p.extractor.Extract(doc, postingURL)
	if err != nil {
		p.logger.Error("extractor failed", zap.String("url", postingURL), zap.Error(err))
		p.metrics.RecordFailure()
		p.metrics.RecordError(KindExtraction)
		return false, nil
	}
	if len(posting) == 0 {
		// Not an error path: the page validated but held nothing usable.
		p.logger.Warn("extractor yielded no record", zap.String("url", postingURL))
		p.metrics.RecordFailure()
		return false, nil
	}

	id, err := p.store.InsertPosting(ctx, postingURL, posting)
	if err != nil {
		return false, &FatalError{Err: err}
	}

	p.dedup.Add(postingURL)
	p.metrics.RecordSuccess(time.Since(start))
	p.publish(ctx, category, postingURL, id)

	p.pause.Pause(ctx, p.cfg.WaitWindow.Jitter())
	return true, nil
}

func (p *JobPipeline) publish(ctx context.Context, category, postingURL, id string) {
	if p.publisher == nil {
		return
	}
	event := PostingEvent{
		RunID:     p.runID,
		Site:      p.cfg.Site,
		Category:  category,
		URL:       postingURL,
		PostingID: id,
		ScrapedAt: time.Now().UTC(),
	}
	if _, err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish posting event", zap.String("url", postingURL), zap.Error(err))
		p.metrics.RecordError(KindPublish)
	}
}
