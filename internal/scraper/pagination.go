package scraper

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"
)

// Pages below this number with an empty link set are treated as a selector
// problem rather than the natural end of the listing.
const minPagesBeforeEmptyIsNormal = 3

// PaginationController walks the page numbers of one category, feeding every
// discovered link through the pipeline and deciding when the category ends.
type PaginationController struct {
	cfg      Config
	fetcher  *PageFetcher
	pipeline *JobPipeline
	metrics  *RunMetrics
	pause    Pauser
	logger   *zap.Logger
}

// NewPaginationController builds a controller over the given fetcher and
// pipeline.
func NewPaginationController(
	cfg Config,
	fetcher *PageFetcher,
	pipeline *JobPipeline,
	m *RunMetrics,
	pause Pauser,
	logger *zap.Logger,
) *PaginationController {
	return &PaginationController{
		cfg:      cfg,
		fetcher:  fetcher,
		pipeline: pipeline,
		metrics:  m,
		pause:    pause,
		logger:   logger,
	}
}

// RunCategory drains one category page by page. Page-level failures end the
// category but never the run; only a FatalError from the pipeline propagates.
func (c *PaginationController) RunCategory(
	ctx context.Context,
	sess Session,
	proxy string,
	category string,
) error {
	for page := 1; ; page++ {
		more, err := c.processPage(ctx, sess, proxy, category, page)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

func (c *PaginationController) processPage(
	ctx context.Context,
	sess Session,
	proxy string,
	category string,
	page int,
) (bool, error) {
	pageURL := c.cfg.PageURL(category, page)

	links, err := c.fetcher.FetchLinks(ctx, sess, proxy, pageURL, c.cfg.BaseURL)
	if err != nil {
		c.logger.Error("failed to process listing page",
			zap.String("category", category),
			zap.Int("page", page),
			zap.Error(err),
		)
		kind := classifyError(err)
		if kind == KindOther {
			kind = KindTransport
		}
		c.metrics.RecordError(kind)
		return false, nil
	}

	if len(links) == 0 {
		if page < minPagesBeforeEmptyIsNormal {
			// An empty first or second page looks like a broken selector,
			// not an exhausted listing.
			c.logger.Warn("no jobs found early in category",
				zap.String("category", category),
				zap.String("url", pageURL),
				zap.Int("page", page),
			)
		} else {
			c.logger.Info("no more jobs in category",
				zap.String("category", category),
				zap.String("url", pageURL),
				zap.Int("page", page),
			)
		}
		return false, nil
	}

	// Link order within a page carries no meaning; sorting keeps the
	// consecutive-failure accounting reproducible across runs.
	ordered := make([]string, 0, len(links))
	for link := range links {
		ordered = append(ordered, link)
	}
	sort.Strings(ordered)

	consecutiveFailures := 0
	for _, link := range ordered {
		ok, err := c.pipeline.Process(ctx, sess, proxy, category, link, pageURL)
		if err != nil {
			var fatal *FatalError
			if errors.As(err, &fatal) {
				return false, err
			}
			c.logger.Error("unexpected job error",
				zap.String("category", category),
				zap.Int("page", page),
				zap.Error(err),
			)
			c.metrics.RecordError(classifyError(err))
			return false, nil
		}
		if ok {
			consecutiveFailures = 0
			continue
		}
		consecutiveFailures++
		if consecutiveFailures >= c.cfg.SkipAfterFailed {
			// The page set is failing systematically; abandon the category
			// before burning more proxy reputation on it.
			c.logger.Error("abandoning category after consecutive failures",
				zap.String("category", category),
				zap.Int("page", page),
				zap.Int("consecutive_failures", consecutiveFailures),
			)
			return false, nil
		}
		c.pause.Pause(ctx, c.cfg.WaitWindow.Doubled().Jitter())
	}

	c.metrics.PageCompleted()
	c.logger.Info("completed listing page",
		zap.String("category", category),
		zap.Int("page", page),
	)
	c.pause.Pause(ctx, c.cfg.WaitWindow.Jitter())
	return true, nil
}
