package scraper

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/htmldoc"
)

// Retry parameters for listing and detail fetches. Two attempts with a fixed
// pause covers the common transient cases (slow proxy, partial load) without
// hammering a page that is genuinely broken.
var defaultFetchRetry = RetryPolicy{MaxAttempts: 2, Delay: 5 * time.Second}

// PageFetcher fetches listing and detail pages through a session and proxy,
// parses them, and applies the configured queries.
type PageFetcher struct {
	cfg       Config
	retry     RetryPolicy
	metrics   *RunMetrics
	snapshots SnapshotStore
	pause     Pauser
	logger    *zap.Logger
}

// NewPageFetcher builds a PageFetcher. snapshots may be nil.
func NewPageFetcher(
	cfg Config,
	m *RunMetrics,
	snapshots SnapshotStore,
	pause Pauser,
	logger *zap.Logger,
) *PageFetcher {
	return &PageFetcher{
		cfg:       cfg,
		retry:     defaultFetchRetry,
		metrics:   m,
		snapshots: snapshots,
		pause:     pause,
		logger:    logger,
	}
}

// FetchLinks retrieves a listing page and returns the set of posting links it
// advertises. Identical hrefs on one page collapse; link order carries no
// meaning. The links-discovered metric is incremented on success.
func (f *PageFetcher) FetchLinks(
	ctx context.Context,
	sess Session,
	proxy string,
	pageURL string,
	referer string,
) (map[string]struct{}, error) {
	f.logger.Info("visiting listing page", zap.String("url", pageURL))

	links, err := Retry(ctx, f.retry, f.pause, f.logger, func(ctx context.Context) (map[string]struct{}, error) {
		resp, err := sess.Fetch(ctx, FetchRequest{URL: pageURL, Proxy: proxy, Referer: referer})
		if err != nil {
			return nil, err
		}
		doc, err := htmldoc.Parse(resp.Body)
		if err != nil {
			return nil, err
		}
		hrefs, err := doc.Values(f.cfg.LinksQuery)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(hrefs))
		for _, h := range hrefs {
			if h != "" {
				set[h] = struct{}{}
			}
		}
		return set, nil
	})
	if err != nil {
		return nil, err
	}

	f.metrics.AddLinksDiscovered(len(links))
	f.logger.Info("fetched job links",
		zap.String("url", pageURL),
		zap.Int("count", len(links)),
	)
	return links, nil
}

// FetchDetail retrieves a posting page and checks it against the validation
// query. A page that fetches but does not match yields a PageShapeError; a
// transient load is indistinguishable from genuine format drift without a
// second look, so the retry policy covers both. When the final attempt still
// fails validation, the raw body is archived for debugging.
func (f *PageFetcher) FetchDetail(
	ctx context.Context,
	sess Session,
	proxy string,
	postingURL string,
	referer string,
) (*htmldoc.Document, error) {
	var lastBody []byte

	doc, err := Retry(ctx, f.retry, f.pause, f.logger, func(ctx context.Context) (*htmldoc.Document, error) {
		resp, err := sess.Fetch(ctx, FetchRequest{URL: postingURL, Proxy: proxy, Referer: referer})
		if err != nil {
			return nil, err
		}
		doc, err := htmldoc.Parse(resp.Body)
		if err != nil {
			return nil, err
		}
		ok, err := doc.Matches(f.cfg.ValidationQuery)
		if err != nil {
			return nil, err
		}
		if !ok {
			lastBody = resp.Body
			return nil, &PageShapeError{URL: postingURL}
		}
		return doc, nil
	})
	if err != nil {
		var shape *PageShapeError
		if errors.As(err, &shape) && f.snapshots != nil && len(lastBody) > 0 {
			if uri, serr := f.snapshots.SaveSnapshot(ctx, f.cfg.Site, postingURL, lastBody); serr != nil {
				f.logger.Warn("failed to snapshot invalid page", zap.String("url", postingURL), zap.Error(serr))
			} else {
				f.logger.Info("archived invalid page", zap.String("url", postingURL), zap.String("snapshot", uri))
			}
		}
		return nil, err
	}
	return doc, nil
}
