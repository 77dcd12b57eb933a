package scraper

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrNoHealthyProxies is returned when proxy validation leaves an empty pool.
var ErrNoHealthyProxies = errors.New("no healthy proxies after validation")

// ErrNoNewPostings marks a run that finished cleanly but persisted nothing
// new across every category. Operationally this usually means selector drift
// rather than an empty job market, so it is surfaced distinctly from a crash.
var ErrNoNewPostings = errors.New("run completed without any new postings")

// PageShapeError reports a detail page that fetched fine but failed the
// structural validation query. It is a distinct kind from transport errors so
// retry and reporting logic can branch on it without string matching.
type PageShapeError struct {
	URL string
}

func (e *PageShapeError) Error() string {
	return fmt.Sprintf("page %s has unexpected format or has not loaded", e.URL)
}

// FatalError wraps an error that must abort the whole run, bypassing the
// job- and page-level absorption. Persistence write failures are the one
// producer: continuing after a failed insert would silently diverge the
// dedup cache from the system of record.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Error kinds used in the metrics histogram.
const (
	KindTransport  = "transport"
	KindTimeout    = "timeout"
	KindPageShape  = "page_shape"
	KindExtraction = "extraction"
	KindProxyProbe = "proxy_probe"
	KindPublish    = "publish"
	KindQuery      = "query"
	KindOther      = "other"
)

// classifyError maps an error to a metrics kind.
func classifyError(err error) string {
	var shape *PageShapeError
	if errors.As(err, &shape) {
		return KindPageShape
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindTransport
	}
	return KindOther
}
