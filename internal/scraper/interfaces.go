package scraper

import (
	"context"
	"time"

	"github.com/jobwire/boardcrawler/internal/htmldoc"
)

// Posting is the opaque record an Extractor produces for one detail page.
// The engine only requires that it serializes; its shape belongs to the
// site-specific extractor and the store schema.
type Posting map[string]any

// Extractor parses the structured fields out of a validated detail page.
// Returning a nil Posting means the page held no usable record; it is
// counted as a failed scrape but never retried.
type Extractor interface {
	Extract(doc *htmldoc.Document, postingURL string) (Posting, error)
}

// Store is the persistence capability. InsertPosting failures are treated as
// fatal to the run (see FatalError); RecentURLs implementations should log
// and return an empty slice rather than fail the run on a read error.
type Store interface {
	InsertPosting(ctx context.Context, url string, p Posting) (string, error)
	RecentURLs(ctx context.Context, lookback time.Duration) ([]string, error)
	Close()
}

// FetchRequest describes one HTTP fetch through a specific proxy.
type FetchRequest struct {
	URL     string
	Proxy   string
	Referer string
}

// FetchResponse carries the raw bytes and status of a completed fetch.
type FetchResponse struct {
	StatusCode int
	Body       []byte
}

// Session is a cookie-scoped fetch capability. One session is held for the
// duration of a category and released afterwards.
type Session interface {
	Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error)
	Close()
}

// SessionFactory mints sessions; one per category plus one for proxy probing.
type SessionFactory interface {
	NewSession() (Session, error)
}

// PostingEvent is published after a posting has been persisted.
type PostingEvent struct {
	RunID     string    `json:"run_id"`
	Site      string    `json:"site"`
	Category  string    `json:"category"`
	URL       string    `json:"url"`
	PostingID string    `json:"posting_id"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Publisher pushes posting events to downstream consumers. Publish failures
// are logged and counted, never fatal.
type Publisher interface {
	Publish(ctx context.Context, event PostingEvent) (string, error)
}

// SnapshotStore archives the raw body of a page that failed structural
// validation, for selector-drift debugging.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, site, rawURL string, body []byte) (string, error)
}

// Pauser abstracts the jittered sleeps so tests can skip them.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration)
}
