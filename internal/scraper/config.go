package scraper

import (
	"fmt"
	"strings"
)

// Config captures every knob that shapes a crawl run. It is built once by
// the driver (usually via internal/config) and never mutated afterwards.
type Config struct {
	// Site names the target board; it keys log lines, snapshots, and events.
	Site string
	// BaseURL is the board's front page, used as the proxy probe target and
	// as the referer for listing-page fetches.
	BaseURL string
	// Categories are crawled sequentially, each through its own session.
	Categories []string

	// LinksQuery selects posting links on a listing page (XPath).
	LinksQuery string
	// ValidationQuery must match on a detail page for it to count as loaded.
	ValidationQuery string

	// PageURLTemplate expands {category} and {page} into a listing URL.
	PageURLTemplate string
	// PostingURLTemplate expands {posting_link} into a canonical detail URL.
	PostingURLTemplate string

	// ProxyURLs are candidate proxies, validated once at run start.
	ProxyURLs []string

	// WaitWindow bounds the jittered sleeps between jobs and pages.
	WaitWindow Window
	// SkipAfterFailed is the consecutive-failure count at which a category
	// is abandoned.
	SkipAfterFailed int
	// LookbackDays bounds the recent-URL query that seeds the dedup set.
	LookbackDays int
}

// Validate checks for configuration that leaves the engine with no valid
// operating mode.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site) == "" {
		return fmt.Errorf("site name must be set")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL must be set")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category must be configured")
	}
	if strings.TrimSpace(c.LinksQuery) == "" {
		return fmt.Errorf("links query must be set")
	}
	if strings.TrimSpace(c.ValidationQuery) == "" {
		return fmt.Errorf("validation query must be set")
	}
	if strings.TrimSpace(c.PageURLTemplate) == "" {
		return fmt.Errorf("page URL template must be set")
	}
	if strings.TrimSpace(c.PostingURLTemplate) == "" {
		return fmt.Errorf("posting URL template must be set")
	}
	if len(c.ProxyURLs) == 0 {
		return fmt.Errorf("at least one proxy URL must be provided")
	}
	if c.WaitWindow.Min < 0 || c.WaitWindow.Min > c.WaitWindow.Max {
		return fmt.Errorf("wait window must satisfy 0 <= min <= max")
	}
	if c.SkipAfterFailed <= 0 {
		return fmt.Errorf("skip_after_failed must be > 0")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be > 0")
	}
	return nil
}
