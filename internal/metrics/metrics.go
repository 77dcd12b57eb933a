// Package metrics exposes Prometheus counters for the scrape pipeline and a
// small ops HTTP server to surface them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LinksDiscovered tracks job links found on listing pages.
	LinksDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_links_discovered_total",
		Help: "The total number of job links discovered on listing pages.",
	})
	// ScrapesSucceeded tracks postings scraped and persisted.
	ScrapesSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_scrapes_succeeded_total",
		Help: "The total number of postings successfully scraped and saved.",
	})
	// ScrapesFailed tracks postings that could not be scraped.
	ScrapesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_scrapes_failed_total",
		Help: "The total number of postings that failed to scrape.",
	})
	// PagesCompleted tracks fully processed listing pages.
	PagesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_pages_completed_total",
		Help: "The total number of listing pages processed to completion.",
	})
	// ProxyProbeFailures tracks candidate proxies rejected during validation.
	ProxyProbeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scraper_proxy_probe_failures_total",
		Help: "The total number of candidate proxies that failed the probe request.",
	})
	// ErrorsByKind tracks classified scrape errors.
	ErrorsByKind = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scraper_errors_total",
		Help: "The total number of errors, labelled by classified kind.",
	}, []string{"kind"})
)
