// Package scraper implements the orchestration engine for crawling paginated
// job-board listing sites: proxy validation and rotation, bounded retries,
// the pagination state machine, the per-posting dedup-and-persist pipeline,
// the consecutive-failure circuit breaker, and run-level metrics.
//
// Everything site-specific or infrastructural enters through the capability
// interfaces in interfaces.go: a Session performs HTTP fetches, an Extractor
// turns a detail page into a Posting, a Store persists it. A driver program
// wires concrete implementations (internal/transport, internal/store,
// internal/extractor) into an Orchestrator and calls Run.
package scraper
