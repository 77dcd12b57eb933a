// Package transport implements the scraper's Session capability on top of a
// Colly collector: cookie-scoped fetches with a per-request proxy, a referer,
// and a browser-like header profile.
package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/scraper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config controls the HTTP client behavior shared by all sessions.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Factory mints sessions sharing a Config but nothing else; each session has
// its own cookie jar, so categories do not leak state into each other.
type Factory struct {
	cfg    Config
	logger *zap.Logger
}

// NewFactory builds a session factory.
func NewFactory(cfg Config, logger *zap.Logger) *Factory {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Factory{cfg: cfg, logger: logger}
}

// NewSession returns a fresh cookie-scoped session.
func (f *Factory) NewSession() (scraper.Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &session{cfg: f.cfg, jar: jar, logger: f.logger}, nil
}

type session struct {
	cfg    Config
	jar    http.CookieJar
	logger *zap.Logger
}

// Fetch performs one request through the given proxy. Each fetch runs on its
// own collector so retries of the same URL are not blocked by revisit
// tracking; the cookie jar carries session state across fetches.
func (s *session) Fetch(ctx context.Context, req scraper.FetchRequest) (scraper.FetchResponse, error) {
	collector := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(s.cfg.UserAgent),
	)
	collector.AllowURLRevisit = true
	collector.SetCookieJar(s.jar)
	collector.SetRequestTimeout(s.cfg.Timeout)
	collector.WithTransport(&http.Transport{
		MaxIdleConns:          16,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: s.cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	if req.Proxy != "" {
		if err := collector.SetProxy(req.Proxy); err != nil {
			return scraper.FetchResponse{}, err
		}
	}

	collector.OnRequest(func(r *colly.Request) {
		setBrowserHeaders(r.Headers)
		if req.Referer != "" {
			r.Headers.Set("Referer", req.Referer)
		}
	})

	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{resp: scraper.FetchResponse{
			StatusCode: r.StatusCode,
			Body:       append([]byte{}, r.Body...),
		}})
	})
	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		res := fetchResult{err: err}
		if r != nil {
			res.resp.StatusCode = r.StatusCode
		}
		send(res)
	})

	if err := collector.Visit(req.URL); err != nil {
		return scraper.FetchResponse{}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return scraper.FetchResponse{}, err
		}
		return res.resp, res.err
	default:
		return scraper.FetchResponse{}, errors.New("fetch produced no result")
	}
}

// Close releases the session. Cookie state dies with the jar.
func (s *session) Close() {}

type fetchResult struct {
	resp scraper.FetchResponse
	err  error
}

// setBrowserHeaders fills in the header profile a desktop Chrome would send,
// so listing sites that fingerprint bare clients see a plausible browser.
func setBrowserHeaders(h *http.Header) {
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Sec-Ch-Ua-Platform", `"Windows"`)
}
