package scraper

import (
	"context"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/metrics"
)

// ProxyPool holds the proxies that survived validation and hands them out in
// round-robin order. The pool never shrinks mid-run; validation happens once,
// up front.
type ProxyPool struct {
	mu      sync.Mutex
	proxies []string
	next    int
}

// NewProxyPool probes every candidate against baseURL through the candidate
// itself and keeps the ones that answer 200. A candidate failure is counted
// and logged, never raised; an empty survivor list is the one hard error,
// because no valid operating mode exists without a proxy.
func NewProxyPool(
	ctx context.Context,
	probe Session,
	baseURL string,
	candidates []string,
	m *RunMetrics,
	logger *zap.Logger,
) (*ProxyPool, error) {
	survivors := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		resp, err := probe.Fetch(ctx, FetchRequest{URL: baseURL, Proxy: candidate})
		if err != nil {
			logger.Error("proxy failed probe",
				zap.String("proxy", candidate),
				zap.String("target", baseURL),
				zap.Error(err),
			)
			m.RecordError(KindProxyProbe)
			metrics.ProxyProbeFailures.Inc()
			continue
		}
		if resp.StatusCode != http.StatusOK {
			logger.Error("proxy returned non-200 on probe",
				zap.String("proxy", candidate),
				zap.String("target", baseURL),
				zap.Int("status_code", resp.StatusCode),
			)
			m.RecordError(KindProxyProbe)
			metrics.ProxyProbeFailures.Inc()
			continue
		}
		survivors = append(survivors, candidate)
	}
	if len(survivors) == 0 {
		return nil, ErrNoHealthyProxies
	}
	logger.Info("proxy pool validated",
		zap.Int("candidates", len(candidates)),
		zap.Int("survivors", len(survivors)),
	)
	return &ProxyPool{proxies: survivors}, nil
}

// Next returns the next proxy, cycling indefinitely.
func (p *ProxyPool) Next() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	proxy := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return proxy
}

// Size reports how many proxies survived validation.
func (p *ProxyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
