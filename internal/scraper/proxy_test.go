package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// probeSession answers proxy probes per proxy URL rather than per target.
type probeSession struct {
	byProxy map[string]stubResult
	probed  []string
}

func (s *probeSession) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	s.probed = append(s.probed, req.Proxy)
	res, ok := s.byProxy[req.Proxy]
	if !ok {
		return FetchResponse{}, errors.New("unexpected proxy " + req.Proxy)
	}
	return res.resp, res.err
}

func (s *probeSession) Close() {}

func TestNewProxyPoolDropsFailures(t *testing.T) {
	t.Parallel()

	probe := &probeSession{byProxy: map[string]stubResult{
		"http://a:8080": {resp: FetchResponse{StatusCode: 200}},
		"http://b:8080": {err: errors.New("connection refused")},
		"http://c:8080": {resp: FetchResponse{StatusCode: 200}},
	}}
	m := NewRunMetrics()

	pool, err := NewProxyPool(context.Background(), probe, "https://jobs.example.com",
		[]string{"http://a:8080", "http://b:8080", "http://c:8080"}, m, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 2, pool.Size())
	require.Equal(t, []string{"http://a:8080", "http://b:8080", "http://c:8080"}, probe.probed)
	require.Equal(t, 1, m.Summary().ErrorsByKind[KindProxyProbe])
}

func TestNewProxyPoolDropsNon200(t *testing.T) {
	t.Parallel()

	probe := &probeSession{byProxy: map[string]stubResult{
		"http://a:8080": {resp: FetchResponse{StatusCode: 403}},
		"http://b:8080": {resp: FetchResponse{StatusCode: 200}},
	}}
	m := NewRunMetrics()

	pool, err := NewProxyPool(context.Background(), probe, "https://jobs.example.com",
		[]string{"http://a:8080", "http://b:8080"}, m, zap.NewNop())
	require.NoError(t, err)
	require.Equal(t, 1, pool.Size())
	require.Equal(t, "http://b:8080", pool.Next())
}

func TestNewProxyPoolAllUnhealthy(t *testing.T) {
	t.Parallel()

	probe := &probeSession{byProxy: map[string]stubResult{
		"http://a:8080": {err: errors.New("timeout")},
	}}

	_, err := NewProxyPool(context.Background(), probe, "https://jobs.example.com",
		[]string{"http://a:8080"}, NewRunMetrics(), zap.NewNop())
	require.ErrorIs(t, err, ErrNoHealthyProxies)
}

func TestProxyPoolCycles(t *testing.T) {
	t.Parallel()

	probe := &probeSession{byProxy: map[string]stubResult{
		"http://a:8080": {resp: FetchResponse{StatusCode: 200}},
		"http://c:8080": {resp: FetchResponse{StatusCode: 200}},
	}}
	pool, err := NewProxyPool(context.Background(), probe, "https://jobs.example.com",
		[]string{"http://a:8080", "http://c:8080"}, NewRunMetrics(), zap.NewNop())
	require.NoError(t, err)

	require.Equal(t, "http://a:8080", pool.Next())
	require.Equal(t, "http://c:8080", pool.Next())
	require.Equal(t, "http://a:8080", pool.Next())
	require.Equal(t, "http://c:8080", pool.Next())
}
