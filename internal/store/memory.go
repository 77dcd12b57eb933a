// Package store provides Store implementations for persisted postings. The
// in-memory store here backs tests and dry runs; internal/store/postgres is
// the production backend.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jobwire/boardcrawler/internal/scraper"
)

// Memory is an in-memory Store.
type Memory struct {
	mu       sync.Mutex
	postings []MemoryPosting
}

// MemoryPosting captures one insert for inspection.
type MemoryPosting struct {
	ID       string
	URL      string
	Record   map[string]any
	Inserted time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// InsertPosting records the posting and returns a pseudo ID.
func (m *Memory) InsertPosting(_ context.Context, url string, p scraper.Posting) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := fmt.Sprintf("memory-%d", len(m.postings)+1)
	m.postings = append(m.postings, MemoryPosting{
		ID:       id,
		URL:      url,
		Record:   p,
		Inserted: time.Now(),
	})
	return id, nil
}

// RecentURLs returns URLs inserted within the lookback window.
func (m *Memory) RecentURLs(_ context.Context, lookback time.Duration) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-lookback)
	var urls []string
	for _, p := range m.postings {
		if p.Inserted.After(cutoff) {
			urls = append(urls, p.URL)
		}
	}
	return urls, nil
}

// Close is a no-op.
func (m *Memory) Close() {}

// Postings returns a copy of everything inserted so far.
func (m *Memory) Postings() []MemoryPosting {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryPosting, len(m.postings))
	copy(out, m.postings)
	return out
}
