// Package publisher provides Publisher implementations for posting events.
package publisher

import (
	"context"
	"fmt"
	"sync"

	"github.com/jobwire/boardcrawler/internal/scraper"
)

// Memory stores published events for inspection in tests.
type Memory struct {
	mu     sync.RWMutex
	events []scraper.PostingEvent
}

// NewMemory returns a memory Publisher.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish records the event and returns a pseudo ID.
func (m *Memory) Publish(_ context.Context, event scraper.PostingEvent) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return fmt.Sprintf("memory-%d", len(m.events)), nil
}

// Events returns the recorded publishes.
func (m *Memory) Events() []scraper.PostingEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]scraper.PostingEvent, len(m.events))
	copy(out, m.events)
	return out
}
