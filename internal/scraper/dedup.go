package scraper

import "sync"

// DedupSet caches canonical posting URLs already confirmed persisted. It is
// seeded from the store's lookback query at run start and grows as postings
// are inserted; the store stays the system of record. A URL is added only
// after a successful insert.
type DedupSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewDedupSet returns an empty set.
func NewDedupSet() *DedupSet {
	return &DedupSet{urls: make(map[string]struct{})}
}

// Seed loads previously persisted URLs.
func (s *DedupSet) Seed(urls []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range urls {
		s.urls[u] = struct{}{}
	}
}

// Contains reports whether url is already known.
func (s *DedupSet) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.urls[url]
	return ok
}

// Add records url as persisted.
func (s *DedupSet) Add(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.urls[url] = struct{}{}
}

// Len returns the number of known URLs.
func (s *DedupSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.urls)
}
