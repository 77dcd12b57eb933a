package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jobwire/boardcrawler/internal/htmldoc"
)

// testConfig returns a valid Config with a zero-width wait window so tests
// never sleep.
func testConfig() Config {
	return Config{
		Site:               "acme_jobs",
		BaseURL:            "https://jobs.example.com",
		Categories:         []string{"engineering"},
		LinksQuery:         `//div[@class='job-card']//a/@href`,
		ValidationQuery:    `//div[@class='job-details']`,
		PageURLTemplate:    "https://jobs.example.com/{category}?page={page}",
		PostingURLTemplate: "https://jobs.example.com{posting_link}",
		ProxyURLs:          []string{"http://proxy1.example.com:8080"},
		WaitWindow:         Window{},
		SkipAfterFailed:    5,
		LookbackDays:       7,
	}
}

const (
	validDetailHTML = `<html><body><div class="job-details"><h1>Gopher</h1></div></body></html>`
	brokenPageHTML  = `<html><body><div class="maintenance">back soon</div></body></html>`
	emptyListHTML   = `<html><body><div class="empty"></div></body></html>`
)

func listingHTML(links ...string) string {
	body := "<html><body>"
	for _, l := range links {
		body += `<div class="job-card"><a href="` + l + `">job</a></div>`
	}
	return body + "</body></html>"
}

type stubResult struct {
	resp FetchResponse
	err  error
}

// fakeSession scripts responses per URL; each response is consumed once so
// retries observe successive results. The last scripted result repeats once
// the queue drains.
type fakeSession struct {
	mu        sync.Mutex
	responses map[string][]stubResult
	calls     []string
	closed    bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{responses: make(map[string][]stubResult)}
}

func (s *fakeSession) stubOK(url, body string) {
	s.stub(url, FetchResponse{StatusCode: 200, Body: []byte(body)}, nil)
}

func (s *fakeSession) stubErr(url string, err error) {
	s.stub(url, FetchResponse{}, err)
}

func (s *fakeSession) stub(url string, resp FetchResponse, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[url] = append(s.responses[url], stubResult{resp: resp, err: err})
}

func (s *fakeSession) Fetch(_ context.Context, req FetchRequest) (FetchResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req.URL)
	queue := s.responses[req.URL]
	if len(queue) == 0 {
		return FetchResponse{}, errors.New("no stub for " + req.URL)
	}
	res := queue[0]
	if len(queue) > 1 {
		s.responses[req.URL] = queue[1:]
	}
	return res.resp, res.err
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSession) fetchCount(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c == url {
			n++
		}
	}
	return n
}

type fakeSessionFactory struct {
	sess *fakeSession
	err  error
}

func (f *fakeSessionFactory) NewSession() (Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sess, nil
}

// fakePauser records requested sleeps instead of sleeping.
type fakePauser struct {
	mu     sync.Mutex
	pauses []time.Duration
}

func (p *fakePauser) Pause(_ context.Context, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses = append(p.pauses, d)
}

type insertCall struct {
	url     string
	posting Posting
}

type fakeStore struct {
	mu        sync.Mutex
	recent    []string
	recentErr error
	inserts   []insertCall
	insertErr error
	closed    bool
}

func (s *fakeStore) InsertPosting(_ context.Context, url string, p Posting) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserts = append(s.inserts, insertCall{url: url, posting: p})
	return "posting-1", nil
}

func (s *fakeStore) RecentURLs(_ context.Context, _ time.Duration) ([]string, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	return s.recent, nil
}

func (s *fakeStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeStore) insertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inserts)
}

// fakeExtractor delegates to fn, defaulting to a one-field posting.
type fakeExtractor struct {
	fn func(doc *htmldoc.Document, url string) (Posting, error)
}

func (e *fakeExtractor) Extract(doc *htmldoc.Document, url string) (Posting, error) {
	if e.fn != nil {
		return e.fn(doc, url)
	}
	return Posting{"title": "Gopher"}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []PostingEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, event PostingEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.events = append(p.events, event)
	return "event-1", nil
}

type snapCall struct {
	site string
	url  string
	body []byte
}

type fakeSnapshots struct {
	mu    sync.Mutex
	saved []snapCall
	err   error
}

func (s *fakeSnapshots) SaveSnapshot(_ context.Context, site, url string, body []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, snapCall{site: site, url: url, body: body})
	return "file:///tmp/snapshot.html", nil
}
