package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/htmldoc"
)

type pipelineHarness struct {
	cfg       Config
	sess      *fakeSession
	store     *fakeStore
	extractor *fakeExtractor
	publisher *fakePublisher
	dedup     *DedupSet
	metrics   *RunMetrics
	pause     *fakePauser
	pipeline  *JobPipeline
}

func newPipelineHarness(t *testing.T, cfg Config) *pipelineHarness {
	t.Helper()
	h := &pipelineHarness{
		cfg:       cfg,
		sess:      newFakeSession(),
		store:     &fakeStore{},
		extractor: &fakeExtractor{},
		publisher: &fakePublisher{},
		dedup:     NewDedupSet(),
		metrics:   NewRunMetrics(),
		pause:     &fakePauser{},
	}
	fetcher := NewPageFetcher(cfg, h.metrics, nil, h.pause, zap.NewNop())
	h.pipeline = NewJobPipeline(cfg, fetcher, h.extractor, h.store, h.publisher, h.dedup, h.metrics, h.pause, "run-1", zap.NewNop())
	return h
}

func (h *pipelineHarness) process(t *testing.T, link string) (bool, error) {
	t.Helper()
	return h.pipeline.Process(context.Background(), h.sess, "http://a:8080", "engineering", link, h.cfg.PageURL("engineering", 1))
}

func TestProcessPersistsNewPosting(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	url := "https://jobs.example.com/jobs/1"
	h.sess.stubOK(url, validDetailHTML)

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, 1, h.store.insertCount())
	require.Equal(t, url, h.store.inserts[0].url)
	require.True(t, h.dedup.Contains(url))
	require.Equal(t, 1, h.metrics.Summary().SuccessfulScrapes)

	require.Len(t, h.publisher.events, 1)
	event := h.publisher.events[0]
	require.Equal(t, "run-1", event.RunID)
	require.Equal(t, "acme_jobs", event.Site)
	require.Equal(t, "engineering", event.Category)
	require.Equal(t, url, event.URL)
	require.Equal(t, "posting-1", event.PostingID)
	require.False(t, event.ScrapedAt.IsZero())
}

func TestProcessSkipsKnownURLWithoutFetching(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	url := "https://jobs.example.com/jobs/1"
	h.dedup.Seed([]string{url})

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.True(t, ok)

	// Idempotent success: no network call, no insert, no pause.
	require.Empty(t, h.sess.calls)
	require.Zero(t, h.store.insertCount())
	require.Empty(t, h.pause.pauses)
	require.Zero(t, h.metrics.Summary().SuccessfulScrapes)
}

func TestProcessAbsorbsFetchFailure(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	url := "https://jobs.example.com/jobs/1"
	h.sess.stubErr(url, errors.New("proxy reset"))

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.False(t, ok)

	s := h.metrics.Summary()
	require.Equal(t, 1, s.FailedScrapes)
	require.Equal(t, 1, s.ErrorsByKind[KindTransport])
	require.Zero(t, h.store.insertCount())
	require.False(t, h.dedup.Contains(url))
}

func TestProcessRecordsPageShapeKind(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	h.sess.stubOK("https://jobs.example.com/jobs/1", brokenPageHTML)

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, h.metrics.Summary().ErrorsByKind[KindPageShape])
}

func TestProcessAbsorbsExtractionFailure(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	h.sess.stubOK("https://jobs.example.com/jobs/1", validDetailHTML)
	h.extractor.fn = func(*htmldoc.Document, string) (Posting, error) {
		return nil, errors.New("xpath exploded")
	}

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.False(t, ok)

	s := h.metrics.Summary()
	require.Equal(t, 1, s.FailedScrapes)
	require.Equal(t, 1, s.ErrorsByKind[KindExtraction])
	require.Zero(t, h.store.insertCount())
}

func TestProcessTreatsEmptyRecordAsFailure(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	h.sess.stubOK("https://jobs.example.com/jobs/1", validDetailHTML)
	h.extractor.fn = func(*htmldoc.Document, string) (Posting, error) {
		return nil, nil
	}

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, h.metrics.Summary().FailedScrapes)
	require.Zero(t, h.store.insertCount())
}

func TestProcessInsertFailureIsFatal(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	url := "https://jobs.example.com/jobs/1"
	h.sess.stubOK(url, validDetailHTML)
	dbErr := errors.New("connection lost")
	h.store.insertErr = dbErr

	ok, err := h.process(t, "/jobs/1")
	require.False(t, ok)

	var fatal *FatalError
	require.ErrorAs(t, err, &fatal)
	require.ErrorIs(t, err, dbErr)

	// The URL stays out of the dedup set; the store is the system of record.
	require.False(t, h.dedup.Contains(url))
}

func TestProcessPublishFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	h := newPipelineHarness(t, testConfig())
	url := "https://jobs.example.com/jobs/1"
	h.sess.stubOK(url, validDetailHTML)
	h.publisher.err = errors.New("topic gone")

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, h.store.insertCount())
	require.Equal(t, 1, h.metrics.Summary().ErrorsByKind[KindPublish])
}

func TestProcessPausesAfterSuccess(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.WaitWindow = Window{Min: time.Second, Max: time.Second}
	h := newPipelineHarness(t, cfg)
	h.sess.stubOK("https://jobs.example.com/jobs/1", validDetailHTML)

	ok, err := h.process(t, "/jobs/1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []time.Duration{time.Second}, h.pause.pauses)
}
