package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
	"github.com/gewnthar/fundscout/scraper"
)

type fetchResult struct {
	content scraper.Content
	err     error
}

// fakeFetcher replays scripted results per URL; the last one repeats.
type fakeFetcher struct {
	mu       sync.Mutex
	results  map[string][]fetchResult
	calls    map[string]int
	credsErr error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{results: map[string][]fetchResult{}, calls: map[string]int{}}
}

func (f *fakeFetcher) script(url string, results ...fetchResult) {
	f.results[url] = results
}

func (f *fakeFetcher) Fetch(_ context.Context, url, _ string) (scraper.Content, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := f.calls[url]
	f.calls[url]++
	script := f.results[url]
	if len(script) == 0 {
		return scraper.Content{}, errors.New("no scripted result")
	}
	r := script[min(n, len(script)-1)]
	return r.content, r.err
}

func (f *fakeFetcher) ValidateCredentials() error {
	return f.credsErr
}

type fakeStore struct {
	mu        sync.Mutex
	keys      []string
	upserted  []models.ProposalRecord
	upsertErr error
	schemaErr error
	upserts   int
}

func (s *fakeStore) EnsureSchema(context.Context) error {
	return s.schemaErr
}

func (s *fakeStore) LoadExistingKeys(context.Context) (*models.KeyedSet[string], error) {
	return models.NewKeySet(s.keys...), nil
}

func (s *fakeStore) UpsertAll(_ context.Context, records []models.ProposalRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upserts++
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	s.upserted = append(s.upserted, records...)
	return len(records), nil
}

type fakeCloser struct {
	closed int
}

func (c *fakeCloser) Close() error {
	c.closed++
	return nil
}

type fakeNotifier struct {
	summaries []*models.RunSummary
	err       error
}

func (n *fakeNotifier) NotifyRun(_ context.Context, summary *models.RunSummary) error {
	n.summaries = append(n.summaries, summary)
	return n.err
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
	return nil
}

func testConfig(sources ...config.SourceConfig) *config.Config {
	return &config.Config{
		Sources:  sources,
		Agencies: config.DefaultAgencies(),
		Pacing: config.PacingConfig{
			BatchSize:     3,
			RetryAttempts: 3,
			FetchDelay:    2 * time.Second,
			BatchDelay:    10 * time.Second,
			RetryDelay:    5 * time.Second,
		},
		Extraction: config.ExtractionConfig{MinAcceptedYear: 2024, ContextLines: 3},
	}
}

func okResult(body, format string) fetchResult {
	return fetchResult{content: scraper.Content{Body: body, Format: format}}
}

func failResult(err error) fetchResult {
	return fetchResult{err: err}
}
