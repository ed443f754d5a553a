// services/ingest_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/models"
	"github.com/gewnthar/fundscout/scraper"
	"github.com/google/uuid"
)

// ErrRunInProgress is returned when a run is requested while another is active.
var ErrRunInProgress = errors.New("an ingest run is already in progress")

// ProposalRepository is the persistence gateway as seen by a run.
type ProposalRepository interface {
	EnsureSchema(ctx context.Context) error
	LoadExistingKeys(ctx context.Context) (*models.KeyedSet[string], error)
	UpsertAll(ctx context.Context, records []models.ProposalRecord) (int, error)
}

// IngestService runs fetch, extract, diff and persist over the configured
// sources. Only one run executes at a time.
type IngestService struct {
	fetcher   scraper.Fetcher
	store     ProposalRepository
	extractor *scraper.Extractor
	sources   []config.SourceConfig
	pacing    config.PacingConfig
	debugDir  string
	notifier  RunNotifier
	metrics   *Metrics
	log       logger.Logger

	sleep func(context.Context, time.Duration) error
	now   func() time.Time

	running sync.Mutex
	wg      sync.WaitGroup
}

// IngestOption customizes an IngestService.
type IngestOption func(*IngestService)

func WithNotifier(n RunNotifier) IngestOption {
	return func(s *IngestService) { s.notifier = n }
}

func WithMetrics(m *Metrics) IngestOption {
	return func(s *IngestService) { s.metrics = m }
}

func NewIngestService(cfg *config.Config, fetcher scraper.Fetcher, store ProposalRepository, log logger.Logger, opts ...IngestOption) *IngestService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &IngestService{
		fetcher: fetcher,
		store:   store,
		extractor: scraper.NewExtractor(
			scraper.NewDateNormalizer(cfg.Extraction.MinAcceptedYear),
			scraper.NewAgencyTable(cfg.Agencies),
			cfg.Extraction.ContextLines,
		),
		sources:  cfg.Sources,
		pacing:   cfg.Pacing,
		debugDir: cfg.Report.DebugDir,
		log:      log,
		sleep:    sleepContext,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one ingest run and returns its summary. Source fetch failures
// are logged and skipped. Credential rejection, store errors and context
// cancellation end the run with an error.
func (s *IngestService) Run(ctx context.Context) (*models.RunSummary, error) {
	if !s.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.running.Unlock()

	started := s.now()
	summary, err := s.run(ctx, started)
	s.metrics.ObserveRun(summary, started, err)
	return summary, err
}

// RunAndRelease is Run followed by closing the store. The closer is called
// exactly once on every path, as the last step.
func (s *IngestService) RunAndRelease(ctx context.Context, closer io.Closer) (summary *models.RunSummary, err error) {
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			s.log.Error("Failed to release store", logger.Error(closeErr))
			if err == nil {
				err = fmt.Errorf("failed to release store: %w", closeErr)
			}
		}
	}()
	return s.Run(ctx)
}

// Trigger starts a run in the background. It fails fast with
// ErrRunInProgress instead of queueing behind an active run.
func (s *IngestService) Trigger(ctx context.Context) error {
	if !s.running.TryLock() {
		return ErrRunInProgress
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()

		started := s.now()
		summary, err := s.run(ctx, started)
		s.metrics.ObserveRun(summary, started, err)
		if err != nil {
			s.log.Error("Background ingest run failed", logger.Error(err))
		}
	}()
	return nil
}

// Wait blocks until background runs started by Trigger have finished.
func (s *IngestService) Wait() {
	s.wg.Wait()
}

func (s *IngestService) run(ctx context.Context, started time.Time) (*models.RunSummary, error) {
	runID := uuid.NewString()
	log := s.log.With(logger.String("run_id", runID))
	log.Info("Ingest run started", logger.Int("sources", len(s.sources)))

	if err := s.fetcher.ValidateCredentials(); err != nil {
		return nil, fmt.Errorf("credential check failed: %w", err)
	}
	if err := s.store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	existing, err := s.store.LoadExistingKeys(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.RunSummary{RunID: runID, StartedAt: started}
	fresh := models.NewRecordSet()

	batchSize := max(1, s.pacing.BatchSize)
	for b := 0; b < len(s.sources); b += batchSize {
		if b > 0 {
			if err := s.sleep(ctx, s.pacing.BatchDelay); err != nil {
				return nil, err
			}
		}

		batch := s.sources[b:min(b+batchSize, len(s.sources))]
		for i, src := range batch {
			if i > 0 {
				if err := s.sleep(ctx, s.pacing.FetchDelay); err != nil {
					return nil, err
				}
			}

			result, candidates, err := s.processSource(ctx, log, src)
			if err != nil {
				return nil, err
			}

			result.New = fresh.AddAll(Diff(candidates, existing))
			summary.Candidates += result.Candidates
			summary.Sources = append(summary.Sources, result)
		}
	}

	records := fresh.Values()
	SortByEndDate(records)

	inserted, err := s.store.UpsertAll(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("persisting proposals failed after %d inserts: %w", inserted, err)
	}

	summary.Inserted = inserted
	summary.NewRecords = records
	summary.FinishedAt = s.now()

	log.Info("Ingest run finished",
		logger.Int("candidates", summary.Candidates),
		logger.Int("new", len(records)),
		logger.Int("inserted", inserted),
		logger.Int("failed_sources", summary.FailedSources()),
		logger.Duration("duration", summary.FinishedAt.Sub(started)),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyRun(ctx, summary); err != nil {
			log.Warn("Run notification failed", logger.Error(err))
		}
	}
	return summary, nil
}

// processSource fetches and extracts one source. A returned error is fatal
// for the run; ordinary fetch failures are recorded in the result instead.
func (s *IngestService) processSource(ctx context.Context, log logger.Logger, src config.SourceConfig) (models.SourceResult, []models.ProposalRecord, error) {
	started := s.now()
	agency := s.extractor.Agency(src.URL)
	result := models.SourceResult{URL: src.URL, Agency: agency}
	srcLog := log.With(logger.String("source", src.URL), logger.String("agency", agency))

	var content scraper.Content
	policy := retryPolicy{
		attempts:    s.pacing.RetryAttempts,
		delay:       s.pacing.RetryDelay,
		isRetryable: func(err error) bool { return !errors.Is(err, scraper.ErrUnauthorized) },
		sleep:       s.sleep,
	}
	attempts, err := policy.do(ctx, func(attempt int) error {
		c, err := s.fetcher.Fetch(ctx, src.URL, src.Format)
		if err != nil {
			srcLog.Warn("Fetch attempt failed", logger.Int("attempt", attempt), logger.Error(err))
			return err
		}
		content = c
		return nil
	})
	result.Attempts = attempts

	if err != nil {
		if errors.Is(err, scraper.ErrUnauthorized) {
			return result, nil, fmt.Errorf("content source authentication failed for %s: %w", src.URL, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, nil, ctxErr
		}
		srcLog.Error("Skipping source for this run", logger.Int("attempts", attempts), logger.Error(err))
		s.metrics.ObserveSourceFailure(agency)
		result.Error = err.Error()
		result.Duration = s.now().Sub(started)
		return result, nil, nil
	}

	if path, dumpErr := scraper.DumpContent(s.debugDir, src.URL, content); dumpErr != nil {
		srcLog.Warn("Failed to write raw content dump", logger.Error(dumpErr))
	} else if path != "" {
		srcLog.Debug("Raw content written", logger.String("path", path))
	}

	candidates := s.extractor.ExtractSource(content, src)
	result.Candidates = len(candidates)
	result.Duration = s.now().Sub(started)
	srcLog.Info("Source processed",
		logger.Int("attempts", attempts),
		logger.Bool("allow_same_host", src.AllowSameHost),
		logger.Int("candidates", len(candidates)),
	)
	return result, candidates, nil
}
