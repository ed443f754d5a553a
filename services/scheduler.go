// services/scheduler.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gewnthar/fundscout/logger"
	"github.com/robfig/cron/v3"
)

// Runner is the part of the ingest service the scheduler drives.
type Runner interface {
	Trigger(ctx context.Context) error
}

// Scheduler fires ingest runs on a standard 5-field cron expression.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	log    logger.Logger
	ctx    context.Context
}

// NewScheduler parses the cron expression and registers the run. Runs started by the
// scheduler live as long as ctx.
func NewScheduler(ctx context.Context, spec string, runner Runner, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	s := &Scheduler{cron: c, runner: runner, log: log, ctx: ctx}
	if _, err := c.AddFunc(spec, s.fire); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) fire() {
	err := s.runner.Trigger(s.ctx)
	switch {
	case err == nil:
		s.log.Info("Scheduled ingest run started")
	case errors.Is(err, ErrRunInProgress):
		s.log.Warn("Scheduled ingest run skipped, previous run still active")
	default:
		s.log.Error("Scheduled ingest run could not start", logger.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Cron scheduler started", logger.Int("entries", len(s.cron.Entries())))
}

// Stop stops firing and waits for the cron goroutine to finish its current job hand-off.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Cron scheduler stopped")
}
