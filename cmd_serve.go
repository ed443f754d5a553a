// cmd_serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gewnthar/fundscout/database"
	"github.com/gewnthar/fundscout/handlers"
	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/scraper"
	"github.com/gewnthar/fundscout/services"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the proposals API",
		Long: `Serve stored proposals over HTTP together with health and metrics
endpoints. When a schedule is configured ingest runs fire on it, and with an
admin token set runs can be started through POST /api/admin/ingest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	cfg := a.cfg
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.Database, a.log)
	if err != nil {
		return err
	}
	// The pool is shared by the API and every run, and closed once on exit.
	defer db.Close()
	store := database.NewProposalStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	metrics := services.NewMetrics()
	notifier := services.NewRunNotifier(cfg.Redis, a.log)
	defer notifier.Close()

	deps := handlers.RouterDeps{
		Proposals: handlers.NewProposalHandler(services.NewProposalService(store), a.log),
		Health:    handlers.HealthHandler(store, a.log),
		Metrics:   metrics.Handler(),
		API:       cfg.API,
		Log:       a.log,
	}

	// Runs need the content API key; without it serve is read-only.
	var ingest *services.IngestService
	var sched *services.Scheduler
	defer func() {
		if sched != nil {
			sched.Stop()
		}
		if ingest != nil {
			ingest.Wait()
		}
	}()
	if err := cfg.Validate(); err != nil {
		a.log.Warn("Ingest runs disabled", logger.Error(err))
	} else {
		ingest = services.NewIngestService(cfg, scraper.NewContentClient(cfg.ContentSource), store, a.log,
			services.WithNotifier(notifier),
			services.WithMetrics(metrics),
		)
		if cfg.Server.AdminToken != "" {
			deps.Admin = handlers.NewAdminHandler(ctx, ingest, cfg.Server.AdminToken, a.log)
		}
		if cfg.Schedule.Cron != "" {
			s, err := services.NewScheduler(ctx, cfg.Schedule.Cron, ingest, a.log)
			if err != nil {
				return err
			}
			sched = s
			sched.Start()
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting",
			logger.String("addr", srv.Addr),
			logger.Strings("cors_origins", cfg.API.CORSOrigins),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error starting server: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	a.log.Info("Server stopped")
	return nil
}
