// cmd_scrape.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gewnthar/fundscout/database"
	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/scraper"
	"github.com/gewnthar/fundscout/services"
	"github.com/spf13/cobra"
)

func newScrapeCmd(a *app) *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Run one ingest pass over every configured source",
		Long: `Fetch every configured agency page, extract funding calls, store the
ones not seen before and print a summary of the run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if csvPath != "" {
				a.cfg.Report.CSVPath = csvPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := database.Open(ctx, a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			store := database.NewProposalStore(db)

			notifier := services.NewRunNotifier(a.cfg.Redis, a.log)
			defer notifier.Close()

			ingest := services.NewIngestService(a.cfg, scraper.NewContentClient(a.cfg.ContentSource), store, a.log,
				services.WithNotifier(notifier),
				services.WithMetrics(services.NewMetrics()),
			)

			summary, err := ingest.RunAndRelease(ctx, store)
			if summary != nil {
				services.RenderSummary(cmd.OutOrStdout(), summary)
			}
			if err != nil {
				return fmt.Errorf("ingest run failed: %w", err)
			}

			if a.cfg.Report.CSVPath != "" {
				if err := services.WriteCSVFile(a.cfg.Report.CSVPath, summary.NewRecords); err != nil {
					return err
				}
				a.log.Info("Run report written", logger.String("path", a.cfg.Report.CSVPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "write the run's new records to this CSV file")
	return cmd
}
