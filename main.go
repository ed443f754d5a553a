// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/logger"
	"github.com/spf13/cobra"
)

const fallbackErrorLog = "error.log"

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	debug      bool

	cfg *config.Config
	log logger.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "fundscout",
		Short:         "Collects research funding calls from agency pages",
		Long:          `fundscout fetches funding-agency announcement pages, extracts open calls for proposals and keeps them in a SQL table served over a small read API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default is config/config.yaml or backend/config/config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newScrapeCmd(a),
		newServeCmd(a),
		newResetTableCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *app) init() error {
	path, err := resolveConfigPath(a.configPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if a.debug {
		cfg.Debug = true
	}
	log, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("error creating logger: %w", err)
	}
	a.cfg = cfg
	a.log = log
	log.Debug("Configuration loaded",
		logger.String("config", path),
		logger.String("driver", cfg.Database.Driver),
		logger.Int("sources", len(cfg.Sources)),
	)
	return nil
}

// resolveConfigPath returns the explicit path, or the first default location
// that exists. With no file anywhere the config comes from env and defaults.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, candidate := range []string{"config/config.yaml", "backend/config/config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// writeErrorTrace appends a timestamped line for a fatal error.
func writeErrorTrace(path string, cause error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s %v\n", time.Now().UTC().Format(time.RFC3339), cause)
	return err
}

func main() {
	a := &app{}
	err := newRootCmd(a).ExecuteContext(context.Background())
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if a.log != nil {
		a.log.Error("Command failed", logger.Error(err))
	}

	tracePath := fallbackErrorLog
	if a.cfg != nil && a.cfg.Report.ErrorLog != "" {
		tracePath = a.cfg.Report.ErrorLog
	}
	if errors.Is(err, errAborted) {
		os.Exit(1)
	}
	if traceErr := writeErrorTrace(tracePath, err); traceErr != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", tracePath, traceErr)
	}
	os.Exit(1)
}
