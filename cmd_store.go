// cmd_store.go
package main

import (
	"errors"

	"github.com/gewnthar/fundscout/database"
	"github.com/gewnthar/fundscout/logger"
	"github.com/gewnthar/fundscout/services"
	"github.com/spf13/cobra"
)

// errAborted ends a command the user did not confirm. It is not traced.
var errAborted = errors.New("aborted: pass --yes to confirm")

func newResetTableCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset-table",
		Short: "Drop and recreate the proposals table",
		Long:  `Drop the proposals table with every stored record and recreate it empty.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errAborted
			}
			db, err := database.Open(cmd.Context(), a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			store := database.NewProposalStore(db)
			defer store.Close()

			if err := store.ResetTable(cmd.Context()); err != nil {
				return err
			}
			a.log.Info("Proposals table reset")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm dropping every stored proposal")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every stored proposal as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.Open(cmd.Context(), a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			store := database.NewProposalStore(db)
			defer store.Close()

			proposals, err := services.NewProposalService(store).ListProposals(cmd.Context())
			if err != nil {
				return err
			}

			if out == "" {
				return services.WriteCSV(cmd.OutOrStdout(), proposals)
			}
			if err := services.WriteCSVFile(out, proposals); err != nil {
				return err
			}
			a.log.Info("Proposals exported", logger.String("path", out), logger.Int("count", len(proposals)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
