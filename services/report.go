// services/report.go
package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gewnthar/fundscout/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jszwec/csvutil"
)

// WriteCSV encodes rows (a slice of tagged structs) with a header line.
func WriteCSV(w io.Writer, rows any) error {
	cw := csv.NewWriter(w)
	if err := csvutil.NewEncoder(cw).Encode(rows); err != nil {
		return fmt.Errorf("failed to encode csv: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes rows to path, creating parent directories.
func WriteCSVFile(path string, rows any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return WriteCSV(f, rows)
}

// RenderSummary prints the per-source results and the new records of a run.
func RenderSummary(w io.Writer, summary *models.RunSummary) {
	sources := table.NewWriter()
	sources.SetOutputMirror(w)
	sources.SetStyle(table.StyleLight)
	sources.SetTitle("Run " + summary.RunID)
	sources.AppendHeader(table.Row{"Source", "Agency", "Attempts", "Candidates", "New", "Error"})
	for _, r := range summary.Sources {
		sources.AppendRow(table.Row{r.URL, r.Agency, r.Attempts, r.Candidates, r.New, r.Error})
	}
	sources.AppendFooter(table.Row{"", "", "", summary.Candidates, len(summary.NewRecords), fmt.Sprintf("%d inserted", summary.Inserted)})
	sources.Render()

	if len(summary.NewRecords) == 0 {
		return
	}

	records := table.NewWriter()
	records.SetOutputMirror(w)
	records.SetStyle(table.StyleLight)
	records.AppendHeader(table.Row{"Deadline", "Title", "Agency", "From", "Link"})
	for _, p := range summary.NewRecords {
		records.AppendRow(table.Row{p.EndDate, p.Title, p.Agency, p.StartDate, p.Link})
	}
	records.Render()
}
