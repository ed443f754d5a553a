// models/run.go
package models

import "time"

// SourceResult records what one source contributed to a run.
type SourceResult struct {
	URL        string        `json:"url"`
	Agency     string        `json:"agency"`
	Attempts   int           `json:"attempts"`
	Candidates int           `json:"candidates"`
	New        int           `json:"new"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Failed reports whether the source was skipped for this run.
func (r SourceResult) Failed() bool {
	return r.Error != ""
}

// RunSummary is produced at the end of every ingest run.
type RunSummary struct {
	RunID      string           `json:"run_id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Sources    []SourceResult   `json:"sources"`
	Candidates int              `json:"candidates"`
	Inserted   int              `json:"inserted"`
	NewRecords []ProposalRecord `json:"new_records"`
}

// FailedSources counts sources that contributed nothing because of a fetch error.
func (s RunSummary) FailedSources() int {
	n := 0
	for _, r := range s.Sources {
		if r.Failed() {
			n++
		}
	}
	return n
}
