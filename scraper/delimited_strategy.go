// scraper/delimited_strategy.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
)

const minDelimitedColumns = 4

var separatorCellRegex = regexp.MustCompile(`^:?-{2,}:?$`)

// extractDelimited reads pipe-delimited rows such as markdown tables.
func (e *Extractor) extractDelimited(text string, src config.SourceConfig, agency string) []models.ProposalRecord {
	set := models.NewRecordSet()

	for _, line := range strings.Split(text, "\n") {
		cols := splitDelimitedRow(line)
		if len(cols) < minDelimitedColumns || isSeparatorRow(cols) {
			continue
		}

		var title, link string
		for _, c := range cols {
			if title == "" {
				if t := lineTitle(c); IsPlausibleProposalTitle(t) {
					title = t
				}
			}
			if link == "" {
				if urls := lineURLs(c); len(urls) > 0 {
					link = ResolveLink(urls[0], src.URL)
				}
			}
		}
		if title == "" || link == "" || skipLink(link, src.URL, src.AllowSameHost) {
			continue
		}

		start, end := assignDates(e.dates.collectDates(strings.Join(cols, " ")))
		set.Add(e.newRecord(title, agency, start, end, link, src.URL))
	}

	return set.Values()
}

// pipeCells splits a row on "|" after dropping the optional edge pipes.
// Lines without a pipe yield nil.
func pipeCells(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "|") {
		return nil
	}
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// isDelimitedRow reports whether line has enough cells for the delimited
// strategy. Shorter pipe rows are left to prose pairing.
func isDelimitedRow(line string) bool {
	return len(pipeCells(line)) >= minDelimitedColumns
}

// splitDelimitedRow splits "| a | b | c | d |" into trimmed cells. Rows with
// fewer than minDelimitedColumns cells yield nil.
func splitDelimitedRow(line string) []string {
	cells := pipeCells(line)
	if len(cells) < minDelimitedColumns {
		return nil
	}
	return cells
}

func isSeparatorRow(cols []string) bool {
	for _, c := range cols {
		if c != "" && !separatorCellRegex.MatchString(c) {
			return false
		}
	}
	return true
}
