// scraper/dates.go
package scraper

import (
	"regexp"
	"strings"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
)

// dateLayouts are tried in order; the first layout yielding a date at or
// after the minimum accepted year wins. Day-first layouts precede
// month-first ones, so "01/02/2025" reads as 1 February.
var dateLayouts = []string{
	// day-month-year
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	// month-day-year
	"1/2/2006",
	"1-2-2006",
	// ISO
	"2006-1-2",
	"2006/1/2",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	// named month
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 January, 2006",
	"2 Jan 2006",
	"2 Jan, 2006",
	"2-Jan-2006",
	"2-January-2006",
	"Monday, January 2, 2006",
	"Monday, 2 January 2006",
	"Mon, 2 Jan 2006",
	// two-digit year
	"2-1-06",
	"2/1/06",
	"2.1.06",
	"2-Jan-06",
	"2 Jan 06",
	// month and year only
	"January 2006",
	"January, 2006",
	"Jan 2006",
	"Jan-2006",
	"1/2006",
	"1-2006",
	"2006-01",
}

var (
	ongoingRegex      = regexp.MustCompile(`(?i)rolling|ongoing|continuous|open|throughout`)
	ordinalRegex      = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	septRegex         = regexp.MustCompile(`(?i)\bsept\b`)
	abbrevPeriodRegex = regexp.MustCompile(`\b([A-Za-z]{3,4})\.`)
	trailingPunct     = regexp.MustCompile(`[.,;:]+$`)
)

// DateNormalizer turns loosely formatted date text into YYYY-MM-DD.
type DateNormalizer struct {
	// MinYear rejects parsed dates from earlier years as numeric noise.
	MinYear int
}

// NewDateNormalizer returns a normalizer using minYear, or the default
// threshold when minYear is not positive.
func NewDateNormalizer(minYear int) *DateNormalizer {
	if minYear <= 0 {
		minYear = config.DefaultMinAcceptedYear
	}
	return &DateNormalizer{MinYear: minYear}
}

var defaultNormalizer = NewDateNormalizer(config.DefaultMinAcceptedYear)

// NormalizeDate normalizes raw with the default year threshold.
func NormalizeDate(raw string) string {
	return defaultNormalizer.Normalize(raw)
}

// Normalize returns a canonical date, models.RollingDeadline for ongoing
// calls, models.NotSpecified for empty input, or the cleaned input when
// nothing parses.
func (n *DateNormalizer) Normalize(raw string) string {
	cleaned := cleanText(raw)
	if cleaned == "" {
		return models.NotSpecified
	}
	if ongoingRegex.MatchString(cleaned) {
		return models.RollingDeadline
	}

	candidate := prepareDateText(cleaned)
	if d, ok := n.parse(candidate); ok {
		return d
	}

	// Cells like "31-03-2025 (5:00 PM)" carry a date inside other text.
	for _, embedded := range findDateSubstrings(candidate) {
		if d, ok := n.parse(prepareDateText(embedded)); ok {
			return d
		}
	}
	return cleaned
}

func (n *DateNormalizer) parse(s string) (string, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < n.MinYear {
			continue
		}
		return t.Format(models.CanonicalDateStyle), true
	}
	return "", false
}

func prepareDateText(s string) string {
	s = ordinalRegex.ReplaceAllString(s, "$1")
	s = septRegex.ReplaceAllString(s, "Sep")
	s = abbrevPeriodRegex.ReplaceAllString(s, "$1")
	s = trailingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
