// scraper/date_search.go
package scraper

import (
	"regexp"
	"sort"

	"github.com/gewnthar/fundscout/models"
)

const monthNamePattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

const numericDatePattern = `\d{1,2}[/\-.]\d{1,2}[/\-.](?:\d{4}|\d{2})`

var (
	labeledDateRegex = regexp.MustCompile(`(?i)(?:deadline|due date|due|last date|closing date|closes on|submission date|submission|apply by)\s*(?:is|on|by)?\s*[:\-–]?\s*(` +
		numericDatePattern + `|\d{4}-\d{1,2}-\d{1,2}|\d{1,2}(?:st|nd|rd|th)?\s+` + monthNamePattern + `,?\s+\d{4}|` +
		monthNamePattern + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4})`)
	isoDateRegex      = regexp.MustCompile(`\b\d{4}-\d{1,2}-\d{1,2}\b`)
	numericDateRegex  = regexp.MustCompile(`\b` + numericDatePattern + `\b`)
	dayMonthNameRegex = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthNamePattern + `,?\s+\d{4}\b`)
	monthNameDayRegex = regexp.MustCompile(`(?i)\b` + monthNamePattern + `\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b`)
)

// findDateSubstrings returns date-like substrings of text, labeled dates
// first, each distinct substring once.
func findDateSubstrings(text string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, m := range labeledDateRegex.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, re := range []*regexp.Regexp{isoDateRegex, numericDateRegex, dayMonthNameRegex, monthNameDayRegex} {
		for _, m := range re.FindAllString(text, -1) {
			add(m)
		}
	}
	return out
}

// collectDates normalizes every date-like substring of window and returns
// the distinct canonical dates in ascending order.
func (n *DateNormalizer) collectDates(window string) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, raw := range findDateSubstrings(window) {
		d, ok := n.parse(prepareDateText(cleanText(raw)))
		if !ok || seen[d] {
			continue
		}
		seen[d] = true
		dates = append(dates, d)
	}
	// YYYY-MM-DD sorts lexically in date order.
	sort.Strings(dates)
	return dates
}

// assignDates applies the start/end rule: start is the earliest date when at
// least two distinct dates exist, end is the latest when at least one exists.
func assignDates(dates []string) (start, end string) {
	start, end = models.NotSpecified, models.NotSpecified
	if len(dates) >= 1 {
		end = dates[len(dates)-1]
	}
	if len(dates) >= 2 {
		start = dates[0]
	}
	return start, end
}
