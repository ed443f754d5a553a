// scraper/table_strategy.go
package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/fundscout/models"
)

const minTableCells = 5

var (
	titleHeaderRegex    = regexp.MustCompile(`(?i)scheme|title|name`)
	agencyHeaderRegex   = regexp.MustCompile(`(?i)agency`)
	fromHeaderRegex     = regexp.MustCompile(`(?i)from`)
	deadlineHeaderRegex = regexp.MustCompile(`(?i)\bto\b|deadline|last date|closing|due`)
	linkHeaderRegex     = regexp.MustCompile(`(?i)link`)
	urlLikeRegex        = regexp.MustCompile(`(?i)^(https?://|www\.|/[^\s]*$)`)
)

// columnRoles holds the cell index of each field, -1 when unknown.
type columnRoles struct {
	title, agency, fromDate, deadline, link int
}

var defaultColumns = columnRoles{title: 0, agency: 1, fromDate: 2, deadline: 3, link: 4}

// inferColumns maps header texts to roles. When title, agency, deadline or
// link cannot be found the fixed default order is used.
func inferColumns(headers []string) columnRoles {
	roles := columnRoles{
		title:    findHeader(headers, titleHeaderRegex),
		agency:   findHeader(headers, agencyHeaderRegex),
		fromDate: findHeader(headers, fromHeaderRegex),
		deadline: findHeader(headers, deadlineHeaderRegex),
		link:     findHeader(headers, linkHeaderRegex),
	}
	if roles.title < 0 || roles.agency < 0 || roles.deadline < 0 || roles.link < 0 {
		return defaultColumns
	}
	return roles
}

func findHeader(headers []string, re *regexp.Regexp) int {
	for i, h := range headers {
		if re.MatchString(h) {
			return i
		}
	}
	return -1
}

func headerTexts(row *goquery.Selection) []string {
	cells := row.Find("th")
	if cells.Length() == 0 {
		cells = row.Find("td")
	}
	headers := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		headers = append(headers, strings.ToLower(cleanText(c.Text())))
	})
	return headers
}

// extractTables reads every table with a header row and at least one data row.
// Tables that yield records are removed from doc so the text strategies do
// not read their rows a second time.
func (e *Extractor) extractTables(doc *goquery.Document, sourceURL string) []models.ProposalRecord {
	var out []models.ProposalRecord
	var consumed []*goquery.Selection

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}
		roles := inferColumns(headerTexts(rows.First()))
		before := len(out)

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < minTableCells {
				return
			}

			title := cellText(cells, roles.title)
			if title == "" {
				title = models.Untitled
			}
			agency := cellText(cells, roles.agency)
			if agency == "" {
				agency = models.UnknownAgency
			}
			link := cellLink(cells, roles.link, sourceURL)
			if link == "" {
				link = models.LinkNotAvailable
			}

			out = append(out, e.newRecord(
				title,
				agency,
				e.dates.Normalize(cellText(cells, roles.fromDate)),
				e.dates.Normalize(cellText(cells, roles.deadline)),
				link,
				sourceURL,
			))
		})

		if len(out) > before {
			consumed = append(consumed, table)
		}
	})

	for _, table := range consumed {
		table.Remove()
	}
	return out
}

func cellAt(cells *goquery.Selection, idx int) *goquery.Selection {
	if idx < 0 || idx >= cells.Length() {
		return nil
	}
	return cells.Eq(idx)
}

func cellText(cells *goquery.Selection, idx int) string {
	c := cellAt(cells, idx)
	if c == nil {
		return ""
	}
	return cleanText(c.Text())
}

// cellLink resolves the first anchor in the cell, or the cell text when it
// is a bare URL or a root-relative path.
func cellLink(cells *goquery.Selection, idx int, baseURL string) string {
	c := cellAt(cells, idx)
	if c == nil {
		return ""
	}
	if href, ok := c.Find("a").First().Attr("href"); ok {
		return ResolveLink(href, baseURL)
	}
	text := cleanText(c.Text())
	if urlLikeRegex.MatchString(text) {
		if strings.HasPrefix(strings.ToLower(text), "www.") {
			text = "https://" + text
		}
		return ResolveLink(text, baseURL)
	}
	return ""
}
