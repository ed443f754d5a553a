// scraper/extractor.go
package scraper

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
)

// Content formats understood by the extractor.
const (
	FormatMarkup = "markup"
	FormatProse  = "prose"
)

// Content is the raw payload of one source page.
type Content struct {
	Body   string
	Format string
}

// IsMarkup reports whether the structured-table strategy applies.
func (c Content) IsMarkup() bool {
	return c.Format == FormatMarkup || looksLikeMarkup(c.Body)
}

// Extractor turns page content into candidate proposal records.
type Extractor struct {
	dates        *DateNormalizer
	agencies     *AgencyTable
	contextLines int
	now          func() time.Time
}

// NewExtractor builds an extractor. contextLines is the number of lines on
// each side of a title searched for links and dates.
func NewExtractor(dates *DateNormalizer, agencies *AgencyTable, contextLines int) *Extractor {
	if dates == nil {
		dates = NewDateNormalizer(config.DefaultMinAcceptedYear)
	}
	if agencies == nil {
		agencies = NewAgencyTable(config.DefaultAgencies())
	}
	if contextLines <= 0 {
		contextLines = 3
	}
	return &Extractor{
		dates:        dates,
		agencies:     agencies,
		contextLines: contextLines,
		now:          time.Now,
	}
}

// Extract runs every strategy over content from sourceURL.
func (e *Extractor) Extract(content Content, sourceURL string) []models.ProposalRecord {
	return e.ExtractSource(content, config.SourceConfig{URL: sourceURL, Format: content.Format})
}

// ExtractSource runs the table, prose-pairing and delimited-text strategies
// in that order and merges them by identity key. Earlier strategies win.
func (e *Extractor) ExtractSource(content Content, src config.SourceConfig) []models.ProposalRecord {
	set := models.NewRecordSet()
	agency := e.agencies.Lookup(src.URL)
	text := content.Body

	if content.IsMarkup() {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(content.Body))
		if err == nil {
			set.AddAll(e.extractTables(doc, src.URL))
			text = renderMarkup(doc)
		}
	}

	set.AddAll(e.extractProse(text, src, agency))
	set.AddAll(e.extractDelimited(text, src, agency))
	return set.Values()
}

// Agency exposes the source-to-agency lookup used for prose records.
func (e *Extractor) Agency(sourceURL string) string {
	return e.agencies.Lookup(sourceURL)
}

func (e *Extractor) newRecord(title, agency, start, end, link, sourceURL string) models.ProposalRecord {
	return models.ProposalRecord{
		Title:       strings.TrimSpace(title),
		Agency:      agency,
		StartDate:   start,
		EndDate:     end,
		Link:        strings.TrimSpace(link),
		ExtractedAt: e.now().UTC(),
		Source:      sourceURL,
	}
}
