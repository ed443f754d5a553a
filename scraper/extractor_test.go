package scraper

import (
	"testing"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractor() *Extractor {
	e := NewExtractor(nil, nil, 0)
	e.now = func() time.Time { return time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC) }
	return e
}

func keysOf(records []models.ProposalRecord) []string {
	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.Key()
	}
	return keys
}

const schemeTable = `<table>
<tr><th>Scheme Name</th><th>Agency</th><th>From</th><th>To</th><th>Link</th></tr>
<tr><td>AI Research Grant</td><td>XYZ Foundation</td><td>01-01-2025</td><td>31-03-2025</td><td>/apply</td></tr>
</table>`

func TestExtract_StructuredTable(t *testing.T) {
	e := newTestExtractor()

	records := e.Extract(Content{Body: schemeTable, Format: FormatMarkup}, "https://example.org")

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "AI Research Grant", r.Title)
	assert.Equal(t, "XYZ Foundation", r.Agency)
	assert.Equal(t, "2025-01-01", r.StartDate)
	assert.Equal(t, "2025-03-31", r.EndDate)
	assert.Equal(t, "https://example.org/apply", r.Link)
	assert.Equal(t, "https://example.org", r.Source)
	assert.Equal(t, time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC), r.ExtractedAt)
}

func TestExtract_TableDefaults(t *testing.T) {
	e := newTestExtractor()
	body := `<table>
<tr><td>Col A</td><td>Col B</td><td>Col C</td><td>Col D</td><td>Col E</td></tr>
<tr><td></td><td></td><td>Rolling</td><td>15/06/2025</td><td>see notice</td></tr>
<tr><td>Too</td><td>short</td></tr>
</table>`

	records := e.Extract(Content{Body: body, Format: FormatMarkup}, "https://example.org")

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, models.Untitled, r.Title)
	assert.Equal(t, models.UnknownAgency, r.Agency)
	assert.Equal(t, models.RollingDeadline, r.StartDate)
	assert.Equal(t, "2025-06-15", r.EndDate)
	assert.Equal(t, models.LinkNotAvailable, r.Link)
}

func TestInferColumns(t *testing.T) {
	roles := inferColumns([]string{"s.no", "link", "title of the call", "agency", "last date"})
	assert.Equal(t, columnRoles{title: 2, agency: 3, fromDate: -1, deadline: 4, link: 1}, roles)

	assert.Equal(t, defaultColumns, inferColumns([]string{"a", "b", "c", "d", "e"}))
}

const proseAnnouncement = "Check out the new Research Fellowship Call for young scientists. Deadline: 15/06/2025. Apply here: https://agency.example/apply"

func TestExtract_ProsePairing(t *testing.T) {
	e := newTestExtractor()
	src := config.SourceConfig{URL: "https://agency.example/news", Format: FormatProse, AllowSameHost: true}

	records := e.ExtractSource(Content{Body: proseAnnouncement, Format: FormatProse}, src)

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "2025-06-15", r.EndDate)
	assert.Equal(t, models.NotSpecified, r.StartDate)
	assert.Equal(t, "https://agency.example/apply", r.Link)
	assert.Contains(t, r.Title, "Research Fellowship Call")
	assert.Equal(t, models.UnknownAgency, r.Agency)
}

func TestExtract_SameHostLinkNeverEmitted(t *testing.T) {
	e := newTestExtractor()

	records := e.Extract(Content{Body: proseAnnouncement, Format: FormatProse}, "https://agency.example/news")
	assert.Empty(t, records)

	body := "[Research Grant Call 2025](https://agency.example/calls/2025)\n[Research Grant Call 2026](https://funding.example/2026)"
	records = e.Extract(Content{Body: body, Format: FormatProse}, "https://agency.example/news")
	require.Len(t, records, 1)
	assert.Equal(t, "https://funding.example/2026", records[0].Link)
}

func TestExtract_NeighbouringLinkAndDates(t *testing.T) {
	e := newTestExtractor()
	body := "Fellowship Programme 2025 for young researchers\nOpens: 01/04/2025\nCloses: 30/06/2025\nDetails: https://grants.example/fellowship"

	records := e.Extract(Content{Body: body, Format: FormatProse}, "https://agency.example/news")

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Fellowship Programme 2025 for young researchers", r.Title)
	assert.Equal(t, "https://grants.example/fellowship", r.Link)
	assert.Equal(t, "2025-04-01", r.StartDate)
	assert.Equal(t, "2025-06-30", r.EndDate)
}

func TestExtract_MarkdownLinkNotPairedTwice(t *testing.T) {
	e := newTestExtractor()
	body := "- [Call for Proposals: Quantum Research 2025](https://funding.example/quantum) Deadline: 30/09/2025\n" +
		"- [Guidelines for research proposals](https://funding.example/guide.pdf)"

	records := e.Extract(Content{Body: body, Format: FormatProse}, "https://agency.example/news")

	require.Len(t, records, 1)
	assert.Equal(t, "Call for Proposals: Quantum Research 2025", records[0].Title)
	assert.Equal(t, "https://funding.example/quantum", records[0].Link)
	assert.Equal(t, "2025-09-30", records[0].EndDate)
}

func TestExtract_MarkupAnchors(t *testing.T) {
	e := newTestExtractor()
	body := `<html><body><script>var call = "grant";</script>
<ul><li><a href="https://serb.example/call">SERB Core Research Grant call 2025</a> Last date: 31/07/2025</li>
<li><a href="/about">About the research council</a></li></ul></body></html>`

	records := e.Extract(Content{Body: body, Format: FormatMarkup}, "https://serbonline.in/")

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "SERB Core Research Grant call 2025", r.Title)
	assert.Equal(t, "SERB", r.Agency)
	assert.Equal(t, "https://serb.example/call", r.Link)
	assert.Equal(t, "2025-07-31", r.EndDate)
}

func TestExtract_DelimitedRows(t *testing.T) {
	e := newTestExtractor()
	body := "| Scheme | Agency | Deadline | Link |\n" +
		"|---|---|---|---|\n" +
		"| Startup Grant Challenge 2025 | BIRAC | 15-07-2025 | https://birac.example/apply |\n" +
		"| Too | few | cells |"

	records := e.Extract(Content{Body: body, Format: FormatProse}, "https://birac.nic.in/calls")

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Startup Grant Challenge 2025", r.Title)
	assert.Equal(t, "BIRAC", r.Agency)
	assert.Equal(t, "https://birac.example/apply", r.Link)
	assert.Equal(t, "2025-07-15", r.EndDate)
}

func TestExtract_ShortPipeRowPairsLikeProse(t *testing.T) {
	e := newTestExtractor()
	row := "| Research Grant Call 2025 | 30/06/2025 | https://funding.example/grant |"
	plain := "Research Grant Call 2025 30/06/2025 https://funding.example/grant"

	fromRow := e.Extract(Content{Body: row, Format: FormatProse}, "https://dst.gov.in/calls")
	fromPlain := e.Extract(Content{Body: plain, Format: FormatProse}, "https://dst.gov.in/calls")

	require.Len(t, fromRow, 1)
	require.Len(t, fromPlain, 1)
	assert.Equal(t, "Research Grant Call 2025", fromRow[0].Title)
	assert.Equal(t, "https://funding.example/grant", fromRow[0].Link)
	assert.Equal(t, "2025-06-30", fromRow[0].EndDate)
	assert.Equal(t, models.NotSpecified, fromRow[0].StartDate)
	assert.Equal(t, fromPlain[0].Link, fromRow[0].Link)
	assert.Equal(t, fromPlain[0].EndDate, fromRow[0].EndDate)
}

func TestExtract_IsIdempotent(t *testing.T) {
	e := newTestExtractor()
	body := schemeTable + `<p><a href="https://funding.example/quantum">Quantum research funding call</a></p>`
	content := Content{Body: body, Format: FormatMarkup}

	first := keysOf(e.Extract(content, "https://example.org"))
	second := keysOf(e.Extract(content, "https://example.org"))

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestContent_IsMarkup(t *testing.T) {
	assert.True(t, Content{Body: "plain", Format: FormatMarkup}.IsMarkup())
	assert.True(t, Content{Body: "<div>hello</div>", Format: FormatProse}.IsMarkup())
	assert.False(t, Content{Body: "# Calls\n\n- one", Format: FormatProse}.IsMarkup())
}

func TestSplitDelimitedRow(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, splitDelimitedRow("| a | b | c | d |"))
	assert.Nil(t, splitDelimitedRow("a | b"))
	assert.Nil(t, splitDelimitedRow("| a | b | c |"))
	assert.Equal(t, []string{"a", "b", "c"}, pipeCells("| a | b | c |"))
	assert.Nil(t, pipeCells("no pipes here"))
	assert.True(t, isSeparatorRow([]string{"---", ":---:", ""}))
	assert.False(t, isSeparatorRow([]string{"---", "x"}))
}
