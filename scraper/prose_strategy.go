// scraper/prose_strategy.go
package scraper

import (
	"regexp"
	"sort"
	"strings"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/models"
)

// Titles longer than this are paragraphs, not headings.
const maxTitleLength = 300

var (
	markdownLinkRegex = regexp.MustCompile(`\[([^\]\n]+)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	bareURLRegex      = regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`)
	listMarkerRegex   = regexp.MustCompile(`^(?:[#>*+\-•]+|\d+[.)])\s*`)
	emphasisRegex     = regexp.MustCompile(`\*\*|__|\*|~~|` + "`")
	edgePunctRegex    = regexp.MustCompile(`^[\s:;,.\-–|]+|[\s:;,\-–|]+$`)
	urlTrailingPunct  = regexp.MustCompile(`[.,;:!?]+$`)
)

// extractProse pairs titles with links in free text: first explicit
// [title](url) links, then lines that read as titles paired with the
// nearest acceptable URL. Lines that already yielded an explicit link pair
// are not paired again, and a line carrying its own [text](url) link never
// borrows a neighbour's URL.
func (e *Extractor) extractProse(text string, src config.SourceConfig, agency string) []models.ProposalRecord {
	lines := strings.Split(text, "\n")
	set := models.NewRecordSet()
	paired := make(map[int]bool)

	for i, line := range lines {
		for _, m := range markdownLinkRegex.FindAllStringSubmatch(line, -1) {
			title := lineTitle(m[1])
			if !IsPlausibleProposalTitle(title) {
				continue
			}
			link := ResolveLink(m[2], src.URL)
			if skipLink(link, src.URL, src.AllowSameHost) {
				continue
			}
			set.Add(e.pairRecord(title, link, lines, i, agency, src.URL))
			paired[i] = true
		}
	}

	for i, line := range lines {
		if paired[i] || isDelimitedRow(line) {
			continue
		}
		title := proseLineTitle(line)
		if title == "" {
			continue
		}
		radius := e.contextLines
		if markdownLinkRegex.MatchString(line) {
			radius = 0
		}
		link := e.nearestLink(lines, i, radius, src)
		if link == "" {
			continue
		}
		set.Add(e.pairRecord(title, link, lines, i, agency, src.URL))
	}

	return set.Values()
}

// pairRecord builds a record whose dates come from the lines around lines[i].
func (e *Extractor) pairRecord(title, link string, lines []string, i int, agency, sourceURL string) models.ProposalRecord {
	from := max(0, i-e.contextLines)
	to := min(len(lines), i+e.contextLines+1)
	start, end := assignDates(e.dates.collectDates(strings.Join(lines[from:to], "\n")))
	return e.newRecord(title, agency, start, end, link, sourceURL)
}

// nearestLink looks for the first acceptable URL on the title line, then on
// neighbouring lines by increasing distance, following lines before preceding ones.
func (e *Extractor) nearestLink(lines []string, i, radius int, src config.SourceConfig) string {
	offsets := []int{0}
	for d := 1; d <= radius; d++ {
		offsets = append(offsets, d, -d)
	}
	for _, off := range offsets {
		j := i + off
		if j < 0 || j >= len(lines) {
			continue
		}
		for _, u := range lineURLs(lines[j]) {
			link := ResolveLink(u, src.URL)
			if !skipLink(link, src.URL, src.AllowSameHost) {
				return link
			}
		}
	}
	return ""
}

// lineURLs returns link targets and bare URLs in order of appearance.
func lineURLs(line string) []string {
	type hit struct {
		pos int
		url string
	}
	var hits []hit
	for _, m := range markdownLinkRegex.FindAllStringSubmatchIndex(line, -1) {
		hits = append(hits, hit{pos: m[4], url: line[m[4]:m[5]]})
	}
	for _, m := range bareURLRegex.FindAllStringIndex(line, -1) {
		hits = append(hits, hit{pos: m[0], url: urlTrailingPunct.ReplaceAllString(line[m[0]:m[1]], "")})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].pos < hits[b].pos })

	seen := make(map[string]bool)
	var urls []string
	for _, h := range hits {
		if h.url == "" || seen[h.url] {
			continue
		}
		seen[h.url] = true
		urls = append(urls, h.url)
	}
	return urls
}

// lineTitle reduces a line of markdown to its readable text: link syntax
// becomes the link text, bare URLs and list markers are dropped.
func lineTitle(line string) string {
	s := markdownLinkRegex.ReplaceAllString(line, "$1")
	s = bareURLRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = listMarkerRegex.ReplaceAllString(s, "")
	s = emphasisRegex.ReplaceAllString(s, "")
	s = cleanText(s)
	return edgePunctRegex.ReplaceAllString(s, "")
}

// proseLineTitle returns the title a line offers, or "". A short pipe row
// offers its first cell that reads as a title.
func proseLineTitle(line string) string {
	cells := pipeCells(line)
	if cells == nil {
		cells = []string{line}
	}
	for _, c := range cells {
		if t := lineTitle(c); isTitleLine(t) {
			return t
		}
	}
	return ""
}

// isTitleLine is the relevance check for a whole line. Lines that are only
// a date label such as "Deadline: 15/06/2025" do not count.
func isTitleLine(title string) bool {
	if len([]rune(title)) > maxTitleLength || !IsPlausibleProposalTitle(title) {
		return false
	}
	residual := title
	for _, d := range findDateSubstrings(title) {
		residual = strings.ReplaceAll(residual, d, "")
	}
	residual = edgePunctRegex.ReplaceAllString(cleanText(residual), "")
	return len([]rune(residual)) >= minTitleLength
}
