// scraper/markup.go
package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var markupSniffRegex = regexp.MustCompile(`(?i)<(html|body|table|div|p|a)[\s>]`)

// Elements whose text never carries a funding call.
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"svg": true, "iframe": true, "#comment": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "main": true,
	"header": true, "footer": true, "aside": true, "nav": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"table": true, "thead": true, "tbody": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true, "form": true,
}

// looksLikeMarkup reports whether body is HTML even if it was requested as prose.
func looksLikeMarkup(body string) bool {
	return markupSniffRegex.MatchString(body)
}

// renderMarkup flattens a document into line-oriented text. Anchors are
// kept as [text](href) so the prose strategies can pair them.
func renderMarkup(doc *goquery.Document) string {
	var b strings.Builder
	renderChildren(&b, doc.Selection)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = cleanText(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func renderChildren(b *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		name := goquery.NodeName(c)
		switch {
		case name == "#text":
			b.WriteString(c.Text())
		case skippedElements[name]:
		case name == "br":
			b.WriteString("\n")
		case name == "a":
			href, _ := c.Attr("href")
			text := cleanText(c.Text())
			if strings.TrimSpace(href) != "" && text != "" {
				fmt.Fprintf(b, "[%s](%s)", text, strings.TrimSpace(href))
			} else {
				b.WriteString(c.Text())
			}
		case name == "td" || name == "th":
			b.WriteString(" ")
			renderChildren(b, c)
			b.WriteString(" ")
		case blockElements[name]:
			b.WriteString("\n")
			renderChildren(b, c)
			b.WriteString("\n")
		default:
			renderChildren(b, c)
		}
	})
}
