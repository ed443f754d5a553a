// scraper/text.go
package scraper

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// HTML entities and escaped newlines that leak through markup-to-text conversion.
	htmlArtifactRegex = regexp.MustCompile(`&nbsp;|&#160;|\\n|\\t|\x{00A0}|\x{2014}`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
)

// cleanText NFC-normalizes s, drops markup artifacts and collapses runs of
// whitespace to a single space.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	s = htmlArtifactRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
