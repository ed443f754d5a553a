// scraper/relevance.go
package scraper

import (
	"net/url"
	"regexp"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

const minTitleLength = 10

// proposalKeywords is the vocabulary a funding-call title must touch.
var proposalKeywords = []string{
	"call", "proposal", "funding", "grant", "scheme", "research",
	"phd", "postdoc", "scientist", "startup", "fellowship", "application",
	"submission", "deadline", "award", "competition", "opportunity",
	"invitation", "tender", "program",
	// agency and domain abbreviations
	"cfp", "rfp", "eoi", "r&d", "serb", "anrf", "birac", "icmr", "csir",
	"nidhi", "sbiri",
}

var socialDomains = []string{
	"facebook.com", "fb.com", "twitter.com", "x.com", "linkedin.com",
	"instagram.com", "youtube.com", "youtu.be", "t.me", "telegram.me",
	"whatsapp.com", "wa.me", "pinterest.com", "reddit.com", "threads.net",
	"tiktok.com", "koo.in",
}

var (
	assetRegex    = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|svg|webp|ico|bmp|css|js|pdf|docx?|xlsx?|pptx?|odt|ods|csv|zip|rar|7z|mp3|mp4|avi)(\?|#|$)`)
	uiChromeRegex = regexp.MustCompile(`(?i)/(contact(-us)?|about(-us)?|login|log-in|signin|sign-in|signup|register|sitemap|privacy(-policy)?|terms|disclaimer|faqs?|careers|search|feedback|help|accessibility)(/|\?|#|\.|$)`)
)

var keywordMatcher = ahocorasick.NewStringMatcher(proposalKeywords)

// IsPlausibleProposalTitle reports whether text reads like a funding-call
// announcement: at least minTitleLength characters and a vocabulary hit.
func IsPlausibleProposalTitle(text string) bool {
	text = strings.TrimSpace(text)
	if len([]rune(text)) < minTitleLength {
		return false
	}
	hits := keywordMatcher.MatchThreadSafe([]byte(strings.ToLower(text)))
	return len(hits) > 0
}

// ShouldSkipLink reports whether link cannot be a funding-call destination
// when found on sourceURL. Links back to the source's own host are skipped.
func ShouldSkipLink(link, sourceURL string) bool {
	return skipLink(link, sourceURL, false)
}

// skipLink is ShouldSkipLink with the same-host rule optional.
func skipLink(link, sourceURL string, allowSameHost bool) bool {
	link = strings.TrimSpace(link)
	if link == "" {
		return true
	}

	lower := strings.ToLower(link)
	for _, prefix := range []string{"#", "mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}

	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return true
	}
	host := strings.ToLower(u.Hostname())

	if !allowSameHost {
		src, err := url.Parse(strings.TrimSpace(sourceURL))
		if err != nil || src.Host == "" {
			return true
		}
		if host == strings.ToLower(src.Hostname()) {
			return true
		}
	}

	if assetRegex.MatchString(u.Path) || uiChromeRegex.MatchString(u.Path) {
		return true
	}

	for _, d := range socialDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
