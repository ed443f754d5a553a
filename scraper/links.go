// scraper/links.go
package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

var linkNoiseRegex = regexp.MustCompile(`\\n|\s+`)

// ResolveLink turns href into an absolute URL anchored at baseURL.
// It returns "" for empty input and never fails: when standard resolution
// is impossible it joins base and href with exactly one slash.
func ResolveLink(href, baseURL string) string {
	href = strings.TrimSpace(linkNoiseRegex.ReplaceAllString(href, ""))
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err == nil && ref.IsAbs() && ref.Host != "" {
		return href
	}

	base, baseErr := url.Parse(strings.TrimSpace(baseURL))
	if err == nil && baseErr == nil && base.IsAbs() && base.Host != "" {
		return base.ResolveReference(ref).String()
	}

	return joinURL(baseURL, href)
}

func joinURL(base, href string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + strings.TrimLeft(href, "/")
}
