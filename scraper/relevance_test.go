package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlausibleProposalTitle(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"AI Research Grant", true},
		{"CALL FOR PROPOSALS 2025", true},
		{"Joint R&D projects with Germany", true},
		{"BIRAC BIG scheme round 24", true},
		{"Call", false},
		{"", false},
		{"Home", false},
		{"Contact our office today", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlausibleProposalTitle(tt.text), tt.text)
	}
}

func TestShouldSkipLink(t *testing.T) {
	source := "https://example.org/news"

	tests := []struct {
		name string
		link string
		want bool
	}{
		{"external page", "https://funding.example/apply", false},
		{"external with query", "https://funding.example/call?id=4", false},
		{"empty", "", true},
		{"fragment", "#section-2", true},
		{"mailto", "mailto:grants@funding.example", true},
		{"tel", "tel:+911234567", true},
		{"javascript", "javascript:void(0)", true},
		{"relative", "/apply", true},
		{"ftp", "ftp://funding.example/file", true},
		{"same host", "https://example.org/apply", true},
		{"same host other case", "https://EXAMPLE.org/apply", true},
		{"image asset", "https://cdn.example/banner.png", true},
		{"document asset", "https://funding.example/guidelines.pdf?v=2", true},
		{"contact page", "https://funding.example/contact-us", true},
		{"login page", "https://funding.example/login", true},
		{"social", "https://twitter.com/agency", true},
		{"social subdomain", "https://m.facebook.com/agency", true},
		{"malformed", "https://%zz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldSkipLink(tt.link, source))
		})
	}
}

func TestShouldSkipLink_SameHostAlwaysSkipped(t *testing.T) {
	bases := []string{"https://example.org", "https://agency.example/news", "http://serbonline.in/"}
	paths := []string{"/", "/apply", "/calls/2025/fellowship", "/index.php?id=3", "/a/b/c/"}

	for _, base := range bases {
		for _, p := range paths {
			link := ResolveLink(p, base)
			assert.True(t, ShouldSkipLink(link, base), "link %s on %s", link, base)
		}
	}
}

func TestSkipLink_AllowSameHost(t *testing.T) {
	source := "https://agency.example/news"

	assert.False(t, skipLink("https://agency.example/apply", source, true))
	assert.True(t, skipLink("https://agency.example/apply", source, false))
	// the other filters still apply
	assert.True(t, skipLink("https://agency.example/sitemap", source, true))
}
