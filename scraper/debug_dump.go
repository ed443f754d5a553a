// scraper/debug_dump.go
package scraper

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// DumpContent writes the raw body fetched for sourceURL into dir so a failed
// extraction can be inspected later. It returns the written path.
func DumpContent(dir, sourceURL string, content Content) (string, error) {
	if dir == "" {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	ext := ".md"
	if content.IsMarkup() {
		ext = ".html"
	}
	path := filepath.Join(dir, dumpName(sourceURL)+ext)
	if err := os.WriteFile(path, []byte(content.Body), 0644); err != nil {
		return "", fmt.Errorf("failed to write raw content to %s: %w", path, err)
	}
	return path, nil
}

// dumpName is host plus path with unsafe characters folded to "_".
func dumpName(sourceURL string) string {
	name := sourceURL
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		name = u.Host + u.Path
	}
	name = strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
	if name == "" {
		name = "source"
	}
	return name
}
