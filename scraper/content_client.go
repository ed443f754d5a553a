// scraper/content_client.go
package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gewnthar/fundscout/config"
	"golang.org/x/time/rate"
)

var (
	// ErrUnauthorized means the content source rejected the API key. A run
	// cannot recover from it, so callers must not retry.
	ErrUnauthorized = errors.New("content source rejected credentials")
	// ErrEmptyContent is returned when the source answered but carried no body.
	ErrEmptyContent = errors.New("content source returned empty content")
)

// authMessageRegex matches the scrape API rejecting our own key. Messages
// about the target page ("Target page responded with 403 Forbidden") must
// not match.
var authMessageRegex = regexp.MustCompile(`(?i)^unauthori[sz]ed\b|\b(invalid|missing|expired|revoked)\b[^.]{0,20}\b(api[ _-]?key|token|credentials?)\b`)

// Fetcher retrieves the raw content of one source page.
type Fetcher interface {
	Fetch(ctx context.Context, url, format string) (Content, error)
	ValidateCredentials() error
}

// ContentClient talks to a Firecrawl-compatible scrape endpoint.
type ContentClient struct {
	baseURL string
	apiKey  string
	waitFor time.Duration
	headers map[string]string
	http    *http.Client
	// nil when the scrape API is not capped
	limiter *rate.Limiter
}

func NewContentClient(cfg config.ContentSourceConfig) *ContentClient {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &ContentClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		waitFor: cfg.WaitFor,
		headers: cfg.Headers,
		http:    &http.Client{Timeout: timeout},
	}
	if cfg.MaxRequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MaxRequestsPerMinute)), 1)
	}
	return c
}

type scrapeRequest struct {
	URL             string            `json:"url"`
	Formats         []string          `json:"formats"`
	OnlyMainContent bool              `json:"onlyMainContent"`
	WaitFor         int64             `json:"waitFor,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`
}

type scrapePayload struct {
	RawHTML  string `json:"rawHtml"`
	HTML     string `json:"html"`
	Markdown string `json:"markdown"`
}

// scrapeResponse covers both the wrapped {"success":true,"data":{...}} shape
// and the flat shape where the payload fields sit at the top level.
type scrapeResponse struct {
	Success *bool          `json:"success"`
	Error   string         `json:"error"`
	Data    *scrapePayload `json:"data"`
	scrapePayload
}

// ValidateCredentials checks that a key is configured. The key itself is
// only proven by the first request.
func (c *ContentClient) ValidateCredentials() error {
	if strings.TrimSpace(c.apiKey) == "" {
		return fmt.Errorf("%w: no API key configured", ErrUnauthorized)
	}
	return nil
}

// Fetch requests url as markup (raw HTML) or prose (markdown).
func (c *ContentClient) Fetch(ctx context.Context, url, format string) (Content, error) {
	if err := c.ValidateCredentials(); err != nil {
		return Content{}, err
	}

	wire := "rawHtml"
	if format == FormatProse {
		wire = "markdown"
	}
	body, err := json.Marshal(scrapeRequest{
		URL:             url,
		Formats:         []string{wire},
		OnlyMainContent: true,
		WaitFor:         c.waitFor.Milliseconds(),
		Headers:         c.headers,
	})
	if err != nil {
		return Content{}, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Content{}, fmt.Errorf("waiting for scrape API allowance: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return Content{}, fmt.Errorf("failed to build scrape request for %s: %w", url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Content{}, fmt.Errorf("failed to scrape %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read scrape response for %s: %w", url, err)
	}

	// 403 is what the API returns for blocked or unsupported target sites,
	// so only 401 means the key was refused.
	if resp.StatusCode == http.StatusUnauthorized {
		return Content{}, fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Content{}, fmt.Errorf("failed to scrape %s: received status code %d", url, resp.StatusCode)
		}
		return Content{}, fmt.Errorf("failed to decode scrape response for %s: %w", url, err)
	}

	if (parsed.Success != nil && !*parsed.Success) || resp.StatusCode != http.StatusOK {
		msg := parsed.Error
		if msg == "" {
			msg = fmt.Sprintf("status code %d", resp.StatusCode)
		}
		if authMessageRegex.MatchString(msg) {
			return Content{}, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return Content{}, fmt.Errorf("failed to scrape %s: %s", url, msg)
	}

	payload := parsed.scrapePayload
	if parsed.Data != nil {
		payload = *parsed.Data
	}

	content := Content{Format: format}
	if format == FormatProse {
		content.Body = firstNonEmpty(payload.Markdown, payload.RawHTML, payload.HTML)
	} else {
		content.Body = firstNonEmpty(payload.RawHTML, payload.HTML, payload.Markdown)
	}
	if strings.TrimSpace(content.Body) == "" {
		return Content{}, fmt.Errorf("%w: %s", ErrEmptyContent, url)
	}
	return content, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
