package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gewnthar/fundscout/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ContentClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewContentClient(config.ContentSourceConfig{
		BaseURL: srv.URL + "/",
		APIKey:  "test-key",
		WaitFor: 20 * time.Second,
		Headers: map[string]string{"User-Agent": "fundscout-test"},
	})
}

func TestContentClient_FetchWrapped(t *testing.T) {
	var got scrapeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"rawHtml":"<table><tr><td>x</td></tr></table>"}}`))
	})

	content, err := client.Fetch(context.Background(), "https://example.org/calls", FormatMarkup)

	require.NoError(t, err)
	assert.Equal(t, "<table><tr><td>x</td></tr></table>", content.Body)
	assert.Equal(t, FormatMarkup, content.Format)
	assert.Equal(t, "https://example.org/calls", got.URL)
	assert.Equal(t, []string{"rawHtml"}, got.Formats)
	assert.True(t, got.OnlyMainContent)
	assert.Equal(t, int64(20000), got.WaitFor)
	assert.Equal(t, "fundscout-test", got.Headers["User-Agent"])
}

func TestContentClient_FetchFlat(t *testing.T) {
	var got scrapeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"markdown":"# Calls for proposals"}`))
	})

	content, err := client.Fetch(context.Background(), "https://example.org/calls", FormatProse)

	require.NoError(t, err)
	assert.Equal(t, "# Calls for proposals", content.Body)
	assert.Equal(t, []string{"markdown"}, got.Formats)
}

func TestContentClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantAuth  bool
		wantEmpty bool
	}{
		{"401 status", http.StatusUnauthorized, `{"error":"nope"}`, true, false},
		{"403 status", http.StatusForbidden, `forbidden`, false, false},
		{"unsupported site", http.StatusForbidden, `{"error":"This website is no longer supported"}`, false, false},
		{"target page forbidden", http.StatusOK, `{"success":false,"error":"Target page responded with 403 Forbidden"}`, false, false},
		{"target page unauthorized", http.StatusOK, `{"success":false,"error":"Target page responded with 401 Unauthorized"}`, false, false},
		{"auth failure message", http.StatusOK, `{"success":false,"error":"Unauthorized: Invalid token"}`, true, false},
		{"invalid key message", http.StatusBadRequest, `{"success":false,"error":"Invalid API key provided"}`, true, false},
		{"other failure message", http.StatusOK, `{"success":false,"error":"Failed to load page"}`, false, false},
		{"server error", http.StatusInternalServerError, `oops`, false, false},
		{"empty payload", http.StatusOK, `{"success":true,"data":{"rawHtml":"  "}}`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Fetch(context.Background(), "https://example.org", FormatMarkup)

			require.Error(t, err)
			assert.Equal(t, tt.wantAuth, errors.Is(err, ErrUnauthorized))
			assert.Equal(t, tt.wantEmpty, errors.Is(err, ErrEmptyContent))
		})
	}
}

func TestContentClient_ValidateCredentials(t *testing.T) {
	client := NewContentClient(config.ContentSourceConfig{BaseURL: "http://127.0.0.1:1"})

	assert.ErrorIs(t, client.ValidateCredentials(), ErrUnauthorized)

	_, err := client.Fetch(context.Background(), "https://example.org", FormatMarkup)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDumpContent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")

	path, err := DumpContent(dir, "https://example.org/news?page=2", Content{Body: "<p>hi</p>", Format: FormatMarkup})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example.org_news.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))

	path, err = DumpContent(dir, "https://example.org/feed", Content{Body: "# feed", Format: FormatProse})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example.org_feed.md"), path)

	path, err = DumpContent("", "https://example.org", Content{Body: "x"})
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestContentClient_RequestCeiling(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"markdown":"# Calls"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewContentClient(config.ContentSourceConfig{
		BaseURL:              srv.URL,
		APIKey:               "test-key",
		MaxRequestsPerMinute: 1,
	})

	_, err := client.Fetch(context.Background(), "https://example.org/a", FormatProse)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Fetch(ctx, "https://example.org/b", FormatProse)

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 1, hits)
}
