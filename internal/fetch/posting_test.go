package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postingServer(t *testing.T, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func longPosting() string {
	return "<html><body><main><h1>Backend Developer</h1><p>Requirements: Python, Docker. " +
		strings.Repeat("We build reliable services. ", 30) + "</p></main></body></html>"
}

func TestPostingFetcher_Fetch(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, longPosting(), &hits)

	f := NewPostingFetcher(PostingFetcherConfig{})
	p, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, server.URL, p.URL)
	assert.Equal(t, PlatformUnknown, p.Platform)
	assert.Contains(t, p.Text, "Requirements: Python, Docker.")
	assert.False(t, p.Rendered)
	assert.False(t, p.FromCache)
}

func TestPostingFetcher_Cache(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, longPosting(), &hits)

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f := NewPostingFetcher(PostingFetcherConfig{CacheTTL: time.Minute})
	f.now = func() time.Time { return now }

	_, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	p, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, p.FromCache)
	assert.Equal(t, int32(1), hits.Load())

	now = now.Add(2 * time.Minute)
	p, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, p.FromCache)
	assert.Equal(t, int32(2), hits.Load())

	f.Invalidate(server.URL)
	_, err = f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(3), hits.Load())
}

func TestPostingFetcher_CacheDisabled(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, longPosting(), &hits)

	f := NewPostingFetcher(PostingFetcherConfig{CacheTTL: -1})
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), hits.Load())
}

func TestPostingFetcher_BrowserFallback(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, `<html><body><div id="app">Loading...</div></body></html>`, &hits)

	var rendered atomic.Int32
	f := NewPostingFetcher(PostingFetcherConfig{
		Renderer: func(_ context.Context, url string) (string, error) {
			rendered.Add(1)
			assert.Equal(t, server.URL, url)
			return longPosting(), nil
		},
	})

	p, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.True(t, p.Rendered)
	assert.Contains(t, p.Text, "Requirements: Python, Docker.")
	assert.Equal(t, int32(1), rendered.Load())
}

func TestPostingFetcher_BrowserFailureKeepsHTTPText(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, `<html><body><main>Requirements: Go</main></body></html>`, &hits)

	f := NewPostingFetcher(PostingFetcherConfig{
		Renderer: func(context.Context, string) (string, error) {
			return "", errors.New("chrome not installed")
		},
	})

	p, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, p.Rendered)
	assert.Equal(t, "Requirements: Go", p.Text)
}

func TestPostingFetcher_EmptyPage(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, `<html><body><script>render()</script></body></html>`, &hits)

	_, err := NewPostingFetcher(PostingFetcherConfig{}).Fetch(context.Background(), server.URL)
	require.Error(t, err)
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "no text found")
}

func TestJobPostingText(t *testing.T) {
	var hits atomic.Int32
	server := postingServer(t, longPosting(), &hits)

	text, err := JobPostingText(context.Background(), server.URL, false)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Developer")

	_, err = JobPostingText(context.Background(), "not a url", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch job posting")
}
