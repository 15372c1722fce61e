package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a fetched posting is reused.
const DefaultCacheTTL = 15 * time.Minute

// Posting is the plain text of a job posting page.
type Posting struct {
	URL       string
	Platform  Platform
	Text      string
	Rendered  bool // text came from the headless browser
	FromCache bool
	FetchedAt time.Time
}

// PostingFetcher fetches job postings and keeps recent results in memory.
// It is safe for concurrent use.
type PostingFetcher struct {
	options  *Options
	render   Renderer // nil disables the browser fallback
	cacheTTL time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu    sync.Mutex
	cache map[string]Posting
}

// PostingFetcherConfig holds configuration for a PostingFetcher.
type PostingFetcherConfig struct {
	Options  *Options
	Renderer Renderer
	CacheTTL time.Duration // zero uses DefaultCacheTTL, negative disables caching
	Logger   *slog.Logger
}

// NewPostingFetcher creates a PostingFetcher.
func NewPostingFetcher(config PostingFetcherConfig) *PostingFetcher {
	if config.Options == nil {
		config.Options = DefaultOptions()
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = DefaultCacheTTL
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &PostingFetcher{
		options:  config.Options,
		render:   config.Renderer,
		cacheTTL: config.CacheTTL,
		logger:   config.Logger,
		now:      time.Now,
		cache:    make(map[string]Posting),
	}
}

// Fetch returns the text of the posting at urlStr. Pages whose extracted text
// is shorter than MinContentLength are rendered in the browser when a
// Renderer is configured; if rendering fails the HTTP text is kept.
func (f *PostingFetcher) Fetch(ctx context.Context, urlStr string) (*Posting, error) {
	if p, ok := f.cached(urlStr); ok {
		return &p, nil
	}

	platform := DetectPlatform(urlStr)
	result, err := URL(ctx, urlStr, f.options)
	if err != nil {
		return nil, err
	}

	text, err := ExtractMainText(result.HTML, platform.ContentSelectors(), platform.NoiseSelectors()...)
	if err != nil {
		return nil, &Error{URL: urlStr, Message: "content extraction failed", Cause: err}
	}
	f.logger.Debug("fetched job posting", "url", urlStr, "platform", platform, "html_bytes", len(result.HTML), "text_chars", len(text))

	rendered := false
	if f.render != nil && ShouldUseBrowser(text) {
		f.logger.Debug("posting text too short, rendering in browser", "url", urlStr, "text_chars", len(text))
		html, renderErr := f.render(ctx, urlStr)
		if renderErr != nil {
			f.logger.Warn("browser rendering failed, using HTTP content", "url", urlStr, "error", renderErr)
		} else if browserText, extractErr := ExtractMainText(html, platform.ContentSelectors(), platform.NoiseSelectors()...); extractErr == nil && len(browserText) > len(text) {
			text = browserText
			rendered = true
		}
	}

	if text == "" {
		return nil, &Error{URL: urlStr, Message: "no text found on page"}
	}

	p := Posting{
		URL:       urlStr,
		Platform:  platform,
		Text:      text,
		Rendered:  rendered,
		FetchedAt: f.now(),
	}
	f.store(p)
	return &p, nil
}

// Invalidate drops a cached posting.
func (f *PostingFetcher) Invalidate(urlStr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, urlStr)
}

func (f *PostingFetcher) cached(urlStr string) (Posting, bool) {
	if f.cacheTTL < 0 {
		return Posting{}, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.cache[urlStr]
	if !ok {
		return Posting{}, false
	}
	if f.now().Sub(p.FetchedAt) > f.cacheTTL {
		delete(f.cache, urlStr)
		return Posting{}, false
	}
	p.FromCache = true
	return p, true
}

func (f *PostingFetcher) store(p Posting) {
	if f.cacheTTL < 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[p.URL] = p
}

// JobPostingText fetches a posting once without caching. When useBrowser is
// set, short pages are re-rendered with headless Chrome.
func JobPostingText(ctx context.Context, urlStr string, useBrowser bool) (string, error) {
	config := PostingFetcherConfig{CacheTTL: -1}
	if useBrowser {
		config.Renderer = ChromeRenderer(DefaultTimeout)
	}
	p, err := NewPostingFetcher(config).Fetch(ctx, urlStr)
	if err != nil {
		return "", fmt.Errorf("failed to fetch job posting: %w", err)
	}
	return p.Text, nil
}
