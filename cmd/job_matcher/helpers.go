package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/db"
	"github.com/jonathan/job-matcher/internal/fetch"
	"github.com/jonathan/job-matcher/internal/ingestion"
	"github.com/jonathan/job-matcher/internal/ranking"
	"github.com/jonathan/job-matcher/internal/skills"
)

// browserTimeout bounds a headless browser render.
const browserTimeout = 45 * time.Second

// newLogger logs to stderr; LOG_FORMAT=json switches to JSON lines.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadFileConfig reads --config, or returns an empty config when unset.
func loadFileConfig() (*config.Config, error) {
	if configPath == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig applies --config values as defaults for flags and validates
// the result.
func mergeConfig(flags config.Config) (config.Config, error) {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return config.Config{}, err
	}
	merged := flags.MergeWithDefaults(*fileCfg)
	merged.UseBrowser = flags.UseBrowser || fileCfg.UseBrowser
	if err := merged.Validate(); err != nil {
		return config.Config{}, err
	}
	return merged, nil
}

// newAnalyzer builds an analyzer from the configured catalog and weights.
func newAnalyzer(cfg config.Config) (*ranking.Analyzer, *skills.Catalog, error) {
	catalog, err := skills.Load(cfg.Catalog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load skill catalog: %w", err)
	}

	var opts []ranking.Option
	if cfg.Weights != nil {
		opts = append(opts, ranking.WithWeights(ranking.Weights(*cfg.Weights)))
	}
	analyzer, err := ranking.NewAnalyzer(catalog, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	return analyzer, catalog, nil
}

// newFetcher creates a posting fetcher, with a headless browser fallback when
// useBrowser is set.
func newFetcher(useBrowser bool, logger *slog.Logger) *fetch.PostingFetcher {
	var renderer fetch.Renderer
	if useBrowser {
		renderer = fetch.ChromeRenderer(browserTimeout)
	}
	return fetch.NewPostingFetcher(fetch.PostingFetcherConfig{
		Renderer: renderer,
		Logger:   logger,
	})
}

// readCV returns inline CV text or the text of a CV document.
func readCV(path, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if path == "" {
		return "", fmt.Errorf("either --cv or --cv-text must be provided")
	}
	text, _, err := ingestion.IngestFromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read CV: %w", err)
	}
	return text, nil
}

// readJob returns the text of a job posting file or URL.
func readJob(ctx context.Context, path, url string, fetcher *fetch.PostingFetcher) (string, error) {
	switch {
	case path != "" && url != "":
		return "", fmt.Errorf("--job and --job-url are mutually exclusive; provide only one")
	case path != "":
		text, _, err := ingestion.IngestFromFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to ingest from file: %w", err)
		}
		return text, nil
	case url != "":
		text, _, err := ingestion.IngestFromURL(ctx, fetcher, url)
		if err != nil {
			return "", fmt.Errorf("failed to ingest from URL: %w", err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("either --job or --job-url must be provided")
	}
}

// openStore opens the configured store; config file values override the
// environment.
func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	svc := config.LoadServiceConfig()
	if cfg.DatabaseURL != "" {
		svc.DatabaseURL = cfg.DatabaseURL
	}
	if cfg.SQLitePath != "" {
		svc.SQLitePath = cfg.SQLitePath
	}
	store, err := db.Open(ctx, svc.DatabaseURL, svc.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

// writeJSONFile writes v as indented JSON to path, creating parent directories.
func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}
