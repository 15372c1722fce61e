package ingestion

import (
	"context"
	"fmt"

	"github.com/jonathan/job-matcher/internal/fetch"
)

// IngestFromURL fetches a job posting and returns its cleaned text with metadata.
func IngestFromURL(ctx context.Context, fetcher *fetch.PostingFetcher, urlStr string) (string, *Metadata, error) {
	posting, err := fetcher.Fetch(ctx, urlStr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to ingest %s: %w", urlStr, err)
	}

	cleanedText := CleanText(posting.Text)
	metadata := NewMetadata(cleanedText, urlStr, FormatHTML)
	metadata.Platform = string(posting.Platform)
	return cleanedText, metadata, nil
}
