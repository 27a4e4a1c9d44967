package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
)

// BatchProcessor derives search documents for one page of files and writes
// them to every configured backend.
type BatchProcessor struct {
	backends       []search.Backend
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a processor upserting through the given
// backends, retrying each upsert with exponential backoff.
func NewBatchProcessor(backends []search.Backend, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		backends:       backends,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process indexes the analyzed files of one page and returns how many
// documents it wrote per backend. Files that were never analyzed have no
// document to derive and are skipped.
func (bp *BatchProcessor) Process(ctx context.Context, files []*core.FileMetadata) (int, error) {
	indexed := 0
	for _, meta := range files {
		if meta.Status != core.FileStatusAnalyzed {
			continue
		}

		doc := documentFor(meta)
		for _, backend := range bp.backends {
			err := RetryWithBackoff(ctx, func() error {
				return backend.Upsert(ctx, doc)
			}, bp.maxRetries, bp.retryBaseDelay)
			if err != nil {
				return indexed, fmt.Errorf("index %s on %s after %d attempts: %w",
					doc.ID, backend.Name(), bp.maxRetries, err)
			}
		}
		indexed++
	}

	return indexed, nil
}

// documentFor rebuilds a file's search document from its stored metadata.
// The analysis fields were persisted at completion time, so no re-analysis
// happens here.
func documentFor(meta *core.FileMetadata) *core.SearchDocument {
	return &core.SearchDocument{
		ID:           meta.FileID,
		Title:        meta.Filename,
		Summary:      meta.Summary,
		Entities:     meta.Entities,
		Topics:       meta.Topics,
		UserID:       meta.UserID,
		Filename:     meta.Filename,
		MimeType:     meta.MimeType,
		UploadedAt:   meta.UploadedAt,
		LastAnalyzed: meta.LastAnalyzed,
	}
}
