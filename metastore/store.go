package metastore

import (
	"context"
	"time"

	"github.com/tamylaa/content-skimmer/core"
)

// FilePatch is a partial update of a file's metadata record. Zero-valued
// fields are omitted from the request.
type FilePatch struct {
	Status       core.FileStatus `json:"status,omitempty"`
	LastAnalyzed *time.Time      `json:"lastAnalyzed,omitempty"`
	Summary      string          `json:"summary,omitempty"`
	Entities     []string        `json:"entities,omitempty"`
	Topics       []string        `json:"topics,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// JobCompletion is the webhook payload reporting the outcome of one
// processing job. JobID keys the delivery, so a redelivered event with a
// fresh job produces a distinct notification.
type JobCompletion struct {
	FileID    string               `json:"fileId"`
	JobID     string               `json:"jobId"`
	Status    core.AnalysisStatus  `json:"status"`
	Result    *core.AnalysisResult `json:"result,omitempty"`
	Error     string               `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// FilePage is one page of a file listing. An empty NextCursor means the
// listing is exhausted.
type FilePage struct {
	Files      []*core.FileMetadata `json:"files"`
	NextCursor string               `json:"nextCursor,omitempty"`
}

// Store provides the raw metadata service operations.
// Implementations must be safe for concurrent use.
type Store interface {
	// PatchFile applies a partial update to the file's metadata record.
	PatchFile(ctx context.Context, fileID string, patch FilePatch) error

	// GetFile retrieves the metadata record for a file.
	// Returns ErrNotFound if the store has no record for the ID.
	GetFile(ctx context.Context, fileID string) (*core.FileMetadata, error)

	// ListFiles retrieves one page of file records starting at cursor.
	// An empty cursor starts from the beginning.
	ListFiles(ctx context.Context, cursor string, limit int) (*FilePage, error)

	// NotifyJobComplete delivers the completion webhook for a job.
	NotifyJobComplete(ctx context.Context, completion JobCompletion) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
