// Package mock provides a configurable test double for metastore.Store.
package mock

import (
	"context"
	"time"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/metastore"
)

// Store is a test double for metastore.Store.
// It allows custom behavior injection via function fields. The call
// counters are not synchronized; drive the mock from one goroutine.
type Store struct {
	// PatchFileFunc is called by PatchFile if set.
	PatchFileFunc func(ctx context.Context, fileID string, patch metastore.FilePatch) error

	// GetFileFunc is called by GetFile if set.
	GetFileFunc func(ctx context.Context, fileID string) (*core.FileMetadata, error)

	// ListFilesFunc is called by ListFiles if set.
	ListFilesFunc func(ctx context.Context, cursor string, limit int) (*metastore.FilePage, error)

	// NotifyJobCompleteFunc is called by NotifyJobComplete if set.
	NotifyJobCompleteFunc func(ctx context.Context, completion metastore.JobCompletion) error

	// PingFunc is called by Ping if set.
	PingFunc func(ctx context.Context) error

	patchCalls  int
	getCalls    int
	listCalls   int
	notifyCalls int
	pingCalls   int

	// Patches records every patch applied through the default behavior.
	Patches []metastore.FilePatch
	// Completions records every webhook delivered through the default
	// behavior.
	Completions []metastore.JobCompletion
}

var _ metastore.Store = (*Store)(nil)

// NewStore creates a mock store with default permissive behavior.
func NewStore() *Store {
	return &Store{}
}

// PatchFile records the patch and succeeds.
func (m *Store) PatchFile(ctx context.Context, fileID string, patch metastore.FilePatch) error {
	m.patchCalls++

	if m.PatchFileFunc != nil {
		return m.PatchFileFunc(ctx, fileID, patch)
	}

	m.Patches = append(m.Patches, patch)
	return nil
}

// GetFile returns a deterministic record for the requested file.
func (m *Store) GetFile(ctx context.Context, fileID string) (*core.FileMetadata, error) {
	m.getCalls++

	if m.GetFileFunc != nil {
		return m.GetFileFunc(ctx, fileID)
	}

	return &core.FileMetadata{
		FileID:     fileID,
		UserID:     "user-1",
		Filename:   fileID + ".txt",
		MimeType:   "text/plain",
		FileSize:   64,
		Status:     core.FileStatusRegistered,
		UploadedAt: time.Now().Add(-time.Hour),
	}, nil
}

// ListFiles returns an empty final page.
func (m *Store) ListFiles(ctx context.Context, cursor string, limit int) (*metastore.FilePage, error) {
	m.listCalls++

	if m.ListFilesFunc != nil {
		return m.ListFilesFunc(ctx, cursor, limit)
	}

	return &metastore.FilePage{}, nil
}

// NotifyJobComplete records the completion and succeeds.
func (m *Store) NotifyJobComplete(ctx context.Context, completion metastore.JobCompletion) error {
	m.notifyCalls++

	if m.NotifyJobCompleteFunc != nil {
		return m.NotifyJobCompleteFunc(ctx, completion)
	}

	m.Completions = append(m.Completions, completion)
	return nil
}

// Ping succeeds.
func (m *Store) Ping(ctx context.Context) error {
	m.pingCalls++

	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// PatchCalls returns the number of PatchFile invocations.
func (m *Store) PatchCalls() int { return m.patchCalls }

// GetCalls returns the number of GetFile invocations.
func (m *Store) GetCalls() int { return m.getCalls }

// ListCalls returns the number of ListFiles invocations.
func (m *Store) ListCalls() int { return m.listCalls }

// NotifyCalls returns the number of NotifyJobComplete invocations.
func (m *Store) NotifyCalls() int { return m.notifyCalls }

// PingCalls returns the number of Ping invocations.
func (m *Store) PingCalls() int { return m.pingCalls }

// Reset clears counters, recordings and injected behavior.
func (m *Store) Reset() {
	*m = Store{}
}
