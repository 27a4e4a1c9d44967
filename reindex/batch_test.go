package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
	"github.com/tamylaa/content-skimmer/search/mock"
)

func analyzedFile(id string) *core.FileMetadata {
	return &core.FileMetadata{
		FileID:       id,
		UserID:       "u-1",
		Filename:     id + ".pdf",
		MimeType:     "application/pdf",
		FileSize:     2048,
		Status:       core.FileStatusAnalyzed,
		UploadedAt:   time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
		LastAnalyzed: time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		Summary:      "quarterly figures for " + id,
		Entities:     []string{"Acme Corp"},
		Topics:       []string{"finance"},
	}
}

func fileWithStatus(id string, status core.FileStatus) *core.FileMetadata {
	meta := analyzedFile(id)
	meta.Status = status
	meta.Summary = ""
	meta.Entities = nil
	meta.Topics = nil
	return meta
}

func TestBatchProcessor_Process(t *testing.T) {
	alpha := mock.NewBackend("alpha")
	beta := mock.NewBackend("beta")
	bp := NewBatchProcessor([]search.Backend{alpha, beta}, 3, 5*time.Millisecond)

	files := []*core.FileMetadata{
		analyzedFile("f-1"),
		fileWithStatus("f-2", core.FileStatusRegistered),
		analyzedFile("f-3"),
		fileWithStatus("f-4", core.FileStatusFailed),
	}

	indexed, err := bp.Process(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, indexed, "only analyzed files carry a document")

	for _, backend := range []*mock.Backend{alpha, beta} {
		assert.NotNil(t, backend.Document("f-1"))
		assert.NotNil(t, backend.Document("f-3"))
		assert.Nil(t, backend.Document("f-2"))
		assert.Nil(t, backend.Document("f-4"))
		assert.Equal(t, 2, backend.Upserts())
	}
}

func TestBatchProcessor_DerivedDocument(t *testing.T) {
	backend := mock.NewBackend("alpha")
	bp := NewBatchProcessor([]search.Backend{backend}, 3, 5*time.Millisecond)

	meta := analyzedFile("f-1")
	_, err := bp.Process(context.Background(), []*core.FileMetadata{meta})
	require.NoError(t, err)

	doc := backend.Document("f-1")
	require.NotNil(t, doc)
	assert.Equal(t, meta.FileID, doc.ID)
	assert.Equal(t, meta.Filename, doc.Title)
	assert.Equal(t, meta.Summary, doc.Summary)
	assert.Equal(t, meta.Entities, doc.Entities)
	assert.Equal(t, meta.Topics, doc.Topics)
	assert.Equal(t, meta.UserID, doc.UserID)
	assert.Equal(t, meta.Filename, doc.Filename)
	assert.Equal(t, meta.MimeType, doc.MimeType)
	assert.Equal(t, meta.UploadedAt, doc.UploadedAt)
	assert.Equal(t, meta.LastAnalyzed, doc.LastAnalyzed)
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	backend := mock.NewBackend("alpha")
	bp := NewBatchProcessor([]search.Backend{backend}, 3, 5*time.Millisecond)

	indexed, err := bp.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, indexed)
	assert.Equal(t, 0, backend.Upserts())
}

func TestBatchProcessor_RetriesFailedUpserts(t *testing.T) {
	backend := mock.NewBackend("alpha")
	attempts := 0
	backend.UpsertFunc = func(_ context.Context, _ *core.SearchDocument) error {
		attempts++
		if attempts < 3 {
			return errors.New("backend hiccup")
		}
		return nil
	}

	bp := NewBatchProcessor([]search.Backend{backend}, 3, 5*time.Millisecond)
	indexed, err := bp.Process(context.Background(), []*core.FileMetadata{analyzedFile("f-1")})

	require.NoError(t, err)
	assert.Equal(t, 1, indexed)
	assert.Equal(t, 3, attempts, "should retry until the upsert lands")
}

func TestBatchProcessor_GivesUpAfterMaxAttempts(t *testing.T) {
	backend := mock.NewBackend("alpha")
	down := errors.New("backend down")
	attempts := 0
	backend.UpsertFunc = func(_ context.Context, _ *core.SearchDocument) error {
		attempts++
		return down
	}

	bp := NewBatchProcessor([]search.Backend{backend}, 2, 5*time.Millisecond)
	indexed, err := bp.Process(context.Background(), []*core.FileMetadata{analyzedFile("f-1")})

	require.ErrorIs(t, err, down)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, 0, indexed)
	assert.Equal(t, 2, attempts)
}
