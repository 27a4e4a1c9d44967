package reindex

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/metastore"
	"github.com/tamylaa/content-skimmer/metastore/mock"
)

func metaFiles(ids ...string) []*core.FileMetadata {
	files := make([]*core.FileMetadata, len(ids))
	for i, id := range ids {
		files[i] = &core.FileMetadata{
			FileID: id,
			UserID: "u-1",
			Status: core.FileStatusAnalyzed,
		}
	}
	return files
}

func collectIDs(files []*core.FileMetadata) []string {
	ids := make([]string, len(files))
	for i, f := range files {
		ids[i] = f.FileID
	}
	return ids
}

func TestPageIterator_WalksAllPages(t *testing.T) {
	store := mock.NewStore()
	var cursors []string
	store.ListFilesFunc = func(_ context.Context, cursor string, _ int) (*metastore.FilePage, error) {
		cursors = append(cursors, cursor)
		switch cursor {
		case "":
			return &metastore.FilePage{Files: metaFiles("f-1", "f-2"), NextCursor: "c1"}, nil
		case "c1":
			return &metastore.FilePage{Files: metaFiles("f-3", "f-4"), NextCursor: "c2"}, nil
		case "c2":
			return &metastore.FilePage{Files: metaFiles("f-5")}, nil
		default:
			return nil, errors.New("unexpected cursor")
		}
	}

	var seen []string
	it := NewPageIterator(store, 2)
	err := it.ForEach(context.Background(), func(files []*core.FileMetadata) error {
		seen = append(seen, collectIDs(files)...)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"f-1", "f-2", "f-3", "f-4", "f-5"}, seen)
	assert.Equal(t, []string{"", "c1", "c2"}, cursors)
}

func TestPageIterator_PassesBatchSizeAsLimit(t *testing.T) {
	store := mock.NewStore()
	var gotLimit int
	store.ListFilesFunc = func(_ context.Context, _ string, limit int) (*metastore.FilePage, error) {
		gotLimit = limit
		return &metastore.FilePage{}, nil
	}

	err := NewPageIterator(store, 25).ForEach(context.Background(), func([]*core.FileMetadata) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 25, gotLimit)

	err = NewPageIterator(store, 0).ForEach(context.Background(), func([]*core.FileMetadata) error {
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, gotLimit, "non-positive batch size falls back to the default")
}

func TestPageIterator_EmptyListing(t *testing.T) {
	store := mock.NewStore()

	calls := 0
	err := NewPageIterator(store, 10).ForEach(context.Background(), func([]*core.FileMetadata) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 0, calls, "empty listing should never invoke the callback")
	assert.Equal(t, 1, store.ListCalls())
}

func TestPageIterator_SkipsEmptyPagesWithCursor(t *testing.T) {
	store := mock.NewStore()
	store.ListFilesFunc = func(_ context.Context, cursor string, _ int) (*metastore.FilePage, error) {
		if cursor == "" {
			return &metastore.FilePage{NextCursor: "c1"}, nil
		}
		return &metastore.FilePage{Files: metaFiles("f-1")}, nil
	}

	var seen []string
	err := NewPageIterator(store, 10).ForEach(context.Background(), func(files []*core.FileMetadata) error {
		seen = append(seen, collectIDs(files)...)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"f-1"}, seen)
}

func TestPageIterator_StopsOnCallbackError(t *testing.T) {
	store := mock.NewStore()
	store.ListFilesFunc = func(_ context.Context, _ string, _ int) (*metastore.FilePage, error) {
		return &metastore.FilePage{Files: metaFiles("f-1"), NextCursor: "c1"}, nil
	}

	broken := errors.New("batch exploded")
	calls := 0
	err := NewPageIterator(store, 10).ForEach(context.Background(), func([]*core.FileMetadata) error {
		calls++
		return broken
	})

	require.ErrorIs(t, err, broken)
	assert.Equal(t, 1, calls)
}

func TestPageIterator_PropagatesListError(t *testing.T) {
	store := mock.NewStore()
	unreachable := errors.New("store unreachable")
	store.ListFilesFunc = func(_ context.Context, _ string, _ int) (*metastore.FilePage, error) {
		return nil, unreachable
	}

	err := NewPageIterator(store, 10).ForEach(context.Background(), func([]*core.FileMetadata) error {
		t.Fatal("callback must not run when listing fails")
		return nil
	})

	require.ErrorIs(t, err, unreachable)
	assert.Contains(t, err.Error(), "list files")
}

func TestPageIterator_ContextCancellation(t *testing.T) {
	store := mock.NewStore()
	store.ListFilesFunc = func(_ context.Context, cursor string, _ int) (*metastore.FilePage, error) {
		return &metastore.FilePage{Files: metaFiles("f-1"), NextCursor: cursor + "x"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewPageIterator(store, 10).ForEach(ctx, func([]*core.FileMetadata) error {
		calls++
		cancel()
		return nil
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "cancellation between pages should stop the walk")
}

func TestPageIterator_CursorMustAdvance(t *testing.T) {
	store := mock.NewStore()
	store.ListFilesFunc = func(_ context.Context, cursor string, _ int) (*metastore.FilePage, error) {
		if cursor == "" {
			return &metastore.FilePage{Files: metaFiles("f-1"), NextCursor: "c1"}, nil
		}
		return &metastore.FilePage{Files: metaFiles("f-2"), NextCursor: "c1"}, nil
	}

	calls := 0
	err := NewPageIterator(store, 10).ForEach(context.Background(), func([]*core.FileMetadata) error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not advance")
	assert.Equal(t, 2, calls)
}
