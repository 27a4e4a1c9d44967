package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/events"
	"github.com/tamylaa/content-skimmer/retry"
)

// fakeGateway answers metadata lookups from a canned record.
type fakeGateway struct {
	meta    *core.FileMetadata
	metaErr error
	markErr error

	failed []string // reasons passed to MarkFailed
}

func (g *fakeGateway) FileMetadata(ctx context.Context, fileID string) (*core.FileMetadata, error) {
	if g.metaErr != nil {
		return nil, g.metaErr
	}
	if g.meta != nil {
		return g.meta, nil
	}
	return &core.FileMetadata{
		FileID:   fileID,
		UserID:   "u-1",
		Filename: "report.pdf",
		MimeType: "application/pdf",
		Status:   core.FileStatusAnalyzed,
	}, nil
}

func (g *fakeGateway) MarkFailed(ctx context.Context, fileID, reason string) error {
	if g.markErr != nil {
		return g.markErr
	}
	g.failed = append(g.failed, reason)
	return nil
}

// fakeQueue runs enqueued operations synchronously so tests stay
// deterministic.
type fakeQueue struct {
	ids     []string
	budgets []int
	addErr  error
}

func (q *fakeQueue) Add(id string, op retry.Operation, maxRetries int) error {
	if q.addErr != nil {
		return q.addErr
	}
	q.ids = append(q.ids, id)
	q.budgets = append(q.budgets, maxRetries)
	return op(context.Background())
}

// fakeBackend records upserts and serves canned query results.
type fakeBackend struct {
	name        string
	upserts     []*core.SearchDocument
	upsertErr   error
	queryResult []*core.SearchDocument

	lastQuery   string
	lastFilters Filters
	lastLimit   int
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Upsert(ctx context.Context, doc *core.SearchDocument) error {
	if b.upsertErr != nil {
		return b.upsertErr
	}
	b.upserts = append(b.upserts, doc)
	return nil
}

func (b *fakeBackend) Delete(ctx context.Context, id string) error { return nil }

func (b *fakeBackend) Query(ctx context.Context, query string, filters Filters, limit int) ([]*core.SearchDocument, error) {
	b.lastQuery = query
	b.lastFilters = filters
	b.lastLimit = limit
	return b.queryResult, nil
}

func (b *fakeBackend) Ping(ctx context.Context) error { return nil }

func newTestSyncer(t *testing.T, gateway Gateway, queue Enqueuer, backends ...Backend) *Syncer {
	t.Helper()
	s, err := NewSyncer(gateway, queue, backends)
	require.NoError(t, err)
	return s
}

func TestNewSyncer(t *testing.T) {
	gateway := &fakeGateway{}
	queue := &fakeQueue{}
	backend := &fakeBackend{name: "badger"}

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSyncer(gateway, queue, []Backend{backend})
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Len(t, s.Backends(), 1)
	})

	t.Run("nil gateway", func(t *testing.T) {
		_, err := NewSyncer(nil, queue, []Backend{backend})
		assert.Equal(t, ErrGatewayRequired, err)
	})

	t.Run("nil queue", func(t *testing.T) {
		_, err := NewSyncer(gateway, nil, []Backend{backend})
		assert.Equal(t, ErrQueueRequired, err)
	})

	t.Run("no backends", func(t *testing.T) {
		_, err := NewSyncer(gateway, queue, nil)
		assert.Equal(t, ErrNoBackends, err)
	})

	t.Run("with max retries", func(t *testing.T) {
		s, err := NewSyncer(gateway, queue, []Backend{backend}, WithMaxRetries(5))
		require.NoError(t, err)
		assert.Equal(t, 5, s.maxRetries)
	})
}

func TestSyncerHandleCompleted(t *testing.T) {
	gateway := &fakeGateway{}
	queue := &fakeQueue{}
	first := &fakeBackend{name: "badger"}
	second := &fakeBackend{name: "redis"}
	s := newTestSyncer(t, gateway, queue, first, second)

	analyzedAt := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return analyzedAt }

	s.HandleCompleted(events.Event{
		Type: core.EventAnalysisCompleted,
		Payload: core.AnalysisCompleted{
			Context: core.ProcessingContext{FileID: "f-1", UserID: "u-1", JobID: "job-1"},
			Result: &core.AnalysisResult{
				Summary:  "quarterly report",
				Entities: []string{"Acme Corp"},
				Topics:   []string{"finance"},
				Status:   core.AnalysisStatusCompleted,
			},
		},
	})

	assert.Equal(t, []string{"index:badger:f-1", "index:redis:f-1"}, queue.ids)
	assert.Equal(t, []int{3, 3}, queue.budgets)

	require.Len(t, first.upserts, 1)
	require.Len(t, second.upserts, 1)

	doc := first.upserts[0]
	assert.Equal(t, "f-1", doc.ID)
	assert.Equal(t, "report.pdf", doc.Title)
	assert.Equal(t, "quarterly report", doc.Summary)
	assert.Equal(t, []string{"Acme Corp"}, doc.Entities)
	assert.Equal(t, []string{"finance"}, doc.Topics)
	assert.Equal(t, "u-1", doc.UserID)
	assert.Equal(t, analyzedAt, doc.LastAnalyzed)
}

func TestSyncerHandleCompletedWrongPayload(t *testing.T) {
	queue := &fakeQueue{}
	backend := &fakeBackend{name: "badger"}
	s := newTestSyncer(t, &fakeGateway{}, queue, backend)

	s.HandleCompleted(events.Event{Type: core.EventAnalysisCompleted, Payload: "bogus"})

	assert.Empty(t, queue.ids)
	assert.Empty(t, backend.upserts)
}

func TestSyncerSyncPlaceholderMetadata(t *testing.T) {
	gateway := &fakeGateway{
		meta: &core.FileMetadata{
			FileID:   "f-1",
			Filename: "unknown-file",
			Fallback: true,
		},
	}
	queue := &fakeQueue{}
	backend := &fakeBackend{name: "badger"}
	s := newTestSyncer(t, gateway, queue, backend)

	s.Sync(context.Background(), core.ProcessingContext{FileID: "f-1", UserID: "u-7"}, &core.AnalysisResult{Summary: "s"})

	require.Len(t, backend.upserts, 1)
	assert.Equal(t, "u-7", backend.upserts[0].UserID, "owner comes from the processing context")
	assert.Equal(t, "unknown-file", backend.upserts[0].Title)
}

func TestSyncerSyncMetadataError(t *testing.T) {
	gateway := &fakeGateway{metaErr: errors.New("store gone")}
	queue := &fakeQueue{}
	backend := &fakeBackend{name: "badger"}
	s := newTestSyncer(t, gateway, queue, backend)

	s.Sync(context.Background(), core.ProcessingContext{FileID: "f-1"}, &core.AnalysisResult{})

	assert.Empty(t, queue.ids)
	assert.Empty(t, backend.upserts)
}

func TestSyncerSyncEnqueueError(t *testing.T) {
	queue := &fakeQueue{addErr: errors.New("queue closed")}
	backend := &fakeBackend{name: "badger"}
	s := newTestSyncer(t, &fakeGateway{}, queue, backend)

	s.Sync(context.Background(), core.ProcessingContext{FileID: "f-1"}, &core.AnalysisResult{})

	assert.Empty(t, backend.upserts)
}

func TestSyncerHandleFailed(t *testing.T) {
	t.Run("records the failed status", func(t *testing.T) {
		gateway := &fakeGateway{}
		s := newTestSyncer(t, gateway, &fakeQueue{}, &fakeBackend{name: "badger"})

		s.HandleFailed(events.Event{
			Type: core.EventAnalysisFailed,
			Payload: core.AnalysisFailed{
				Context: core.ProcessingContext{FileID: "f-1"},
				Reason:  "no compatible provider",
			},
		})

		assert.Equal(t, []string{"no compatible provider"}, gateway.failed)
	})

	t.Run("patch failure is absorbed", func(t *testing.T) {
		gateway := &fakeGateway{markErr: errors.New("store gone")}
		s := newTestSyncer(t, gateway, &fakeQueue{}, &fakeBackend{name: "badger"})

		s.HandleFailed(events.Event{
			Type:    core.EventAnalysisFailed,
			Payload: core.AnalysisFailed{Context: core.ProcessingContext{FileID: "f-1"}},
		})

		assert.Empty(t, gateway.failed)
	})

	t.Run("wrong payload type", func(t *testing.T) {
		gateway := &fakeGateway{}
		s := newTestSyncer(t, gateway, &fakeQueue{}, &fakeBackend{name: "badger"})

		s.HandleFailed(events.Event{Type: core.EventAnalysisFailed, Payload: 42})

		assert.Empty(t, gateway.failed)
	})
}

func TestSyncerSearch(t *testing.T) {
	ctx := context.Background()
	first := &fakeBackend{name: "badger", queryResult: []*core.SearchDocument{{ID: "f-1"}}}
	second := &fakeBackend{name: "redis", queryResult: []*core.SearchDocument{{ID: "f-2"}}}
	s := newTestSyncer(t, &fakeGateway{}, &fakeQueue{}, first, second)

	t.Run("default engine is the first configured", func(t *testing.T) {
		docs, err := s.Search(ctx, "revenue", "u-1", "", 10)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "f-1", docs[0].ID)
		assert.Equal(t, "revenue", first.lastQuery)
		assert.Equal(t, Filters{UserID: "u-1"}, first.lastFilters)
		assert.Equal(t, 10, first.lastLimit)
	})

	t.Run("routes by engine name", func(t *testing.T) {
		docs, err := s.Search(ctx, "revenue", "u-1", "redis", 10)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "f-2", docs[0].ID)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := s.Search(ctx, "revenue", "u-1", "opensearch", 10)
		assert.ErrorIs(t, err, ErrUnknownEngine)
	})

	t.Run("non-positive limit falls back to the default", func(t *testing.T) {
		_, err := s.Search(ctx, "revenue", "u-1", "", 0)
		require.NoError(t, err)
		assert.Equal(t, defaultQueryLimit, first.lastLimit)
	})
}
