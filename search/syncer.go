package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/events"
	"github.com/tamylaa/content-skimmer/retry"
)

const (
	// defaultIndexRetries bounds the attempts per backend indexing operation.
	defaultIndexRetries = 3
	// defaultQueryLimit applies when a caller passes a limit below 1.
	defaultQueryLimit = 20
)

// Gateway is the slice of the metadata gateway the syncer relies on.
type Gateway interface {
	FileMetadata(ctx context.Context, fileID string) (*core.FileMetadata, error)
	MarkFailed(ctx context.Context, fileID, reason string) error
}

// Enqueuer is the retry-queue capability used for indexing delivery.
type Enqueuer interface {
	Add(id string, op retry.Operation, maxRetries int) error
}

// Syncer keeps the configured search backends in step with completed
// analyses. It consumes pipeline events and never fails the pipeline:
// indexing problems are retried by the queue and eventually dropped.
type Syncer struct {
	gateway    Gateway
	queue      Enqueuer
	backends   []Backend
	maxRetries int
	logger     *slog.Logger
	now        func() time.Time // replaced in tests
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SyncerOption {
	return func(s *Syncer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMaxRetries sets the attempt budget per indexing operation.
// Default is 3.
func WithMaxRetries(n int) SyncerOption {
	return func(s *Syncer) error {
		if n > 0 {
			s.maxRetries = n
		}
		return nil
	}
}

// NewSyncer creates a syncer fanning out to the given backends.
func NewSyncer(gateway Gateway, queue Enqueuer, backends []Backend, opts ...SyncerOption) (*Syncer, error) {
	if gateway == nil {
		return nil, ErrGatewayRequired
	}
	if queue == nil {
		return nil, ErrQueueRequired
	}
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	s := &Syncer{
		gateway:    gateway,
		queue:      queue,
		backends:   backends,
		maxRetries: defaultIndexRetries,
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "search-syncer")
	return s, nil
}

// Backends returns the configured backends in routing order.
func (s *Syncer) Backends() []Backend {
	return s.backends
}

// HandleCompleted consumes an analysis_completed event: it derives the
// file's search document and enqueues one indexing operation per backend.
func (s *Syncer) HandleCompleted(event events.Event) {
	payload, ok := event.Payload.(core.AnalysisCompleted)
	if !ok {
		s.logger.Error("unexpected event payload", "event_type", event.Type)
		return
	}
	// Indexing outlives the invocation that triggered it.
	s.Sync(context.Background(), payload.Context, payload.Result)
}

// HandleFailed consumes an analysis_failed event and records the failed
// status on the metadata store, best-effort.
func (s *Syncer) HandleFailed(event events.Event) {
	payload, ok := event.Payload.(core.AnalysisFailed)
	if !ok {
		s.logger.Error("unexpected event payload", "event_type", event.Type)
		return
	}
	if err := s.gateway.MarkFailed(context.Background(), payload.Context.FileID, payload.Reason); err != nil {
		s.logger.Warn("failed-status patch not recorded",
			"file_id", payload.Context.FileID,
			"err", err)
	}
}

// Sync derives the search document for one completed analysis and enqueues
// the per-backend upserts on the retry queue.
func (s *Syncer) Sync(ctx context.Context, pctx core.ProcessingContext, result *core.AnalysisResult) {
	meta, err := s.gateway.FileMetadata(ctx, pctx.FileID)
	if err != nil {
		s.logger.Error("metadata lookup failed, skipping indexing",
			"file_id", pctx.FileID,
			"err", err)
		return
	}
	if meta.Fallback {
		s.logger.Warn("indexing with placeholder metadata", "file_id", pctx.FileID)
	}
	if meta.UserID == "" {
		// The placeholder record has no owner; the processing context does.
		meta.UserID = pctx.UserID
	}

	doc := core.NewSearchDocument(meta, result, s.now())
	for _, backend := range s.backends {
		id := fmt.Sprintf("index:%s:%s", backend.Name(), doc.ID)
		op := func(ctx context.Context) error {
			return backend.Upsert(ctx, doc)
		}
		if err := s.queue.Add(id, op, s.maxRetries); err != nil {
			s.logger.Error("indexing enqueue failed", "id", id, "err", err)
		}
	}
	s.logger.Debug("indexing enqueued",
		"file_id", doc.ID,
		"backends", len(s.backends))
}

// Search routes a query to the named engine, or the first configured one
// when engine is empty.
func (s *Syncer) Search(ctx context.Context, query, userID, engine string, limit int) ([]*core.SearchDocument, error) {
	backend, err := s.routeTo(engine)
	if err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultQueryLimit
	}
	return backend.Query(ctx, query, Filters{UserID: userID}, limit)
}

func (s *Syncer) routeTo(engine string) (Backend, error) {
	if engine == "" {
		return s.backends[0], nil
	}
	for _, backend := range s.backends {
		if backend.Name() == engine {
			return backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, engine)
}
