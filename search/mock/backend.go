// Package mock provides a configurable in-memory search backend for tests.
package mock

import (
	"context"
	"sync"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
)

// Backend is a test double for search.Backend. Unset function fields fall
// back to an in-memory document map. All methods are safe for concurrent
// use since indexing operations run on queue goroutines.
type Backend struct {
	UpsertFunc func(ctx context.Context, doc *core.SearchDocument) error
	DeleteFunc func(ctx context.Context, id string) error
	QueryFunc  func(ctx context.Context, query string, filters search.Filters, limit int) ([]*core.SearchDocument, error)
	PingFunc   func(ctx context.Context) error

	name string

	mu      sync.Mutex
	docs    map[string]*core.SearchDocument
	upserts int
	deletes int
	queries int
	pings   int
}

var _ search.Backend = (*Backend)(nil)

// NewBackend creates a mock backend answering to the given engine name.
func NewBackend(name string) *Backend {
	return &Backend{
		name: name,
		docs: make(map[string]*core.SearchDocument),
	}
}

// Name returns the engine name given at construction.
func (b *Backend) Name() string {
	return b.name
}

// Upsert stores the document, or calls UpsertFunc when set.
func (b *Backend) Upsert(ctx context.Context, doc *core.SearchDocument) error {
	b.mu.Lock()
	b.upserts++
	fn := b.UpsertFunc
	if fn == nil {
		b.docs[doc.ID] = doc
	}
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, doc)
	}
	return nil
}

// Delete removes the document, or calls DeleteFunc when set.
func (b *Backend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	b.deletes++
	fn := b.DeleteFunc
	if fn == nil {
		delete(b.docs, id)
	}
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, id)
	}
	return nil
}

// Query returns the stored documents passing the filters, or calls
// QueryFunc when set.
func (b *Backend) Query(ctx context.Context, query string, filters search.Filters, limit int) ([]*core.SearchDocument, error) {
	b.mu.Lock()
	b.queries++
	fn := b.QueryFunc
	var results []*core.SearchDocument
	if fn == nil {
		for _, doc := range b.docs {
			if filters.Match(doc) {
				results = append(results, doc)
			}
			if len(results) >= limit {
				break
			}
		}
	}
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, filters, limit)
	}
	return results, nil
}

// Ping reports healthy, or calls PingFunc when set.
func (b *Backend) Ping(ctx context.Context) error {
	b.mu.Lock()
	b.pings++
	fn := b.PingFunc
	b.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	return nil
}

// Document returns the stored document with the given ID, or nil.
func (b *Backend) Document(id string) *core.SearchDocument {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.docs[id]
}

// Upserts returns the number of Upsert calls.
func (b *Backend) Upserts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.upserts
}

// Deletes returns the number of Delete calls.
func (b *Backend) Deletes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deletes
}

// Queries returns the number of Query calls.
func (b *Backend) Queries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries
}

// Pings returns the number of Ping calls.
func (b *Backend) Pings() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pings
}

// Reset restores the zero state, keeping the engine name.
func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.UpsertFunc = nil
	b.DeleteFunc = nil
	b.QueryFunc = nil
	b.PingFunc = nil
	b.docs = make(map[string]*core.SearchDocument)
	b.upserts = 0
	b.deletes = 0
	b.queries = 0
	b.pings = 0
}
