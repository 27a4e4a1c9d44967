package search

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tamylaa/content-skimmer/core"
)

var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skimmer_search_ops_total",
	Help: "Search backend operations, by engine, operation and outcome.",
}, []string{"engine", "op", "outcome"})

// ObserveOp records the outcome of one backend operation. Engine
// implementations call this from every exported operation.
func ObserveOp(engine, op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	opsTotal.WithLabelValues(engine, op, outcome).Inc()
}

// Filters narrow a query to matching documents. Zero-valued fields are not
// applied.
type Filters struct {
	UserID   string
	MimeType string
}

// Match reports whether the document satisfies the filters.
func (f Filters) Match(doc *core.SearchDocument) bool {
	if f.UserID != "" && doc.UserID != f.UserID {
		return false
	}
	if f.MimeType != "" && doc.MimeType != f.MimeType {
		return false
	}
	return true
}

// Backend is one search engine behind the shared capability interface.
// Implementations must be safe for concurrent use, and Upsert must
// replace by document ID so indexing retries and re-analyses leave a
// single current entry.
type Backend interface {
	// Name identifies the engine for routing and metrics.
	Name() string

	// Upsert inserts the document or replaces the one stored under the
	// same ID.
	Upsert(ctx context.Context, doc *core.SearchDocument) error

	// Delete removes the document. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// Query returns up to limit documents matching the query text and
	// filters, most relevant first.
	Query(ctx context.Context, query string, filters Filters, limit int) ([]*core.SearchDocument, error)

	// Ping verifies the engine is reachable.
	Ping(ctx context.Context) error
}
