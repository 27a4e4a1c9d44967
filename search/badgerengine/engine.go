// Package badgerengine implements the search backend capability on an
// embedded BadgerDB store. Documents and a token index live in the same
// database, so a single instance serves deployments that have no external
// search service.
package badgerengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
)

// ErrClosed is returned when an operation runs against a closed engine.
var ErrClosed = errors.New("search database closed")

// Engine stores search documents plus a token index in one BadgerDB
// database.
type Engine struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ search.Backend = (*Engine)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist. With inMemory set the path
// is ignored and nothing is persisted.
func Open(filePath string, inMemory bool) (*Engine, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Engine{
		db:     db,
		logger: slog.Default().With("component", "search-badgerengine"),
	}, nil
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Name implements search.Backend.
func (e *Engine) Name() string {
	return "badger"
}

// withTx executes a function within a BadgerDB transaction.
// The transaction is automatically discarded if fn returns an error.
func (e *Engine) withTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := e.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// Upsert implements search.Backend. A previous version's token index
// entries are removed before the new ones are written, so stale tokens
// never match the document again.
func (e *Engine) Upsert(ctx context.Context, doc *core.SearchDocument) (err error) {
	defer func() { search.ObserveOp(e.Name(), "upsert", err) }()

	err = e.withTx(func(tx *badger.Txn) error {
		old, err := readDocument(tx, makeDocumentKey(doc.ID))
		if err != nil {
			return err
		}
		if old != nil {
			if err := removeTokens(tx, old); err != nil {
				return err
			}
		}
		if err := tx.Set(makeDocumentKey(doc.ID), search.MarshalDocument(doc)); err != nil {
			return err
		}
		if err := writeTokens(tx, doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return err
}

// Delete implements search.Backend. Deleting an absent ID is a no-op.
func (e *Engine) Delete(ctx context.Context, id string) (err error) {
	defer func() { search.ObserveOp(e.Name(), "delete", err) }()

	err = e.withTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return nil
		}
		if err := removeTokens(tx, doc); err != nil {
			return err
		}
		if err := tx.Delete(makeDocumentKey(id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	return err
}

// Query implements search.Backend. Candidates are collected through the
// token index, filtered, then ranked by how many query tokens they
// matched.
func (e *Engine) Query(ctx context.Context, query string, filters search.Filters, limit int) (docs []*core.SearchDocument, err error) {
	defer func() { search.ObserveOp(e.Name(), "query", err) }()

	tokens := search.Tokenize(query)
	if len(tokens) == 0 || limit < 1 {
		return []*core.SearchDocument{}, nil
	}

	var results []*core.SearchDocument
	hits := make(map[string]int)

	err = e.withTx(func(tx *badger.Txn) error {
		seen := make(map[string]bool, len(tokens))
		for _, token := range tokens {
			if seen[token] {
				continue
			}
			seen[token] = true
			if err := scanToken(tx, token, hits); err != nil {
				return err
			}
		}

		for id := range hits {
			doc, err := readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc == nil {
				// Index entry orphaned by a concurrent delete.
				continue
			}
			if !filters.Match(doc) {
				continue
			}
			results = append(results, doc)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// More matched tokens first; ties ordered by ID so paging stays stable.
	slices.SortFunc(results, func(a, b *core.SearchDocument) int {
		if hits[a.ID] != hits[b.ID] {
			return hits[b.ID] - hits[a.ID]
		}
		return strings.Compare(a.ID, b.ID)
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Ping implements search.Backend.
func (e *Engine) Ping(ctx context.Context) (err error) {
	defer func() { search.ObserveOp(e.Name(), "ping", err) }()

	if e.db.IsClosed() {
		err = ErrClosed
	}
	return err
}

// readDocument reads and unmarshals a document, returning nil if the key
// doesn't exist.
func readDocument(tx *badger.Txn, key []byte) (*core.SearchDocument, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.SearchDocument
	err = item.Value(func(val []byte) error {
		var umErr error
		doc, umErr = search.UnmarshalDocument(val)
		return umErr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// writeTokens writes one token index entry per unique document token.
func writeTokens(tx *badger.Txn, doc *core.SearchDocument) error {
	for token := range search.TokenSet(search.DocumentText(doc)) {
		if err := tx.Set(makeTokenKey(token, doc.ID), []byte(doc.ID)); err != nil {
			return err
		}
	}
	return nil
}

// removeTokens deletes the document's token index entries.
func removeTokens(tx *badger.Txn, doc *core.SearchDocument) error {
	for token := range search.TokenSet(search.DocumentText(doc)) {
		if err := tx.Delete(makeTokenKey(token, doc.ID)); err != nil {
			return err
		}
	}
	return nil
}

// scanToken walks one token's index entries and counts a hit per
// document.
func scanToken(tx *badger.Txn, token string, hits map[string]int) error {
	prefix := makePartialTokenKey(token)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		hits[string(key[len(prefix):])]++
	}
	return nil
}
