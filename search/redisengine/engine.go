// Package redisengine implements the search backend capability on Redis.
// Documents live as JSON values and a set per token serves as the index,
// so a query becomes one server-side set intersection.
package redisengine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
)

const connectTimeout = 10 * time.Second

// Key prefixes for stored documents and the token index
const (
	documentKeyPrefix = "doc:"
	tokenKeyPrefix    = "tok:"
)

// ErrURLRequired is returned when no Redis URL is provided.
var ErrURLRequired = errors.New("redis url required")

// Engine stores search documents in a Redis instance.
type Engine struct {
	client *redis.Client
	logger *slog.Logger
}

var _ search.Backend = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New connects to the Redis instance at redisURL
// (redis://[user:pass@]host:port/db) and verifies the connection before
// returning.
func New(redisURL string, opts ...Option) (*Engine, error) {
	if redisURL == "" {
		return nil, ErrURLRequired
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return newWithClient(client, opts...)
}

// newWithClient wires an engine over an established client. Tests use it
// to inject a client pointed at an in-process server.
func newWithClient(client *redis.Client, opts ...Option) (*Engine, error) {
	e := &Engine{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "search-redisengine")
	return e, nil
}

// Close closes the underlying client.
func (e *Engine) Close() error {
	return e.client.Close()
}

// Name implements search.Backend.
func (e *Engine) Name() string {
	return "redis"
}

func docKey(id string) string {
	return documentKeyPrefix + id
}

func tokenKey(token string) string {
	return tokenKeyPrefix + token
}

// Upsert implements search.Backend. The document value and its token set
// memberships are replaced in one transaction.
func (e *Engine) Upsert(ctx context.Context, doc *core.SearchDocument) (err error) {
	defer func() { search.ObserveOp(e.Name(), "upsert", err) }()

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	old, err := e.load(ctx, doc.ID)
	if err != nil {
		return err
	}

	pipe := e.client.TxPipeline()
	if old != nil {
		for token := range search.TokenSet(search.DocumentText(old)) {
			pipe.SRem(ctx, tokenKey(token), doc.ID)
		}
	}
	pipe.Set(ctx, docKey(doc.ID), payload, 0)
	for token := range search.TokenSet(search.DocumentText(doc)) {
		pipe.SAdd(ctx, tokenKey(token), doc.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Delete implements search.Backend. Deleting an absent ID is a no-op.
func (e *Engine) Delete(ctx context.Context, id string) (err error) {
	defer func() { search.ObserveOp(e.Name(), "delete", err) }()

	old, err := e.load(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return nil
	}

	pipe := e.client.TxPipeline()
	for token := range search.TokenSet(search.DocumentText(old)) {
		pipe.SRem(ctx, tokenKey(token), id)
	}
	pipe.Del(ctx, docKey(id))
	_, err = pipe.Exec(ctx)
	return err
}

// Query implements search.Backend. Candidates must carry every query
// token; SINTER does the matching server-side. Results come back in ID
// order so paging stays stable.
func (e *Engine) Query(ctx context.Context, query string, filters search.Filters, limit int) (docs []*core.SearchDocument, err error) {
	defer func() { search.ObserveOp(e.Name(), "query", err) }()

	tokens := search.Tokenize(query)
	if len(tokens) == 0 || limit < 1 {
		return []*core.SearchDocument{}, nil
	}

	keys := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		if seen[token] {
			continue
		}
		seen[token] = true
		keys = append(keys, tokenKey(token))
	}

	ids, err := e.client.SInter(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)

	docs = make([]*core.SearchDocument, 0, len(ids))
	for _, id := range ids {
		doc, err := e.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			// Index entry orphaned by a concurrent delete.
			continue
		}
		if !filters.Match(doc) {
			continue
		}
		docs = append(docs, doc)
		if len(docs) == limit {
			break
		}
	}
	return docs, nil
}

// Ping implements search.Backend.
func (e *Engine) Ping(ctx context.Context) (err error) {
	defer func() { search.ObserveOp(e.Name(), "ping", err) }()

	err = e.client.Ping(ctx).Err()
	return err
}

// load reads and decodes a document, returning nil if the key doesn't
// exist.
func (e *Engine) load(ctx context.Context, id string) (*core.SearchDocument, error) {
	data, err := e.client.Get(ctx, docKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var doc core.SearchDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}
