// Package httpengine implements the search backend capability over a
// remote REST search service.
package httpengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
)

const defaultTimeout = 30 * time.Second

var (
	// ErrNameRequired is returned when no engine name is provided.
	ErrNameRequired = errors.New("engine name required")

	// ErrBaseURLRequired is returned when no base URL is provided.
	ErrBaseURLRequired = errors.New("base URL required")

	// ErrNotFound indicates the service has no document under the ID.
	ErrNotFound = errors.New("document not found")

	// ErrUnexpectedStatus is returned when the service answers outside
	// the 2xx range.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// Engine talks to one remote search service. Documents are replaced with
// PUT, removed with DELETE and queried with POST /search.
type Engine struct {
	name       string
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ search.Backend = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine) error

// WithTimeout sets the per-request timeout. Default is 30s.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		e.httpClient.Timeout = d
		return nil
	}
}

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

// New creates an engine for the service at baseURL, registered under the
// given routing name. The auth token may be empty for unauthenticated
// services.
func New(name, baseURL, authToken string, opts ...Option) (*Engine, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	e := &Engine{
		name:      name,
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.logger = e.logger.With("component", "search-httpengine", "engine", name)
	return e, nil
}

// Name implements search.Backend.
func (e *Engine) Name() string {
	return e.name
}

// Upsert implements search.Backend by PUTting the document.
func (e *Engine) Upsert(ctx context.Context, doc *core.SearchDocument) (err error) {
	defer func() { search.ObserveOp(e.name, "upsert", err) }()

	err = e.do(ctx, http.MethodPut, "/documents/"+url.PathEscape(doc.ID), doc, nil)
	return err
}

// Delete implements search.Backend. A 404 from the service counts as
// success so deletes stay idempotent.
func (e *Engine) Delete(ctx context.Context, id string) (err error) {
	defer func() { search.ObserveOp(e.name, "delete", err) }()

	err = e.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	return err
}

type queryRequest struct {
	Query   string       `json:"query"`
	Filters queryFilters `json:"filters"`
	Limit   int          `json:"limit"`
}

type queryFilters struct {
	UserID   string `json:"userId,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type queryResponse struct {
	Documents []*core.SearchDocument `json:"documents"`
}

// Query implements search.Backend.
func (e *Engine) Query(ctx context.Context, query string, filters search.Filters, limit int) (docs []*core.SearchDocument, err error) {
	defer func() { search.ObserveOp(e.name, "query", err) }()

	request := queryRequest{
		Query: query,
		Filters: queryFilters{
			UserID:   filters.UserID,
			MimeType: filters.MimeType,
		},
		Limit: limit,
	}
	var response queryResponse
	if err = e.do(ctx, http.MethodPost, "/search", request, &response); err != nil {
		return nil, err
	}
	if response.Documents == nil {
		return []*core.SearchDocument{}, nil
	}
	return response.Documents, nil
}

// Ping implements search.Backend.
func (e *Engine) Ping(ctx context.Context) (err error) {
	defer func() { search.ObserveOp(e.name, "ping", err) }()

	err = e.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

// do executes one request against the service and decodes the response
// into out when non-nil.
func (e *Engine) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.authToken)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: %s %s returned %d",
			ErrUnexpectedStatus, method, path, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
