package metastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tamylaa/content-skimmer/core"
)

const defaultTimeout = 30 * time.Second

// Client implements Store over the metadata service's HTTP API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Store = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithTimeout sets the HTTP timeout for store requests.
// Default is 30 seconds.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a client for the metadata service at baseURL. The auth
// token may be empty for services that do not require authentication.
func NewClient(baseURL, authToken string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.logger = c.logger.With("component", "metastore")
	return c, nil
}

// PatchFile applies a partial update via PATCH /files/{id}.
func (c *Client) PatchFile(ctx context.Context, fileID string, patch FilePatch) error {
	path := "/files/" + url.PathEscape(fileID)
	return c.do(ctx, http.MethodPatch, path, patch, nil)
}

// GetFile retrieves the record via GET /files/{id}.
func (c *Client) GetFile(ctx context.Context, fileID string) (*core.FileMetadata, error) {
	path := "/files/" + url.PathEscape(fileID)

	var meta core.FileMetadata
	if err := c.do(ctx, http.MethodGet, path, nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// ListFiles retrieves one page via GET /files?cursor=&limit=.
func (c *Client) ListFiles(ctx context.Context, cursor string, limit int) (*FilePage, error) {
	query := url.Values{}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	path := "/files"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var page FilePage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// NotifyJobComplete delivers the webhook via POST /webhook/job-complete.
func (c *Client) NotifyJobComplete(ctx context.Context, completion JobCompletion) error {
	return c.do(ctx, http.MethodPost, "/webhook/job-complete", completion, nil)
}

// Ping verifies the service answers GET /health.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// do performs one JSON request against the service. A non-nil body is
// marshaled into the request; a non-nil out receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
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
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
