// Copyright 2026 Tamyla
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package httpstore fetches file content through the upload service's
// HTTP API. When the registration event carries no pre-signed download
// URL, the client asks the service for one first.
package httpstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tamylaa/content-skimmer/content"
	"github.com/tamylaa/content-skimmer/core"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skimmer_httpstore_fetches_total",
		Help: "HTTP content fetch attempts, by outcome.",
	}, []string{"outcome"})

	fetchBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skimmer_httpstore_fetch_bytes_total",
		Help: "Total content bytes fetched over HTTP.",
	})
)

const (
	defaultTimeout  = 60 * time.Second
	defaultMaxBytes = 100 << 20 // 100 MiB
)

// Client fetches file content from the upload service.
type Client struct {
	baseURL    string
	authToken  string
	maxBytes   int64
	httpClient *http.Client
	logger     *slog.Logger
}

var _ content.Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithTimeout sets the HTTP timeout for signed-url and download requests.
// Default is 60 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		c.httpClient.Timeout = d
		return nil
	}
}

// WithMaxBytes caps the content size the client will download.
// Default is 100 MiB.
func WithMaxBytes(n int64) Option {
	return func(c *Client) error {
		if n < 1 {
			return errors.New("max bytes must be positive")
		}
		c.maxBytes = n
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a client for the upload service at baseURL. The auth token
// may be empty for services that do not require authentication.
func New(baseURL, authToken string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("base url is required")
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		authToken: authToken,
		maxBytes:  defaultMaxBytes,
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

	c.logger = c.logger.With("component", "httpstore")
	return c, nil
}

// Fetch downloads the content of the file the event describes. A missing
// download URL is resolved through the signed-url endpoint first.
func (c *Client) Fetch(ctx context.Context, event *core.FileRegistrationEvent) ([]byte, error) {
	if event == nil || event.FileID == "" {
		fetchesTotal.WithLabelValues("no_source").Inc()
		return nil, content.ErrNoSource
	}

	start := time.Now()

	downloadURL := event.DownloadURL
	if downloadURL == "" {
		signed, err := c.signedURL(ctx, event.FileID)
		if err != nil {
			fetchesTotal.WithLabelValues("signed_url_error").Inc()
			return nil, err
		}
		downloadURL = signed
	}

	data, err := c.download(ctx, downloadURL)
	if err != nil {
		fetchesTotal.WithLabelValues("download_error").Inc()
		return nil, err
	}

	fetchesTotal.WithLabelValues("success").Inc()
	fetchBytesTotal.Add(float64(len(data)))

	c.logger.Debug("content fetched",
		"file_id", event.FileID,
		"bytes", len(data),
		"duration", time.Since(start))
	return data, nil
}

// signedURLResponse mirrors the upload service's signed-url payload.
type signedURLResponse struct {
	SignedURL string    `json:"signedUrl"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// signedURL asks the upload service for a short-lived download URL.
func (c *Client) signedURL(ctx context.Context, fileID string) (string, error) {
	reqURL := fmt.Sprintf("%s/files/%s/signed-url", c.baseURL, url.PathEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create signed-url request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request signed url for %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: signed-url returned %d for %s",
			content.ErrUnexpectedStatus, resp.StatusCode, fileID)
	}

	var payload signedURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode signed-url response: %w", err)
	}
	if payload.SignedURL == "" {
		return "", fmt.Errorf("signed-url response for %s has no url", fileID)
	}
	return payload.SignedURL, nil
}

// download reads the content behind the URL, bounded by the size limit.
func (c *Client) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: download returned %d",
			content.ErrUnexpectedStatus, resp.StatusCode)
	}

	// Read one byte past the limit to tell "exactly at" from "over".
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", content.ErrTooLarge, c.maxBytes)
	}
	return data, nil
}
