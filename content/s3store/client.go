// Package s3store reads file content directly from S3-compatible object
// storage. It serves deployments where the processing core holds bucket
// credentials and the upload service only reports storage keys.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tamylaa/content-skimmer/content"
	"github.com/tamylaa/content-skimmer/core"
)

const defaultMaxBytes = 100 << 20 // 100 MiB

// Config holds the object storage connection settings.
type Config struct {
	// Endpoint is the storage host in host:port form, without a scheme.
	Endpoint string
	// AccessKey and SecretKey authenticate against the storage service.
	AccessKey string
	SecretKey string
	// Bucket is the bucket holding uploaded files.
	Bucket string
	// Region is optional; some S3 deployments require it.
	Region string
	// UseSSL enables TLS for the connection.
	UseSSL bool
}

// Client fetches file content from an S3-compatible bucket.
type Client struct {
	client   *minio.Client
	bucket   string
	maxBytes int64
	logger   *slog.Logger
}

var _ content.Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client) error

// WithMaxBytes caps the content size the client will read.
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

// New creates a client for the bucket described by cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("bucket is required")
	}

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	c := &Client{
		client:   mc,
		bucket:   cfg.Bucket,
		maxBytes: defaultMaxBytes,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			return nil, optErr
		}
	}

	c.logger = c.logger.With("component", "s3store")
	return c, nil
}

// Fetch reads the object behind the event's storage key, bounded by the
// size limit.
func (c *Client) Fetch(ctx context.Context, event *core.FileRegistrationEvent) ([]byte, error) {
	if event == nil || event.StorageKey == "" {
		return nil, content.ErrNoSource
	}

	start := time.Now()

	obj, err := c.client.GetObject(ctx, c.bucket, event.StorageKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", event.StorageKey, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", event.StorageKey, err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", content.ErrTooLarge, c.maxBytes)
	}

	c.logger.Debug("object fetched",
		"storage_key", event.StorageKey,
		"bytes", len(data),
		"duration", time.Since(start))
	return data, nil
}
