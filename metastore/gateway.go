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


package metastore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tamylaa/content-skimmer/breaker"
	"github.com/tamylaa/content-skimmer/core"
)

// Breaker dependency names used by the gateway. Reads, writes and webhook
// delivery are guarded separately so a failing write path cannot poison
// read fallbacks.
const (
	readDependency    = "metadata-store-read"
	writeDependency   = "metadata-store-write"
	webhookDependency = "webhook-delivery"
)

// Gateway wraps a Store with circuit breakers and the pipeline's
// persistence semantics: metadata writes are best-effort, metadata reads
// degrade to a placeholder, webhook delivery failures propagate.
type Gateway struct {
	store   Store
	read    *breaker.Breaker
	write   *breaker.Breaker
	webhook *breaker.Breaker
	logger  *slog.Logger
	now     func() time.Time // replaced in tests
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithGatewayLogger sets a custom logger. Default is slog.Default().
func WithGatewayLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
	}
}

// NewGateway wraps the store with breakers drawn from the registry.
func NewGateway(store Store, registry *breaker.Registry, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		store:   store,
		read:    registry.Get(readDependency),
		write:   registry.Get(writeDependency),
		webhook: registry.Get(webhookDependency),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "metastore-gateway")
	return g
}

// MarkAnalyzing records that processing started for the file. The write is
// best-effort: with the store down, the circuit serves a no-op fallback.
func (g *Gateway) MarkAnalyzing(ctx context.Context, fileID string) error {
	return g.write.Execute(ctx,
		func(ctx context.Context) error {
			return g.store.PatchFile(ctx, fileID, FilePatch{Status: core.FileStatusAnalyzing})
		},
		g.skipWrite("mark analyzing", fileID),
	)
}

// SaveResult persists a completed analysis into the file's record,
// best-effort like every metadata write.
func (g *Gateway) SaveResult(ctx context.Context, fileID string, result *core.AnalysisResult) error {
	analyzedAt := g.now()
	patch := FilePatch{
		Status:       core.FileStatusAnalyzed,
		LastAnalyzed: &analyzedAt,
		Summary:      result.Summary,
		Entities:     result.Entities,
		Topics:       result.Topics,
	}
	return g.write.Execute(ctx,
		func(ctx context.Context) error {
			return g.store.PatchFile(ctx, fileID, patch)
		},
		g.skipWrite("save result", fileID),
	)
}

// MarkFailed records the failed status and reason on the file's record,
// best-effort like every metadata write.
func (g *Gateway) MarkFailed(ctx context.Context, fileID, reason string) error {
	return g.write.Execute(ctx,
		func(ctx context.Context) error {
			return g.store.PatchFile(ctx, fileID, FilePatch{
				Status: core.FileStatusFailed,
				Error:  reason,
			})
		},
		g.skipWrite("mark failed", fileID),
	)
}

// ReportCompletion delivers the success webhook for a job. There is no
// fallback: the caller must know when delivery failed.
func (g *Gateway) ReportCompletion(ctx context.Context, pctx core.ProcessingContext, result *core.AnalysisResult) error {
	completion := JobCompletion{
		FileID:    pctx.FileID,
		JobID:     pctx.JobID,
		Status:    core.AnalysisStatusCompleted,
		Result:    result,
		Timestamp: g.now(),
	}
	return g.webhook.Execute(ctx,
		func(ctx context.Context) error {
			return g.store.NotifyJobComplete(ctx, completion)
		},
		nil,
	)
}

// ReportFailure records a failed job: a best-effort status patch followed
// by the failure webhook. The returned error reflects webhook delivery
// only.
func (g *Gateway) ReportFailure(ctx context.Context, pctx core.ProcessingContext, reason string) error {
	_ = g.MarkFailed(ctx, pctx.FileID, reason)

	completion := JobCompletion{
		FileID:    pctx.FileID,
		JobID:     pctx.JobID,
		Status:    core.AnalysisStatusFailed,
		Error:     reason,
		Timestamp: g.now(),
	}
	return g.webhook.Execute(ctx,
		func(ctx context.Context) error {
			return g.store.NotifyJobComplete(ctx, completion)
		},
		nil,
	)
}

// FileMetadata retrieves the file's record, degrading to a minimal
// placeholder when the store is unavailable. The placeholder is marked
// Fallback so consumers can avoid persisting it.
func (g *Gateway) FileMetadata(ctx context.Context, fileID string) (*core.FileMetadata, error) {
	meta, err := breaker.Do(ctx, g.read,
		func(ctx context.Context) (*core.FileMetadata, error) {
			m, getErr := g.store.GetFile(ctx, fileID)
			if errors.Is(getErr, ErrNotFound) {
				// A definitive answer from a healthy store, not a
				// dependency failure.
				return nil, nil
			}
			return m, getErr
		},
		func(context.Context) (*core.FileMetadata, error) {
			g.logger.Warn("serving placeholder metadata, store unavailable",
				"file_id", fileID)
			return &core.FileMetadata{
				FileID:   fileID,
				Filename: "unknown-file",
				Fallback: true,
			}, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileID)
	}
	return meta, nil
}

// Ping verifies the metadata store is reachable. Health probes bypass the
// breakers so an open circuit does not mask recovery.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.store.Ping(ctx)
}

// skipWrite returns a fallback that records the skipped write and
// succeeds.
func (g *Gateway) skipWrite(op, fileID string) func(context.Context) error {
	return func(context.Context) error {
		g.logger.Warn("metadata write skipped, store unavailable",
			"op", op,
			"file_id", fileID)
		return nil
	}
}
