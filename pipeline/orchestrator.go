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


package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tamylaa/content-skimmer/analysis"
	"github.com/tamylaa/content-skimmer/content"
	"github.com/tamylaa/content-skimmer/core"
)

// Prometheus metrics for the pipeline.
var (
	activeFiles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skimmer_pipeline_active",
		Help: "Files currently being processed.",
	})

	processedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skimmer_pipeline_processed_total",
		Help: "Processing attempts by terminal outcome.",
	}, []string{"outcome"})

	processingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "skimmer_pipeline_duration_seconds",
		Help:    "Wall-clock duration of successful processing attempts.",
		Buckets: prometheus.DefBuckets,
	})
)

// Analyzer runs content through the provider chain.
// *analysis.Engine implements it.
type Analyzer interface {
	HasCompatibleProvider(mimeType string) bool
	AnalyzeFile(ctx context.Context, content []byte, mimeType string) (*core.AnalysisResult, error)
}

// Gateway persists results and delivers completion callbacks.
// *metastore.Gateway implements it.
type Gateway interface {
	MarkAnalyzing(ctx context.Context, fileID string) error
	SaveResult(ctx context.Context, fileID string, result *core.AnalysisResult) error
	ReportCompletion(ctx context.Context, pctx core.ProcessingContext, result *core.AnalysisResult) error
	ReportFailure(ctx context.Context, pctx core.ProcessingContext, reason string) error
}

// Emitter publishes domain events. *events.Bus implements it.
type Emitter interface {
	Emit(eventType string, payload any)
}

// Orchestrator executes the per-file processing sequence.
type Orchestrator struct {
	engine  Analyzer
	fetcher content.Fetcher
	gateway Gateway
	bus     Emitter
	monitor Monitor
	logger  *slog.Logger
	now     func() time.Time // replaced in tests
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// WithMonitor sets the stage observation hooks. Default is a no-op.
func WithMonitor(monitor Monitor) Option {
	return func(o *Orchestrator) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		o.monitor = monitor
		return nil
	}
}

// NewOrchestrator creates the processing orchestrator.
func NewOrchestrator(engine Analyzer, fetcher content.Fetcher, gateway Gateway, bus Emitter, opts ...Option) (*Orchestrator, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if gateway == nil {
		return nil, ErrGatewayRequired
	}
	if bus == nil {
		return nil, ErrBusRequired
	}

	o := &Orchestrator{
		engine:  engine,
		fetcher: fetcher,
		gateway: gateway,
		bus:     bus,
		monitor: &noopMonitor{},
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			return nil, optErr
		}
	}

	o.logger = o.logger.With("component", "pipeline")
	return o, nil
}

// ProcessFile runs one processing attempt for the event, strictly in
// sequence: mark analyzing, compatibility check, acquire, analyze, enrich,
// persist, callback, terminal event. Any stage failure takes the failure
// path and returns the stage's wrapped error so the invocation is marked
// failed for infrastructure-level retry.
//
// There is no internal timeout; the caller bounds the attempt through ctx.
func (o *Orchestrator) ProcessFile(ctx context.Context, event *core.FileRegistrationEvent) error {
	if err := core.ValidateFileRegistrationEvent(event); err != nil {
		// Input errors never reach the failure callback path; there is no
		// meaningful file to report on.
		return err
	}

	pctx := core.NewProcessingContext(event)
	logger := o.logger.With("file_id", pctx.FileID, "job_id", pctx.JobID)
	started := o.now()

	// The declared priority rides the context so provider policies can
	// weigh it without a widened interface.
	ctx = analysis.WithPriority(ctx, event.EffectivePriority())

	activeFiles.Inc()
	defer activeFiles.Dec()

	o.monitor.Started(pctx)
	logger.Info("processing started",
		"mime_type", event.MimeType,
		"size", event.FileSize,
		"priority", event.EffectivePriority(),
		"retry_count", pctx.RetryCount)

	// Status is advisory; a failed transition must not stop the pipeline.
	if err := o.gateway.MarkAnalyzing(ctx, pctx.FileID); err != nil {
		logger.Warn("could not mark file analyzing", "err", err)
	}
	o.monitor.StatusMarked(pctx)

	// Fail fast before any content is downloaded.
	if !o.engine.HasCompatibleProvider(event.MimeType) {
		err := fmt.Errorf("%w: %s", ErrUnsupportedContentType, event.MimeType)
		return o.fail(ctx, pctx, logger, err)
	}

	data, err := o.fetcher.Fetch(ctx, event)
	if err != nil {
		return o.fail(ctx, pctx, logger, fmt.Errorf("%w: %w", ErrAcquisitionFailed, err))
	}
	o.monitor.ContentAcquired(pctx, len(data))
	logger.Debug("content acquired", "bytes", len(data))

	result, err := o.engine.AnalyzeFile(ctx, data, event.MimeType)
	if err != nil {
		return o.fail(ctx, pctx, logger, fmt.Errorf("%w: %w", ErrAnalysisFailed, err))
	}
	o.monitor.Analyzed(pctx, result)

	o.enrich(result, data, event.MimeType, started)

	// Persisting the result is breaker-guarded best effort; the completion
	// webhook is the authoritative delivery and its failure fails the
	// attempt.
	if err := o.gateway.SaveResult(ctx, pctx.FileID, result); err != nil {
		logger.Warn("could not persist analysis result", "err", err)
	}
	if err := o.gateway.ReportCompletion(ctx, pctx, result); err != nil {
		return o.fail(ctx, pctx, logger, fmt.Errorf("%w: %w", ErrCallbackFailed, err))
	}

	o.bus.Emit(core.EventAnalysisCompleted, core.AnalysisCompleted{Context: pctx, Result: result})
	o.monitor.Completed(pctx, result)
	processedTotal.WithLabelValues("success").Inc()
	processingSeconds.Observe(result.Duration.Seconds())
	logger.Info("processing completed",
		"provider", result.Provider,
		"duration", result.Duration)
	return nil
}

// fail runs the failure path: best-effort failure callback, failure event,
// monitor hook and metrics, then the original error back to the caller.
func (o *Orchestrator) fail(ctx context.Context, pctx core.ProcessingContext, logger *slog.Logger, original error) error {
	if err := o.gateway.ReportFailure(ctx, pctx, original.Error()); err != nil {
		// Logged only; the original failure must reach the caller unmasked.
		logger.Error("failure callback delivery failed", "err", err)
	}
	o.bus.Emit(core.EventAnalysisFailed, core.AnalysisFailed{Context: pctx, Reason: original.Error()})
	o.monitor.Failed(pctx, original)
	processedTotal.WithLabelValues("failure").Inc()
	logger.Error("processing failed", "err", original)
	return original
}

// enrich stamps the derived summary fields onto the result: wall-clock
// duration, a word count estimate and a coarse content category. A provider
// supplied word count wins since it counts extracted text, not raw bytes.
func (o *Orchestrator) enrich(result *core.AnalysisResult, data []byte, mimeType string, started time.Time) {
	result.Duration = o.now().Sub(started)
	if result.Enrichment == nil {
		result.Enrichment = make(map[string]any)
	}
	if _, ok := result.Enrichment["wordCount"]; !ok {
		result.Enrichment["wordCount"] = len(bytes.Fields(data))
	}
	result.Enrichment["contentCategory"] = contentCategory(mimeType)
}

// contentCategory buckets a MIME type into a coarse class for downstream
// filtering.
func contentCategory(mimeType string) string {
	mt := analysis.NormalizeMimeType(mimeType)

	switch {
	case strings.HasPrefix(mt, "text/"):
		return "document"
	case strings.HasPrefix(mt, "image/"):
		return "image"
	case strings.HasPrefix(mt, "audio/"):
		return "audio"
	case strings.HasPrefix(mt, "video/"):
		return "video"
	}

	switch mt {
	case "application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/rtf":
		return "document"
	case "application/json",
		"application/xml",
		"application/x-ndjson":
		return "data"
	case "application/zip",
		"application/gzip",
		"application/x-tar",
		"application/x-7z-compressed":
		return "archive"
	}
	return "other"
}
