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


package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tamylaa/content-skimmer/core"
)

// Prometheus metrics for the analysis engine.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skimmer_analysis_cache_hits_total",
		Help: "Analysis results answered from the LRU cache.",
	})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skimmer_analysis_cache_misses_total",
		Help: "Analysis requests that had to run the provider chain.",
	})

	providerAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skimmer_analysis_provider_attempts_total",
		Help: "Provider attempts, by provider name and outcome.",
	}, []string{"provider", "outcome"})
)

const defaultCacheSize = 128

// Engine runs content through an ordered chain of analysis providers,
// caching results by content fingerprint.
type Engine struct {
	providers []Provider
	cache     *lru.Cache[string, *core.AnalysisResult]
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithCacheSize sets the bounded result cache capacity.
// Default is 128 entries.
func WithCacheSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		cache, err := lru.New[string, *core.AnalysisResult](size)
		if err != nil {
			return err
		}
		e.cache = cache
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

// NewEngine creates an engine trying the given providers in order.
func NewEngine(providers []Provider, opts ...Option) (*Engine, error) {
	if len(providers) == 0 {
		return nil, ErrProvidersRequired
	}

	cache, err := lru.New[string, *core.AnalysisResult](defaultCacheSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		providers: slices.Clone(providers),
		cache:     cache,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			return nil, optErr
		}
	}

	e.logger = e.logger.With("component", "analysis-engine")
	return e, nil
}

// NormalizeMimeType lowercases a MIME type and strips parameters such as
// "; charset=utf-8".
func NormalizeMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// HasCompatibleProvider reports whether any configured provider supports
// the given MIME type.
func (e *Engine) HasCompatibleProvider(mimeType string) bool {
	mt := NormalizeMimeType(mimeType)
	for _, p := range e.providers {
		if p.Supports(mt) {
			return true
		}
	}
	return false
}

// AnalyzeFile analyzes file content, trying providers in configured order
// until one succeeds. Unchanged content is answered from the cache without
// invoking any provider.
//
// A provider failure does not abort the chain; it is logged and the next
// capable provider is tried. When every capable provider has failed the
// returned error wraps ErrAllProvidersFailed together with the last
// provider failure.
func (e *Engine) AnalyzeFile(ctx context.Context, content []byte, mimeType string) (*core.AnalysisResult, error) {
	mt := NormalizeMimeType(mimeType)
	key := core.HashContent(content, mt)

	if cached, ok := e.cache.Get(key); ok {
		cacheHitsTotal.Inc()
		e.logger.Debug("analysis cache hit", "mime_type", mt)
		return cloneResult(cached), nil
	}
	cacheMissesTotal.Inc()

	var lastErr error
	capable := 0

	for _, p := range e.providers {
		if !p.Supports(mt) {
			continue
		}
		capable++

		result, err := e.analyzeWith(ctx, p, content, mt)
		if err != nil {
			providerAttemptsTotal.WithLabelValues(p.Name(), "failure").Inc()
			e.logger.Warn("provider failed, trying next",
				"provider", p.Name(),
				"mime_type", mt,
				"err", err)
			lastErr = err
			continue
		}

		providerAttemptsTotal.WithLabelValues(p.Name(), "success").Inc()
		result.Provider = p.Name()
		result.Status = core.AnalysisStatusCompleted
		e.cache.Add(key, result)
		return cloneResult(result), nil
	}

	if capable == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMimeType, mt)
	}
	return nil, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

// analyzeWith runs one provider's extract and analyze steps.
func (e *Engine) analyzeWith(ctx context.Context, p Provider, content []byte, mimeType string) (*core.AnalysisResult, error) {
	text, err := p.ExtractText(ctx, content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	result, err := p.AnalyzeContent(ctx, text, mimeType)
	if err != nil {
		return nil, fmt.Errorf("analyze content: %w", err)
	}
	return result, nil
}

// cloneResult copies a result so cached entries stay immutable while
// callers annotate their copies.
func cloneResult(r *core.AnalysisResult) *core.AnalysisResult {
	out := *r
	out.Entities = slices.Clone(r.Entities)
	out.Topics = slices.Clone(r.Topics)
	out.Enrichment = maps.Clone(r.Enrichment)
	return &out
}
