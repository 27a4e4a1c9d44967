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


package skimmer

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/tamylaa/content-skimmer/analysis"
	"github.com/tamylaa/content-skimmer/analysis/hybrid"
	"github.com/tamylaa/content-skimmer/breaker"
	"github.com/tamylaa/content-skimmer/content"
	"github.com/tamylaa/content-skimmer/content/httpstore"
	"github.com/tamylaa/content-skimmer/content/s3store"
	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/events"
	"github.com/tamylaa/content-skimmer/health"
	"github.com/tamylaa/content-skimmer/metastore"
	"github.com/tamylaa/content-skimmer/pipeline"
	"github.com/tamylaa/content-skimmer/reindex"
	"github.com/tamylaa/content-skimmer/retry"
	"github.com/tamylaa/content-skimmer/search"
	"github.com/tamylaa/content-skimmer/search/badgerengine"
	"github.com/tamylaa/content-skimmer/search/httpengine"
	"github.com/tamylaa/content-skimmer/search/redisengine"
	"github.com/tamylaa/content-skimmer/trigger"
)

// ServiceConfig locates one HTTP collaborator service.
type ServiceConfig struct {
	// BaseURL is the service root, e.g. "https://meta.example.com".
	BaseURL string
	// AuthToken is sent as a bearer token when non-empty.
	AuthToken string
}

// StorageConfig locates the file content source. The upload service's
// signed-url API is used when BaseURL is set; direct bucket reads are used
// when S3 is set. BaseURL wins when both are set.
type StorageConfig struct {
	BaseURL   string
	AuthToken string
	S3        *s3store.Config
}

// HTTPEngine describes one external search service to index into.
type HTTPEngine struct {
	// Name routes queries to this engine.
	Name string
	// BaseURL is the service root.
	BaseURL string
	// AuthToken is sent as a bearer token when non-empty.
	AuthToken string
}

// SearchConfig enumerates the search backends to keep in sync. Backends
// are routed in declaration order: HTTP engines first, then the embedded
// Badger engine, then Redis. The first configured backend answers queries
// that do not name an engine.
type SearchConfig struct {
	// HTTP lists external search services.
	HTTP []HTTPEngine
	// BadgerPath enables the embedded engine, storing its database at the
	// path.
	BadgerPath string
	// BadgerInMemory runs the embedded engine without persistence. Used by
	// tests and throwaway deployments.
	BadgerInMemory bool
	// RedisURL enables the Redis engine
	// (redis://[user:pass@]host:port/db).
	RedisURL string
}

func (c SearchConfig) configured() bool {
	return len(c.HTTP) > 0 || c.BadgerPath != "" || c.BadgerInMemory || c.RedisURL != ""
}

// Config aggregates the settings of every component a Skimmer owns.
type Config struct {
	// Storage locates the file content source.
	Storage StorageConfig

	// Metadata locates the metadata/result store.
	Metadata ServiceConfig

	// Analysis configures the hybrid provider.
	Analysis *hybrid.Config

	// Search enumerates the search backends.
	Search SearchConfig

	// Breaker holds the thresholds shared by every dependency breaker.
	Breaker breaker.Settings

	// CacheSize bounds the analysis result cache. Default: 128.
	CacheSize int

	// IndexRetries bounds delivery attempts per backend indexing
	// operation. Default: 3.
	IndexRetries int
}

// DefaultConfig returns a Config with the default analysis and breaker
// settings. Service locations must still be filled in.
func DefaultConfig() *Config {
	return &Config{
		Analysis: hybrid.DefaultConfig(),
		Breaker:  breaker.DefaultSettings(),
	}
}

// Validate checks that the configuration describes a complete deployment.
// Sections replaced through New's injection options may stay empty; New
// only constructs what was not injected.
func (c *Config) Validate() error {
	if c.Storage.BaseURL == "" && c.Storage.S3 == nil {
		return errors.New("skimmer config: storage service URL or S3 settings required")
	}
	if c.Metadata.BaseURL == "" {
		return errors.New("skimmer config: metadata store URL required")
	}
	if c.Analysis == nil {
		return errors.New("skimmer config: analysis settings required")
	}
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	if !c.Search.configured() {
		return errors.New("skimmer config: at least one search backend required")
	}
	return nil
}

// costReporter is implemented by providers that account remote spend.
type costReporter interface {
	CostReport() hybrid.CostReport
}

// Skimmer is the application root: it owns every process-wide component
// and exposes the operations the embedding layer may call.
type Skimmer struct {
	registry     *breaker.Registry
	queue        *retry.Queue
	bus          *events.Bus
	engine       *analysis.Engine
	store        metastore.Store
	gateway      *metastore.Gateway
	syncer       *search.Syncer
	orchestrator *pipeline.Orchestrator
	checker      *health.Checker
	costs        costReporter
	subs         []events.Subscription
	closers      []io.Closer
	logger       *slog.Logger
}

// Option overrides one constructed component, mainly for tests.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	providers []analysis.Provider
	fetcher   content.Fetcher
	store     metastore.Store
	backends  []search.Backend
}

// WithLogger sets the logger shared by all components.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProviders replaces the configured analysis provider chain.
func WithProviders(providers ...analysis.Provider) Option {
	return func(o *options) {
		o.providers = providers
	}
}

// WithFetcher replaces the configured content fetcher.
func WithFetcher(fetcher content.Fetcher) Option {
	return func(o *options) {
		o.fetcher = fetcher
	}
}

// WithStore replaces the configured metadata store client.
func WithStore(store metastore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithBackends replaces the configured search backends. Ownership stays
// with the caller; Close will not close injected backends.
func WithBackends(backends ...search.Backend) Option {
	return func(o *options) {
		o.backends = backends
	}
}

// New assembles a Skimmer from the configuration. Every process-wide
// component (breaker registry, retry queue, event bus, caches) is
// constructed here and owned by the returned instance; nothing lives in
// package-level state.
func New(cfg *Config, opts ...Option) (*Skimmer, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger

	registry := breaker.NewRegistry(cfg.Breaker, breaker.WithLogger(logger))
	queue := retry.NewQueue(retry.WithLogger(logger))

	bus, err := events.NewBus(events.WithLogger(logger))
	if err != nil {
		queue.Close()
		return nil, err
	}

	// Analysis chain
	providers := o.providers
	if len(providers) == 0 {
		provider, perr := hybrid.NewProvider(cfg.Analysis)
		if perr != nil {
			bus.Release()
			queue.Close()
			return nil, perr
		}
		providers = []analysis.Provider{provider}
	}
	var costs costReporter
	for _, p := range providers {
		if cr, ok := p.(costReporter); ok {
			costs = cr
			break
		}
	}

	engineOpts := []analysis.Option{analysis.WithLogger(logger)}
	if cfg.CacheSize > 0 {
		engineOpts = append(engineOpts, analysis.WithCacheSize(cfg.CacheSize))
	}
	engine, err := analysis.NewEngine(providers, engineOpts...)
	if err != nil {
		bus.Release()
		queue.Close()
		return nil, err
	}

	// Content acquisition
	fetcher := o.fetcher
	if fetcher == nil {
		fetcher, err = buildFetcher(cfg.Storage, logger)
		if err != nil {
			bus.Release()
			queue.Close()
			return nil, err
		}
	}

	// Metadata store behind the breaker-guarded gateway
	store := o.store
	if store == nil {
		store, err = metastore.NewClient(cfg.Metadata.BaseURL, cfg.Metadata.AuthToken,
			metastore.WithLogger(logger))
		if err != nil {
			bus.Release()
			queue.Close()
			return nil, err
		}
	}
	gateway := metastore.NewGateway(store, registry, metastore.WithGatewayLogger(logger))

	// Search backends
	backends := o.backends
	var closers []io.Closer
	if len(backends) == 0 {
		backends, closers, err = OpenBackends(cfg.Search, logger)
		if err != nil {
			bus.Release()
			queue.Close()
			return nil, err
		}
	}
	closeBackends := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	syncerOpts := []search.SyncerOption{search.WithLogger(logger)}
	if cfg.IndexRetries > 0 {
		syncerOpts = append(syncerOpts, search.WithMaxRetries(cfg.IndexRetries))
	}
	syncer, err := search.NewSyncer(gateway, queue, backends, syncerOpts...)
	if err != nil {
		closeBackends()
		bus.Release()
		queue.Close()
		return nil, err
	}

	orchestrator, err := pipeline.NewOrchestrator(engine, fetcher, gateway, bus,
		pipeline.WithLogger(logger))
	if err != nil {
		closeBackends()
		bus.Release()
		queue.Close()
		return nil, err
	}

	checker, err := health.NewChecker(health.WithLogger(logger))
	if err != nil {
		closeBackends()
		bus.Release()
		queue.Close()
		return nil, err
	}
	checker.AddCheck("metadata-store", gateway.Ping)
	for _, backend := range backends {
		checker.AddCheck("search-"+backend.Name(), backend.Ping)
	}

	s := &Skimmer{
		registry:     registry,
		queue:        queue,
		bus:          bus,
		engine:       engine,
		store:        store,
		gateway:      gateway,
		syncer:       syncer,
		orchestrator: orchestrator,
		checker:      checker,
		costs:        costs,
		closers:      closers,
		logger:       logger,
	}

	// Indexing and failure recording ride the bus so they can never fail
	// the pipeline that triggered them.
	s.subs = append(s.subs,
		bus.On(core.EventAnalysisCompleted, syncer.HandleCompleted),
		bus.On(core.EventAnalysisFailed, syncer.HandleFailed),
	)

	return s, nil
}

// buildFetcher picks the acquisition path the config describes.
func buildFetcher(cfg StorageConfig, logger *slog.Logger) (content.Fetcher, error) {
	if cfg.BaseURL != "" {
		return httpstore.New(cfg.BaseURL, cfg.AuthToken, httpstore.WithLogger(logger))
	}
	if cfg.S3 != nil {
		return s3store.New(*cfg.S3, s3store.WithLogger(logger))
	}
	return nil, errors.New("skimmer config: storage service URL or S3 settings required")
}

// OpenBackends constructs every backend the config enables, in routing
// order, returning the ones that need closing separately. Bulk tools use it
// to reach the backends without assembling a full Skimmer.
func OpenBackends(cfg SearchConfig, logger *slog.Logger) ([]search.Backend, []io.Closer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		backends []search.Backend
		closers  []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	for _, engine := range cfg.HTTP {
		backend, err := httpengine.New(engine.Name, engine.BaseURL, engine.AuthToken,
			httpengine.WithLogger(logger))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		backends = append(backends, backend)
	}

	if cfg.BadgerPath != "" || cfg.BadgerInMemory {
		engine, err := badgerengine.Open(cfg.BadgerPath, cfg.BadgerInMemory)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		backends = append(backends, engine)
		closers = append(closers, engine)
	}

	if cfg.RedisURL != "" {
		engine, err := redisengine.New(cfg.RedisURL, redisengine.WithLogger(logger))
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		backends = append(backends, engine)
		closers = append(closers, engine)
	}

	if len(backends) == 0 {
		return nil, nil, search.ErrNoBackends
	}
	return backends, closers, nil
}

// ProcessFile runs one processing attempt for a registration event. It
// returns nil only when analysis completed and the completion callback was
// delivered; any other outcome returns the failing stage's error after the
// failure path ran. Safe to call concurrently for different events.
func (s *Skimmer) ProcessFile(ctx context.Context, event *core.FileRegistrationEvent) error {
	return s.orchestrator.ProcessFile(ctx, event)
}

// AnalyzeFile analyzes raw content directly, without touching the stores
// or emitting events.
func (s *Skimmer) AnalyzeFile(ctx context.Context, content []byte, mimeType string) (*core.AnalysisResult, error) {
	return s.engine.AnalyzeFile(ctx, content, mimeType)
}

// SearchContent queries the named search engine, or the first configured
// one when engine is empty. Results are scoped to the user when userID is
// non-empty.
func (s *Skimmer) SearchContent(ctx context.Context, query, userID, engine string, limit int) ([]*core.SearchDocument, error) {
	return s.syncer.Search(ctx, query, userID, engine, limit)
}

// QueueStatus reports the operations waiting in the indexing retry queue.
func (s *Skimmer) QueueStatus() retry.QueueStatus {
	return s.queue.Status()
}

// CostReport returns the current day's analysis spend accounting. The
// zero report is returned when no configured provider tracks cost.
func (s *Skimmer) CostReport() hybrid.CostReport {
	if s.costs == nil {
		return hybrid.CostReport{}
	}
	return s.costs.CostReport()
}

// HealthReport combines dependency probes with the internal state health
// endpoints expose.
type HealthReport struct {
	Healthy  bool               `json:"healthy"`
	Checks   []health.Result    `json:"checks"`
	Breakers []breaker.Snapshot `json:"breakers"`
	Queue    retry.QueueStatus  `json:"queue"`
}

// Health probes the metadata store and every search backend, and reports
// breaker and retry-queue state alongside. Healthy reflects the probes
// only; an open breaker shows in Breakers without failing the report.
func (s *Skimmer) Health(ctx context.Context) HealthReport {
	checks := s.checker.Run(ctx)
	return HealthReport{
		Healthy:  health.AllHealthy(checks),
		Checks:   checks,
		Breakers: s.registry.Snapshot(),
		Queue:    s.queue.Status(),
	}
}

// NewListener builds a Kafka listener that feeds registration events into
// ProcessFile.
func (s *Skimmer) NewListener(cfg trigger.Config, opts ...trigger.Option) (*trigger.Listener, error) {
	opts = append([]trigger.Option{trigger.WithLogger(s.logger)}, opts...)
	return trigger.New(cfg, s.ProcessFile, opts...)
}

// NewReindexer builds a bulk run that rebuilds every configured search
// backend from the metadata store's records.
func (s *Skimmer) NewReindexer(cfg *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(s.store, s.syncer.Backends(), cfg, progress)
}

// Close unsubscribes the event handlers, stops the retry queue and closes
// the backends this instance opened. Queued indexing operations are
// discarded; a reindex run recovers anything lost.
func (s *Skimmer) Close() error {
	for _, sub := range s.subs {
		s.bus.Off(sub)
	}
	s.queue.Close()
	s.bus.Release()

	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Error("error closing search backend", "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
