package health

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for health checks.
var (
	checkUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skimmer_health_check_up",
		Help: "Latest outcome per health check (1 = healthy).",
	}, []string{"check"})

	checkLatency = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skimmer_health_check_latency_seconds",
		Help: "Latest latency per health check.",
	}, []string{"check"})
)

const defaultProbeTimeout = 5 * time.Second

// Probe checks one dependency. It must honor ctx cancellation.
type Probe func(ctx context.Context) error

// Result is the outcome of one probe run.
type Result struct {
	Name    string        `json:"name"`
	Healthy bool          `json:"healthy"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// Checker runs registered probes. All methods are safe for concurrent use.
type Checker struct {
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	names  []string // registration order
	probes map[string]Probe
}

// Option configures a Checker.
type Option func(*Checker) error

// WithTimeout sets the per-probe timeout. Default is 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) error {
		if d <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewChecker creates an empty checker.
func NewChecker(opts ...Option) (*Checker, error) {
	c := &Checker{
		timeout: defaultProbeTimeout,
		probes:  make(map[string]Probe),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "health")
	return c, nil
}

// AddCheck registers a probe under a name. Registering the same name again
// replaces the probe; nil probes and empty names are ignored.
func (c *Checker) AddCheck(name string, probe Probe) {
	if name == "" || probe == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.probes[name]; !exists {
		c.names = append(c.names, name)
	}
	c.probes[name] = probe
}

// Run executes every registered probe concurrently and returns results in
// registration order. A probe that exceeds the timeout is reported
// unhealthy and abandoned so one stuck dependency cannot stall the report.
func (c *Checker) Run(ctx context.Context) []Result {
	c.mu.Lock()
	names := slices.Clone(c.names)
	probes := maps.Clone(c.probes)
	c.mu.Unlock()

	results := make([]Result, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.runOne(ctx, name, probes[name])
		}()
	}
	wg.Wait()
	return results
}

func (c *Checker) runOne(ctx context.Context, name string, probe Probe) Result {
	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- probe(probeCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-probeCtx.Done():
		err = probeCtx.Err()
	}

	result := Result{
		Name:    name,
		Healthy: err == nil,
		Latency: time.Since(start),
	}

	up := 1.0
	if err != nil {
		up = 0
		result.Error = err.Error()
		c.logger.Warn("health check failed", "check", name, "err", err)
	}
	checkUp.WithLabelValues(name).Set(up)
	checkLatency.WithLabelValues(name).Set(result.Latency.Seconds())

	return result
}

// AllHealthy reports whether every result in the set is healthy.
func AllHealthy(results []Result) bool {
	for _, r := range results {
		if !r.Healthy {
			return false
		}
	}
	return true
}
