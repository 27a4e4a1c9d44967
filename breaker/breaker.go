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


package breaker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for circuit activity.
var (
	tripsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skimmer_breaker_trips_total",
		Help: "Number of times a circuit opened, by dependency.",
	}, []string{"dependency"})

	fallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skimmer_breaker_fallbacks_total",
		Help: "Number of calls answered by a fallback, by dependency.",
	}, []string{"dependency"})

	stateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skimmer_breaker_state",
		Help: "Current circuit state by dependency (0 closed, 1 open, 2 half-open).",
	}, []string{"dependency"})
)

// State identifies the position of a circuit.
type State int

const (
	// StateClosed passes calls through and counts failures.
	StateClosed State = iota
	// StateOpen rejects calls until the recovery timeout elapses.
	StateOpen
	// StateHalfOpen admits a single trial call to probe recovery.
	StateHalfOpen
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// Settings holds the tunable thresholds of a circuit breaker.
type Settings struct {
	// FailureThreshold is the number of consecutive failures that opens the
	// circuit. Default: 5.
	FailureThreshold int

	// RecoveryTimeout is how long an open circuit rejects calls before
	// admitting a half-open trial. Default: 30s.
	RecoveryTimeout time.Duration
}

// DefaultSettings returns the settings used when none are provided.
func DefaultSettings() Settings {
	return Settings{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

// normalize clamps out-of-range values to the defaults.
func (s Settings) normalize() Settings {
	def := DefaultSettings()
	if s.FailureThreshold < 1 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.RecoveryTimeout <= 0 {
		s.RecoveryTimeout = def.RecoveryTimeout
	}
	return s
}

// Breaker is a circuit breaker guarding one named dependency. All methods
// are safe for concurrent use.
type Breaker struct {
	name     string
	settings Settings
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	nextAttempt time.Time
	trialActive bool
	now         func() time.Time // replaced in tests
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Breaker) {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
	}
}

// New creates a circuit breaker for the named dependency.
func New(name string, settings Settings, opts ...Option) *Breaker {
	b := &Breaker{
		name:     name,
		settings: settings.normalize(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "breaker", "dependency", name)
	stateGauge.WithLabelValues(name).Set(float64(StateClosed))
	return b
}

// Name returns the dependency name this breaker guards.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the current circuit state, applying the open-to-half-open
// transition if the recovery timeout has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && !b.now().Before(b.nextAttempt) {
		return StateHalfOpen
	}
	return b.state
}

// Snapshot describes the observable state of one breaker.
type Snapshot struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	LastFailure time.Time `json:"lastFailure,omitempty"`
	NextAttempt time.Time `json:"nextAttempt,omitempty"`
}

// Snapshot returns the breaker's current state for health reporting.
func (b *Breaker) Snapshot() Snapshot {
	state := b.State()
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{
		Name:        b.name,
		State:       state.String(),
		Failures:    b.failures,
		LastFailure: b.lastFailure,
		NextAttempt: b.nextAttempt,
	}
}

// allow reports whether a call may proceed and reserves the half-open trial
// slot when applicable.
func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Before(b.nextAttempt) {
			return false
		}
		b.setState(StateHalfOpen)
		b.trialActive = true
		b.logger.Info("circuit half-open, admitting trial call")
		return true
	case StateHalfOpen:
		// Only one trial at a time; concurrent callers are rejected.
		if b.trialActive {
			return false
		}
		b.trialActive = true
		return true
	}
	return false
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.trialActive = false
	if b.state != StateClosed {
		b.logger.Info("circuit closed after successful trial")
	}
	b.setState(StateClosed)
	b.failures = 0
}

func (b *Breaker) onFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasTrial := b.trialActive
	b.trialActive = false
	b.failures++
	b.lastFailure = b.now()

	if b.state == StateHalfOpen || b.failures >= b.settings.FailureThreshold {
		b.nextAttempt = b.now().Add(b.settings.RecoveryTimeout)
		b.setState(StateOpen)
		tripsTotal.WithLabelValues(b.name).Inc()
		b.logger.Warn("circuit opened",
			"failures", b.failures,
			"trial_failed", wasTrial,
			"next_attempt", b.nextAttempt)
	}
}

// setState must be called with the mutex held.
func (b *Breaker) setState(state State) {
	b.state = state
	stateGauge.WithLabelValues(b.name).Set(float64(state))
}

// Do runs op under the breaker b and returns its result.
//
// When the circuit is open, or op fails, the fallback is invoked and its
// result returned instead; op failures still count against the circuit. A
// nil fallback means an open circuit yields ErrCircuitOpen and op failures
// propagate unchanged.
func Do[T any](ctx context.Context, b *Breaker, op func(context.Context) (T, error), fallback func(context.Context) (T, error)) (T, error) {
	var zero T

	if !b.allow() {
		if fallback != nil {
			fallbacksTotal.WithLabelValues(b.name).Inc()
			b.logger.Debug("circuit open, serving fallback")
			return fallback(ctx)
		}
		return zero, fmt.Errorf("%w: %s", ErrCircuitOpen, b.name)
	}

	result, err := op(ctx)
	if err != nil {
		b.onFailure()
		if fallback != nil {
			fallbacksTotal.WithLabelValues(b.name).Inc()
			b.logger.Debug("operation failed, serving fallback", "err", err)
			return fallback(ctx)
		}
		return zero, err
	}

	b.onSuccess()
	return result, nil
}

// Execute is Do for operations with no result value.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error, fallback func(context.Context) error) error {
	wrap := func(f func(context.Context) error) func(context.Context) (struct{}, error) {
		if f == nil {
			return nil
		}
		return func(ctx context.Context) (struct{}, error) {
			return struct{}{}, f(ctx)
		}
	}
	_, err := Do(ctx, b, wrap(op), wrap(fallback))
	return err
}
