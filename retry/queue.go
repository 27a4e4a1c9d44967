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


package retry

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for queue activity.
var (
	pendingGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skimmer_retry_pending",
		Help: "Number of operations currently waiting in the retry queue.",
	})

	attemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skimmer_retry_attempts_total",
		Help: "Retry queue operation attempts, by outcome.",
	}, []string{"outcome"})

	droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skimmer_retry_dropped_total",
		Help: "Operations dropped after exhausting their retry budget.",
	})
)

// Operation is a retryable unit of work. It is invoked with a background
// context since retries outlive the request that enqueued them.
type Operation func(ctx context.Context) error

type operation struct {
	id           string
	run          Operation
	maxRetries   int
	currentRetry int
	nextRetryAt  time.Time
	enqueuedAt   time.Time
}

// Queue retries failed operations with exponential backoff. All methods are
// safe for concurrent use.
type Queue struct {
	logger       *slog.Logger
	baseDelay    time.Duration
	scanInterval time.Duration

	mu         sync.Mutex
	operations map[string]*operation
	scanning   bool
	timer      *time.Timer
	closed     bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Queue) {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
	}
}

// WithBaseDelay sets the backoff base. The delay before attempt n+1 is
// baseDelay * 2^n. Default is 1s.
func WithBaseDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.baseDelay = d
		}
	}
}

// WithScanInterval sets how often the queue rescans for due operations
// while any remain. Default is 5s.
func WithScanInterval(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.scanInterval = d
		}
	}
}

// NewQueue creates an empty retry queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		logger:       slog.Default(),
		baseDelay:    time.Second,
		scanInterval: 5 * time.Second,
		operations:   make(map[string]*operation),
	}
	for _, opt := range opts {
		opt(q)
	}
	q.logger = q.logger.With("component", "retry-queue")
	return q
}

// Add enqueues an operation under the given ID and triggers an immediate
// processing pass. Enqueuing an ID that is already queued replaces the
// stored operation and resets its retry count. maxRetries bounds the total
// number of attempts.
func (q *Queue) Add(id string, op Operation, maxRetries int) error {
	if op == nil {
		return ErrNilOperation
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	now := time.Now()
	q.operations[id] = &operation{
		id:          id,
		run:         op,
		maxRetries:  maxRetries,
		nextRetryAt: now,
		enqueuedAt:  now,
	}
	pendingGauge.Set(float64(len(q.operations)))
	q.mu.Unlock()

	go q.process()
	return nil
}

// process runs a single pass over due operations. Passes are mutually
// exclusive; a pass triggered while another is running returns immediately.
func (q *Queue) process() {
	q.mu.Lock()
	if q.scanning || q.closed {
		q.mu.Unlock()
		return
	}
	q.scanning = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.scanning = false
		if len(q.operations) > 0 && !q.closed {
			q.scheduleLocked()
		}
		q.mu.Unlock()
	}()

	for {
		op := q.nextDue()
		if op == nil {
			return
		}
		q.attempt(op)
	}
}

// nextDue returns any operation whose retry time has arrived, or nil.
func (q *Queue) nextDue() *operation {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for _, op := range q.operations {
		if !op.nextRetryAt.After(now) {
			return op
		}
	}
	return nil
}

// attempt runs one operation outside the lock and records the outcome.
func (q *Queue) attempt(op *operation) {
	err := op.run(context.Background())

	q.mu.Lock()
	defer q.mu.Unlock()

	// The operation may have been replaced by a concurrent Add while it ran;
	// in that case the stored entry belongs to the replacement.
	current, ok := q.operations[op.id]
	if !ok || current != op {
		return
	}

	if err == nil {
		attemptsTotal.WithLabelValues("success").Inc()
		delete(q.operations, op.id)
		pendingGauge.Set(float64(len(q.operations)))
		return
	}

	attemptsTotal.WithLabelValues("failure").Inc()
	op.currentRetry++
	if op.currentRetry >= op.maxRetries {
		droppedTotal.Inc()
		delete(q.operations, op.id)
		pendingGauge.Set(float64(len(q.operations)))
		q.logger.Warn("operation dropped after exhausting retries",
			"id", op.id,
			"attempts", op.currentRetry,
			"err", err)
		return
	}

	op.nextRetryAt = time.Now().Add(q.baseDelay * (1 << op.currentRetry))
	q.logger.Warn("operation failed, will retry",
		"id", op.id,
		"attempt", op.currentRetry,
		"next_retry_at", op.nextRetryAt,
		"err", err)
}

// scheduleLocked arms the rescan timer. Must be called with the mutex held.
func (q *Queue) scheduleLocked() {
	if q.timer == nil {
		q.timer = time.AfterFunc(q.scanInterval, q.process)
		return
	}
	q.timer.Reset(q.scanInterval)
}

// OperationInfo describes one queued operation.
type OperationInfo struct {
	ID          string    `json:"id"`
	Attempts    int       `json:"attempts"`
	MaxRetries  int       `json:"maxRetries"`
	NextRetryAt time.Time `json:"nextRetryAt"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
}

// QueueStatus reports the queue contents for health endpoints.
type QueueStatus struct {
	Pending    int             `json:"pending"`
	Operations []OperationInfo `json:"operations"`
}

// Status returns the queued operations sorted by ID.
func (q *Queue) Status() QueueStatus {
	q.mu.Lock()
	defer q.mu.Unlock()

	infos := make([]OperationInfo, 0, len(q.operations))
	for _, op := range q.operations {
		infos = append(infos, OperationInfo{
			ID:          op.id,
			Attempts:    op.currentRetry,
			MaxRetries:  op.maxRetries,
			NextRetryAt: op.nextRetryAt,
			EnqueuedAt:  op.enqueuedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return QueueStatus{Pending: len(infos), Operations: infos}
}

// Close stops the rescan timer and rejects further enqueues. Operations
// already being attempted finish; queued operations are discarded.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
	}
}
