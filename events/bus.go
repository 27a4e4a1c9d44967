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


package events

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// Event is the envelope delivered to handlers.
type Event struct {
	ID        string    // Unique per emission
	Type      string    // Event name, e.g. "analysis_completed"
	Timestamp time.Time // When the event was emitted
	Payload   any       // Event-specific payload
}

// Handler consumes one event. Handlers run concurrently with each other and
// must not assume ordering across emissions.
type Handler func(event Event)

// Subscription identifies one registered handler so it can be removed.
// Function values are not comparable in Go, so unsubscription works through
// this token rather than the handler itself.
type Subscription struct {
	eventType string
	id        uint64
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus is an in-process publish/subscribe hub. All methods are safe for
// concurrent use.
type Bus struct {
	logger *slog.Logger
	pool   *ants.Pool

	mu       sync.Mutex
	handlers map[string][]registration
	nextID   uint64
}

// Option configures a Bus.
type Option func(*Bus) error

// WithPoolSize sets the handler worker pool size.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(b *Bus) error {
		if size < 1 {
			size = 1
		}
		if b.pool != nil {
			b.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		b.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// NewBus creates an event bus with its own worker pool.
func NewBus(opts ...Option) (*Bus, error) {
	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	b := &Bus{
		logger:   slog.Default(),
		pool:     pool,
		handlers: make(map[string][]registration),
	}

	for _, opt := range opts {
		if optErr := opt(b); optErr != nil {
			b.Release()
			return nil, optErr
		}
	}

	b.logger = b.logger.With("component", "event-bus")
	return b, nil
}

// On registers a handler for the given event type and returns the token
// that removes it again.
func (b *Bus) On(eventType string, handler Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{
		id:      b.nextID,
		handler: handler,
	})
	return Subscription{eventType: eventType, id: b.nextID}
}

// Off removes the handler identified by the subscription. Removing an
// already removed subscription is a no-op.
func (b *Bus) Off(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[sub.eventType]
	for i, reg := range regs {
		if reg.id == sub.id {
			b.handlers[sub.eventType] = append(regs[:i], regs[i+1:]...)
			return
		}
	}
}

// Emit delivers the payload to every handler registered for the event type
// and blocks until all of them have settled. Handler panics are recovered
// and logged. Emitting an event type with no subscribers is a no-op.
func (b *Bus) Emit(eventType string, payload any) {
	b.mu.Lock()
	regs := b.handlers[eventType]
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Payload:   payload,
	}

	var wg sync.WaitGroup
	for _, reg := range snapshot {
		handler := reg.handler
		wg.Add(1)
		run := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("event handler panicked",
						"event_type", event.Type,
						"event_id", event.ID,
						"panic", r)
				}
			}()
			handler(event)
		}
		if err := b.pool.Submit(run); err != nil {
			// Pool exhausted or released; run inline so delivery still
			// happens.
			b.logger.Warn("event pool submit failed, running handler inline", "err", err)
			run()
		}
	}
	wg.Wait()
}

// Release frees the worker pool. The bus should not be used after calling
// Release.
func (b *Bus) Release() {
	if b.pool != nil {
		b.pool.Release()
	}
}
