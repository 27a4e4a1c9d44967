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


package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"

	"github.com/tamylaa/content-skimmer/core"
)

const (
	// readTimeout bounds each poll so the loop notices context
	// cancellation between messages.
	readTimeout = 5 * time.Second

	// readErrorBackoff spaces retries after a failed read so an
	// unreachable broker does not spin the loop.
	readErrorBackoff = time.Second

	// retryCountHeader carries the transport's delivery attempt counter.
	retryCountHeader = "retryCount"
)

// Prometheus metrics for the listener.
var messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skimmer_trigger_messages_total",
	Help: "Messages consumed from the registration topic, by outcome.",
}, []string{"outcome"})

var (
	// ErrBrokersRequired is returned when the config lists no brokers.
	ErrBrokersRequired = errors.New("at least one kafka broker required")

	// ErrTopicRequired is returned when the config names no topic.
	ErrTopicRequired = errors.New("kafka topic required")

	// ErrGroupRequired is returned when the config names no consumer group.
	ErrGroupRequired = errors.New("kafka consumer group required")

	// ErrProcessRequired is returned when no process function is provided.
	ErrProcessRequired = errors.New("process function required")
)

// Config describes the Kafka subscription the listener consumes.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Validate reports the first missing field.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return ErrBrokersRequired
	}
	if c.Topic == "" {
		return ErrTopicRequired
	}
	if c.GroupID == "" {
		return ErrGroupRequired
	}
	return nil
}

// ProcessFunc handles one validated registration event.
type ProcessFunc func(ctx context.Context, event *core.FileRegistrationEvent) error

// messageReader is the part of kafka.Reader's API the listener uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

var _ messageReader = (*kafka.Reader)(nil)

// Listener consumes registration events from a Kafka topic and dispatches
// them to a worker pool.
type Listener struct {
	reader  messageReader
	pool    *ants.Pool
	process ProcessFunc
	logger  *slog.Logger
}

// Option configures a Listener.
type Option func(*Listener) error

// WithLogger sets the logger used by the listener.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Listener) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		l.logger = logger
		return nil
	}
}

// WithPoolSize replaces the worker pool with one of the given size.
func WithPoolSize(size int) Option {
	return func(l *Listener) error {
		if size < 1 {
			return fmt.Errorf("pool size must be at least 1, got %d", size)
		}
		if l.pool != nil {
			l.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		l.pool = pool
		return nil
	}
}

// New builds a listener for cfg's topic. The reader connects lazily on the
// first read, so construction succeeds even while the brokers are down.
func New(cfg Config, process ProcessFunc, opts ...Option) (*Listener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})

	l, err := newWithReader(reader, process, opts...)
	if err != nil {
		reader.Close()
		return nil, err
	}
	return l, nil
}

// newWithReader wires a listener around an existing reader. Tests use it to
// substitute a scripted reader.
func newWithReader(reader messageReader, process ProcessFunc, opts ...Option) (*Listener, error) {
	if process == nil {
		return nil, ErrProcessRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		reader:  reader,
		pool:    pool,
		process: process,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(l); optErr != nil {
			l.pool.Release()
			return nil, optErr
		}
	}

	l.logger = l.logger.With("component", "trigger")
	return l, nil
}

// Run consumes messages until ctx is cancelled and returns ctx.Err().
// Read failures and bad messages are logged and skipped; nothing a producer
// sends can wedge the loop.
func (l *Listener) Run(ctx context.Context) error {
	l.logger.Info("listening for registration events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		msg, err := l.reader.ReadMessage(readCtx)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			l.logger.Error("kafka read failed", "err", err)
			time.Sleep(readErrorBackoff)
			continue
		}

		l.dispatch(msg)
	}
}

// dispatch decodes, validates and submits one message to the worker pool.
// Submit blocks while every worker is busy, which backpressures the read
// loop. Workers run detached from the loop's context; their failures are
// logged, never returned.
func (l *Listener) dispatch(msg kafka.Message) {
	event, err := decodeEvent(msg)
	if err != nil {
		messagesTotal.WithLabelValues("malformed").Inc()
		l.logger.Error("skipping undecodable message",
			"partition", msg.Partition, "offset", msg.Offset, "err", err)
		return
	}

	if err := core.ValidateFileRegistrationEvent(event); err != nil {
		messagesTotal.WithLabelValues("invalid").Inc()
		l.logger.Error("skipping invalid registration event",
			"partition", msg.Partition, "offset", msg.Offset, "err", err)
		return
	}

	err = l.pool.Submit(func() {
		if procErr := l.process(context.Background(), event); procErr != nil {
			l.logger.Error("event processing failed", "file_id", event.FileID, "err", procErr)
		}
	})
	if err != nil {
		messagesTotal.WithLabelValues("rejected").Inc()
		l.logger.Error("could not submit event to worker pool", "file_id", event.FileID, "err", err)
		return
	}

	messagesTotal.WithLabelValues("dispatched").Inc()
}

// decodeEvent parses a message body into a registration event. A retryCount
// header, stamped by the transport on redelivery, overrides the body's
// counter.
func decodeEvent(msg kafka.Message) (*core.FileRegistrationEvent, error) {
	var event core.FileRegistrationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return nil, fmt.Errorf("decode registration event: %w", err)
	}

	for _, header := range msg.Headers {
		if header.Key != retryCountHeader {
			continue
		}
		if n, err := strconv.Atoi(string(header.Value)); err == nil && n >= 0 {
			event.RetryCount = n
		}
		break
	}

	return &event, nil
}

// Close stops the reader and releases the worker pool. In-flight work is
// abandoned; files whose completion callback never arrives are registered
// again upstream.
func (l *Listener) Close() error {
	err := l.reader.Close()
	l.pool.Release()
	return err
}
