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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/search"
)

// Config holds the knobs for one reindexing run.
type Config struct {
	// BatchSize is the number of files fetched per listing page
	BatchSize int

	// ReportInterval is how often to report progress (number of files)
	ReportInterval int

	// MaxRetries is the attempt budget per backend upsert
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds every configured search backend from the metadata
// store's records.
type Reindexer struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *PageIterator
}

// NewReindexer creates a reindexer walking lister and writing to backends.
// progress receives human-readable status lines (typically os.Stderr).
func NewReindexer(lister Lister, backends []search.Backend, config *Config, progress io.Writer) (*Reindexer, error) {
	if lister == nil {
		return nil, ErrListerRequired
	}
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reindexer{
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(backends, config.MaxRetries, config.RetryDelay),
		iterator:  NewPageIterator(lister, config.BatchSize),
	}, nil
}

// Run walks the full file listing once, indexing every analyzed file on
// all backends. It stops at the first listing or indexing error.
func (r *Reindexer) Run(ctx context.Context) error {
	fmt.Fprintf(r.progress, "Starting reindex (batch size: %d)\n", r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, r.config.ReportInterval)
	tracker.Start()

	scanned := 0
	indexed := 0
	err := r.iterator.ForEach(ctx, func(files []*core.FileMetadata) error {
		n, err := r.processor.Process(ctx, files)
		indexed += n
		if err != nil {
			return err
		}

		scanned += len(files)
		tracker.Update(scanned)
		return nil
	})
	if err != nil {
		return err
	}

	if scanned == 0 {
		fmt.Fprintf(r.progress, "No files found in the metadata store\n")
		return nil
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Scanned %d files, indexed %d documents in %v (%.1f files/sec)\n",
		scanned, indexed, elapsed.Round(time.Second), float64(scanned)/elapsed.Seconds())

	return nil
}
