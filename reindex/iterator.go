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

	"github.com/tamylaa/content-skimmer/core"
	"github.com/tamylaa/content-skimmer/metastore"
)

// DefaultBatchSize is the page size used when none is configured.
const DefaultBatchSize = 100

// Lister is the slice of the metadata client the iterator consumes.
// *metastore.Client implements it.
type Lister interface {
	ListFiles(ctx context.Context, cursor string, limit int) (*metastore.FilePage, error)
}

// PageIterator walks the metadata store's file listing page by page.
type PageIterator struct {
	lister    Lister
	batchSize int
}

// NewPageIterator creates an iterator fetching batchSize files per page.
func NewPageIterator(lister Lister, batchSize int) *PageIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &PageIterator{
		lister:    lister,
		batchSize: batchSize,
	}
}

// ForEach calls fn once per non-empty page until the listing is exhausted,
// fn returns an error, or ctx ends. Cancellation is checked between pages,
// never mid-page.
func (it *PageIterator) ForEach(ctx context.Context, fn func(files []*core.FileMetadata) error) error {
	cursor := ""
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page, err := it.lister.ListFiles(ctx, cursor, it.batchSize)
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}

		if len(page.Files) > 0 {
			if err := fn(page.Files); err != nil {
				return err
			}
		}

		if page.NextCursor == "" {
			return nil
		}
		if page.NextCursor == cursor {
			// The cursor must advance; a repeat would loop forever.
			return fmt.Errorf("listing cursor did not advance past %q", cursor)
		}
		cursor = page.NextCursor
	}
}
