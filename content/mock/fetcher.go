// Package mock provides a configurable test double for content.Fetcher.
package mock

import (
	"context"

	"github.com/tamylaa/content-skimmer/core"
)

// Fetcher is a test double for content.Fetcher.
// It allows custom behavior injection via function fields.
type Fetcher struct {
	// FetchFunc is called by Fetch if set.
	// If nil, uses default deterministic behavior.
	FetchFunc func(ctx context.Context, event *core.FileRegistrationEvent) ([]byte, error)

	callCount int
}

// NewFetcher creates a mock fetcher with default deterministic behavior.
func NewFetcher() *Fetcher {
	return &Fetcher{}
}

// Fetch returns placeholder content derived from the event's file ID.
func (m *Fetcher) Fetch(ctx context.Context, event *core.FileRegistrationEvent) ([]byte, error) {
	m.callCount++

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, event)
	}

	// Default: deterministic content tied to the file
	return []byte("content of " + event.FileID), nil
}

// CallCount returns the number of times Fetch was called.
func (m *Fetcher) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *Fetcher) Reset() {
	m.callCount = 0
	m.FetchFunc = nil
}
