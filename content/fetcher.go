package content

import (
	"context"

	"github.com/tamylaa/content-skimmer/core"
)

// Fetcher acquires the content of a registered file.
// Implementations must honor context cancellation and bound the number of
// bytes they read.
type Fetcher interface {
	// Fetch downloads the content of the file the event describes.
	// Returns ErrNoSource when the event carries nothing to fetch from and
	// ErrTooLarge when the content exceeds the configured size limit.
	Fetch(ctx context.Context, event *core.FileRegistrationEvent) ([]byte, error)
}
