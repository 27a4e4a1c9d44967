package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrListerRequired is returned when a file lister is not provided.
	ErrListerRequired = errors.New("file lister required")

	// ErrNoBackends is returned when no search backend is configured.
	ErrNoBackends = errors.New("no search backends configured")
)
