package retry

import "errors"

var (
	// ErrClosed is returned when enqueuing on a closed queue.
	ErrClosed = errors.New("retry queue is closed")

	// ErrNilOperation is returned when enqueuing a nil operation.
	ErrNilOperation = errors.New("operation cannot be nil")
)
