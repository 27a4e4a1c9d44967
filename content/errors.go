package content

import "errors"

var (
	// ErrNoSource indicates the event carries neither a download URL nor a
	// storage key to fetch from.
	ErrNoSource = errors.New("event has no content source")

	// ErrTooLarge indicates the content exceeds the configured fetch limit.
	ErrTooLarge = errors.New("content exceeds fetch size limit")

	// ErrUnexpectedStatus indicates the content host answered with a
	// non-success HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
