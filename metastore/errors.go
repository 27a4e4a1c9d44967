package metastore

import "errors"

var (
	// ErrNotFound indicates the metadata store has no record for the file.
	ErrNotFound = errors.New("file not found")

	// ErrUnexpectedStatus indicates the metadata store answered with a
	// non-success HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)
