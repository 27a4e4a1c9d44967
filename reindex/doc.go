// Package reindex rebuilds search backends from the metadata store.
//
// A run walks the full file listing page by page, derives the search
// document for every analyzed file and upserts it to all configured
// backends with retry. It is the recovery path after a backend wipe and
// the bootstrap path for a newly added backend.
package reindex
