// Package content acquires the raw bytes of registered files.
//
// A Fetcher turns a file registration event into the file's content.
// Two implementations are provided: httpstore resolves a signed URL
// through the upload service and downloads over HTTP, s3store reads
// the object directly from S3-compatible storage using the event's
// storage key. The processing pipeline is configured with exactly one
// of them.
package content
