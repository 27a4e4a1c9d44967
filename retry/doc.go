// Package retry provides an in-memory queue of failed operations retried
// with exponential backoff.
//
// Operations are keyed by ID; enqueuing an ID that is already queued
// replaces the stored operation. Each enqueue triggers an immediate
// processing pass, and while operations remain queued the queue rescans on
// a fixed interval. An operation that exhausts its retry budget is dropped
// and logged; queue contents do not survive a process restart. Callers that
// need stronger delivery guarantees must layer them on top.
package retry
