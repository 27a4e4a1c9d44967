// Package events provides the in-process event bus that decouples the
// processing pipeline from downstream consumers such as search indexing.
//
// Handlers for an event type run concurrently on a shared worker pool, and
// Emit blocks until every handler has settled. Handler panics and errors
// are logged, never propagated: one misbehaving subscriber cannot affect
// the others or the publisher.
package events
