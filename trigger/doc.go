// Package trigger consumes file registration events from Kafka and hands
// them to the processing pipeline.
//
// The listener reads one message at a time, decodes and validates it, then
// submits it to a bounded worker pool so a slow file never stalls
// consumption. Undecodable and invalid messages are logged and skipped.
// Processing failures are logged by the workers; whether a failed file is
// registered again is the upstream service's decision, carried back in via
// the retryCount header.
package trigger
