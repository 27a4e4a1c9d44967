// Package metastore talks to the external file metadata service.
//
// The raw HTTP operations live on Client, which implements the Store
// interface. Pipeline code never calls the Client directly; it goes
// through the Gateway, which wraps each dependency in a circuit breaker
// and degrades reads and writes independently when the service is down.
package metastore
