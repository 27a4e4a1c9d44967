package breaker

import "errors"

var (
	// ErrCircuitOpen is returned when a call is rejected because the circuit
	// is open and no fallback was provided.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)
