package resilience

import "errors"

// Sentinel errors returned by the network decorators. They reach the
// orchestrator wrapped in a *fetch.NetworkError like any other network failure.
var (
	// ErrCircuitOpen is returned when the breaker rejects a call.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimited is returned when no token is available in time.
	ErrRateLimited = errors.New("resilience: rate limit exceeded")

	// ErrBulkheadFull is returned when every concurrency slot is taken.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrTimeout is returned when a single network attempt exceeds its time limit.
	ErrTimeout = errors.New("resilience: network attempt timed out")
)

// rejected reports whether err means the call never reached the server.
func rejected(err error) bool {
	return errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrBulkheadFull)
}
