// Package clients provides instrumented HTTP clients for the upstream
// services the engine depends on: the content provider and the user service.
package clients

import "errors"

// Infrastructure errors from the client layer. Adapters translate these to
// domain errors (or degrade to empty results) before they reach a service.
var (
	// ErrCircuitOpen is returned while the breaker is blocking requests to
	// an unhealthy upstream.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded is returned after all retry attempts are spent.
	// The last attempt's error is wrapped.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
