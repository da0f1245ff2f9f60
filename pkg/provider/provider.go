// Package provider defines the interchangeable AI backend contract the
// orchestrator dispatches to, and adapters for the supported vendors.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Provider is an interchangeable backend capable of executing a tool's
// underlying request.
type Provider interface {
	// Name returns the unique provider name used for registration order
	// and circuit tracking.
	Name() string

	// Execute sends the prompt and parameters to the backend and returns
	// its result. Infrastructure failures must be wrapped in *Error so
	// the orchestrator can distinguish them from tool-level failures.
	Execute(ctx context.Context, prompt string, params map[string]interface{}) (interface{}, error)

	// IsAvailable reports whether the provider is configured and reachable
	// enough to attempt a call.
	IsAvailable(ctx context.Context) bool
}

// Error marks a provider infrastructure failure (network error, timeout,
// quota). The orchestrator records a circuit failure and falls over to the
// next provider when it sees one; any other error from a tool's run hook is
// treated as a business failure and returned to the caller directly.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as an infrastructure failure of the named provider.
func NewError(provider string, err error) *Error {
	return &Error{Provider: provider, Err: err}
}

// IsProviderError reports whether err is or wraps a provider
// infrastructure failure.
func IsProviderError(err error) bool {
	var pe *Error
	return errors.As(err, &pe)
}
