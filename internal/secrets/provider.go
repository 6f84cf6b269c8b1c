package secrets

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors checked with errors.Is().

// ErrSecretNotFound indicates the requested secret does not exist in the
// provider's backing store.
var ErrSecretNotFound = errors.New("secret not found")

// ErrInvalidRef indicates a malformed secret reference (e.g. an empty name).
var ErrInvalidRef = errors.New("invalid secret reference")

// Resolver fetches secrets by name.
type Resolver interface {
	// Resolve retrieves a single secret. The returned Secret is owned by
	// the caller, who should Clear it when done.
	Resolve(ctx context.Context, name string) (*Secret, error)
}

// Provider extends Resolver with lifecycle management.
type Provider interface {
	Resolver

	// Name returns the provider's identifier (e.g. "env", "memory").
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// ProviderError wraps provider-specific failures with the provider name and
// secret reference for debugging, while keeping errors.Is() chains intact.
type ProviderError struct {
	Provider string
	Ref      string
	Err      error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %q error for secret %q: %v", e.Provider, e.Ref, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}
