package secrets

import (
	"context"
	"os"
)

// EnvProvider resolves secrets from process environment variables. This is
// how the invoking CI platform injects secrets: each secret reference is the
// name of an environment variable.
type EnvProvider struct{}

// NewEnvProvider returns a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

// Name returns the provider identifier.
func (p *EnvProvider) Name() string {
	return "env"
}

// Resolve implements Resolver. An unset or empty variable is treated as a
// missing secret: CI platforms expose undefined secrets as empty strings, and
// an empty credential is never usable.
func (p *EnvProvider) Resolve(ctx context.Context, name string) (*Secret, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Ref: name, Err: err}
	}
	if name == "" {
		return nil, &ProviderError{Provider: p.Name(), Ref: name, Err: ErrInvalidRef}
	}

	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return nil, &ProviderError{Provider: p.Name(), Ref: name, Err: ErrSecretNotFound}
	}
	return &Secret{Value: []byte(value)}, nil
}

// Close implements Provider. The environment holds no resources to release.
func (p *EnvProvider) Close() error {
	return nil
}
