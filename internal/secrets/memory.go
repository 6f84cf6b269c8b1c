package secrets

import (
	"context"
	"sync"
)

// MemoryProvider is an in-memory secret store for tests. It is safe for
// concurrent use and holds no persistence.
type MemoryProvider struct {
	mu    sync.RWMutex
	store map[string][]byte
}

// NewMemoryProvider returns an empty in-memory provider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		store: make(map[string][]byte),
	}
}

// Name returns the provider identifier.
func (p *MemoryProvider) Name() string {
	return "memory"
}

// Store saves a secret value under name, replacing any previous value.
func (p *MemoryProvider) Store(name string, value []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.store[name] = append([]byte(nil), value...)
}

// Resolve implements Resolver.
func (p *MemoryProvider) Resolve(ctx context.Context, name string) (*Secret, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ProviderError{Provider: p.Name(), Ref: name, Err: err}
	}
	if name == "" {
		return nil, &ProviderError{Provider: p.Name(), Ref: name, Err: ErrInvalidRef}
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.store[name]
	if !ok {
		return nil, &ProviderError{Provider: p.Name(), Ref: name, Err: ErrSecretNotFound}
	}
	// Copy so the caller's Clear cannot zero the stored value.
	return &Secret{Value: append([]byte(nil), value...)}, nil
}

// Close zeroes and drops every stored secret.
func (p *MemoryProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, value := range p.store {
		for i := range value {
			value[i] = 0
		}
		delete(p.store, name)
	}
	return nil
}
