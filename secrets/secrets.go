// Package secrets resolves credential references found in config.ini.
//
// A value of the form "scheme:reference" is looked up through the provider
// registered for scheme; any other value is returned as written. Supported
// schemes are "env" (an environment variable) and "vault" (a HashiCorp Vault
// KV secret, "vault:<path>#<field>").
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

// ErrNotFound is wrapped when a reference points at nothing.
var ErrNotFound = errors.New("secret not found")

// Provider looks up the secret behind one reference, the part after the
// scheme prefix.
type Provider interface {
	Lookup(ctx context.Context, ref string) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, ref string) (string, error)

func (f ProviderFunc) Lookup(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// Resolver maps scheme prefixes to providers.
type Resolver struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewResolver returns a resolver knowing the env scheme. The vault scheme is
// added by Register or by the default resolver.
func NewResolver() *Resolver {
	return &Resolver{providers: map[string]Provider{
		"env": ProviderFunc(lookupEnv),
	}}
}

func (r *Resolver) Register(scheme string, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[scheme] = p
}

// Resolve returns the secret value for value.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	scheme, ref, ok := strings.Cut(value, ":")
	if !ok {
		return value, nil
	}

	r.mu.RLock()
	p, known := r.providers[scheme]
	r.mu.RUnlock()
	if !known {
		return value, nil
	}

	secret, err := p.Lookup(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("resolve %s secret %q: %w", scheme, ref, err)
	}
	return secret, nil
}

func lookupEnv(_ context.Context, name string) (string, error) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

var (
	defaultOnce     sync.Once
	defaultResolver *Resolver
)

// Default returns a resolver for env and vault references. The Vault client
// is created on the first vault reference from the VAULT_* environment.
func Default() *Resolver {
	defaultOnce.Do(func() {
		defaultResolver = NewResolver()
		defaultResolver.Register("vault", &lazyVault{})
	})
	return defaultResolver
}

// Resolve resolves value with the default resolver.
func Resolve(ctx context.Context, value string) (string, error) {
	return Default().Resolve(ctx, value)
}

type lazyVault struct {
	once     sync.Once
	provider *VaultProvider
	err      error
}

func (l *lazyVault) Lookup(ctx context.Context, ref string) (string, error) {
	l.once.Do(func() {
		l.provider, l.err = NewVaultProvider(VaultConfigFromEnv())
	})
	if l.err != nil {
		return "", l.err
	}
	return l.provider.Lookup(ctx, ref)
}
