package provider

import (
	"errors"
	"fmt"

	"github.com/ableKiHo/community-web/internal/auth"
)

// ErrNotConfigured is returned for a supported provider without credentials.
var ErrNotConfigured = errors.New("oauth provider not configured")

// Registry holds all configured OAuth providers and allows
// lookup by provider path value. It performs no auth logic itself.
type Registry struct {
	providers map[auth.Provider]OAuthProvider
}

// NewRegistry registers the given OAuth providers.
// A later provider replaces an earlier one of the same kind.
func NewRegistry(list ...OAuthProvider) *Registry {
	m := make(map[auth.Provider]OAuthProvider)
	for _, p := range list {
		m[p.Provider()] = p
	}
	return &Registry{providers: m}
}

// Get returns the OAuth provider by name ("kakao" or "KAKAO").
func (r *Registry) Get(name string) (OAuthProvider, error) {
	kind, err := auth.ParseProvider(name)
	if err != nil {
		return nil, err
	}
	p, ok := r.providers[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, kind.Value())
	}
	return p, nil
}

// Configured lists the registered providers in declaration order.
func (r *Registry) Configured() []auth.Provider {
	var out []auth.Provider
	for _, p := range auth.Providers {
		if _, ok := r.providers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
