package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for secret resolution.
var (
	ErrProviderNameRequired = errors.New("secret: provider name is required")
	ErrRefRequired          = errors.New("secret: ref is required")
)

// Resolver resolves secret references using registered providers.
//
// Values of the form "secretref:<provider>:<ref>" are resolved via providers.
// All other values are returned after strict environment expansion.
type Resolver struct {
	providers map[string]Provider
}

// NewResolver creates a resolver over the given providers. Nil providers are
// skipped. A nil or empty Resolver still performs environment expansion.
func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider)}
	for _, p := range providers {
		if p == nil {
			continue
		}
		r.providers[p.Name()] = p
	}
	return r
}

// Register adds a provider to the resolver.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue resolves environment variables and a secret ref in value.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if r == nil {
		return expanded, nil
	}

	providerName, ref, ok := ParseSecretRef(expanded)
	if !ok {
		return expanded, nil
	}
	return r.resolve(ctx, providerName, ref)
}

// ResolveMap resolves each string value in input, keyed by its config field name.
func (r *Resolver) ResolveMap(ctx context.Context, input map[string]string) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// ParseSecretRef parses a secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	const prefix = "secretref:"
	if !strings.HasPrefix(value, prefix) {
		return "", "", false
	}
	parts := strings.SplitN(strings.TrimPrefix(value, prefix), ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (r *Resolver) resolve(ctx context.Context, providerName, ref string) (string, error) {
	if strings.TrimSpace(providerName) == "" {
		return "", ErrProviderNameRequired
	}
	if strings.TrimSpace(ref) == "" {
		return "", ErrRefRequired
	}
	provider, ok := r.providers[providerName]
	if !ok || provider == nil {
		return "", fmt.Errorf("secret: provider %q is not registered", providerName)
	}
	return provider.Resolve(ctx, ref)
}
