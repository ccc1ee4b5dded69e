package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/lookupops/cache"
	"github.com/jonwraymond/lookupops/fetcher"
	"github.com/jonwraymond/lookupops/observe"
	"github.com/jonwraymond/lookupops/secret"
)

// TypeAPILookup is the discriminator string declarative configuration
// documents use to select the remote API lookup.
const TypeAPILookup = "apiLookup"

// BuildDeps carries the ambient collaborators a builder may use. Zero-value
// fields get safe defaults: an env-only secret resolver, a no-op logger, no
// instrumentation.
type BuildDeps struct {
	Secrets    *secret.Resolver
	Logger     observe.Logger
	Middleware *observe.Middleware
}

// Builder materializes a Factory from a raw configuration document.
type Builder func(ctx context.Context, raw json.RawMessage, deps BuildDeps) (*Factory, error)

// Registry maps discriminator strings to factory builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty builder registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds a builder under a discriminator string.
func (r *Registry) Register(kind string, builder Builder) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return ErrTypeRequired
	}
	if builder == nil {
		return ErrBuilderRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[kind]; exists {
		return fmt.Errorf("lookup: type %q already registered", kind)
	}
	r.builders[kind] = builder
	return nil
}

// Build materializes a factory for the given discriminator string.
func (r *Registry) Build(ctx context.Context, kind string, raw json.RawMessage, deps BuildDeps) (*Factory, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, ErrTypeRequired
	}

	r.mu.RLock()
	builder, ok := r.builders[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("lookup: type %q is not registered", kind)
	}
	return builder(ctx, raw, deps)
}

// List returns registered discriminator strings.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.builders))
	for kind := range r.builders {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry is the global registry, with the API lookup registered.
var DefaultRegistry = NewRegistry()

func init() {
	_ = DefaultRegistry.Register(TypeAPILookup, BuildAPILookup)
}

// wireCacheSpec is the wire shape of a cache bound. Durations arrive as
// millisecond integers.
type wireCacheSpec struct {
	MaximumSize       int64 `json:"maximumSize"`
	ExpireAfterAccess int64 `json:"expireAfterAccess"`
}

func (w wireCacheSpec) spec() cache.Spec {
	return cache.Spec{
		MaximumSize:       w.MaximumSize,
		ExpireAfterAccess: time.Duration(w.ExpireAfterAccess) * time.Millisecond,
	}
}

// wireConfig mirrors the configuration document's property names.
type wireConfig struct {
	Name                     string        `json:"name"`
	FetchURI                 string        `json:"fetchUri"`
	AccessToken              string        `json:"accessToken"`
	RetryCount               int           `json:"retryCount"`
	RetryInterval            int64         `json:"retryInterval"`
	ConnectTimeout           int64         `json:"connectTimeout"`
	ConnectionRequestTimeout int64         `json:"connectionRequestTimeout"`
	ResponseTimeout          int64         `json:"responseTimeout"`
	MaxTotal                 int           `json:"maxTotal"`
	MaxPerRoute              int           `json:"maxPerRoute"`
	LoadingCacheSpec         wireCacheSpec `json:"loadingCacheSpec"`
	ReverseLoadingCacheSpec  wireCacheSpec `json:"reverseLoadingCacheSpec"`
	Injective                bool          `json:"injective"`
}

// BuildAPILookup is the Builder for TypeAPILookup. The endpoint and token
// values pass through secret resolution, so configuration documents may carry
// "${ENV_VAR}" expansions or "secretref:<provider>:<ref>" references instead
// of literal credentials.
func BuildAPILookup(ctx context.Context, raw json.RawMessage, deps BuildDeps) (*Factory, error) {
	var wire wireConfig
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("lookup: decoding %s config: %w", TypeAPILookup, err)
	}

	secrets := deps.Secrets
	if secrets == nil {
		secrets = secret.NewResolver()
	}

	fetchURI, err := secrets.ResolveValue(ctx, wire.FetchURI)
	if err != nil {
		return nil, fmt.Errorf("lookup: resolving fetchUri: %w", err)
	}
	accessToken, err := secrets.ResolveValue(ctx, wire.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("lookup: resolving accessToken: %w", err)
	}

	cfg := Config{
		Name: wire.Name,
		Fetcher: fetcher.Config{
			FetchURI:                 fetchURI,
			AccessToken:              accessToken,
			RetryCount:               wire.RetryCount,
			RetryInterval:            time.Duration(wire.RetryInterval) * time.Millisecond,
			ConnectTimeout:           time.Duration(wire.ConnectTimeout) * time.Millisecond,
			ConnectionRequestTimeout: time.Duration(wire.ConnectionRequestTimeout) * time.Millisecond,
			ResponseTimeout:          time.Duration(wire.ResponseTimeout) * time.Millisecond,
			MaxTotal:                 wire.MaxTotal,
			MaxPerRoute:              wire.MaxPerRoute,
		},
		ForwardCache: wire.LoadingCacheSpec.spec(),
		ReverseCache: wire.ReverseLoadingCacheSpec.spec(),
		Injective:    wire.Injective,
	}

	var opts []FactoryOption
	if deps.Logger != nil {
		opts = append(opts, WithLogger(deps.Logger))
	}
	if deps.Middleware != nil {
		opts = append(opts, WithMiddleware(deps.Middleware))
	}
	return NewFactory(cfg, opts...)
}
