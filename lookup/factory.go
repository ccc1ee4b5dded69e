package lookup

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"sync"

	"github.com/jonwraymond/lookupops/cache"
	"github.com/jonwraymond/lookupops/fetcher"
	"github.com/jonwraymond/lookupops/observe"
)

// ExtractorFactory is the narrow capability interface a host drives the
// lookup lifecycle through.
//
// Contract:
//   - Lifecycle: Start and Close are idempotent; their boolean reports whether
//     the factory is in the desired state, never a panic.
//   - Get: a plain accessor, valid in any lifecycle state. Callers check
//     IsOpen or Start first.
//   - Replaces: structural comparison by identity, never by reference.
type ExtractorFactory interface {
	Start() bool
	Close() bool
	Get() *Lookup
	Replaces(other ExtractorFactory) bool
}

// Identity is the structural identity of a lookup: the fetcher's identity
// plus both cache specs. Two factories with equal identities serve the same
// lookup and neither replaces the other.
type Identity struct {
	Fetcher      fetcher.Identity
	ForwardCache cache.Spec
	ReverseCache cache.Spec
}

// Config configures a Factory.
type Config struct {
	// Name labels the lookup in logs and telemetry. Defaults to the
	// generated instance id.
	Name string

	// Fetcher configures the remote fetcher. Validated at construction.
	Fetcher fetcher.Config

	// ForwardCache bounds the key-to-value cache.
	ForwardCache cache.Spec

	// ReverseCache bounds the value-to-keys cache.
	ReverseCache cache.Spec

	// Injective hints that values are unique, letting the host take
	// reverse-resolution shortcuts. Not part of the identity.
	Injective bool
}

// FactoryOption customizes a Factory.
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	logger     observe.Logger
	middleware *observe.Middleware
}

// WithLogger sets the factory's structured logger. Defaults to a no-op logger.
func WithLogger(logger observe.Logger) FactoryOption {
	return func(o *factoryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMiddleware instruments the lookup's resolve paths.
func WithMiddleware(mw *observe.Middleware) FactoryOption {
	return func(o *factoryOptions) {
		o.middleware = mw
	}
}

// Factory owns the fetcher and both caches and manages the lookup runtime's
// lifecycle. A single mutex serializes Start and Close; resolutions never
// take it, so a slow fetch cannot block lifecycle transitions.
type Factory struct {
	cfg    Config
	id     string
	meta   observe.LookupMeta
	logger observe.Logger

	mu      sync.Mutex
	started bool
	lookup  *Lookup
}

// NewFactory builds the fetcher, both caches, and the lookup runtime for cfg.
// Configuration errors surface here, before any Start.
func NewFactory(cfg Config, opts ...FactoryOption) (*Factory, error) {
	o := &factoryOptions{logger: observe.NopLogger()}
	for _, opt := range opts {
		opt(o)
	}

	id := newInstanceID()
	name := cfg.Name
	if name == "" {
		name = id
	}
	meta := observe.LookupMeta{Name: name, Endpoint: endpointHost(cfg.Fetcher.FetchURI)}

	apiFetcher, err := fetcher.NewAPIFetcher(cfg.Fetcher, fetcher.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	forward := cache.NewLoading[string, string](cfg.ForwardCache)
	reverse := cache.NewLoading[string, []string](cfg.ReverseCache)

	var lookupOpts []LookupOption
	if o.middleware != nil {
		lookupOpts = append(lookupOpts, WithInstrumentation(o.middleware, meta))
	}

	return &Factory{
		cfg:    cfg,
		id:     id,
		meta:   meta,
		logger: o.logger.WithLookup(meta),
		lookup: New(apiFetcher, forward, reverse, lookupOpts...),
	}, nil
}

// newInstanceID returns a short random id distinguishing factory instances in
// logs.
func newInstanceID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "lookup"
	}
	return hex.EncodeToString(buf)
}

// endpointHost extracts the host for telemetry, never the full URI with
// credentials or query parameters.
func endpointHost(fetchURI string) string {
	u, err := url.Parse(fetchURI)
	if err != nil {
		return ""
	}
	return u.Host
}

// ID returns the factory's random instance id.
func (f *Factory) ID() string {
	return f.id
}

// Name returns the lookup's log and telemetry name.
func (f *Factory) Name() string {
	return f.meta.Name
}

// Injective reports the configured injectivity hint.
func (f *Factory) Injective() bool {
	return f.cfg.Injective
}

// Identity returns the factory's structural identity.
func (f *Factory) Identity() Identity {
	return Identity{
		Fetcher:      f.cfg.Fetcher.Identity(),
		ForwardCache: f.cfg.ForwardCache,
		ReverseCache: f.cfg.ReverseCache,
	}
}

// Start marks the factory started. Already started is a no-op reporting true.
// Otherwise the started flag tracks a single IsOpen probe of the runtime; a
// failed probe is reported, not retried.
func (f *Factory) Start() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.started {
		return true
	}

	f.started = f.lookup.IsOpen()
	if f.started {
		f.logger.Info(context.Background(), "created loading lookup",
			observe.Field{Key: "id", Value: f.id},
		)
	}
	return f.started
}

// Close stops the factory and tears the runtime down. Already stopped is a
// no-op reporting true. A factory closed once stays closed; Start after Close
// probes the closed runtime and reports false.
func (f *Factory) Close() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.started {
		return true
	}

	f.logger.Info(context.Background(), "closing loading lookup",
		observe.Field{Key: "id", Value: f.id},
	)
	if err := f.lookup.Close(); err != nil {
		f.logger.Warn(context.Background(), "error closing lookup fetcher",
			observe.Field{Key: "id", Value: f.id},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	f.started = false
	return true
}

// Get returns the lookup runtime regardless of lifecycle state.
func (f *Factory) Get() *Lookup {
	return f.lookup
}

// Replaces reports whether this factory's configuration supersedes other's.
// True when other is absent, a different implementation, or configured with a
// different identity. Timeout and pool tunables are outside the identity, so
// retuning them never forces a reload.
func (f *Factory) Replaces(other ExtractorFactory) bool {
	if other == nil {
		return true
	}
	prev, ok := other.(*Factory)
	if !ok {
		return true
	}
	return f.Identity() != prev.Identity()
}

var _ ExtractorFactory = (*Factory)(nil)
