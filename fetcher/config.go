package fetcher

import (
	"net/http"
	"net/url"
	"time"
)

// Defaults applied by Config.WithDefaults.
const (
	DefaultRetryCount               = 3
	DefaultRetryInterval            = 100 * time.Millisecond
	DefaultConnectTimeout           = 1000 * time.Millisecond
	DefaultConnectionRequestTimeout = 1000 * time.Millisecond
	DefaultResponseTimeout          = 1000 * time.Millisecond
	DefaultMaxTotal                 = 200
	DefaultMaxPerRoute              = 200
)

// Config configures an APIFetcher. Immutable after construction; the fetcher
// copies it.
type Config struct {
	// FetchURI is the remote endpoint all fetches POST to. Required.
	FetchURI string

	// AccessToken is sent on every request in the Access-Token header. Required.
	AccessToken string

	// RetryCount is the number of retries after a failed first attempt.
	// Zero means unset and takes the default (3); negative disables retries.
	RetryCount int

	// RetryInterval is the fixed delay between attempts. Default: 100ms.
	RetryInterval time.Duration

	// ConnectTimeout bounds dialing the remote. Default: 1s.
	ConnectTimeout time.Duration

	// ConnectionRequestTimeout bounds waiting for a pooled connection slot.
	// Default: 1s.
	ConnectionRequestTimeout time.Duration

	// ResponseTimeout bounds waiting for the response. Default: 1s.
	ResponseTimeout time.Duration

	// MaxTotal caps in-flight connections across all routes. Default: 200.
	MaxTotal int

	// MaxPerRoute caps in-flight connections per host. Default: 200.
	MaxPerRoute int

	// HTTPClient overrides the pooled client built from the settings above.
	// Intended for tests.
	HTTPClient *http.Client
}

// Identity is the part of a fetcher configuration that defines which lookup
// it serves. Timeout and pool tunables are deliberately excluded so they can
// change without the host treating it as a new lookup.
type Identity struct {
	FetchURI    string
	AccessToken string
}

// Identity returns the fetcher's identity.
func (c Config) Identity() Identity {
	return Identity{FetchURI: c.FetchURI, AccessToken: c.AccessToken}
}

// WithDefaults returns a copy of c with defaults applied to unset fields.
func (c Config) WithDefaults() Config {
	if c.RetryCount == 0 {
		c.RetryCount = DefaultRetryCount
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.ConnectionRequestTimeout <= 0 {
		c.ConnectionRequestTimeout = DefaultConnectionRequestTimeout
	}
	if c.ResponseTimeout <= 0 {
		c.ResponseTimeout = DefaultResponseTimeout
	}
	if c.MaxTotal <= 0 {
		c.MaxTotal = DefaultMaxTotal
	}
	if c.MaxPerRoute <= 0 {
		c.MaxPerRoute = DefaultMaxPerRoute
	}
	return c
}

// Validate reports configuration errors. It fails fast, before any lifecycle
// start, so a lookup with a broken fetcher never appears to come up.
func (c Config) Validate() error {
	if c.FetchURI == "" {
		return ErrMissingFetchURI
	}
	if _, err := url.ParseRequestURI(c.FetchURI); err != nil {
		return ErrInvalidFetchURI
	}
	if c.AccessToken == "" {
		return ErrMissingAccessToken
	}
	return nil
}
