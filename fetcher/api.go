package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonwraymond/lookupops/observe"
	"github.com/jonwraymond/lookupops/resilience"
)

const accessTokenHeader = "Access-Token"

// batchRequest is the wire shape of a batched fetch.
type batchRequest struct {
	IDs []string `json:"id"`
}

// APIFetcher fetches lookup values over HTTP POST. Every request carries the
// configured access token; single fetches send the bare quoted key, batch
// fetches send a JSON id array and zip the response array back positionally.
//
// The remote offers no reverse endpoint, so ReverseFetchKeys reports
// ErrReverseUnsupported.
type APIFetcher struct {
	cfg    Config
	client *http.Client
	pool   *resilience.Bulkhead
	retry  *resilience.Retry
	logger observe.Logger
}

// Option customizes an APIFetcher.
type Option func(*APIFetcher)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger observe.Logger) Option {
	return func(f *APIFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewAPIFetcher creates a fetcher for cfg, applying defaults and validating
// the required fields.
func NewAPIFetcher(cfg Config, opts ...Option) (*APIFetcher, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &APIFetcher{
		cfg:    cfg,
		logger: observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}

	if cfg.HTTPClient != nil {
		f.client = cfg.HTTPClient
	} else {
		f.client = newPooledClient(cfg)
	}

	// MaxPerRoute lives in the transport (MaxConnsPerHost); the bulkhead
	// enforces the MaxTotal budget, waiting up to the connection-request
	// timeout for a slot.
	f.pool = resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: cfg.MaxTotal,
		MaxWait:       cfg.ConnectionRequestTimeout,
	})

	retries := cfg.RetryCount
	if retries < 0 {
		retries = 0
	}
	f.retry = resilience.NewRetry(resilience.RetryConfig{
		MaxAttempts: retries + 1,
		Interval:    cfg.RetryInterval,
		RetryIf:     isRetryable,
	})

	return f, nil
}

func newPooledClient(cfg Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: cfg.ConnectTimeout,
		}).DialContext,
		MaxConnsPerHost:       cfg.MaxPerRoute,
		MaxIdleConns:          cfg.MaxTotal,
		MaxIdleConnsPerHost:   cfg.MaxPerRoute,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: cfg.ResponseTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ConnectTimeout + cfg.ResponseTimeout,
	}
}

// isRetryable admits transport-level failures into the retry loop. A status
// failure is a definitive answer from the remote and retrying it would only
// repeat the same rejection.
func isRetryable(err error) bool {
	var statusErr *StatusError
	return !errors.As(err, &statusErr)
}

// Identity returns the fetcher's identity (endpoint and credential).
func (f *APIFetcher) Identity() Identity {
	return f.cfg.Identity()
}

// Fetch retrieves the value for a single key. An empty 200 body is an
// empty-string value, not an error.
func (f *APIFetcher) Fetch(ctx context.Context, key string) (string, error) {
	body, err := f.execute(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.FetchURI, strings.NewReader(strconv.Quote(key)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set(accessTokenHeader, f.cfg.AccessToken)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBatch retrieves values for all keys in one request. The response is a
// JSON array zipped to the request's key order; a size mismatch fails with
// ErrBatchMismatch rather than silently mis-pairing keys and values.
func (f *APIFetcher) FetchBatch(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	payload, err := json.Marshal(batchRequest{IDs: keys})
	if err != nil {
		return nil, fmt.Errorf("fetcher: encoding batch request: %w", err)
	}

	body, err := f.execute(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.FetchURI, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(accessTokenHeader, f.cfg.AccessToken)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var values []string
	if err := json.Unmarshal(body, &values); err != nil {
		return nil, fmt.Errorf("fetcher: decoding batch response: %w", err)
	}
	if len(values) != len(keys) {
		return nil, fmt.Errorf("%w: %d values for %d keys", ErrBatchMismatch, len(values), len(keys))
	}

	results := make(map[string]string, len(keys))
	for i, key := range keys {
		results[key] = values[i]
	}
	return results, nil
}

// ReverseFetchKeys is not offered by the remote endpoint.
func (f *APIFetcher) ReverseFetchKeys(ctx context.Context, value string) ([]string, error) {
	return nil, ErrReverseUnsupported
}

// Close releases idle pooled connections. Idempotent.
func (f *APIFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// execute runs one fetch through the connection budget and retry loop. The
// response body is always fully read and closed so connections return to the
// pool on every path.
func (f *APIFetcher) execute(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var body []byte
	attempts := 0

	err := f.retry.Execute(ctx, func(ctx context.Context) error {
		attempts++

		if err := f.pool.Acquire(ctx); err != nil {
			return err
		}
		defer f.pool.Release()

		req, err := build(ctx)
		if err != nil {
			return err
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return err
		}

		data, readErr := io.ReadAll(resp.Body)
		closeErr := resp.Body.Close()
		if readErr != nil {
			return readErr
		}
		if closeErr != nil {
			return closeErr
		}

		if resp.StatusCode != http.StatusOK {
			return &StatusError{Code: resp.StatusCode, Body: data}
		}

		body = data
		return nil
	})
	if err != nil {
		f.logger.Error(ctx, "unable to fetch response",
			observe.Field{Key: "endpoint", Value: f.cfg.FetchURI},
			observe.Field{Key: "attempts", Value: attempts},
			observe.Field{Key: "error", Value: err.Error()},
		)

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}
		return nil, &TransportError{Attempts: attempts, Err: err}
	}

	return body, nil
}

var _ Fetcher = (*APIFetcher)(nil)
