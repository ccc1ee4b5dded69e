package fetcher

import "context"

// Fetcher retrieves lookup values from a remote source.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use; one
//     fetcher serves every in-flight query of its lookup.
//   - Blocking: calls block for the duration of the fetch including retries,
//     bounded by the configured timeouts.
//   - Errors: a non-success remote status surfaces as *StatusError; exhausted
//     transport retries surface as *TransportError. Neither is ever converted
//     into an empty result.
type Fetcher interface {
	// Fetch retrieves the value for a single key.
	Fetch(ctx context.Context, key string) (string, error)

	// FetchBatch retrieves values for all keys in one request. The remote
	// returns values positionally aligned to the request's key order.
	FetchBatch(ctx context.Context, keys []string) (map[string]string, error)

	// ReverseFetchKeys retrieves the keys mapping to value. Optional:
	// implementations without reverse support return ErrReverseUnsupported.
	ReverseFetchKeys(ctx context.Context, value string) ([]string, error)

	// Close releases the fetcher's connection resources. Idempotent.
	Close() error
}
