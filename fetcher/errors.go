package fetcher

import (
	"errors"
	"fmt"
)

// Sentinel errors for fetcher construction and capabilities.
var (
	// ErrMissingFetchURI indicates Config.FetchURI is empty.
	ErrMissingFetchURI = errors.New("fetcher: fetchUri is required")

	// ErrInvalidFetchURI indicates Config.FetchURI is not a valid URI.
	ErrInvalidFetchURI = errors.New("fetcher: fetchUri is not a valid URI")

	// ErrMissingAccessToken indicates Config.AccessToken is empty.
	ErrMissingAccessToken = errors.New("fetcher: accessToken is required")

	// ErrReverseUnsupported indicates the fetcher offers no reverse fetch.
	ErrReverseUnsupported = errors.New("fetcher: reverse fetch not supported")

	// ErrBatchMismatch indicates the remote returned a different number of
	// values than keys requested, so positional pairing would misalign.
	ErrBatchMismatch = errors.New("fetcher: batch response does not align with requested keys")
)

// StatusError reports a non-200 response from the remote. It is terminal:
// the fetcher never retries a status failure.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetcher: incompatible HTTP status code: %d, response: %s", e.Code, e.Body)
}

// TransportError reports an I/O failure that survived the retry budget:
// connection refused, timeout, reset, or pool exhaustion.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetcher: fetch failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
