// Package fetcher retrieves lookup values from a remote HTTP endpoint. It
// supports single-key and batched forward fetches, bounded fixed-interval
// retries for transport failures, and a pooled connection budget so one
// misbehaving lookup cannot exhaust the process's sockets.
//
// Only transport-level I/O failures are retried. A non-200 response is a
// terminal error carrying the status code and body for diagnosis.
package fetcher
