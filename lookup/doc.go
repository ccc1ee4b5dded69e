// Package lookup provides the query-time lookup runtime and its host-facing
// factory. A Lookup resolves keys to values through a forward loading cache
// and values back to keys through a reverse loading cache, filling misses from
// a remote fetcher. The Factory owns the fetcher and both caches, drives the
// idempotent start/close lifecycle, and carries the structural identity the
// host compares to decide whether a configuration change requires a reload.
//
// A Registry maps discriminator strings from declarative configuration
// documents to factory builders; "apiLookup" is registered by default.
package lookup
