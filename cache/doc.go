// Package cache implements the bounded loading caches that sit between a
// lookup and its remote fetcher. A loading cache computes a missing value
// through a caller-supplied loader, stores it, and serves repeated lookups
// from memory; entries age out by access recency and are evicted under size
// pressure.
//
// Eviction is advisory for correctness. A dropped entry means the next get
// reloads, never a wrong answer.
package cache
