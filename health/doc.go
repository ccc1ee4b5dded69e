// Package health provides liveness checks for lookups and HTTP handlers that
// expose them. A lookup's health reflects constructor success (its fetcher and
// caches exist and the runtime is open); there is no background polling.
package health
