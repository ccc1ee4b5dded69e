// Package resilience provides the failure-handling building blocks used by the
// remote fetcher: a bounded fixed-interval retry loop and a bulkhead that caps
// concurrent operations against a shared resource.
//
// There is deliberately no circuit breaker here. A lookup that keeps missing its
// cache keeps retrying the remote on every miss; breaking the circuit would turn
// a visible query failure into a silently stale lookup.
package resilience
