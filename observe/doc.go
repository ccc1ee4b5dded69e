// Package observe provides the telemetry layer for lookup resolution: an
// Observer bundling an OpenTelemetry tracer and meter with a structured JSON
// logger, lookup-specific metrics, and middleware that instruments resolve
// calls with a span, counters, and a log line.
//
// Credential-bearing fields (access tokens and friends) are redacted from log
// output automatically.
package observe
