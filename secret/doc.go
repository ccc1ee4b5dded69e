// Package secret resolves sensitive configuration values before they reach a
// lookup's fetcher: environment expansion for endpoint URIs and access tokens,
// plus pluggable providers addressed by "secretref:<provider>:<ref>" values.
//
// Resolved values are credentials. Implementations must never log them.
package secret
