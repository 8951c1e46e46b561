// Package httpclient provides a configurable HTTP client with built-in
// authentication, retry and rate limiting. It is the transport layer for the
// market, exchange and webhook collaborators; the engine never touches it
// directly.
package httpclient
