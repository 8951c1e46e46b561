// Package bootstrap wires the service from configuration: logger,
// observability, market data, exchange connections, the workflow engine and
// the HTTP server, with a uniform startup/shutdown lifecycle.
package bootstrap
