// Package server exposes the workflow engine over HTTP: execution and
// validation endpoints under /api/v1, plus health and version probes. The
// Gin engine carries the standard middleware stack (recovery, request id,
// CORS, request logging, optional JWT auth).
package server
