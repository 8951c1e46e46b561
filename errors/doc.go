// Package errors provides unified error handling for ApexFlow services.
// It implements structured error types with machine-readable codes, HTTP
// status mapping, and retryable detection. Engine and collaborator failures
// all surface as *AppError so callers and the API layer can branch on Code.
package errors
