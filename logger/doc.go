// Package logger provides structured logging for ApexFlow services built on
// rs/zerolog. Components obtain tagged sub-loggers via WithComponent; the
// execution engine mirrors its per-run log into a component logger.
package logger
