// Package logging wraps log/slog with the handlers and attribute helpers
// used across autopost.
//
// Two output formats are supported: a line-oriented console format for
// interactive use and JSON for log aggregation. Loggers are constructed
// once at process start via NewFromConfig and threaded through components
// with NewComponentLogger.
package logging
