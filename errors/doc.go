// Package errors provides the structured error type shared by the publisher
// packages. Every error carries a machine-readable code, a retryable hint,
// an HTTP status for callers that serve documentation over HTTP, and details
// such as the backend, entity key or offending configuration field.
package errors
