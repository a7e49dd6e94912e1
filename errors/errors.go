package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Constructors ---

// Configuration creates a CONFIGURATION_ERROR for a single offending field.
func Configuration(field, reason string) *AppError {
	msg := reason
	if field != "" {
		msg = fmt.Sprintf("%s: %s", field, reason)
	}
	e := New(ErrCodeConfiguration, "invalid publisher configuration: "+msg, http.StatusInternalServerError)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// UnknownPublisherType creates a CONFIGURATION_ERROR naming the offending
// discriminator value and the recognized set.
func UnknownPublisherType(value string, known []string) *AppError {
	return New(ErrCodeConfiguration,
		fmt.Sprintf("invalid publisher configuration: unknown publisher type %q (recognized: %s)",
			value, strings.Join(known, ", ")),
		http.StatusInternalServerError,
	).WithDetails(map[string]any{"field": "techdocs.publisher.type", "value": value, "recognized": known})
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Backend creates a BACKEND_ERROR carrying the backend identity, the failed
// operation and the underlying cause.
func Backend(backend, operation string, cause error) *AppError {
	return New(ErrCodeBackend, fmt.Sprintf("%s backend failed during %s", backend, operation), http.StatusBadGateway).
		WithDetails(map[string]any{"backend": backend, "operation": operation}).
		WithCause(cause)
}

// PartialPublish creates a PARTIAL_PUBLISH error listing the relative paths
// that failed to upload. Files that succeeded stay in place.
func PartialPublish(backend, entity string, failed []string, cause error) *AppError {
	return New(ErrCodePartialPublish,
		fmt.Sprintf("publishing %s to %s failed for %d file(s): %s",
			entity, backend, len(failed), strings.Join(failed, ", ")),
		http.StatusBadGateway,
	).WithDetails(map[string]any{"backend": backend, "entity": entity, "failed_paths": failed}).
		WithCause(cause)
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason), http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// --- Predicates ---

func hasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// IsConfiguration reports whether err is a CONFIGURATION_ERROR.
func IsConfiguration(err error) bool { return hasCode(err, ErrCodeConfiguration) }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsBackend reports whether err is a BACKEND_ERROR.
func IsBackend(err error) bool { return hasCode(err, ErrCodeBackend) }

// IsPartialPublish reports whether err is a PARTIAL_PUBLISH error.
func IsPartialPublish(err error) bool { return hasCode(err, ErrCodePartialPublish) }

// IsInvalidInput reports whether err is an INVALID_INPUT error.
func IsInvalidInput(err error) bool { return hasCode(err, ErrCodeInvalidInput) }

// FailedPaths returns the relative paths recorded on a PARTIAL_PUBLISH error.
func FailedPaths(err error) []string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) || appErr.Code != ErrCodePartialPublish {
		return nil
	}
	paths, _ := appErr.Details["failed_paths"].([]string)
	return paths
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
