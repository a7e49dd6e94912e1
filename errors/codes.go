package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Publisher error taxonomy.
const (
	// ErrCodeConfiguration indicates the publisher configuration is unusable.
	// Raised only while constructing a publisher.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeNotFound indicates the requested entity or file was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeBackend indicates a transport, auth or permission failure talking
	// to the storage medium.
	ErrCodeBackend ErrorCode = "BACKEND_ERROR"
	// ErrCodePartialPublish indicates some files of a bundle failed to upload.
	ErrCodePartialPublish ErrorCode = "PARTIAL_PUBLISH"
)

// ErrCodeInvalidInput indicates an entity key, file path or bundle root
// was rejected.
const ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

var retryableCodes = map[ErrorCode]bool{
	ErrCodeBackend:        true,
	ErrCodePartialPublish: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Retrying is left to the caller; the publisher never retries on its own.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
