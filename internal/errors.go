package internal

import "errors"

var (
	// ErrNotFound is returned by storage backends for missing records that
	// callers treat as hard misses (settings and holidays use defaults
	// instead and are never reported through this error).
	ErrNotFound = errors.New("not found")

	// ErrMalformedEntry indicates a stored entry string that the codec could
	// not decode. This is data corruption: it aborts the single report being
	// built and is never silently skipped.
	ErrMalformedEntry = errors.New("malformed entry")
)

// AppError is the error shape rendered inside API response envelopes.
// Fields carries field-keyed validation messages for submission failures.
type AppError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// NewValidationError wraps field-keyed, localized validation messages.
func NewValidationError(fields map[string]string) *AppError {
	return &AppError{Code: 422, Message: "validation failed", Fields: fields}
}
