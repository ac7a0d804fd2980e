package errors

import "fmt"

// ErrorCode represents a chatsnap error code.
type ErrorCode string

const (
	ErrTransport      ErrorCode = "TRANSPORT"       // 502 — source enumeration/auth/network failure, fatal for the run
	ErrSourceFetch    ErrorCode = "SOURCE_FETCH"    // 502 — one source's fetch failed
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotConfigured  ErrorCode = "NOT_CONFIGURED"  // 400 — transport credentials/paths missing
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// SnapError represents a structured error with code, status, and details.
type SnapError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	cause   error
}

// Error implements the error interface.
func (e *SnapError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *SnapError) Unwrap() error {
	return e.cause
}

// NewTransport creates a fatal transport error for the whole run.
func NewTransport(op string, err error) *SnapError {
	return &SnapError{
		Code:    ErrTransport,
		Status:  502,
		Message: fmt.Sprintf("%s: %v", op, err),
		Details: map[string]any{"op": op},
		cause:   err,
	}
}

// NewSourceFetch creates an error for a single source's failed fetch.
func NewSourceFetch(source string, err error) *SnapError {
	return &SnapError{
		Code:    ErrSourceFetch,
		Status:  502,
		Message: fmt.Sprintf("fetch %s: %v", source, err),
		Details: map[string]any{"source": source},
		cause:   err,
	}
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SnapError {
	return &SnapError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotConfigured creates a 400 error for a missing transport setting.
func NewNotConfigured(setting string) *SnapError {
	return &SnapError{
		Code:    ErrNotConfigured,
		Status:  400,
		Message: fmt.Sprintf("missing configuration: %s", setting),
		Details: map[string]any{"setting": setting},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SnapError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SnapError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		cause:   err,
	}
}

// Is checks if an error is a SnapError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*SnapError); ok {
		return sErr.Code == code
	}
	return false
}
