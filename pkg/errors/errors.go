package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	// ErrorTypeValidation covers malformed or incomplete input: bad creation
	// parameters, partial ballots, unknown leaders or options.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeState covers operations invalid for the current phase or
	// caller role. The session is left unchanged.
	ErrorTypeState ErrorType = "state"
	// ErrorTypeCapacity covers limits: too many bans, or a catalog too thin
	// to deal every pool.
	ErrorTypeCapacity ErrorType = "capacity"
	// ErrorTypeNotFound covers unknown sessions and participants.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeIO covers persistence failures, surfaced verbatim; the engine
	// never retries on its own.
	ErrorTypeIO ErrorType = "io"
	// ErrorTypeAuthentication covers missing or invalid identity tokens.
	ErrorTypeAuthentication ErrorType = "authentication"
	// ErrorTypeInternal covers everything that should not happen.
	ErrorTypeInternal ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewStateError creates an error for an operation that is invalid in the
// session's current phase or for the caller's role.
func NewStateError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeState,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewCapacityError creates an error for an operation that exceeds a limit.
func NewCapacityError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeCapacity,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewIOError creates an error for a failed persistence operation.
func NewIOError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeIO,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// AsAppError unwraps err into an *AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Type == t
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Error struct {
		Type      ErrorType              `json:"type"`
		Message   string                 `json:"message"`
		Details   map[string]interface{} `json:"details,omitempty"`
		RequestID string                 `json:"request_id,omitempty"`
		Timestamp string                 `json:"timestamp"`
	} `json:"error"`
}
