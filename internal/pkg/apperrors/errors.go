package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrSessionExpired     = errors.New("session expired")
	ErrPermissionDenied   = errors.New("permission denied")
)

// AppError is an error carrying the HTTP status it should be reported with.
type AppError struct {
	Status  int
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Status)
}

// Unwrap implements errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// Stack returns the error with its recorded stack trace, if any.
func (e *AppError) Stack() string {
	if e.Err == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.Err)
}

// New creates an AppError with a stack trace recorded at the call site.
func New(status int, message string) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     pkgerrors.New(message),
	}
}

// Newf is New with a format string.
func Newf(status int, format string, args ...interface{}) *AppError {
	return New(status, fmt.Sprintf(format, args...))
}

// Assert returns nil when cond holds, otherwise an AppError with the given status and message.
func Assert(cond bool, status int, message string) error {
	if cond {
		return nil
	}
	return New(status, message)
}

func BadRequest(message string) *AppError   { return New(http.StatusBadRequest, message) }
func Unauthorized(message string) *AppError { return New(http.StatusUnauthorized, message) }
func Forbidden(message string) *AppError    { return New(http.StatusForbidden, message) }
func NotFound(message string) *AppError     { return New(http.StatusNotFound, message) }
func Conflict(message string) *AppError     { return New(http.StatusConflict, message) }

// Wrap attaches a status and public message to an underlying error.
func Wrap(err error, status int, message string) *AppError {
	return &AppError{
		Status:  status,
		Message: message,
		Err:     pkgerrors.WithStack(err),
	}
}

// Internal wraps an unexpected error as a 500 without leaking its text.
func Internal(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, "internal server error")
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, status int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Status == status
}
