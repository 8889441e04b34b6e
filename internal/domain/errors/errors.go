// Package errors defines application errors carrying an HTTP status and a
// business error code for the delivery layer.
package errors

import (
	"net/http"

	"bizradar/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Scan lifecycle errors
	ErrScanInProgress = NewBaseError(
		http.StatusConflict,
		"SCAN_IN_PROGRESS",
		"A scan is already running",
		"",
	)

	ErrScanFailed = NewBaseError(
		http.StatusBadGateway,
		"SCAN_FAILED",
		"The scan could not be completed",
		"",
	)

	// Lookup errors
	ErrBusinessNotFound = NewBaseError(
		http.StatusNotFound,
		"BUSINESS_NOT_FOUND",
		"No tracked business with that ID",
		"",
	)

	ErrNotificationNotFound = NewBaseError(
		http.StatusNotFound,
		"NOTIFICATION_NOT_FOUND",
		"No notification with that ID",
		"",
	)

	// Settings errors
	ErrInvalidSettings = NewBaseError(
		http.StatusBadRequest,
		"INVALID_SETTINGS",
		"Monitoring settings failed validation",
		"",
	)

	// Upstream errors surfaced to the operator
	ErrUpstreamUnauthorized = NewBaseError(
		http.StatusBadGateway,
		"UPSTREAM_UNAUTHORIZED",
		"The places API rejected the configured credentials",
		"",
	)
)

// NewDatabaseExecuteError wraps a low-level database failure as an internal
// server error while preserving the cause for logging.
func NewDatabaseExecuteError(cause error, message string) error {
	base := NewBaseError(
		http.StatusInternalServerError,
		"DATABASE_ERROR",
		message,
		cause.Error(),
	)

	return errors.Wrap(base, cause.Error())
}

// Response and ErrorInfo mirror the delivery layer's unified envelope so the
// error middleware can render AppErrors without importing the HTTP package.
type Response struct {
	Success bool       `json:"success"`
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}
