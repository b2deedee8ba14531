package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeProcessing   ErrorType = "processing"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeUnavailable  ErrorType = "unavailable"

	// Motion engine taxonomy
	ErrorTypeInvalidFrame       ErrorType = "invalid_frame"
	ErrorTypeDecode             ErrorType = "decode"
	ErrorTypeIncompatibleFormat ErrorType = "incompatible_format"
	ErrorTypeInvalidState       ErrorType = "invalid_state"
	ErrorTypeBadConfiguration   ErrorType = "bad_configuration"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy of the error carrying extra details
func (e *AppError) WithDetails(format string, args ...interface{}) *AppError {
	c := *e
	c.Details = fmt.Sprintf(format, args...)
	return &c
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewUnavailableError reports a collaborator (camera, archive) that cannot serve right now
func NewUnavailableError(message string, cause error) *AppError {
	return newError(ErrorTypeUnavailable, http.StatusServiceUnavailable, message, cause)
}

// NewInvalidFrameError reports unusable frame geometry (zero dimension, no block fits)
func NewInvalidFrameError(message string, cause error) *AppError {
	return newError(ErrorTypeInvalidFrame, http.StatusUnprocessableEntity, message, cause)
}

// NewDecodeError reports a failure of the scanline decoder
func NewDecodeError(message string, cause error) *AppError {
	return newError(ErrorTypeDecode, http.StatusUnprocessableEntity, message, cause)
}

// NewIncompatibleFormatError reports two snapshots with different grids
func NewIncompatibleFormatError(message string, cause error) *AppError {
	return newError(ErrorTypeIncompatibleFormat, http.StatusConflict, message, cause)
}

// NewInvalidStateError reports an operation on a snapshot that is not ready
func NewInvalidStateError(message string, cause error) *AppError {
	return newError(ErrorTypeInvalidState, http.StatusConflict, message, cause)
}

// NewBadConfigurationError reports a malformed tolerance curve or mask
func NewBadConfigurationError(message string, cause error) *AppError {
	return newError(ErrorTypeBadConfiguration, http.StatusBadRequest, message, cause)
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
