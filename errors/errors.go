package errors

import (
	"context"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrTypeValidation ErrorType = "validation"
	ErrTypeInternal   ErrorType = "internal"
	ErrTypeTimeout    ErrorType = "timeout"
	ErrTypeNotFound   ErrorType = "not_found"
	ErrTypeConflict   ErrorType = "conflict"
)

// AppError represents a standardized application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Cause      error     `json:"-"`
	StatusCode int       `json:"-"`
	Retryable  bool      `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether the error should be retried
func (e *AppError) IsRetryable() bool {
	return e.Retryable
}

// GetHTTPStatusCode returns the appropriate HTTP status code
func (e *AppError) GetHTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrTypeValidation:
		return http.StatusBadRequest
	case ErrTypeNotFound:
		return http.StatusNotFound
	case ErrTypeConflict:
		return http.StatusConflict
	case ErrTypeTimeout:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors for common error types

// NewValidationError creates a validation error
func NewValidationError(code, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrTypeValidation,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusBadRequest,
		Retryable:  false,
	}
}

// NewInternalError creates an internal error
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrTypeInternal,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusInternalServerError,
		Retryable:  false,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(code, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrTypeTimeout,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusRequestTimeout,
		Retryable:  true,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(code, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrTypeNotFound,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusNotFound,
		Retryable:  false,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(code, message string, cause error) *AppError {
	return &AppError{
		Type:       ErrTypeConflict,
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: http.StatusConflict,
		Retryable:  false,
	}
}

// Predefined error codes
const (
	// Validation errors
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeMissingField  = "MISSING_FIELD"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeInvalidRange  = "INVALID_RANGE"

	// Document errors
	ErrCodeInvalidDocument = "INVALID_DOCUMENT"
	ErrCodeImportFailed    = "MARKDOWN_IMPORT_FAILED"

	// Rule errors
	ErrCodeRuleExecution = "RULE_EXECUTION_FAILED"

	// Internal errors
	ErrCodeConfigurationError = "CONFIGURATION_ERROR"
	ErrCodeSerializationError = "SERIALIZATION_ERROR"
	ErrCodeProcessingError    = "PROCESSING_ERROR"

	// Resource errors
	ErrCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	ErrCodeResourceConflict = "RESOURCE_CONFLICT"
)

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

// WrapError wraps an existing error as an AppError
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve its retryability
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:      errType,
			Code:      code,
			Message:   message,
			Cause:     appErr,
			Retryable: appErr.Retryable,
		}
	}

	return &AppError{
		Type:      errType,
		Code:      code,
		Message:   message,
		Cause:     err,
		Retryable: isRetryableByDefault(errType),
	}
}

// isRetryableByDefault determines default retryability based on error type
func isRetryableByDefault(errType ErrorType) bool {
	return errType == ErrTypeTimeout
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsRetryable()
	}

	// Context errors are terminal for the request
	if err == context.Canceled || err == context.DeadlineExceeded {
		return false
	}

	return false
}
