package errors

import (
	"fmt"
)

// APIError represents a standardized API error response
type APIError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable,omitempty"`
	Status    int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  code.StatusCode(),
	}
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return newError(ErrUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *APIError {
	return newError(ErrForbidden, message)
}

// ValidationError creates a VALIDATION_ERROR for a single request field.
// Validation problems are reported as 400 with the message passed through verbatim.
func ValidationError(field, message string) *APIError {
	e := newError(ErrValidation, message)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newError(ErrInternalError, message)
}

// RateLimited creates a RATE_LIMITED error
func RateLimited(message string) *APIError {
	if message == "" {
		message = "rate limit exceeded"
	}
	e := newError(ErrRateLimited, message)
	e.Retryable = true
	return e
}

// ServiceUnavailable creates a SERVICE_UNAVAILABLE error
func ServiceUnavailable(service string) *APIError {
	return newError(ErrServiceUnavail, fmt.Sprintf("%s is temporarily unavailable", service))
}

// GenerationFailed creates a retryable GENERATION_FAILED error.
// Upstream detail is logged by the caller, never returned.
func GenerationFailed() *APIError {
	e := newError(ErrGenerationFailed, "content generation failed, please try again")
	e.Retryable = true
	return e
}

// Timeout creates a TIMEOUT error
func Timeout(operation string) *APIError {
	return newError(ErrTimeout, fmt.Sprintf("%s timed out", operation))
}

// WithDetails adds additional details to an error
func (e *APIError) WithDetails(details string) *APIError {
	e.Details = details
	return e
}
