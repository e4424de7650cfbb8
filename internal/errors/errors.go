// Package errors provides structured error handling with context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeInvalidRequest indicates missing or malformed input (HTTP 400)
	TypeInvalidRequest ErrorType = "invalid_request"
	// TypeInvalidState indicates a corrupt or undecodable OAuth state token (HTTP 400)
	TypeInvalidState ErrorType = "invalid_state"
	// TypeInvalidGoal indicates a non-numeric or non-positive goal value (HTTP 400)
	TypeInvalidGoal ErrorType = "invalid_goal"
	// TypeProvider indicates a non-2xx answer from the identity provider (HTTP 500)
	TypeProvider ErrorType = "provider"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeInvalidRequest, TypeInvalidState, TypeInvalidGoal:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeProvider, TypeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// InvalidRequestError creates a new invalid-request error (HTTP 400).
func InvalidRequestError(message string) *Error {
	return &Error{
		Type:    TypeInvalidRequest,
		Message: message,
		Context: make(map[string]any),
	}
}

// InvalidStateError creates a new invalid-state error (HTTP 400).
func InvalidStateError(message string) *Error {
	return &Error{
		Type:    TypeInvalidState,
		Message: message,
		Context: make(map[string]any),
	}
}

// InvalidGoalError creates a new invalid-goal error (HTTP 400).
func InvalidGoalError(message string) *Error {
	return &Error{
		Type:    TypeInvalidGoal,
		Message: message,
		Context: make(map[string]any),
	}
}

// ProviderError creates a new provider error (HTTP 500). The cause carries
// the provider's response payload and is logged, never sent to clients.
func ProviderError(message string, cause error) *Error {
	return &Error{
		Type:    TypeProvider,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return &Error{
		Type:    TypeNotFound,
		Message: message,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithField is an alias for WithContext (chainable).
func (e *Error) WithField(key string, value any) *Error {
	return e.WithContext(key, value)
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
