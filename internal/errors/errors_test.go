package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvalidRequestError(t *testing.T) {
	err := InvalidRequestError("channel is required")

	assert.Equal(t, TypeInvalidRequest, err.Type)
	assert.Equal(t, "channel is required", err.Message)
	assert.Nil(t, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "invalid_request")
	assert.Contains(t, err.Error(), "channel is required")
}

func TestInvalidStateError(t *testing.T) {
	err := InvalidStateError("Invalid state")

	assert.Equal(t, TypeInvalidState, err.Type)
	assert.Equal(t, "Invalid state", err.Message)
	assert.Nil(t, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "invalid_state")
}

func TestInvalidGoalError(t *testing.T) {
	err := InvalidGoalError("goal must be a positive integer")

	assert.Equal(t, TypeInvalidGoal, err.Type)
	assert.Equal(t, "goal must be a positive integer", err.Message)
	assert.Nil(t, err.Cause)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus())
	assert.Contains(t, err.Error(), "invalid_goal")
}

func TestNotFoundError(t *testing.T) {
	err := NotFoundError("credential not found")

	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, "credential not found", err.Message)
	assert.Nil(t, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus())
	assert.Contains(t, err.Error(), "not_found")
	assert.Contains(t, err.Error(), "credential not found")
}

func TestInternalError(t *testing.T) {
	cause := fmt.Errorf("database connection failed")
	err := InternalError("failed to save credential", cause)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Equal(t, "failed to save credential", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "internal")
	assert.Contains(t, err.Error(), "failed to save credential")
	assert.Contains(t, err.Error(), "database connection failed")
}

func TestInternalErrorWithoutCause(t *testing.T) {
	err := InternalError("something went wrong", nil)

	assert.Equal(t, TypeInternal, err.Type)
	assert.Nil(t, err.Cause)
	assert.NotContains(t, err.Error(), "<nil>")
}

func TestProviderError(t *testing.T) {
	cause := fmt.Errorf("token endpoint returned 403: invalid client secret")
	err := ProviderError("authorization failed", cause)

	assert.Equal(t, TypeProvider, err.Type)
	assert.Equal(t, "authorization failed", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.NotNil(t, err.Context)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
	assert.Contains(t, err.Error(), "provider")
	assert.Contains(t, err.Error(), "authorization failed")
	assert.Contains(t, err.Error(), "invalid client secret")
}

func TestProviderErrorResponseHidesCause(t *testing.T) {
	cause := fmt.Errorf("token endpoint returned 403: invalid client secret")
	err := ProviderError("authorization failed", cause)

	resp := err.ToResponse()

	assert.Equal(t, "authorization failed", resp.Error)
	assert.NotContains(t, resp.Error, "invalid client secret")
}

func TestWithContext(t *testing.T) {
	err := InvalidRequestError("invalid goal value")
	err = err.WithContext("field", "goal")
	err = err.WithContext("value", "")

	assert.Len(t, err.Context, 2)
	assert.Equal(t, "goal", err.Context["field"])
	assert.Equal(t, "", err.Context["value"])
}

func TestWithContextChaining(t *testing.T) {
	err := InvalidRequestError("invalid input").
		WithContext("channel", "teststreamer").
		WithContext("request_id", "req-456")

	assert.Len(t, err.Context, 2)
	assert.Equal(t, "teststreamer", err.Context["channel"])
	assert.Equal(t, "req-456", err.Context["request_id"])
}

func TestWithField(t *testing.T) {
	err := NotFoundError("credential not found").
		WithField("channel", "teststreamer").
		WithField("broadcaster_id", "456")

	assert.Len(t, err.Context, 2)
	assert.Equal(t, "teststreamer", err.Context["channel"])
	assert.Equal(t, "456", err.Context["broadcaster_id"])
}

func TestWithContextNilMap(t *testing.T) {
	// Create error and clear context to test nil handling
	err := &Error{
		Type:    TypeInvalidRequest,
		Message: "test",
		Context: nil,
	}

	err = err.WithContext("key", "value")

	assert.NotNil(t, err.Context)
	assert.Equal(t, "value", err.Context["key"])
}

func TestToResponse(t *testing.T) {
	err := InvalidGoalError("goal must be a positive integer").
		WithContext("field", "goal").
		WithContext("value", "-5")

	resp := err.ToResponse()

	assert.Equal(t, "goal must be a positive integer", resp.Error)
	assert.Equal(t, TypeInvalidGoal, resp.Type)
	assert.Len(t, resp.Context, 2)
	assert.Equal(t, "goal", resp.Context["field"])
	assert.Equal(t, "-5", resp.Context["value"])
}

func TestToResponseEmptyContext(t *testing.T) {
	err := NotFoundError("credential not found")

	resp := err.ToResponse()

	assert.Equal(t, "credential not found", resp.Error)
	assert.Equal(t, TypeNotFound, resp.Type)
	assert.NotNil(t, resp.Context) // Should be empty map, not nil
	assert.Empty(t, resp.Context)
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := InternalError("wrapped", cause)

	unwrapped := errors.Unwrap(err)
	assert.Equal(t, cause, unwrapped)
}

func TestUnwrapNil(t *testing.T) {
	err := InvalidRequestError("test")

	unwrapped := errors.Unwrap(err)
	assert.Nil(t, unwrapped)
}

func TestErrorsIs(t *testing.T) {
	rootCause := fmt.Errorf("root")
	wrapped := InternalError("wrapped", rootCause)

	assert.True(t, errors.Is(wrapped, rootCause))
}

func TestErrorsAs(t *testing.T) {
	err := InvalidRequestError("test")

	var target *Error
	require.True(t, errors.As(err, &target))
	assert.Equal(t, TypeInvalidRequest, target.Type)
}

func TestAsStructuredErrorWithStructuredError(t *testing.T) {
	original := InvalidRequestError("original")
	result := AsStructuredError(original)

	assert.Equal(t, original, result)
	assert.Equal(t, TypeInvalidRequest, result.Type)
}

func TestAsStructuredErrorWithStandardError(t *testing.T) {
	original := fmt.Errorf("standard error")
	result := AsStructuredError(original)

	assert.NotNil(t, result)
	assert.Equal(t, TypeInternal, result.Type)
	assert.Equal(t, "internal server error", result.Message)
	assert.Equal(t, original, result.Cause)
}

func TestAsStructuredErrorWithNil(t *testing.T) {
	result := AsStructuredError(nil)
	assert.Nil(t, result)
}

func TestAsStructuredErrorWithWrappedStructuredError(t *testing.T) {
	original := NotFoundError("credential not found")
	wrapped := fmt.Errorf("wrapped: %w", original)

	result := AsStructuredError(wrapped)

	assert.NotNil(t, result)
	assert.Equal(t, TypeNotFound, result.Type)
	assert.Equal(t, "credential not found", result.Message)
}

func TestHTTPStatusAllTypes(t *testing.T) {
	tests := []struct {
		name       string
		errorType  ErrorType
		wantStatus int
	}{
		{"invalid_request", TypeInvalidRequest, http.StatusBadRequest},
		{"invalid_state", TypeInvalidState, http.StatusBadRequest},
		{"invalid_goal", TypeInvalidGoal, http.StatusBadRequest},
		{"not_found", TypeNotFound, http.StatusNotFound},
		{"provider", TypeProvider, http.StatusInternalServerError},
		{"internal", TypeInternal, http.StatusInternalServerError},
		{"unknown", ErrorType("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &Error{Type: tt.errorType}
			assert.Equal(t, tt.wantStatus, err.HTTPStatus())
		})
	}
}

func TestErrorStringWithoutCause(t *testing.T) {
	err := InvalidRequestError("test message")
	errStr := err.Error()

	assert.Contains(t, errStr, "invalid_request")
	assert.Contains(t, errStr, "test message")
	assert.NotContains(t, errStr, "nil")
}

func TestErrorStringWithCause(t *testing.T) {
	cause := fmt.Errorf("underlying issue")
	err := InternalError("wrapper message", cause)
	errStr := err.Error()

	assert.Contains(t, errStr, "internal")
	assert.Contains(t, errStr, "wrapper message")
	assert.Contains(t, errStr, "underlying issue")
}

func TestContextFieldOverwrite(t *testing.T) {
	err := InvalidRequestError("test")
	err = err.WithContext("field", "original")
	err = err.WithContext("field", "overwritten")

	assert.Equal(t, "overwritten", err.Context["field"])
}

func TestMultipleContextFields(t *testing.T) {
	err := InternalError("database error", fmt.Errorf("connection lost")).
		WithContext("channel", "teststreamer").
		WithContext("broadcaster_id", "12345").
		WithContext("query", "SELECT * FROM credentials").
		WithContext("retry_count", 3).
		WithContext("timeout_ms", 5000)

	assert.Len(t, err.Context, 5)
	assert.Equal(t, "teststreamer", err.Context["channel"])
	assert.Equal(t, "12345", err.Context["broadcaster_id"])
	assert.Equal(t, "SELECT * FROM credentials", err.Context["query"])
	assert.Equal(t, 3, err.Context["retry_count"])
	assert.Equal(t, 5000, err.Context["timeout_ms"])
}
