package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("command handler failed: %w", ParentNotFound(3))

	assert.True(t, errors.Is(err, ErrParentNotFound))
	assert.False(t, errors.Is(err, ErrTreeNotFound))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeNotFound}))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewDatabaseError("create_tree", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
		code   string
	}{
		{TreeNotFound(1), http.StatusNotFound, CodeTreeNotFound},
		{ParentNotFound(1), http.StatusNotFound, CodeParentNotFound},
		{DivisionByZero(), http.StatusBadRequest, CodeDivisionByZero},
		{InvalidOperationType("MOD"), http.StatusBadRequest, CodeInvalidOperationType},
		{DuplicateUser("email"), http.StatusConflict, CodeDuplicateUser},
		{InvalidCredentials(), http.StatusUnauthorized, CodeInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.NotEmpty(t, tt.err.StackTrace)
		})
	}
}

func TestErrorHandler_Handle(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/trees/1/operations", nil)
	h.Handle(rec, req, fmt.Errorf("wrapped: %w", DivisionByZero()))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Error)
	assert.Equal(t, "VALIDATION", body.Type)
	assert.Equal(t, "DIVISION_BY_ZERO", body.Code)
	assert.Equal(t, "Division by zero", body.Message)
	assert.NotContains(t, body.Details, "stack_trace")
}

func TestErrorHandler_UnknownErrorIsHidden(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("secret detail"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestErrorHandler_HandleStatus(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), false)

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/nope", nil), http.StatusNotFound, "Can't find /nope on this server!")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"NOT_FOUND"`)
}

func TestErrorHandler_Middleware(t *testing.T) {
	h := NewErrorHandler(zap.NewNop(), true)
	handler := h.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "panic: kaboom")
}
