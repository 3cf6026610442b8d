package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NewNotFoundError("x"), http.StatusNotFound},
		{NewValidationError("x"), http.StatusBadRequest},
		{NewConflictError("x"), http.StatusConflict},
		{NewUnauthorizedError("x"), http.StatusUnauthorized},
		{NewForbiddenError("x"), http.StatusForbidden},
		{NewInternalError("x", nil), http.StatusInternalServerError},
		{NewExternalError("x", nil), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAs_FindsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("creating appointment: %w", NewConflictError("slot taken"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrorTypeConflict, appErr.Type)
	assert.True(t, IsType(wrapped, ErrorTypeConflict))
	assert.False(t, IsType(wrapped, ErrorTypeNotFound))

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestAppError_ErrorIncludesCause(t *testing.T) {
	err := NewInternalError("failed to insert", fmt.Errorf("connection reset"))
	assert.Equal(t, "INTERNAL: failed to insert: connection reset", err.Error())
	assert.EqualError(t, err.Unwrap(), "connection reset")
}
