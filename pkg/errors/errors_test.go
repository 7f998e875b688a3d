package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		code int
	}{
		{NotAuthenticated(), http.StatusUnauthorized},
		{NotFound("patient"), http.StatusNotFound},
		{Unauthorized(), http.StatusForbidden},
		{Invalid("bad date"), http.StatusBadRequest},
		{Internal(errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "appointment not found", NotFound("appointment").Error())
}

func TestInternalWraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(Unauthorized(), KindUnauthorized))
	assert.False(t, IsKind(Unauthorized(), KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindInternal))
	assert.False(t, IsKind(nil, KindInternal))

	wrapped := fmt.Errorf("context: %w", NotFound("doctor"))
	assert.True(t, IsKind(wrapped, KindNotFound))
}
