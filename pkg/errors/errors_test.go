package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Unwrap(t *testing.T) {
	err := Conflict("EMAIL_ALREADY_EXISTS", "email already registered")

	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "EMAIL_ALREADY_EXISTS", err.Code)
}

func TestAppError_WrappedChain(t *testing.T) {
	inner := NotFound("MEDIC_NOT_FOUND", "medic", 42)
	wrapped := fmt.Errorf("get medic: %w", inner)

	var appErr *AppError
	assert.ErrorAs(t, wrapped, &appErr)
	assert.Equal(t, "MEDIC_NOT_FOUND", appErr.Code)
	assert.ErrorIs(t, wrapped, ErrNotFound)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrNotFound, http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"invalid state", ErrInvalidState, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
		{"app error", Unauthorized("NO_TOKEN", "no token provided"), http.StatusUnauthorized},
		{"wrapped app error", fmt.Errorf("refresh: %w", InvalidState("NOTE_SIGNED", "cannot update a signed note")), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
