package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("file", "main.py"), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("filename", "filename is required"), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("file", "main.py"), ErrConflict, true},
		{"Forbidden wraps ErrForbidden", Forbidden("nope"), ErrForbidden, true},
		{"Unauthorized wraps ErrUnauthorized", Unauthorized("login required"), ErrUnauthorized, true},
		{"NotFound does not match ErrValidation", NotFound("file", "main.py"), ErrValidation, false},
		{"Unauthorized does not match ErrForbidden", Unauthorized("login required"), ErrForbidden, false},
		{"match survives fmt wrapping", fmt.Errorf("service: %w", NotFound("file", "a.c")), ErrNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{"NotFound names resource and key", NotFound("file", "main.py"), "file not found: main.py"},
		{"ValidationFailed uses custom message", ValidationFailed("filename", "filename is required"), "filename is required"},
		{"Conflict names resource and key", Conflict("file", "main.py"), "file already exists: main.py"},
		{"Unauthorized uses custom message", Unauthorized("invalid password"), "invalid password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.err.Error())
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := fmt.Errorf("saving: %w", ValidationFailed("code", "code is too long"))

	var appErr *AppError
	if assert.True(t, errors.As(err, &appErr)) {
		assert.Equal(t, "code", appErr.Field)
		assert.Equal(t, ErrValidation, appErr.Unwrap())
	}
}
