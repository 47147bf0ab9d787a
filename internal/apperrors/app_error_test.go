package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    int
		kind    Kind
		message string
	}{
		{"invalid url", InvalidURL(), http.StatusBadRequest, KindInvalidURL, "Invalid URL"},
		{"invalid validity", InvalidValidity(), http.StatusBadRequest, KindInvalidValidity, "Validity must be a positive integer (minutes)"},
		{"invalid shortcode", InvalidShortcodeFormat(), http.StatusBadRequest, KindInvalidShortcodeFormat, "Shortcode must be alphanumeric, 3-20 chars"},
		{"collision", ShortcodeCollision(), http.StatusConflict, KindShortcodeCollision, "Shortcode already exists"},
		{"not found", ShortcodeNotFound(), http.StatusNotFound, KindShortcodeNotFound, "Shortcode not found"},
		{"expired", ShortcodeExpired(), http.StatusGone, KindShortcodeExpired, "Shortcode expired"},
		{"internal", SystemError(nil), http.StatusInternalServerError, KindInternal, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.message, tt.err.Error())
			assert.NotEmpty(t, tt.err.MessageID)
		})
	}
}

func TestAppError_IsAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("create: %w", SystemError(cause))

	assert.ErrorIs(t, err, SystemError(nil))
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ShortcodeNotFound())
}

func TestFrom(t *testing.T) {
	assert.Equal(t, KindShortcodeExpired, From(fmt.Errorf("wrap: %w", ShortcodeExpired())).Kind)

	plain := errors.New("unexpected")
	appErr := From(plain)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.ErrorIs(t, appErr, plain)
	assert.Equal(t, "Internal server error", appErr.Error())
}
