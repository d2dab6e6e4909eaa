package llmerrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	withMessage := NewError(ErrorTypeAuth, "bad key")
	assert.Equal(t, "LLM error (auth): bad key", withMessage.Error())

	withCause := &Error{Type: ErrorTypeTransient, Err: errors.New("connection reset")}
	assert.Equal(t, "LLM error (transient): connection reset", withCause.Error())

	withStatus := &Error{Type: ErrorTypeRateLimit, StatusCode: 429}
	assert.Equal(t, "LLM error (rate_limit): status 429", withStatus.Error())
}

func TestIsAndTypeOf(t *testing.T) {
	err := NewErrorWithStatus(ErrorTypeRateLimit, 429, "quota exceeded")
	assert.True(t, Is(err, ErrorTypeRateLimit))
	assert.False(t, Is(err, ErrorTypeAuth))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(err))

	// Wrapped errors still classify.
	wrapped := fmt.Errorf("request failed: %w", err)
	assert.True(t, Is(wrapped, ErrorTypeRateLimit))

	// Plain errors are unknown.
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
	assert.False(t, Is(errors.New("plain"), ErrorTypeUnknown))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewErrorWithCause(ErrorTypeTransient, cause, "wrapped")
	assert.ErrorIs(t, err, cause)
}

func TestSanitizePrompt(t *testing.T) {
	short := "short prompt"
	assert.Equal(t, short, SanitizePrompt(short, 100))

	long := strings.Repeat("x", 5000)
	sanitized := SanitizePrompt(long, 400)
	assert.Less(t, len(sanitized), len(long))
	assert.Contains(t, sanitized, "5000 chars")
	assert.Contains(t, sanitized, "hash:")
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "rate_limit", ErrorTypeRateLimit.String())
	assert.Equal(t, "empty_response", ErrorTypeEmptyResponse.String())
	assert.Equal(t, "bad_prompt", ErrorTypeBadPrompt.String())
	assert.Equal(t, "invalid", ErrorType(99).String())
}
