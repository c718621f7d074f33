package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapabilityError_Unwrap(t *testing.T) {
	err := error(&CapabilityError{Capability: "general_chat", Err: context.DeadlineExceeded})

	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	var capErr *CapabilityError
	assert.True(t, errors.As(err, &capErr))
	assert.Equal(t, "general_chat", capErr.Capability)
	assert.Contains(t, err.Error(), "general_chat")
}

func TestMalformed(t *testing.T) {
	err := Malformed("session_id")
	assert.ErrorIs(t, err, ErrMalformedRequest)
	assert.Contains(t, err.Error(), "session_id")
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("user")
	assert.NoError(t, err)
	assert.Equal(t, RoleUser, role)

	role, err = ParseRole("ai")
	assert.NoError(t, err)
	assert.Equal(t, RoleAssistant, role)

	_, err = ParseRole("system")
	assert.Error(t, err)
}
