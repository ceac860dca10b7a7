package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeForbidden, CodeOf(Forbidden("no")))
	assert.Equal(t, CodeValidation, CodeOf(Validation("bad")))
	assert.Equal(t, CodeNotFound, CodeOf(NotFound("gone")))

	// Wrapped chains still resolve.
	wrapped := fmt.Errorf("context: %w", New(CodeSlotLimit, "full"))
	assert.Equal(t, CodeSlotLimit, CodeOf(wrapped))

	// Plain errors classify as unknown.
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("driver fault")))
	assert.Equal(t, CodeUnknown, CodeOf(nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(CodeUnavailable, "store unreachable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "store unreachable")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestRetryable(t *testing.T) {
	transient := []error{
		New(CodeUnavailable, "down"),
		New(CodeTimeout, "slow"),
		New(CodeInternal, "oops"),
		New(CodeOperationFailed, "exhausted"),
		errors.New("plain"),
	}
	for _, err := range transient {
		assert.True(t, Retryable(err), "%v", err)
	}

	deterministic := []error{
		Forbidden("no"),
		Validation("bad"),
		New(CodeEmptyProof, "empty"),
		New(CodeSlotLimit, "full"),
		New(CodeCooldownActive, "wait"),
		New(CodeGameFull, "taken"),
		InvalidTransition("completed", "accept"),
		New(CodeRateLimited, "slow down"),
	}
	for _, err := range deterministic {
		assert.False(t, Retryable(err), "%v", err)
	}
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := InvalidTransition("completed", "accept")

	var app *AppError
	require.ErrorAs(t, err, &app)
	assert.Equal(t, CodeInvalidTransition, app.Code)
	assert.Equal(t, `event "accept" is not valid from state "completed"`, app.Message)
}
