package admission

import (
	"testing"
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideAllowsWithCapacity(t *testing.T) {
	now := time.Now()
	assert.NoError(t, Decide(State{OpenSlots: 0, MaxSlots: 5}, now))
	assert.NoError(t, Decide(State{OpenSlots: 4, MaxSlots: 5}, now))
}

func TestDecideSlotLimit(t *testing.T) {
	now := time.Now()
	err := Decide(State{OpenSlots: 5, MaxSlots: 5}, now)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSlotLimit, apperrors.CodeOf(err))
}

func TestDecideCooldown(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Hour)
	err := Decide(State{OpenSlots: 1, MaxSlots: 5, CooldownUntil: &until}, now)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCooldownActive, apperrors.CodeOf(err))
}

func TestDecideExpiredCooldownIgnored(t *testing.T) {
	now := time.Now()
	until := now.Add(-time.Minute)
	assert.NoError(t, Decide(State{OpenSlots: 1, MaxSlots: 5, CooldownUntil: &until}, now))
}

func TestDecideSlotLimitWinsOverCooldown(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Hour)
	err := Decide(State{OpenSlots: 5, MaxSlots: 5, CooldownUntil: &until}, now)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeSlotLimit, apperrors.CodeOf(err))
}
