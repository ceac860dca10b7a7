package switchgame

import (
	"context"
	"testing"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nil-DB services prove validation runs before any store access.

func TestJoinValidatesBeforeStore(t *testing.T) {
	svc := NewGameService(nil, nil, 0)

	_, err := svc.Join(context.Background(), uuid.New(), uuid.New(), &JoinGameRequest{Description: "", Move: "rock"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.Join(context.Background(), uuid.New(), uuid.New(), &JoinGameRequest{Description: "my demand", Move: "lizard"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestCreateValidatesBeforeStore(t *testing.T) {
	svc := NewGameService(nil, nil, 0)

	cases := []CreateGameRequest{
		{Description: "", Difficulty: "edgy", Move: "rock"},
		{Description: "my demand", Difficulty: "impossible", Move: "rock"},
		{Description: "my demand", Difficulty: "edgy", Move: "well"},
		{Description: "my demand", Difficulty: "edgy", Move: "rock", Retention: "sometimes"},
	}
	for i := range cases {
		_, err := svc.Create(context.Background(), uuid.New(), &cases[i])
		require.Error(t, err, "case %d", i)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err), "case %d", i)
	}
}

func TestClaimableBy(t *testing.T) {
	creator := uuid.New()
	joiner := uuid.New()
	taken := uuid.New()

	open := &SwitchGame{Status: status.GameWaitingForParticipant, CreatorID: creator}
	assert.NoError(t, open.claimableBy(joiner))

	err := open.claimableBy(creator)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	claimed := &SwitchGame{Status: status.GameWaitingForParticipant, CreatorID: creator, ParticipantID: &taken}
	err = claimed.claimableBy(joiner)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGameFull, apperrors.CodeOf(err))

	resolved := &SwitchGame{Status: status.GameInProgress, CreatorID: creator}
	err = resolved.claimableBy(joiner)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeGameFull, apperrors.CodeOf(err))
}
