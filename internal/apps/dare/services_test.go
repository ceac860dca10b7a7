package dare

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/retention"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The nil-DB services prove the validation paths reject input before
// any store access: touching the store would panic.

func TestSubmitProofEmptyRejectedBeforeStore(t *testing.T) {
	svc := NewDareService(nil, nil, 0)

	_, err := svc.SubmitProof(context.Background(), uuid.New(), uuid.New(), "", "", retention.DeleteAfterView)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyProof, apperrors.CodeOf(err))
}

func TestSubmitProofBadRetentionRejectedBeforeStore(t *testing.T) {
	svc := NewDareService(nil, nil, 0)

	_, err := svc.SubmitProof(context.Background(), uuid.New(), uuid.New(), "did it", "", retention.Policy("tomorrow"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestCreateValidatesBeforeStore(t *testing.T) {
	svc := NewDareService(nil, nil, 0)

	cases := []CreateDareRequest{
		{Description: "", Difficulty: "edgy", DareType: "submission"},
		{Description: "do it", Difficulty: "impossible", DareType: "submission"},
		{Description: "do it", Difficulty: "edgy", DareType: "quest"},
		{Description: "do it", Difficulty: "edgy", DareType: "submission", RequiresConsent: true},
	}
	for i := range cases {
		_, err := svc.Create(context.Background(), uuid.New(), &cases[i])
		require.Error(t, err, "case %d", i)
		assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err), "case %d", i)
	}
}

func TestCanSubmitProofGuards(t *testing.T) {
	performer := uuid.New()
	other := uuid.New()

	d := &Dare{Status: status.InProgress, PerformerID: &performer}
	assert.NoError(t, d.canSubmitProof(performer))

	err := d.canSubmitProof(other)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	err = (&Dare{Status: status.InProgress}).canSubmitProof(performer)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestCanSubmitProofRefusedWhileConsentPending(t *testing.T) {
	performer := uuid.New()
	d := &Dare{
		Status:          status.InProgress,
		DareType:        status.TypeDomination,
		RequiresConsent: true,
		PerformerID:     &performer,
	}

	err := d.canSubmitProof(performer)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	d.Consented = true
	assert.NoError(t, d.canSubmitProof(performer))
}

func TestCanConsentGuards(t *testing.T) {
	creator := uuid.New()
	performer := uuid.New()
	other := uuid.New()

	gated := func() *Dare {
		return &Dare{
			DareType:        status.TypeDomination,
			RequiresConsent: true,
			CreatorID:       creator,
		}
	}

	assert.NoError(t, gated().canConsent(performer))

	err := (&Dare{DareType: status.TypeSubmission, CreatorID: creator}).canConsent(performer)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	err = gated().canConsent(creator)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	directed := gated()
	directed.PerformerID = &performer
	err = directed.canConsent(other)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestCanConsentAfterRaceOnlyWinnerPasses(t *testing.T) {
	creator := uuid.New()
	winner := uuid.New()
	loser := uuid.New()

	d := &Dare{
		DareType:        status.TypeDomination,
		RequiresConsent: true,
		CreatorID:       creator,
		PerformerID:     &winner,
		Consented:       true,
	}

	// The winner's repeat call is the idempotent no-op path.
	assert.NoError(t, d.canConsent(winner))

	err := d.canConsent(loser)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestProofFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join(ProofUploadDir, "abc.png"), proofFilePath("/uploads/proofs/abc.png"))
	assert.Equal(t, "", proofFilePath(""))

	// A mangled URL stays inside the upload directory.
	assert.Equal(t, filepath.Join(ProofUploadDir, "passwd"), proofFilePath("/uploads/proofs/../../etc/passwd"))
}
