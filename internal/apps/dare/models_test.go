package dare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Outdoor ", "outdoor", "PHOTO", "", "  ", "photo", "night"})
	assert.Equal(t, []string{"outdoor", "photo", "night"}, got)

	assert.Empty(t, NormalizeTags(nil))
	assert.Empty(t, NormalizeTags([]string{"", "  "}))
}

func TestTagsJSON(t *testing.T) {
	assert.JSONEq(t, `["a","b"]`, string(tagsJSON([]string{"A", "b", "a"})))
	assert.JSONEq(t, `[]`, string(tagsJSON(nil)))
}

func TestHasProof(t *testing.T) {
	d := &Dare{}
	assert.False(t, d.HasProof())

	now := time.Now()
	d.ProofSubmittedAt = &now
	assert.True(t, d.HasProof())
}

func TestConsentPending(t *testing.T) {
	d := &Dare{}
	assert.False(t, d.ConsentPending())

	d.RequiresConsent = true
	assert.True(t, d.ConsentPending())

	d.Consented = true
	assert.False(t, d.ConsentPending())
}
