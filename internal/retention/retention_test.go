package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapPrivacyValue(t *testing.T) {
	assert.Equal(t, DeleteAfterView, MapPrivacyValue("when_viewed"))
	assert.Equal(t, DeleteAfter30Days, MapPrivacyValue("30_days"))
	assert.Equal(t, NeverDelete, MapPrivacyValue("never"))

	// Unknown labels pass through unchanged.
	assert.Equal(t, Policy("custom"), MapPrivacyValue("custom"))
}

func TestUnmapIsExactInverse(t *testing.T) {
	for _, p := range []Policy{DeleteAfterView, DeleteAfter30Days, NeverDelete} {
		assert.Equal(t, p, MapPrivacyValue(UnmapPrivacyValue(p)))
	}
	for _, label := range []string{"when_viewed", "30_days", "never"} {
		assert.Equal(t, label, UnmapPrivacyValue(MapPrivacyValue(label)))
	}

	assert.Equal(t, "custom", UnmapPrivacyValue(Policy("custom")))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(DeleteAfterView))
	assert.NoError(t, Validate(DeleteAfter30Days))
	assert.NoError(t, Validate(NeverDelete))

	assert.Error(t, Validate(Policy("when_viewed")))
	assert.Error(t, Validate(Policy("")))
}

func TestExpiryFor(t *testing.T) {
	submitted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	exp := ExpiryFor(DeleteAfter30Days, submitted)
	require.NotNil(t, exp)
	assert.Equal(t, submitted.AddDate(0, 0, 30), *exp)

	assert.Nil(t, ExpiryFor(DeleteAfterView, submitted))
	assert.Nil(t, ExpiryFor(NeverDelete, submitted))
}
