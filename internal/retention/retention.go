package retention

import (
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
)

// Policy controls when submitted proof content becomes eligible for
// deletion. It is chosen at submission time and immutable afterwards;
// the actual deletion sweep lives outside this service.
type Policy string

const (
	DeleteAfterView   Policy = "delete_after_view"
	DeleteAfter30Days Policy = "delete_after_30_days"
	NeverDelete       Policy = "never_delete"
)

// The user-facing privacy labels and the canonical policies map 1:1.
// Unrecognized values pass through both directions unchanged so newer
// clients and older rows survive each other.
var labelToPolicy = map[string]Policy{
	"when_viewed": DeleteAfterView,
	"30_days":     DeleteAfter30Days,
	"never":       NeverDelete,
}

var policyToLabel = map[Policy]string{
	DeleteAfterView:   "when_viewed",
	DeleteAfter30Days: "30_days",
	NeverDelete:       "never",
}

// MapPrivacyValue converts a user-facing privacy label to its canonical
// policy value.
func MapPrivacyValue(label string) Policy {
	if p, ok := labelToPolicy[label]; ok {
		return p
	}
	return Policy(label)
}

// UnmapPrivacyValue is the exact inverse of MapPrivacyValue for the
// three defined policies.
func UnmapPrivacyValue(p Policy) string {
	if l, ok := policyToLabel[p]; ok {
		return l
	}
	return string(p)
}

// Validate rejects anything but the three canonical values.
func Validate(p Policy) error {
	switch p {
	case DeleteAfterView, DeleteAfter30Days, NeverDelete:
		return nil
	}
	return apperrors.Validation("unrecognized retention policy: " + string(p))
}

// ExpiryFor computes the absolute proof expiry for a policy, if any.
// DeleteAfterView has no TTL: it purges on first view instead.
func ExpiryFor(p Policy, submittedAt time.Time) *time.Time {
	if p == DeleteAfter30Days {
		t := submittedAt.AddDate(0, 0, 30)
		return &t
	}
	return nil
}
