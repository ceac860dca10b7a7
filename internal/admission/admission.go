package admission

import (
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
)

// State is a point-in-time view of a user's engagement capacity. It is
// recomputed from the store before every creation decision; a cached
// copy is never trusted.
type State struct {
	OpenSlots     int        `json:"open_slots"`
	MaxSlots      int        `json:"max_slots"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

// Decide gates the creation of a new engagement. The slot check runs
// before the cooldown check so a user at capacity sees the limit even
// while a cooldown is also active.
func Decide(st State, now time.Time) error {
	if st.OpenSlots >= st.MaxSlots {
		return apperrors.New(apperrors.CodeSlotLimit,
			"all engagement slots are in use")
	}
	if st.CooldownUntil != nil && now.Before(*st.CooldownUntil) {
		return apperrors.New(apperrors.CodeCooldownActive,
			"cooldown active until "+st.CooldownUntil.UTC().Format(time.RFC3339))
	}
	return nil
}
