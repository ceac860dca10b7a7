package models

import (
	"time"

	"github.com/google/uuid"
)

// UserSetting stores the per-user knobs the engagement services read
// back from the store rather than caching: the default proof retention
// policy and the creation cooldown, if one is running.
type UserSetting struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	DefaultRetention string     `gorm:"size:30;not null;default:'delete_after_view'" json:"default_retention"`
	CooldownUntil    *time.Time `json:"cooldown_until,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
