package dare

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Dare is a single engagement tracked from creation to a terminal
// status. A consent-gated dare keeps its description hidden from the
// performer until consent is recorded.
type Dare struct {
	ID              uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status          status.Status     `gorm:"size:30;not null;index" json:"status"`
	Difficulty      status.Difficulty `gorm:"size:20;not null;index" json:"difficulty"`
	DareType        status.DareType   `gorm:"size:20;not null" json:"dare_type"`
	RequiresConsent bool              `gorm:"default:false" json:"requires_consent"`
	Consented       bool              `gorm:"default:false" json:"consented"`
	ConsentedAt     *time.Time        `json:"consented_at,omitempty"`
	Description     string            `gorm:"type:text;not null" json:"-"`
	CreatorID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"creator_id"`
	PerformerID     *uuid.UUID        `gorm:"type:uuid;index" json:"performer_id,omitempty"`

	ProofText        string     `gorm:"type:text" json:"-"`
	ProofFileURL     string     `gorm:"type:text" json:"-"`
	ProofRetention   string     `gorm:"size:30" json:"-"`
	ProofSubmittedAt *time.Time `json:"proof_submitted_at,omitempty"`
	ProofExpiresAt   *time.Time `json:"proof_expires_at,omitempty"`
	ProofViewedAt    *time.Time `json:"-"`

	Grade         *int   `json:"grade,omitempty"`
	GradeFeedback string `gorm:"size:1000" json:"grade_feedback,omitempty"`
	RejectReason  string `gorm:"size:500" json:"reject_reason,omitempty"`

	// GameID links an obligation dare back to the switch game whose
	// resolution created it.
	GameID *uuid.UUID `gorm:"type:uuid;index" json:"game_id,omitempty"`

	Tags      datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"tags"`
	ExpiresAt *time.Time     `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasProof reports whether any proof content was submitted.
func (d *Dare) HasProof() bool {
	return d.ProofSubmittedAt != nil
}

// ConsentPending reports whether the description is still hidden.
func (d *Dare) ConsentPending() bool {
	return d.RequiresConsent && !d.Consented
}

// canSubmitProof gates proof submission: performer only, and never
// while consent is outstanding.
func (d *Dare) canSubmitProof(userID uuid.UUID) error {
	if d.PerformerID == nil || *d.PerformerID != userID {
		return apperrors.Forbidden("only the performer can submit proof")
	}
	if d.ConsentPending() {
		return apperrors.Forbidden("consent must be recorded before submitting proof")
	}
	return nil
}

// canConsent gates the consent call. A dare already consented by
// another user is closed to everyone else, so the racing loser never
// sees the revealed description.
func (d *Dare) canConsent(userID uuid.UUID) error {
	if !d.RequiresConsent || d.DareType != status.TypeDomination {
		return apperrors.Validation("this dare is not consent-gated")
	}
	if userID == d.CreatorID {
		return apperrors.Forbidden("the creator cannot consent to their own demand")
	}
	if d.PerformerID != nil && *d.PerformerID != userID {
		if d.Consented {
			return apperrors.Forbidden("another user already consented to this dare")
		}
		return apperrors.Forbidden("this dare is directed at another user")
	}
	return nil
}

// NormalizeTags lowercases, trims and deduplicates tags, preserving
// first-seen order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		result = append(result, t)
	}
	return result
}

func tagsJSON(tags []string) datatypes.JSON {
	b, err := json.Marshal(NormalizeTags(tags))
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// --- DTOs ---

type CreateDareRequest struct {
	Description     string   `json:"description"`
	Difficulty      string   `json:"difficulty"`
	DareType        string   `json:"dare_type"`
	RequiresConsent bool     `json:"requires_consent"`
	PerformerID     string   `json:"performer_id,omitempty"`
	Tags            []string `json:"tags"`
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

type GradeRequest struct {
	Grade    int    `json:"grade"`
	Feedback string `json:"feedback"`
}

type DareResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	StatusColor     string     `json:"status_color"`
	Difficulty      string     `json:"difficulty"`
	DifficultyLabel string     `json:"difficulty_label"`
	DareType        string     `json:"dare_type"`
	RequiresConsent bool       `json:"requires_consent"`
	Consented       bool       `json:"consented"`
	ConsentedAt     *time.Time `json:"consented_at,omitempty"`
	// Description is omitted while consent is pending for the viewer.
	Description   string         `json:"description,omitempty"`
	CreatorID     string         `json:"creator_id"`
	PerformerID   string         `json:"performer_id,omitempty"`
	Proof         *ProofResponse `json:"proof,omitempty"`
	Grade         *int           `json:"grade,omitempty"`
	GradeFeedback string         `json:"grade_feedback,omitempty"`
	RejectReason  string         `json:"reject_reason,omitempty"`
	GameID        string         `json:"game_id,omitempty"`
	Tags          []string       `json:"tags"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type ProofResponse struct {
	Text           string     `json:"text,omitempty"`
	FileURL        string     `json:"file_url,omitempty"`
	Retention      string     `json:"retention"`
	RetentionLabel string     `json:"retention_label"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

type DareListResponse struct {
	Dares []DareResponse `json:"dares"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
