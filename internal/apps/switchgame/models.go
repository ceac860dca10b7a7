package switchgame

import (
	"encoding/json"
	"time"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/apps/dare"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SwitchGame is a two-party wagered challenge. Each side commits a
// concealed demand and move; resolution assigns the losing side's
// obligation, which is then tracked as a dare scoped to the loser.
type SwitchGame struct {
	ID     uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Status status.GameStatus `gorm:"size:30;not null;index" json:"status"`

	CreatorID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"creator_id"`
	CreatorDescription string            `gorm:"type:text;not null" json:"-"`
	CreatorDifficulty  status.Difficulty `gorm:"size:20;not null;index" json:"creator_difficulty"`
	CreatorMove        string            `gorm:"size:10;not null" json:"-"`
	CreatorRetention   string            `gorm:"size:30" json:"-"`

	ParticipantID          *uuid.UUID `gorm:"type:uuid;index" json:"participant_id,omitempty"`
	ParticipantDescription string     `gorm:"type:text" json:"-"`
	ParticipantMove        string     `gorm:"size:10" json:"-"`
	ParticipantRetention   string     `gorm:"size:30" json:"-"`

	WinnerID   *uuid.UUID `gorm:"type:uuid" json:"winner_id,omitempty"`
	LoserID    *uuid.UUID `gorm:"type:uuid" json:"loser_id,omitempty"`
	BothWin    bool       `gorm:"default:false" json:"both_win"`
	BothLose   bool       `gorm:"default:false" json:"both_lose"`
	RandomDraw bool       `gorm:"default:false" json:"random_draw"`

	Tags      datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"tags"`
	ExpiresAt *time.Time     `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Resolved reports whether the game has passed resolution.
func (g *SwitchGame) Resolved() bool {
	return g.Status != status.GameWaitingForParticipant
}

// IsParty reports whether the user is one of the two sides.
func (g *SwitchGame) IsParty(userID uuid.UUID) bool {
	if userID == g.CreatorID {
		return true
	}
	return g.ParticipantID != nil && *g.ParticipantID == userID
}

// claimableBy gates the join: not the creator, and the single
// participant slot must still be open. This mirrors the conditional
// UPDATE that actually claims the slot.
func (g *SwitchGame) claimableBy(userID uuid.UUID) error {
	if userID == g.CreatorID {
		return apperrors.Forbidden("you cannot join your own game")
	}
	if g.Status != status.GameWaitingForParticipant || g.ParticipantID != nil {
		return apperrors.New(apperrors.CodeGameFull, "this game already has a participant")
	}
	return nil
}

// Owes reports whether the user still owes a performance.
func (g *SwitchGame) Owes(userID uuid.UUID) bool {
	if g.BothLose {
		return g.IsParty(userID)
	}
	return g.LoserID != nil && *g.LoserID == userID
}

func gameTagsJSON(tags []string) datatypes.JSON {
	b, err := json.Marshal(dare.NormalizeTags(tags))
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

// --- DTOs ---

type CreateGameRequest struct {
	Description string   `json:"description"`
	Difficulty  string   `json:"difficulty"`
	Move        string   `json:"move"`
	Retention   string   `json:"retention,omitempty"`
	Tags        []string `json:"tags"`
}

type JoinGameRequest struct {
	Description string `json:"description"`
	Move        string `json:"move"`
	Retention   string `json:"retention,omitempty"`
}

type GameResponse struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	CreatorID         string     `json:"creator_id"`
	CreatorDifficulty string     `json:"creator_difficulty"`
	ParticipantID     string     `json:"participant_id,omitempty"`
	WinnerID          string     `json:"winner_id,omitempty"`
	LoserID           string     `json:"loser_id,omitempty"`
	BothWin           bool       `json:"both_win"`
	BothLose          bool       `json:"both_lose"`
	RandomDraw        bool       `json:"random_draw"`
	Tags              []string   `json:"tags"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`

	// Concealed until resolution; afterwards each party sees what they
	// are owed or owe.
	CreatorDescription     string `json:"creator_description,omitempty"`
	CreatorMove            string `json:"creator_move,omitempty"`
	ParticipantDescription string `json:"participant_description,omitempty"`
	ParticipantMove        string `json:"participant_move,omitempty"`
}

type GameListResponse struct {
	Games []GameResponse `json:"games"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
