package admission

import (
	"errors"
	"fmt"
	"time"

	"github.com/daretide/daretide-backend/internal/models"
	"github.com/daretide/daretide-backend/internal/retention"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service tracks per-user engagement capacity against the store.
type Service struct {
	db       *gorm.DB
	maxSlots int
	cooldown time.Duration
}

func NewService(db *gorm.DB, maxSlots int, cooldown time.Duration) *Service {
	return &Service{db: db, maxSlots: maxSlots, cooldown: cooldown}
}

// State recomputes the user's admission state from live counts. Dares
// and switch games each hold one slot while non-terminal, whichever
// side of them the user is on.
func (s *Service) State(userID uuid.UUID) (State, error) {
	return s.stateTx(s.db, userID)
}

func (s *Service) stateTx(tx *gorm.DB, userID uuid.UUID) (State, error) {
	open := status.OpenStatuses()

	var dares int64
	err := tx.Table("dares").
		Where("(creator_id = ? OR performer_id = ?) AND status IN ? AND deleted_at IS NULL",
			userID, userID, open).
		Count(&dares).Error
	if err != nil {
		return State{}, fmt.Errorf("failed to count open dares: %w", err)
	}

	var games int64
	err = tx.Table("switch_games").
		Where("(creator_id = ? OR participant_id = ?) AND status IN ? AND deleted_at IS NULL",
			userID, userID,
			[]status.GameStatus{status.GameWaitingForParticipant, status.GameInProgress}).
		Count(&games).Error
	if err != nil {
		return State{}, fmt.Errorf("failed to count open games: %w", err)
	}

	st := State{
		OpenSlots: int(dares + games),
		MaxSlots:  s.maxSlots,
	}

	var setting models.UserSetting
	err = tx.Where("user_id = ?", userID).First(&setting).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return State{}, fmt.Errorf("failed to load user settings: %w", err)
	}
	if err == nil {
		st.CooldownUntil = setting.CooldownUntil
	}

	return st, nil
}

// CheckCreate refreshes the admission state and gates a new engagement.
func (s *Service) CheckCreate(userID uuid.UUID) error {
	return s.CheckCreateTx(s.db, userID)
}

// CheckCreateTx is the transactional form, used to re-validate the
// decision inside the same transaction that inserts the engagement so
// a race between two creations cannot oversubscribe the slots.
func (s *Service) CheckCreateTx(tx *gorm.DB, userID uuid.UUID) error {
	st, err := s.stateTx(tx, userID)
	if err != nil {
		return err
	}
	return Decide(st, time.Now())
}

// StartCooldown records a creation cooldown for the user, typically
// after a chicken-out or game forfeiture.
func (s *Service) StartCooldown(tx *gorm.DB, userID uuid.UUID) error {
	if s.cooldown <= 0 {
		return nil
	}
	until := time.Now().Add(s.cooldown)

	var setting models.UserSetting
	err := tx.Where("user_id = ?", userID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.UserSetting{
			ID:               uuid.New(),
			UserID:           userID,
			DefaultRetention: string(retention.DeleteAfterView),
			CooldownUntil:    &until,
		}
		return tx.Create(&setting).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load user settings: %w", err)
	}

	return tx.Model(&setting).Update("cooldown_until", until).Error
}
