package retention

import (
	"errors"
	"fmt"

	"github.com/daretide/daretide-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service reads and writes the user's default retention policy. The
// default is fetched explicitly by callers that need it; nothing here
// is cached as ambient state.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetSetting returns the user's default proof retention policy,
// creating the settings row on first access.
func (s *Service) GetSetting(userID uuid.UUID) (Policy, error) {
	var setting models.UserSetting
	err := s.db.Where("user_id = ?", userID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.UserSetting{
			ID:               uuid.New(),
			UserID:           userID,
			DefaultRetention: string(DeleteAfterView),
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return "", fmt.Errorf("failed to create user settings: %w", err)
		}
		return DeleteAfterView, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user settings: %w", err)
	}
	return Policy(setting.DefaultRetention), nil
}

// SetSetting replaces the user's default proof retention policy.
func (s *Service) SetSetting(userID uuid.UUID, p Policy) error {
	if err := Validate(p); err != nil {
		return err
	}

	var setting models.UserSetting
	err := s.db.Where("user_id = ?", userID).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting = models.UserSetting{
			ID:               uuid.New(),
			UserID:           userID,
			DefaultRetention: string(p),
		}
		return s.db.Create(&setting).Error
	}
	if err != nil {
		return fmt.Errorf("failed to load user settings: %w", err)
	}

	return s.db.Model(&setting).Update("default_retention", string(p)).Error
}
