package switchgame

import (
	"github.com/daretide/daretide-backend/internal/admission"
	"github.com/daretide/daretide-backend/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SwitchGamePlugin struct{}

func New() *SwitchGamePlugin {
	return &SwitchGamePlugin{}
}

func (p *SwitchGamePlugin) ID() string { return "switchgame" }

func (p *SwitchGamePlugin) Models() []interface{} {
	return []interface{}{
		&SwitchGame{},
	}
}

func (p *SwitchGamePlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	adm := admission.NewService(db, cfg.MaxOpenSlots, cfg.CreationCooldown)
	svc := NewGameService(db, adm, cfg.DareTTL)
	handler := NewGameHandler(svc)

	router.Post("/games", handler.CreateGame)
	router.Get("/games", handler.ListGames)
	router.Get("/games/:id", handler.GetGame)
	router.Post("/games/:id/join", handler.JoinGame)
	router.Post("/games/:id/forfeit", handler.ForfeitGame)
	router.Delete("/games/:id", handler.DeleteGame)
}
