package dare

import (
	"github.com/daretide/daretide-backend/internal/admission"
	"github.com/daretide/daretide-backend/internal/config"
	"github.com/daretide/daretide-backend/internal/retention"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DarePlugin struct{}

func New() *DarePlugin {
	return &DarePlugin{}
}

func (p *DarePlugin) ID() string { return "dare" }

func (p *DarePlugin) Models() []interface{} {
	return []interface{}{
		&Dare{},
	}
}

func (p *DarePlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	adm := admission.NewService(db, cfg.MaxOpenSlots, cfg.CreationCooldown)
	ret := retention.NewService(db)
	svc := NewDareService(db, adm, cfg.DareTTL)
	handler := NewDareHandler(svc, ret)

	router.Post("/dares", handler.CreateDare)
	router.Get("/dares", handler.ListDares)
	router.Get("/dares/:id", handler.GetDare)
	router.Post("/dares/:id/accept", handler.AcceptDare)
	router.Post("/dares/:id/reject", handler.RejectDare)
	router.Post("/dares/:id/consent", handler.RecordConsent)
	router.Post("/dares/:id/proof", handler.SubmitProof)
	router.Post("/dares/:id/chicken-out", handler.ChickenOut)
	router.Post("/dares/:id/grade", handler.GradeDare)
	router.Post("/dares/:id/approve", handler.ApproveDare)
	router.Delete("/dares/:id", handler.DeleteDare)

	router.Get("/admission", handler.GetAdmission)
	router.Get("/settings/retention", handler.GetRetentionSetting)
	router.Put("/settings/retention", handler.SetRetentionSetting)
}

func (p *DarePlugin) RegisterAdminRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	adm := admission.NewService(db, cfg.MaxOpenSlots, cfg.CreationCooldown)
	ret := retention.NewService(db)
	svc := NewDareService(db, adm, cfg.DareTTL)
	handler := NewDareHandler(svc, ret)

	router.Post("/dares/sweep", handler.RunExpirySweep)
}
