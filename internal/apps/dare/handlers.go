package dare

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/daretide/daretide-backend/internal/apps"
	"github.com/daretide/daretide-backend/internal/dto"
	"github.com/daretide/daretide-backend/internal/identity"
	"github.com/daretide/daretide-backend/internal/retention"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// MaxProofBytes is the proof file ceiling, checked before the file is
// ever persisted.
const MaxProofBytes = 50 * 1024 * 1024

// ProofUploadDir is where proof files land on disk; the server mounts
// it under the matching URL prefix. Filenames are unguessable, so the
// URL itself is the capability.
const ProofUploadDir = "./uploads/proofs"

const proofURLPrefix = "/uploads/proofs/"

// proofFilePath maps a stored proof URL back to its on-disk path.
// Only the base name is used, so a mangled URL cannot escape the
// upload directory.
func proofFilePath(fileURL string) string {
	if fileURL == "" {
		return ""
	}
	return filepath.Join(ProofUploadDir, path.Base(fileURL))
}

// removeProofFile deletes the proof bytes behind a stored URL. Purges
// call this after clearing the columns so the content is gone from
// disk as well as from the store.
func removeProofFile(fileURL string) {
	if p := proofFilePath(fileURL); p != "" {
		os.Remove(p)
	}
}

type DareHandler struct {
	dareService      *DareService
	retentionService *retention.Service
}

func NewDareHandler(dareService *DareService, retentionService *retention.Service) *DareHandler {
	return &DareHandler{dareService: dareService, retentionService: retentionService}
}

// CreateDare handles POST /dares.
func (h *DareHandler) CreateDare(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreateDareRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	d, err := h.dareService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return apps.RespondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.toResponse(d, userID))
}

// GetDare handles GET /dares/:id.
func (h *DareHandler) GetDare(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid dare ID",
		})
	}

	d, err := h.dareService.Get(c.UserContext(), userID, id)
	if err != nil {
		return apps.RespondError(c, err)
	}

	return c.JSON(h.toResponse(d, userID))
}

// ListDares handles GET /dares - open dares, filterable and paginated.
func (h *DareHandler) ListDares(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	dares, total, err := h.dareService.ListOpen(c.Query("difficulty"), c.Query("tag"), limit, (page-1)*limit)
	if err != nil {
		return apps.RespondError(c, err)
	}

	responses := make([]DareResponse, len(dares))
	for i := range dares {
		responses[i] = h.toResponse(&dares[i], userID)
	}

	return c.JSON(DareListResponse{
		Dares: responses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// AcceptDare handles POST /dares/:id/accept.
func (h *DareHandler) AcceptDare(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.dareService.Accept)
}

// RejectDare handles POST /dares/:id/reject.
func (h *DareHandler) RejectDare(c *fiber.Ctx) error {
	userID, id, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	d, err := h.dareService.Reject(c.UserContext(), userID, id, req.Reason)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(h.toResponse(d, userID))
}

// RecordConsent handles POST /dares/:id/consent. The response carries
// the revealed description.
func (h *DareHandler) RecordConsent(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.dareService.RecordConsent)
}

// SubmitProof handles POST /dares/:id/proof (multipart). Empty proof
// and oversized files are refused before anything touches the store.
func (h *DareHandler) SubmitProof(c *fiber.Ctx) error {
	userID, id, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	text := c.FormValue("text", "")
	file, fileErr := c.FormFile("file")

	if text == "" && fileErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.CodedErrorResponse{
			Error: true, Code: "EMPTY_PROOF", Message: "Proof needs text or a file",
		})
	}
	if fileErr == nil && file.Size > MaxProofBytes {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Proof file must be smaller than 50MB",
		})
	}

	policy := retention.MapPrivacyValue(c.FormValue("retention", ""))
	if c.FormValue("retention", "") == "" {
		var err error
		policy, err = h.retentionService.GetSetting(userID)
		if err != nil {
			return apps.RespondError(c, err)
		}
	}

	fileURL := ""
	savePath := ""
	if fileErr == nil {
		ext := filepath.Ext(file.Filename)
		filename := fmt.Sprintf("%s_%s%s", userID.String()[:8], uuid.New().String()[:8], ext)
		savePath = filepath.Join(ProofUploadDir, filename)
		if err := c.SaveFile(file, savePath); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to save proof file",
			})
		}
		fileURL = proofURLPrefix + filename
	}

	d, err := h.dareService.SubmitProof(c.UserContext(), userID, id, text, fileURL, policy)
	if err != nil {
		if savePath != "" {
			os.Remove(savePath)
		}
		return apps.RespondError(c, err)
	}

	return c.JSON(h.toResponse(d, userID))
}

// ChickenOut handles POST /dares/:id/chicken-out.
func (h *DareHandler) ChickenOut(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.dareService.ChickenOut)
}

// GradeDare handles POST /dares/:id/grade.
func (h *DareHandler) GradeDare(c *fiber.Ctx) error {
	userID, id, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	d, err := h.dareService.Grade(c.UserContext(), userID, id, req.Grade, req.Feedback)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(h.toResponse(d, userID))
}

// ApproveDare handles POST /dares/:id/approve.
func (h *DareHandler) ApproveDare(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.dareService.Approve)
}

// DeleteDare handles DELETE /dares/:id.
func (h *DareHandler) DeleteDare(c *fiber.Ctx) error {
	userID, id, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	if err := h.dareService.Delete(c.UserContext(), userID, id); err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Dare cancelled"})
}

// GetAdmission handles GET /admission - the caller's slot/cooldown view.
func (h *DareHandler) GetAdmission(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	st, err := h.dareService.admission.State(userID)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(st)
}

// GetRetentionSetting handles GET /settings/retention.
func (h *DareHandler) GetRetentionSetting(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	policy, err := h.retentionService.GetSetting(userID)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(fiber.Map{
		"retention": string(policy),
		"label":     retention.UnmapPrivacyValue(policy),
	})
}

// SetRetentionSetting handles PUT /settings/retention.
func (h *DareHandler) SetRetentionSetting(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req struct {
		Retention string `json:"retention"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	policy := retention.MapPrivacyValue(req.Retention)
	if err := h.retentionService.SetSetting(userID, policy); err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"retention": string(policy)})
}

// RunExpirySweep handles POST /admin sweep trigger.
func (h *DareHandler) RunExpirySweep(c *fiber.Ctx) error {
	expired, err := h.dareService.ExpireSweep()
	if err != nil {
		return apps.RespondError(c, err)
	}
	purged, err := h.dareService.PurgeExpiredProofs()
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"expired": expired, "proofs_purged": purged})
}

func (h *DareHandler) authAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool) {
	userID, err := identity.UserID(c)
	if err != nil {
		c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid dare ID",
		})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}

func (h *DareHandler) simpleTransition(c *fiber.Ctx, op func(ctx context.Context, userID, id uuid.UUID) (*Dare, error)) error {
	userID, id, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	d, err := op(c.UserContext(), userID, id)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(h.toResponse(d, userID))
}

// toResponse builds the viewer-specific projection: the description is
// withheld while consent is pending for anyone but the creator, and
// proof content is only shown to the creator.
func (h *DareHandler) toResponse(d *Dare, viewerID uuid.UUID) DareResponse {
	resp := DareResponse{
		ID:              d.ID.String(),
		Status:          string(d.Status),
		StatusLabel:     d.Status.Label(),
		StatusColor:     d.Status.Color(),
		Difficulty:      string(d.Difficulty),
		DifficultyLabel: d.Difficulty.Label(),
		DareType:        string(d.DareType),
		RequiresConsent: d.RequiresConsent,
		Consented:       d.Consented,
		ConsentedAt:     d.ConsentedAt,
		CreatorID:       d.CreatorID.String(),
		Grade:           d.Grade,
		GradeFeedback:   d.GradeFeedback,
		RejectReason:    d.RejectReason,
		ExpiresAt:       d.ExpiresAt,
		CreatedAt:       d.CreatedAt,
	}

	if d.PerformerID != nil {
		resp.PerformerID = d.PerformerID.String()
	}
	if d.GameID != nil {
		resp.GameID = d.GameID.String()
	}

	var tags []string
	if err := json.Unmarshal(d.Tags, &tags); err == nil {
		resp.Tags = tags
	} else {
		resp.Tags = []string{}
	}

	if viewerID == d.CreatorID || !d.ConsentPending() {
		resp.Description = d.Description
	}

	if d.HasProof() && viewerID == d.CreatorID {
		resp.Proof = &ProofResponse{
			Text:           d.ProofText,
			FileURL:        d.ProofFileURL,
			Retention:      d.ProofRetention,
			RetentionLabel: retention.UnmapPrivacyValue(retention.Policy(d.ProofRetention)),
			SubmittedAt:    d.ProofSubmittedAt,
			ExpiresAt:      d.ProofExpiresAt,
		}
	}

	return resp
}
