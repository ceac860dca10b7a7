package dare

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/daretide/daretide-backend/internal/admission"
	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/resilience"
	"github.com/daretide/daretide-backend/internal/retention"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DareService owns the engagement lifecycle. Every transition is
// validated against the status transition table, executed through the
// resilience layer, and the in-memory dare is replaced from the store's
// row afterwards rather than patched optimistically.
type DareService struct {
	db        *gorm.DB
	admission *admission.Service
	ttl       time.Duration

	api      *resilience.Executor
	critical *resilience.Executor
	upload   *resilience.Executor
	noRetry  *resilience.Executor
}

func NewDareService(db *gorm.DB, adm *admission.Service, ttl time.Duration) *DareService {
	return &DareService{
		db:        db,
		admission: adm,
		ttl:       ttl,
		api:       resilience.New(resilience.API),
		critical:  resilience.New(resilience.Critical),
		upload:    resilience.New(resilience.Upload),
		noRetry:   resilience.New(resilience.NonCritical),
	}
}

// Create opens a new engagement. The admission decision is taken twice:
// once by the caller (advisory) and again here inside the insert
// transaction, which is the one that counts.
func (s *DareService) Create(ctx context.Context, creatorID uuid.UUID, req *CreateDareRequest) (*Dare, error) {
	if req.Description == "" {
		return nil, apperrors.Validation("description is required")
	}
	difficulty := status.Difficulty(req.Difficulty)
	if !difficulty.Valid() {
		return nil, apperrors.Validation("unrecognized difficulty: " + req.Difficulty)
	}
	dareType := status.DareType(req.DareType)
	if !dareType.Valid() {
		return nil, apperrors.Validation("unrecognized dare type: " + req.DareType)
	}
	if req.RequiresConsent && dareType != status.TypeDomination {
		return nil, apperrors.Validation("only domination dares are consent-gated")
	}

	initial := status.Soliciting
	var performerID *uuid.UUID
	if req.PerformerID != "" {
		id, err := uuid.Parse(req.PerformerID)
		if err != nil {
			return nil, apperrors.Validation("invalid performer id")
		}
		if id == creatorID {
			return nil, apperrors.Validation("cannot direct a dare at yourself")
		}
		performerID = &id
		initial = status.WaitingForParticipant
	}

	expiresAt := time.Now().Add(s.ttl)
	d := Dare{
		ID:              uuid.New(),
		Status:          initial,
		Difficulty:      difficulty,
		DareType:        dareType,
		RequiresConsent: req.RequiresConsent || dareType == status.TypeDomination,
		Description:     req.Description,
		CreatorID:       creatorID,
		PerformerID:     performerID,
		Tags:            tagsJSON(req.Tags),
		ExpiresAt:       &expiresAt,
	}

	err := s.api.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.admission.CheckCreateTx(tx, creatorID); err != nil {
				return err
			}
			return tx.Create(&d).Error
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("dare created", "dare_id", d.ID, "creator_id", creatorID,
		"difficulty", difficulty, "dare_type", dareType)
	return s.reload(d.ID)
}

// Get fetches a dare for a viewer. When the creator first views a
// delete-after-view proof, the proof content is purged in place; the
// returned dare reflects the purge.
func (s *DareService) Get(ctx context.Context, viewerID uuid.UUID, id uuid.UUID) (*Dare, error) {
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}

	if viewerID == d.CreatorID && d.HasProof() && d.ProofViewedAt == nil &&
		retention.Policy(d.ProofRetention) == retention.DeleteAfterView {
		now := time.Now()
		err := s.noRetry.Run(ctx, func(ctx context.Context) error {
			return s.db.WithContext(ctx).Model(&Dare{}).Where("id = ?", d.ID).
				Updates(map[string]interface{}{
					"proof_text":      "",
					"proof_file_url":  "",
					"proof_viewed_at": now,
				}).Error
		})
		if err != nil {
			return nil, err
		}
		removeProofFile(d.ProofFileURL)
		return s.reload(id)
	}

	return d, nil
}

// ListOpen returns claimable dares, newest first.
func (s *DareService) ListOpen(difficulty string, tag string, limit, offset int) ([]Dare, int64, error) {
	query := s.db.Model(&Dare{}).Where("status IN ?", []status.Status{status.Soliciting, status.WaitingForParticipant})
	if difficulty != "" {
		if !status.Difficulty(difficulty).Valid() {
			return nil, 0, apperrors.Validation("unrecognized difficulty: " + difficulty)
		}
		query = query.Where("difficulty = ?", difficulty)
	}
	if normalized := NormalizeTags([]string{tag}); len(normalized) > 0 {
		query = query.Where("tags @> ?", fmt.Sprintf("[%q]", normalized[0]))
	}

	var total int64
	query.Count(&total)

	var dares []Dare
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&dares).Error
	return dares, total, err
}

// Accept claims an open dare. Consent-gated dares are claimed through
// RecordConsent instead; accepting one blind is refused.
func (s *DareService) Accept(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Dare, error) {
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if userID == d.CreatorID {
		return nil, apperrors.Forbidden("you cannot accept your own dare")
	}
	if d.PerformerID != nil && *d.PerformerID != userID {
		return nil, apperrors.Forbidden("this dare is directed at another user")
	}
	if d.ConsentPending() {
		return nil, apperrors.Forbidden("consent must be recorded before accepting this dare")
	}

	return s.applyTransition(ctx, d, status.EventAccept, s.critical, map[string]interface{}{
		"performer_id": userID,
	})
}

// Reject declines a directed dare. A reason is required so the creator
// learns why.
func (s *DareService) Reject(ctx context.Context, userID uuid.UUID, id uuid.UUID, reason string) (*Dare, error) {
	if reason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if userID == d.CreatorID {
		return nil, apperrors.Forbidden("you cannot reject your own dare")
	}
	if d.PerformerID != nil && *d.PerformerID != userID {
		return nil, apperrors.Forbidden("this dare is directed at another user")
	}

	return s.applyTransition(ctx, d, status.EventReject, s.critical, map[string]interface{}{
		"reject_reason": reason,
	})
}

// RecordConsent implements the blind-demand gate: consenting both
// reveals the description and, for a dare still waiting, stands in for
// acceptance. A second call is a no-op success and leaves the original
// consent timestamp untouched.
func (s *DareService) RecordConsent(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Dare, error) {
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if err := d.canConsent(userID); err != nil {
		return nil, err
	}

	// canConsent passed, so an already-consented dare is this user's
	// own earlier consent: no-op success, timestamp untouched.
	if d.Consented {
		return d, nil
	}

	now := time.Now()
	err = s.critical.Run(ctx, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Model(&Dare{}).
			Where("id = ? AND consented = false", d.ID).
			Updates(map[string]interface{}{
				"consented":    true,
				"consented_at": now,
				"performer_id": userID,
			})
		return res.Error
	})
	if err != nil {
		return nil, err
	}

	d, err = s.reload(id)
	if err != nil {
		return nil, err
	}

	// The write above affects zero rows when a concurrent consenter
	// got there first; the reloaded row says who holds the dare now.
	if err := d.canConsent(userID); err != nil {
		return nil, err
	}

	// Consent doubles as acceptance while the dare is still open.
	if _, ok := status.Next(d.Status, status.EventAccept); ok {
		return s.applyTransition(ctx, d, status.EventAccept, s.critical, nil)
	}

	slog.Info("consent recorded", "dare_id", d.ID, "performer_id", userID)
	return d, nil
}

// SubmitProof completes an in-progress dare. Validation failures are
// caught before any store write; the file itself is persisted by the
// handler under the upload policy before this is called.
func (s *DareService) SubmitProof(ctx context.Context, userID uuid.UUID, id uuid.UUID, text, fileURL string, policy retention.Policy) (*Dare, error) {
	if text == "" && fileURL == "" {
		return nil, apperrors.New(apperrors.CodeEmptyProof, "proof needs text or a file")
	}
	if err := retention.Validate(policy); err != nil {
		return nil, err
	}

	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if err := d.canSubmitProof(userID); err != nil {
		return nil, err
	}

	exec := s.critical
	if fileURL != "" {
		exec = s.upload
	}

	next, ok := status.Next(d.Status, status.EventSubmitProof)
	if !ok {
		return nil, apperrors.InvalidTransition(string(d.Status), string(status.EventSubmitProof))
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":             next,
		"proof_text":         text,
		"proof_file_url":     fileURL,
		"proof_retention":    string(policy),
		"proof_submitted_at": now,
	}
	if exp := retention.ExpiryFor(policy, now); exp != nil {
		updates["proof_expires_at"] = *exp
	}

	prev := d.Status
	err = exec.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&Dare{}).Where("id = ? AND status = ?", d.ID, prev).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.InvalidTransition(string(prev), string(status.EventSubmitProof))
			}
			return propagateToGame(tx, d, status.EventSubmitProof)
		})
	})
	if err != nil {
		return nil, err
	}

	return s.reload(id)
}

// ChickenOut forfeits an in-progress dare and starts the performer's
// creation cooldown in the same transaction.
func (s *DareService) ChickenOut(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Dare, error) {
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if d.PerformerID == nil || *d.PerformerID != userID {
		return nil, apperrors.Forbidden("only the performer can chicken out")
	}

	next, ok := status.Next(d.Status, status.EventChickenOut)
	if !ok {
		return nil, apperrors.InvalidTransition(string(d.Status), string(status.EventChickenOut))
	}

	prev := d.Status
	err = s.critical.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&Dare{}).Where("id = ? AND status = ?", d.ID, prev).
				Update("status", next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.InvalidTransition(string(prev), string(status.EventChickenOut))
			}
			if err := propagateToGame(tx, d, status.EventChickenOut); err != nil {
				return err
			}
			return s.admission.StartCooldown(tx, userID)
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("dare forfeited", "dare_id", d.ID, "performer_id", userID)
	return s.reload(id)
}

// Grade scores a completed dare. Only the creator grades, and only
// with an integer between 1 and 10.
func (s *DareService) Grade(ctx context.Context, userID uuid.UUID, id uuid.UUID, grade int, feedback string) (*Dare, error) {
	if grade < 1 || grade > 10 {
		return nil, apperrors.Validation("grade must be between 1 and 10")
	}
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if userID != d.CreatorID {
		return nil, apperrors.Forbidden("only the creator can grade")
	}

	return s.applyTransition(ctx, d, status.EventGrade, s.critical, map[string]interface{}{
		"grade":          grade,
		"grade_feedback": feedback,
	})
}

// Approve marks a completed or graded performance as approved.
func (s *DareService) Approve(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*Dare, error) {
	d, err := s.reload(id)
	if err != nil {
		return nil, err
	}
	if userID != d.CreatorID {
		return nil, apperrors.Forbidden("only the creator can approve")
	}

	return s.applyTransition(ctx, d, status.EventApprove, s.critical, nil)
}

// Delete cancels a dare. Only the creator may, and only before any
// proof exists.
func (s *DareService) Delete(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	d, err := s.reload(id)
	if err != nil {
		return err
	}
	if userID != d.CreatorID {
		return apperrors.Forbidden("only the creator can delete a dare")
	}
	if d.HasProof() {
		return apperrors.Forbidden("a dare with submitted proof cannot be deleted")
	}

	if _, err := s.applyTransition(ctx, d, status.EventDelete, s.critical, nil); err != nil {
		return err
	}
	return s.db.Delete(&Dare{}, "id = ?", d.ID).Error
}

// ExpireSweep marks TTL-elapsed open dares expired and returns how many.
func (s *DareService) ExpireSweep() (int64, error) {
	return sweepExpired(s.db)
}

// PurgeExpiredProofs clears proof content whose retention TTL elapsed.
func (s *DareService) PurgeExpiredProofs() (int64, error) {
	return purgeExpiredProofs(s.db)
}

// MarkUserDeleted retires every open engagement the user is party to.
// Runs inside the account-deletion transaction.
func MarkUserDeleted(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&Dare{}).
		Where("(creator_id = ? OR performer_id = ?) AND status IN ?",
			userID, userID, status.OpenStatuses()).
		Update("status", status.UserDeleted).Error
}

// propagateToGame reflects an obligation dare's outcome onto the game
// that spawned it: the game completes once no obligation remains open,
// and forfeits the moment any obligation is abandoned. Games are
// touched by table name to keep the dependency one-way.
func propagateToGame(tx *gorm.DB, d *Dare, ev status.Event) error {
	if d.GameID == nil {
		return nil
	}

	switch ev {
	case status.EventSubmitProof:
		var open int64
		err := tx.Model(&Dare{}).
			Where("game_id = ? AND id <> ? AND status IN ?", d.GameID, d.ID, status.OpenStatuses()).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return nil
		}
		return tx.Table("switch_games").
			Where("id = ? AND status = ?", d.GameID, status.GameInProgress).
			Updates(map[string]interface{}{"status": status.GameCompleted, "updated_at": time.Now()}).Error
	case status.EventChickenOut:
		return tx.Table("switch_games").
			Where("id = ? AND status = ?", d.GameID, status.GameInProgress).
			Updates(map[string]interface{}{"status": status.GameForfeited, "updated_at": time.Now()}).Error
	}
	return nil
}

// applyTransition validates ev against the transition table, performs a
// compare-and-set on the status column so a concurrent writer cannot be
// silently overwritten, and reloads the authoritative row.
func (s *DareService) applyTransition(ctx context.Context, d *Dare, ev status.Event, exec *resilience.Executor, updates map[string]interface{}) (*Dare, error) {
	next, ok := status.Next(d.Status, ev)
	if !ok {
		return nil, apperrors.InvalidTransition(string(d.Status), string(ev))
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = next

	prev := d.Status
	err := exec.Run(ctx, func(ctx context.Context) error {
		res := s.db.WithContext(ctx).Model(&Dare{}).
			Where("id = ? AND status = ?", d.ID, prev).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.InvalidTransition(string(prev), string(ev))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(d.ID)
}

func (s *DareService) reload(id uuid.UUID) (*Dare, error) {
	var d Dare
	if err := s.db.First(&d, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("dare not found")
		}
		return nil, fmt.Errorf("failed to load dare: %w", err)
	}
	return &d, nil
}
