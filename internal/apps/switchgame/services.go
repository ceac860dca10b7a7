package switchgame

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/daretide/daretide-backend/internal/admission"
	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/apps/dare"
	"github.com/daretide/daretide-backend/internal/resilience"
	"github.com/daretide/daretide-backend/internal/retention"
	"github.com/daretide/daretide-backend/internal/status"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GameService runs the switch-game engine: creation, the single-join
// race, resolution, and the loser's obligation handoff to the dare
// lifecycle.
type GameService struct {
	db        *gorm.DB
	admission *admission.Service
	ttl       time.Duration
	draw      func(n int) int

	api      *resilience.Executor
	critical *resilience.Executor
}

func NewGameService(db *gorm.DB, adm *admission.Service, ttl time.Duration) *GameService {
	return &GameService{
		db:        db,
		admission: adm,
		ttl:       ttl,
		draw:      rand.Intn,
		api:       resilience.New(resilience.API),
		critical:  resilience.New(resilience.Critical),
	}
}

// Create opens a game with the creator's concealed demand and move.
func (s *GameService) Create(ctx context.Context, creatorID uuid.UUID, req *CreateGameRequest) (*SwitchGame, error) {
	if req.Description == "" {
		return nil, apperrors.Validation("a demand description is required")
	}
	difficulty := status.Difficulty(req.Difficulty)
	if !difficulty.Valid() {
		return nil, apperrors.Validation("unrecognized difficulty: " + req.Difficulty)
	}
	move := Move(req.Move)
	if !move.Valid() {
		return nil, apperrors.Validation("move must be rock, paper or scissors")
	}
	policy := retention.MapPrivacyValue(req.Retention)
	if req.Retention != "" {
		if err := retention.Validate(policy); err != nil {
			return nil, err
		}
	}

	expiresAt := time.Now().Add(s.ttl)
	g := SwitchGame{
		ID:                 uuid.New(),
		Status:             status.GameWaitingForParticipant,
		CreatorID:          creatorID,
		CreatorDescription: req.Description,
		CreatorDifficulty:  difficulty,
		CreatorMove:        string(move),
		CreatorRetention:   string(policy),
		Tags:               gameTagsJSON(req.Tags),
		ExpiresAt:          &expiresAt,
	}

	err := s.api.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.admission.CheckCreateTx(tx, creatorID); err != nil {
				return err
			}
			return tx.Create(&g).Error
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("switch game created", "game_id", g.ID, "creator_id", creatorID, "difficulty", difficulty)
	return s.reload(g.ID)
}

// Get fetches a game; the handler decides what the viewer may see.
func (s *GameService) Get(id uuid.UUID) (*SwitchGame, error) {
	return s.reload(id)
}

// ListOpen returns joinable games, newest first.
func (s *GameService) ListOpen(limit, offset int) ([]SwitchGame, int64, error) {
	var total int64
	s.db.Model(&SwitchGame{}).Where("status = ?", status.GameWaitingForParticipant).Count(&total)

	var games []SwitchGame
	err := s.db.Where("status = ?", status.GameWaitingForParticipant).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&games).Error
	return games, total, err
}

// Join claims the single participant slot and resolves the game in one
// transaction. The slot claim is a compare-and-set on the row, so of
// two racing joiners exactly one wins; the other sees GAME_FULL.
func (s *GameService) Join(ctx context.Context, userID uuid.UUID, gameID uuid.UUID, req *JoinGameRequest) (*SwitchGame, error) {
	if req.Description == "" {
		return nil, apperrors.Validation("a demand description is required")
	}
	move := Move(req.Move)
	if !move.Valid() {
		return nil, apperrors.Validation("move must be rock, paper or scissors")
	}
	policy := retention.MapPrivacyValue(req.Retention)
	if req.Retention != "" {
		if err := retention.Validate(policy); err != nil {
			return nil, err
		}
	}

	g, err := s.reload(gameID)
	if err != nil {
		return nil, err
	}
	if err := g.claimableBy(userID); err != nil {
		return nil, err
	}

	res := Resolve(Move(g.CreatorMove), move, s.draw)
	next, ok := status.GameNext(g.Status, status.EventJoin)
	if !ok {
		return nil, apperrors.New(apperrors.CodeGameFull, "this game already has a participant")
	}
	if res.BothWin {
		// Nobody owes a performance; the game is terminal immediately.
		next = status.GameCompleted
	}

	updates := map[string]interface{}{
		"status":                  next,
		"participant_id":          userID,
		"participant_description": req.Description,
		"participant_move":        string(move),
		"participant_retention":   string(policy),
		"both_win":                res.BothWin,
		"both_lose":               res.BothLose,
		"random_draw":             res.RandomDraw,
	}
	if !res.BothWin && !res.BothLose {
		winner, loser := g.CreatorID, userID
		if res.CreatorLoses {
			winner, loser = userID, g.CreatorID
		}
		updates["winner_id"] = winner
		updates["loser_id"] = loser
	}

	err = s.critical.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.admission.CheckCreateTx(tx, userID); err != nil {
				return err
			}

			claim := tx.Model(&SwitchGame{}).
				Where("id = ? AND status = ? AND participant_id IS NULL",
					g.ID, status.GameWaitingForParticipant).
				Updates(updates)
			if claim.Error != nil {
				return claim.Error
			}
			if claim.RowsAffected == 0 {
				return apperrors.New(apperrors.CodeGameFull, "this game already has a participant")
			}

			return s.createObligations(tx, g, userID, req.Description, res)
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("switch game resolved", "game_id", g.ID, "participant_id", userID,
		"both_win", res.BothWin, "both_lose", res.BothLose, "random_draw", res.RandomDraw)
	return s.reload(g.ID)
}

// createObligations hands the losing side's performance over to the
// dare lifecycle. Each obligation dare is created in progress, owned by
// the demand's author and performed by its loser.
func (s *GameService) createObligations(tx *gorm.DB, g *SwitchGame, participantID uuid.UUID, participantDemand string, res Resolution) error {
	if res.BothWin {
		return nil
	}

	expiresAt := time.Now().Add(s.ttl)
	obligation := func(demandOwner, performer uuid.UUID, description string) *dare.Dare {
		performerID := performer
		gameID := g.ID
		return &dare.Dare{
			ID:          uuid.New(),
			Status:      status.InProgress,
			Difficulty:  g.CreatorDifficulty,
			DareType:    status.TypeSwitch,
			Description: description,
			CreatorID:   demandOwner,
			PerformerID: &performerID,
			GameID:      &gameID,
			Tags:        g.Tags,
			ExpiresAt:   &expiresAt,
		}
	}

	if res.BothLose {
		// Rock against rock: each side performs the other's demand.
		if err := tx.Create(obligation(g.CreatorID, participantID, g.CreatorDescription)).Error; err != nil {
			return err
		}
		return tx.Create(obligation(participantID, g.CreatorID, participantDemand)).Error
	}

	if res.CreatorLoses {
		return tx.Create(obligation(participantID, g.CreatorID, participantDemand)).Error
	}
	return tx.Create(obligation(g.CreatorID, participantID, g.CreatorDescription)).Error
}

// Forfeit lets a losing party give up their obligation. The game and
// the obligation dare forfeit together, and the forfeiter's creation
// cooldown starts.
func (s *GameService) Forfeit(ctx context.Context, userID uuid.UUID, gameID uuid.UUID) (*SwitchGame, error) {
	g, err := s.reload(gameID)
	if err != nil {
		return nil, err
	}
	if !g.Owes(userID) {
		return nil, apperrors.Forbidden("only a losing party can forfeit")
	}

	next, ok := status.GameNext(g.Status, status.EventChickenOut)
	if !ok {
		return nil, apperrors.InvalidTransition(string(g.Status), string(status.EventChickenOut))
	}

	prev := g.Status
	err = s.critical.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&SwitchGame{}).Where("id = ? AND status = ?", g.ID, prev).
				Update("status", next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.InvalidTransition(string(prev), string(status.EventChickenOut))
			}

			err := tx.Model(&dare.Dare{}).
				Where("game_id = ? AND performer_id = ? AND status IN ?",
					g.ID, userID, status.OpenStatuses()).
				Update("status", status.Forfeited).Error
			if err != nil {
				return err
			}

			return s.admission.StartCooldown(tx, userID)
		})
	})
	if err != nil {
		return nil, err
	}

	slog.Info("switch game forfeited", "game_id", g.ID, "user_id", userID)
	return s.reload(g.ID)
}

// Delete removes an unjoined game. Creator only.
func (s *GameService) Delete(ctx context.Context, userID uuid.UUID, gameID uuid.UUID) error {
	g, err := s.reload(gameID)
	if err != nil {
		return err
	}
	if userID != g.CreatorID {
		return apperrors.Forbidden("only the creator can delete a game")
	}

	next, ok := status.GameNext(g.Status, status.EventDelete)
	if !ok {
		return apperrors.InvalidTransition(string(g.Status), string(status.EventDelete))
	}

	prev := g.Status
	return s.critical.Run(ctx, func(ctx context.Context) error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&SwitchGame{}).Where("id = ? AND status = ? AND participant_id IS NULL", g.ID, prev).
				Update("status", next)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperrors.New(apperrors.CodeGameFull, "this game already has a participant")
			}
			return tx.Delete(&SwitchGame{}, "id = ?", g.ID).Error
		})
	})
}

func (s *GameService) reload(id uuid.UUID) (*SwitchGame, error) {
	var g SwitchGame
	if err := s.db.First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("game not found")
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}
	return &g, nil
}
