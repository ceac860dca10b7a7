package switchgame

import (
	"encoding/json"

	"github.com/daretide/daretide-backend/internal/apps"
	"github.com/daretide/daretide-backend/internal/dto"
	"github.com/daretide/daretide-backend/internal/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type GameHandler struct {
	gameService *GameService
}

func NewGameHandler(gameService *GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

// CreateGame handles POST /games.
func (h *GameHandler) CreateGame(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req CreateGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	g, err := h.gameService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(h.toResponse(g, userID))
}

// GetGame handles GET /games/:id.
func (h *GameHandler) GetGame(c *fiber.Ctx) error {
	userID, gameID, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	g, err := h.gameService.Get(gameID)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(h.toResponse(g, userID))
}

// ListGames handles GET /games - joinable games, paginated.
func (h *GameHandler) ListGames(c *fiber.Ctx) error {
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

	games, total, err := h.gameService.ListOpen(limit, (page-1)*limit)
	if err != nil {
		return apps.RespondError(c, err)
	}

	responses := make([]GameResponse, len(games))
	for i := range games {
		responses[i] = h.toResponse(&games[i], userID)
	}

	return c.JSON(GameListResponse{
		Games: responses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// JoinGame handles POST /games/:id/join - claim, resolve, assign.
func (h *GameHandler) JoinGame(c *fiber.Ctx) error {
	userID, gameID, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	var req JoinGameRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	g, err := h.gameService.Join(c.UserContext(), userID, gameID, &req)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(h.toResponse(g, userID))
}

// ForfeitGame handles POST /games/:id/forfeit.
func (h *GameHandler) ForfeitGame(c *fiber.Ctx) error {
	userID, gameID, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	g, err := h.gameService.Forfeit(c.UserContext(), userID, gameID)
	if err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(h.toResponse(g, userID))
}

// DeleteGame handles DELETE /games/:id.
func (h *GameHandler) DeleteGame(c *fiber.Ctx) error {
	userID, gameID, ok := h.authAndID(c)
	if !ok {
		return nil
	}

	if err := h.gameService.Delete(c.UserContext(), userID, gameID); err != nil {
		return apps.RespondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Game deleted"})
}

func (h *GameHandler) authAndID(c *fiber.Ctx) (uuid.UUID, uuid.UUID, bool) {
	userID, err := identity.UserID(c)
	if err != nil {
		c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
		return uuid.Nil, uuid.Nil, false
	}
	gameID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid game ID",
		})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, gameID, true
}

// toResponse applies the concealment rules: before resolution nobody
// sees a move or the creator's demand; after resolution each party sees
// both demands and moves, outsiders still see neither.
func (h *GameHandler) toResponse(g *SwitchGame, viewerID uuid.UUID) GameResponse {
	resp := GameResponse{
		ID:                g.ID.String(),
		Status:            string(g.Status),
		CreatorID:         g.CreatorID.String(),
		CreatorDifficulty: string(g.CreatorDifficulty),
		BothWin:           g.BothWin,
		BothLose:          g.BothLose,
		RandomDraw:        g.RandomDraw,
		ExpiresAt:         g.ExpiresAt,
		CreatedAt:         g.CreatedAt,
	}

	if g.ParticipantID != nil {
		resp.ParticipantID = g.ParticipantID.String()
	}
	if g.WinnerID != nil {
		resp.WinnerID = g.WinnerID.String()
	}
	if g.LoserID != nil {
		resp.LoserID = g.LoserID.String()
	}

	var tags []string
	if err := json.Unmarshal(g.Tags, &tags); err == nil {
		resp.Tags = tags
	} else {
		resp.Tags = []string{}
	}

	if viewerID == g.CreatorID {
		resp.CreatorDescription = g.CreatorDescription
		resp.CreatorMove = g.CreatorMove
	}

	if g.Resolved() && g.IsParty(viewerID) {
		resp.CreatorDescription = g.CreatorDescription
		resp.CreatorMove = g.CreatorMove
		resp.ParticipantDescription = g.ParticipantDescription
		resp.ParticipantMove = g.ParticipantMove
	}

	return resp
}
