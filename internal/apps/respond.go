package apps

import (
	"errors"

	"github.com/daretide/daretide-backend/internal/apperrors"
	"github.com/daretide/daretide-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// RespondError translates a typed service error into the matching HTTP
// response. The code travels with the body so clients can branch on
// failure class instead of parsing messages.
func RespondError(c *fiber.Ctx, err error) error {
	var app *apperrors.AppError
	if errors.As(err, &app) {
		return c.Status(httpStatus(app.Code)).JSON(dto.CodedErrorResponse{
			Error:   true,
			Code:    string(app.Code),
			Message: app.Message,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func httpStatus(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeEmptyProof:
		return fiber.StatusBadRequest
	case apperrors.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case apperrors.CodeForbidden:
		return fiber.StatusForbidden
	case apperrors.CodeNotFound:
		return fiber.StatusNotFound
	case apperrors.CodeSlotLimit, apperrors.CodeCooldownActive,
		apperrors.CodeGameFull, apperrors.CodeInvalidTransition:
		return fiber.StatusConflict
	case apperrors.CodeRateLimited:
		return fiber.StatusTooManyRequests
	case apperrors.CodeUnavailable, apperrors.CodeTimeout, apperrors.CodeOperationFailed:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
