package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/magcentre/object-identity/internal/apperr"
	"github.com/magcentre/object-identity/internal/services"
	"github.com/magcentre/object-identity/internal/utils"
)

// Handler exposes the service layer over HTTP. It only parses requests and
// maps error kinds to status codes; every rule lives below it.
type Handler struct {
	auth   services.AuthService
	users  services.UserService
	logger *zap.SugaredLogger
}

func NewHandler(auth services.AuthService, users services.UserService, logger *zap.SugaredLogger) *Handler {
	return &Handler{auth: auth, users: users, logger: logger}
}

// respondError translates an error kind into a response. System failures are
// logged with their cause and surfaced opaquely.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	msg := "internal server error"
	if errors.As(err, &e) {
		msg = e.Message
	}
	switch apperr.KindOf(err) {
	case apperr.KindParameter:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	case apperr.KindAuth:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
	case apperr.KindRateLimited:
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": msg})
	default:
		h.logger.Errorw("request failed", "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// parseAndValidate decodes the body and runs validator tags, answering 400
// with field details on failure. Returns false when the request was already
// answered.
func (h *Handler) parseAndValidate(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := utils.ValidateStruct(dst); err != nil {
		if fields := utils.FormatValidationErrors(err); fields != nil {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "validation failed", "fields": fields})
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return true, nil
}
