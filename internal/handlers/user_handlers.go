package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/magcentre/object-identity/internal/middleware"
	"github.com/magcentre/object-identity/internal/services"
)

func (h *Handler) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	pub, err := h.users.GetProfile(c.Context(), userID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pub)
}

type updateProfileReq struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password"`
	FCM       *string `json:"fcm"`
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	pub, err := h.users.UpdateProfile(c.Context(), userID, services.ProfileRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		FCMToken:  req.FCM,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(pub)
}

type id2objectReq struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

func (h *Handler) ID2Object(c *fiber.Ctx) error {
	var req id2objectReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	users, err := h.users.ID2Object(c.Context(), req.IDs)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *Handler) Search(c *fiber.Ctx) error {
	users, err := h.users.Search(c.Context(), c.Query("q"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"users": users})
}
