package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	FCM      string `json:"fcm"`
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	res, err := h.auth.Login(c.Context(), req.Email, req.Password, req.FCM)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(res)
}

type refreshReq struct {
	Refresh string `json:"refresh" validate:"required"`
}

func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	res, err := h.auth.Refresh(c.Context(), req.Refresh)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(res)
}

type requestOTPReq struct {
	Mobile string `json:"mobile" validate:"required,min=10"`
}

func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	var req requestOTPReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	if err := h.auth.RequestOTP(c.Context(), req.Mobile); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "otp sent"})
}

type verifyOTPReq struct {
	Mobile string `json:"mobile" validate:"required,min=10"`
	OTP    string `json:"otp" validate:"required,len=6,numeric"`
}

func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	code, err := strconv.Atoi(req.OTP)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid otp"})
	}
	res, err := h.auth.VerifyOTP(c.Context(), req.Mobile, code)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(res)
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	var req refreshReq
	if ok, resp := h.parseAndValidate(c, &req); !ok {
		return resp
	}
	if err := h.auth.Logout(c.Context(), req.Refresh); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}
