package routes

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/magcentre/object-identity/internal/handlers"
	"github.com/magcentre/object-identity/internal/metrics"
	"github.com/magcentre/object-identity/internal/middleware"
	"github.com/magcentre/object-identity/internal/token"
	"github.com/magcentre/object-identity/internal/utils"
)

// Setup registers every route. The OTP request endpoint is rate limited per
// mobile number; profile and directory routes sit behind the access token
// guard.
func Setup(app *fiber.App, h *handlers.Handler, mgr *token.Manager, otpLimiter *middleware.RateLimiter) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/request-otp", otpLimiter.ByKey(mobileKey), h.RequestOTP)
	auth.Post("/verify-otp", h.VerifyOTP)
	auth.Post("/logout", h.Logout)

	guard := middleware.JWTAuth(mgr)
	users := api.Group("/users", guard)
	users.Get("/profile", h.GetProfile)
	users.Put("/profile", h.UpdateProfile)
	users.Post("/id2object", h.ID2Object)
	users.Get("/search", h.Search)
}

// mobileKey derives the rate limit key from the request body, falling back
// to the client IP when the body carries no mobile number.
func mobileKey(c *fiber.Ctx) string {
	var body struct {
		Mobile string `json:"mobile"`
	}
	if err := json.Unmarshal(c.Body(), &body); err == nil && body.Mobile != "" {
		return utils.NormalizeMobile(body.Mobile)
	}
	return c.IP()
}
