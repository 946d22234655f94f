package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/magcentre/object-identity/internal/models"
	"github.com/magcentre/object-identity/internal/token"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	LocalUserID = "userId"
	LocalRole   = "role"
)

// JWTAuth guards a route with a bearer access token. The token's declared
// type must be access; refresh tokens are never accepted here.
func JWTAuth(mgr *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization"})
		}
		claims, err := mgr.VerifyTyped(parts[1], models.TokenTypeAccess)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		c.Locals(LocalUserID, claims.Subject)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}
