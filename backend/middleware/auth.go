package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/katuripu/katuripu/backend/config"
	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

// AuthMiddleware requires a valid JWT in the Authorization header and stores
// the caller's id and role in the request locals.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return utils.Unauthorized(c, "missing token")
		}
		claims, err := utils.ParseJWTToken(token, cfg.JWTSecret)
		if err != nil {
			return utils.Unauthorized(c, "invalid or expired token")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// OptionalAuth identifies the caller when a token is sent. Anonymous
// requests pass through; a bad token is still rejected.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := utils.BearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}
		claims, err := utils.ParseJWTToken(token, cfg.JWTSecret)
		if err != nil {
			return utils.Unauthorized(c, "invalid or expired token")
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalRole, claims.Role)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != models.RoleAdmin {
			return utils.Forbidden(c, "admin access required")
		}
		return c.Next()
	}
}

func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}

func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalRole).(string)
	return role
}
