package middleware

import (
	"strings"

	"github.com/clepigdo/Simig-Webapps/internal/repository"
	"github.com/clepigdo/Simig-Webapps/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAuth validates the Bearer access token and loads the caller into
// the request context.
func RequireAuth(userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}
		if claims.TokenType != jwt.TypeAccess {
			return c.Status(401).JSON(fiber.Map{"error": "Access token required"})
		}

		user, err := userRepo.FindByID(claims.UserID)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}

		// The role comes from the DB row, not the token, so demotions take
		// effect without waiting for token expiry
		c.Locals("user_id", user.ID.String())
		c.Locals("username", user.Username)
		c.Locals("user_role", user.Role)

		return c.Next()
	}
}

// RequireRole gates an endpoint on the caller's role. This is the single
// capability check used by every role-protected operation.
func RequireRole(requiredRole string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("user_role").(string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}

		if role != requiredRole {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredRole + "' role",
			})
		}

		return c.Next()
	}
}
