package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"
)

// UseToken resolves the bearer token to a user before any task or photo
// handler runs. Bad signature, expiry, and unknown users all collapse to 401.
func UseToken(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "No token provided",
			"success": false,
			"status":  401,
		})
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid token format",
			"success": false,
			"status":  401,
		})
	}

	username, err := token.Resolve(parts[1], config.SecretKey)
	if err != nil {
		logger.SecurityLogger.Warn("Token rejected", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
			"success": false,
			"status":  401,
		})
	}

	var user models.User
	err = config.DB.QueryRow(
		"SELECT id, username, email FROM users WHERE username = $1",
		username).Scan(&user.ID, &user.Username, &user.Email)
	if err != nil {
		logger.SecurityLogger.Warn("Token user not found", zap.String("username", username))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid or expired token",
			"success": false,
			"status":  401,
		})
	}

	c.Locals("userID", user.ID)
	c.Locals("username", user.Username)
	return c.Next()
}
