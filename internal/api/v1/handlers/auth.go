package handlers

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/config"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"
)

// Auth handlers

func Register(c *fiber.Ctx) error {
	type RegisterRequest struct {
		Username string `json:"username" validate:"required,excludesall=@?"`
		Email    string `json:"email" validate:"omitempty,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during register", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error hashing password",
			"success": false,
			"status":  500,
		})
	}

	// Email is optional and stored as NULL when missing
	email := sql.NullString{String: req.Email, Valid: req.Email != ""}

	var userID int
	err = config.DB.QueryRow(
		"INSERT INTO users (username, email, hashed_password) VALUES ($1, $2, $3) RETURNING id",
		req.Username, email, string(hashedPassword)).Scan(&userID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				logger.SecurityLogger.Warn("Duplicate username or email", zap.String("username", req.Username))
				return c.Status(409).JSON(fiber.Map{
					"message": "Username or email already exists",
					"success": false,
					"status":  409,
				})
			}
		}
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error creating user",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("User registered successfully", zap.Int("userID", userID))
	return c.Status(201).JSON(fiber.Map{
		"message": "User created successfully",
		"success": true,
		"status":  201,
		"data": fiber.Map{
			"id": userID,
		},
	})
}

// IssueToken verifies the username/password pair against the credential
// store and returns a signed bearer token. Accepts both form-encoded and
// JSON bodies.
func IssueToken(c *fiber.Ctx) error {
	type LoginRequest struct {
		Username string `json:"username" form:"username" validate:"required"`
		Password string `json:"password" form:"password" validate:"required"`
	}

	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in token issue", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during token issue", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	var user struct {
		ID             int
		Username       string
		HashedPassword string
	}

	err := config.DB.QueryRow(
		"SELECT id, username, hashed_password FROM users WHERE username = $1",
		req.Username).Scan(&user.ID, &user.Username, &user.HashedPassword)
	if err != nil {
		logger.SecurityLogger.Warn("User not found", zap.String("username", req.Username))
		return c.Status(401).JSON(fiber.Map{
			"message": "Invalid credentials",
			"success": false,
			"status":  401,
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		logger.SecurityLogger.Warn("Invalid password", zap.String("username", req.Username))
		return c.Status(401).JSON(fiber.Map{
			"message": "Invalid credentials",
			"success": false,
			"status":  401,
		})
	}

	tokenString, err := token.Sign(user.Username, config.SecretKey, config.TokenTTL)
	if err != nil {
		logger.ErrorLogger.Error("Error generating token", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error generating token",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Token issued", zap.Int("user_id", user.ID))
	return c.JSON(fiber.Map{
		"access_token": tokenString,
		"token_type":   "bearer",
	})
}
