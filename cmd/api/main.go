package main

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"tasktracker/configs"
	v1 "tasktracker/internal/api/v1"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository"
	myws "tasktracker/internal/websocket"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/storage"
)

func main() {
	logger.InitLoggers()
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	cfg := configs.LoadConfig()
	config.SecretKey = []byte(cfg.TokenSecret)
	config.TokenTTL = time.Duration(cfg.TokenTTLMin) * time.Minute

	config.DB = database.ConnectDB(cfg)
	defer config.DB.Close()
	logger.SystemLogger.Info("Database Connected")

	repository.CreateTableIfNotExists(config.DB)

	config.RedisClient = database.ConnectRedis(cfg)
	defer config.RedisClient.Close()

	config.Store = storage.ConnectMinio(cfg)
	logger.SystemLogger.Info("Object storage connected", zap.String("bucket", cfg.MinioBucket))

	app := fiber.New()

	// Middleware
	app.Use(middleware.ErrorHandler())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))

	v1.RegisterRoutes(app)

	// Task event stream
	go myws.Events.Run()
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		client := &myws.Client{Conn: c}
		myws.Events.Register <- client
		defer func() {
			myws.Events.Unregister <- client
		}()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	logger.SystemLogger.Info("Application ready", zap.Int("port", cfg.AppPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.AppPort)); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}
