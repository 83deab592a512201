package config

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"

	"tasktracker/pkg/storage"
)

var (
	// Shared dependencies wired up in main (and in the test harness)
	DB          *sql.DB
	SecretKey   = []byte("secret")
	TokenTTL    = time.Hour
	Validate    = validator.New()
	Ctx         = context.Background()
	RedisClient *redis.Client
	Store       storage.ObjectStore
)
