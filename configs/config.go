package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort        int
	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	DBNameTest     string
	RedisHost      string
	RedisPort      int
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	TokenSecret    string
	TokenTTLMin    int
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		// Keep test output quiet
		if os.Getenv("GO_ENV") != "test" {
			log.Println("No .env file found, using default values")
		}
	}

	return Config{
		AppPort:        envIntOr("APP_PORT", 8031),
		DBHost:         envOr("DB_HOST", "localhost"),
		DBPort:         envIntOr("DB_PORT", 5432),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBNameTest:     os.Getenv("DB_NAME_TEST"),
		RedisHost:      envOr("REDIS_HOST", "localhost"),
		RedisPort:      envIntOr("REDIS_PORT", 6379),
		MinioEndpoint:  envOr("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: envOr("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey: envOr("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:    envOr("MINIO_BUCKET", "task_photo"),
		TokenSecret:    envOr("TOKEN_SECRET", "secret"),
		TokenTTLMin:    envIntOr("TOKEN_TTL_MINUTES", 60),
	}
}
