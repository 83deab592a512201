package test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"tasktracker/configs"
	"tasktracker/internal/api/v1/handlers"
	"tasktracker/internal/config"
	"tasktracker/internal/middleware"
	"tasktracker/internal/repository"
	"tasktracker/pkg/database"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/storage"
)

// FakeStore keeps blobs in memory so photo tests run without a MinIO
// instance. Fail makes every Put return ErrStorage.
type FakeStore struct {
	Mu      sync.Mutex
	Objects map[string][]byte
	Fail    bool
}

func NewFakeStore() *FakeStore {
	return &FakeStore{Objects: make(map[string][]byte)}
}

func (f *FakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if f.Fail {
		return "", storage.ErrStorage
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.Objects[key] = data
	return fmt.Sprintf("http://fake:9000/task_photo/%s", key), nil
}

func (f *FakeStore) Delete(ctx context.Context, key string) error {
	f.Mu.Lock()
	defer f.Mu.Unlock()
	delete(f.Objects, key)
	return nil
}

// TestStore is the store installed for the whole test run.
var TestStore *FakeStore

func connectDBTest(cfg configs.Config) *sql.DB {
	psqlconn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBNameTest)
	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	return db
}

func TestMain(m *testing.M) {
	logger.InitLoggers()
	defer logger.SyncLoggers()

	// Keep LoadConfig quiet during tests
	os.Setenv("GO_ENV", "test")

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			logger.SystemLogger.Info("No .env file found, using default values")
		}
	}

	cfg := configs.LoadConfig()
	config.DB = connectDBTest(cfg)
	defer config.DB.Close()

	repository.CreateTableIfNotExists(config.DB)

	config.RedisClient = database.ConnectRedis(cfg)
	defer config.RedisClient.Close()

	TestStore = NewFakeStore()
	config.Store = TestStore

	code := m.Run()

	repository.DeleteAllTable(config.DB)

	os.Exit(code)
}

// CreateTestApp wires up the Fiber app with the routes under test.
func CreateTestApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.ErrorHandler())

	app.Post("/register", handlers.Register)
	app.Post("/token", handlers.IssueToken)

	taskRoutes := app.Group("/tasks", middleware.UseToken)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)
	taskRoutes.Post("/:id/photos/", handlers.UploadPhoto)
	taskRoutes.Get("/:id/photos/", handlers.ListPhotos)

	return app
}

// RegisterAndLogin creates a fresh user and returns a bearer token for it.
// The login goes through the form-encoded /token endpoint.
func RegisterAndLogin(app *fiber.App, t *testing.T) (string, string) {
	t.Helper()

	uniqueUser := fmt.Sprintf("testuser_%d", time.Now().UnixNano())
	regBody := map[string]string{
		"username": uniqueUser,
		"email":    uniqueUser + "@example.com",
		"password": "secret123",
	}
	regJSON, _ := json.Marshal(regBody)
	regReq := httptest.NewRequest("POST", "/register", bytes.NewReader(regJSON))
	regReq.Header.Set("Content-Type", "application/json")
	regResp, err := app.Test(regReq)
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	defer regResp.Body.Close()
	if regResp.StatusCode != 201 {
		t.Fatalf("Expected status 201 from register, got %d", regResp.StatusCode)
	}

	form := url.Values{}
	form.Set("username", uniqueUser)
	form.Set("password", "secret123")
	tokenReq := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	tokenReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	tokenResp, err := app.Test(tokenReq)
	if err != nil {
		t.Fatalf("Token request error: %v", err)
	}
	defer tokenResp.Body.Close()
	if tokenResp.StatusCode != 200 {
		t.Fatalf("Expected status 200 from /token, got %d", tokenResp.StatusCode)
	}

	var tokenResult map[string]interface{}
	if err := json.NewDecoder(tokenResp.Body).Decode(&tokenResult); err != nil {
		t.Fatalf("Error decoding token response: %v", err)
	}
	accessToken, ok := tokenResult["access_token"].(string)
	if !ok || accessToken == "" {
		t.Fatalf("Expected access_token in token response")
	}
	if tokenResult["token_type"] != "bearer" {
		t.Fatalf("Expected token_type bearer, got %v", tokenResult["token_type"])
	}

	return accessToken, uniqueUser
}

// CreateTestTask creates a task through the API and returns its id.
func CreateTestTask(app *fiber.App, t *testing.T, token string, body map[string]interface{}) int {
	t.Helper()

	taskJSON, _ := json.Marshal(body)
	taskReq := httptest.NewRequest("POST", "/tasks/", bytes.NewReader(taskJSON))
	taskReq.Header.Set("Content-Type", "application/json")
	taskReq.Header.Set("Authorization", "Bearer "+token)
	taskResp, err := app.Test(taskReq)
	if err != nil {
		t.Fatalf("CreateTask error: %v", err)
	}
	defer taskResp.Body.Close()
	if taskResp.StatusCode != 201 {
		t.Fatalf("Expected status 201 from create task, got %d", taskResp.StatusCode)
	}

	var taskResult map[string]interface{}
	if err := json.NewDecoder(taskResp.Body).Decode(&taskResult); err != nil {
		t.Fatalf("Error decoding create task response: %v", err)
	}
	data, ok := taskResult["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected data field in create task response")
	}
	return int(data["id"].(float64))
}
