package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
	ws "tasktracker/internal/websocket"
	"tasktracker/pkg/logger"
)

// Task handlers

// validStatus reports whether status is one of the known task states:
// assigned, resolved, closed, feedback, rejected.
func validStatus(status string) bool {
	switch status {
	case "assigned", "resolved", "closed", "feedback", "rejected":
		return true
	default:
		return false
	}
}

// scanTask reads one full task row.
func scanTask(row interface{ Scan(...interface{}) error }) (models.Task, error) {
	var task models.Task
	var description sql.NullString
	err := row.Scan(&task.ID, &task.Title, &description, &task.Complete, &task.Status, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return task, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	return task, nil
}

func fetchTask(taskID int) (models.Task, error) {
	row := config.DB.QueryRow(
		"SELECT id, title, description, complete, status, created_at, updated_at FROM tasks WHERE id = $1",
		taskID)
	return scanTask(row)
}

func cacheTask(task models.Task) {
	cacheKey := fmt.Sprintf("task:%d", task.ID)
	taskJSON, err := json.Marshal(task)
	if err == nil {
		config.RedisClient.SetEX(config.Ctx, cacheKey, taskJSON, time.Hour)
	}
}

func CreateTask(c *fiber.Ctx) error {
	type TaskRequest struct {
		Title       string  `json:"title" validate:"required"`
		Description *string `json:"description"`
		Status      string  `json:"status" validate:"omitempty,oneof=assigned resolved closed feedback rejected"`
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if err := config.Validate.Struct(req); err != nil {
		logger.ErrorLogger.Error("Validation error in create task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  400,
		})
	}

	if req.Status == "" {
		req.Status = "assigned"
	}

	row := config.DB.QueryRow(
		`INSERT INTO tasks (title, description, status, complete) VALUES ($1, $2, $3, FALSE)
		 RETURNING id, title, description, complete, status, created_at, updated_at`,
		req.Title, req.Description, req.Status)
	task, err := scanTask(row)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error creating task",
			"success": false,
			"status":  500,
		})
	}

	cacheTask(task)
	ws.Publish("created", task.ID)

	logger.AuditLogger.Info("Task created successfully", zap.Int("task_id", task.ID))
	return c.Status(201).JSON(fiber.Map{
		"message": "Task created successfully",
		"success": true,
		"status":  201,
		"data":    task,
	})
}

func ListTasks(c *fiber.Ctx) error {
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 10)
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	// Creation order; an out-of-range skip yields an empty list, not an error
	rows, err := config.DB.Query(
		"SELECT id, title, description, complete, status, created_at, updated_at FROM tasks ORDER BY id OFFSET $1 LIMIT $2",
		skip, limit)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching tasks",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning tasks", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning tasks",
				"success": false,
				"status":  500,
			})
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over tasks", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating over tasks",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Tasks fetched successfully", zap.Int("count", len(tasks)))
	return c.JSON(fiber.Map{
		"message": "Tasks fetched successfully",
		"success": true,
		"status":  200,
		"data":    tasks,
	})
}

func GetTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	// Serve from cache when possible
	cacheKey := fmt.Sprintf("task:%d", taskID)
	if cached, err := config.RedisClient.Get(config.Ctx, cacheKey).Result(); err == nil {
		var task models.Task
		if err = json.Unmarshal([]byte(cached), &task); err == nil {
			logger.AuditLogger.Info("Task found (from cache)", zap.Int("task_id", taskID))
			return c.JSON(fiber.Map{
				"message": "Task found (from cache)",
				"success": true,
				"status":  200,
				"data":    task,
			})
		}
	}

	task, err := fetchTask(taskID)
	if err != nil {
		logger.ErrorLogger.Error("Task not found", zap.Int("task_id", taskID))
		return c.Status(404).JSON(fiber.Map{
			"message": "Task not found",
			"success": false,
			"status":  404,
		})
	}

	cacheTask(task)

	logger.AuditLogger.Info("Task found", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"message": "Task found",
		"success": true,
		"status":  200,
		"data":    task,
	})
}

func UpdateTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	task, err := fetchTask(taskID)
	if err != nil {
		logger.ErrorLogger.Error("Task not found", zap.Int("task_id", taskID))
		return c.Status(404).JSON(fiber.Map{
			"message": "Task not found",
			"success": false,
			"status":  404,
		})
	}

	// Each field is a pointer so that absent fields are left untouched
	type UpdateTaskRequest struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Complete    *bool   `json:"complete"`
		Status      *string `json:"status"`
	}

	var req UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in update task", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  400,
		})
	}

	if req.Status != nil && !validStatus(*req.Status) {
		logger.ErrorLogger.Error("Invalid status in update task", zap.String("status", *req.Status))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid status",
			"success": false,
			"status":  400,
		})
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Complete != nil {
		task.Complete = *req.Complete
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	row := config.DB.QueryRow(
		`UPDATE tasks SET title = $1, description = $2, complete = $3, status = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5
		 RETURNING id, title, description, complete, status, created_at, updated_at`,
		task.Title, task.Description, task.Complete, task.Status, taskID)
	updatedTask, err := scanTask(row)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error updating task",
			"success": false,
			"status":  500,
		})
	}

	// Refresh the cache entry
	cacheKey := fmt.Sprintf("task:%d", taskID)
	config.RedisClient.Del(config.Ctx, cacheKey)
	cacheTask(updatedTask)
	ws.Publish("updated", taskID)

	logger.AuditLogger.Info("Task updated", zap.Int("task_id", taskID))
	return c.Status(200).JSON(fiber.Map{
		"message": "Task updated successfully",
		"success": true,
		"status":  200,
		"data":    updatedTask,
	})
}

// DeleteTask removes the task together with its photo records and their
// stored blobs. Blob deletion is best-effort: the metadata row is the source
// of truth and an unreachable store must not block the delete.
func DeleteTask(c *fiber.Ctx) error {
	taskID, err := c.ParamsInt("id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid task ID", zap.Error(err))
		return c.Status(400).JSON(fiber.Map{
			"message": "Invalid task ID",
			"success": false,
			"status":  400,
		})
	}

	if _, err := fetchTask(taskID); err != nil {
		logger.ErrorLogger.Error("Task not found", zap.Int("task_id", taskID))
		return c.Status(404).JSON(fiber.Map{
			"message": "Task not found",
			"success": false,
			"status":  404,
		})
	}

	rows, err := config.DB.Query("SELECT filename FROM photos WHERE task_id = $1", taskID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching task photos", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error deleting task",
			"success": false,
			"status":  500,
		})
	}
	filenames := []string{}
	for rows.Next() {
		var filename string
		if err := rows.Scan(&filename); err != nil {
			rows.Close()
			logger.ErrorLogger.Error("Error scanning task photos", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error deleting task",
				"success": false,
				"status":  500,
			})
		}
		filenames = append(filenames, filename)
	}
	rows.Close()

	for _, filename := range filenames {
		if err := config.Store.Delete(config.Ctx, filename); err != nil {
			logger.ErrorLogger.Error("Error deleting photo blob", zap.String("filename", filename), zap.Error(err))
		}
	}

	if _, err := config.DB.Exec("DELETE FROM photos WHERE task_id = $1", taskID); err != nil {
		logger.ErrorLogger.Error("Error deleting task photos", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error deleting task",
			"success": false,
			"status":  500,
		})
	}

	if _, err := config.DB.Exec("DELETE FROM tasks WHERE id = $1", taskID); err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error deleting task",
			"success": false,
			"status":  500,
		})
	}

	cacheKey := fmt.Sprintf("task:%d", taskID)
	config.RedisClient.Del(config.Ctx, cacheKey)
	ws.Publish("deleted", taskID)

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID))
	return c.Status(200).JSON(fiber.Map{
		"message": "Task deleted successfully",
		"success": true,
		"status":  200,
	})
}
