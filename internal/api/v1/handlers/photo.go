package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tasktracker/internal/config"
	"tasktracker/internal/models"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/storage"
)

// Photo handlers

// UploadPhoto streams a multipart file to the object store under a fresh
// key and records the photo against the task. The task existence check runs
// before any storage I/O so a bad task id never leaves an orphaned blob.
func UploadPhoto(c *fiber.Ctx) error {
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

	file, err := c.FormFile("file")
	if err != nil {
		logger.ErrorLogger.Error("Missing file in photo upload", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "A file is required",
			"success": false,
			"status":  422,
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.ErrorLogger.Error("Error opening uploaded file", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Error reading uploaded file",
			"success": false,
			"status":  422,
		})
	}
	defer src.Close()

	key := storage.NewObjectKey(file.Filename)
	url, err := config.Store.Put(config.Ctx, key, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		logger.ErrorLogger.Error("Error storing photo", zap.String("key", key), zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Error storing photo",
			"success": false,
			"status":  422,
		})
	}

	// Metadata is written only after the blob is safely stored
	var photoID int
	err = config.DB.QueryRow(
		"INSERT INTO photos (filename, url, task_id) VALUES ($1, $2, $3) RETURNING id",
		key, url, taskID).Scan(&photoID)
	if err != nil {
		logger.ErrorLogger.Error("Error saving photo record", zap.Error(err))
		if delErr := config.Store.Delete(config.Ctx, key); delErr != nil {
			logger.ErrorLogger.Error("Error cleaning up photo blob", zap.String("key", key), zap.Error(delErr))
		}
		return c.Status(500).JSON(fiber.Map{
			"message": "Error saving photo record",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Photo uploaded", zap.Int("task_id", taskID), zap.String("filename", key))
	return c.Status(201).JSON(fiber.Map{
		"message": "Photo uploaded successfully",
		"success": true,
		"status":  201,
		"data": fiber.Map{
			"id":       photoID,
			"filename": key,
			"url":      url,
		},
	})
}

func ListPhotos(c *fiber.Ctx) error {
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

	rows, err := config.DB.Query("SELECT id, url FROM photos WHERE task_id = $1 ORDER BY id", taskID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching photos", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching photos",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	photos := []models.PhotoRef{}
	for rows.Next() {
		var photo models.PhotoRef
		if err := rows.Scan(&photo.ID, &photo.URL); err != nil {
			logger.ErrorLogger.Error("Error scanning photos", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning photos",
				"success": false,
				"status":  500,
			})
		}
		photos = append(photos, photo)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over photos", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating over photos",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Photos fetched", zap.Int("task_id", taskID), zap.Int("count", len(photos)))
	return c.JSON(fiber.Map{
		"message": "Photos fetched successfully",
		"success": true,
		"status":  200,
		"data":    photos,
	})
}
