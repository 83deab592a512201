package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID             int            `json:"id"`
	Username       string         `json:"username"`
	Email          sql.NullString `json:"email"`
	HashedPassword string         `json:"-"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Complete    bool      `json:"complete"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Photo struct {
	ID       int    `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	TaskID   *int   `json:"task_id"`
}

// PhotoRef is the reduced shape returned by the photo listing endpoint.
type PhotoRef struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}
