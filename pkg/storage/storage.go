package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrStorage wraps any failure talking to the blob store.
var ErrStorage = errors.New("object storage error")

// ObjectStore is the narrow surface the handlers need from the blob store.
type ObjectStore interface {
	// Put uploads the object and returns its retrieval URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewObjectKey builds a collision-resistant storage key from a random UUID
// plus the original file's extension. A file without an extension yields a
// bare UUID key.
func NewObjectKey(originalFilename string) string {
	return fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(originalFilename))
}
