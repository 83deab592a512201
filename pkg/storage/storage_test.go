package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewObjectKeyKeepsExtension(t *testing.T) {
	key := NewObjectKey("holiday photo.JPG")
	assert.True(t, strings.HasSuffix(key, ".JPG"))
}

func TestNewObjectKeyNoExtension(t *testing.T) {
	key := NewObjectKey("README")
	assert.NotContains(t, key, ".")
	assert.NotEmpty(t, key)
}

func TestNewObjectKeyDistinct(t *testing.T) {
	a := NewObjectKey("same.png")
	b := NewObjectKey("same.png")
	assert.NotEqual(t, a, b)
}
