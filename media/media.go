// Package media stores uploaded post images.
package media

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const PostsPrefix = "posts"

// Store keeps uploaded files under keys of the form "<prefix>/<name>".
type Store interface {
	Save(ctx context.Context, prefix, filename, contentType string, r io.Reader, size int64) (key string, err error)
	URL(key string) string
	Delete(ctx context.Context, key string) error
}

// NewKey builds a unique object key that keeps the original file extension.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, uuid.New().String()+ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
