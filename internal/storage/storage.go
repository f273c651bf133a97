// Package storage persists uploaded images and returns URLs they can be fetched from.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ImageStore stores one uploaded image.
type ImageStore interface {
	// Put writes body under name and returns a URL the image can be fetched from.
	Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error)
}

// ObjectName builds a unique file name for an upload, keeping the extension
// of the original file name and using ".jpg" when it has none.
func ObjectName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if ext == "" || ext == "." {
		ext = ".jpg"
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), suffix, ext)
}
