package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// fileStore implements ImageStore on the local file system.
type fileStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates a disk-backed image store writing into dir.
// Returned URLs are baseURL joined with the file name; the router serves
// dir under that path.
func NewFileStore(dir, baseURL string, logger zerolog.Logger) ImageStore {
	return &fileStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.With().Str("component", "image-file-store").Logger(),
	}
}

// Put writes the image to disk.
func (s *fileStore) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid image name %q", name)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", s.dir).Msg("failed to create image directory")
		return "", fmt.Errorf("failed to create image directory %s: %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to create image file")
		return "", fmt.Errorf("failed to create image file %s: %w", path, err)
	}

	written, err := io.Copy(file, body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		s.logger.Error().Err(err).Str("file", path).Msg("failed to write image file")
		return "", fmt.Errorf("failed to write image file %s: %w", path, err)
	}

	s.logger.Info().
		Str("file", path).
		Int64("bytes", written).
		Str("content_type", contentType).
		Msg("image stored on local disk")

	return s.baseURL + "/" + url.PathEscape(name), nil
}
