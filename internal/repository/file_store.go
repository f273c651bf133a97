package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"catalog-api/internal/model"

	"github.com/rs/zerolog"
)

// fileStore keeps each collection as a JSON array in its own file.
// It has no locking; concurrent writers race and the last rename wins.
type fileStore struct {
	productsPath string
	usersPath    string
	logger       zerolog.Logger
}

// NewFileStore creates the local fallback tier.
func NewFileStore(productsPath, usersPath string, logger zerolog.Logger) Backend {
	return &fileStore{
		productsPath: productsPath,
		usersPath:    usersPath,
		logger:       logger.With().Str("repository", "file").Logger(),
	}
}

func (s *fileStore) Name() string {
	return "file"
}

// LoadProducts never fails: a missing, unreadable or corrupt file yields an
// empty collection and the problem is only logged.
func (s *fileStore) LoadProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if !s.loadAll(s.productsPath, &products) || products == nil {
		return []model.Product{}, nil
	}
	return products, nil
}

func (s *fileStore) StoreProducts(ctx context.Context, products []model.Product) error {
	return s.saveAll(s.productsPath, products)
}

func (s *fileStore) ReplaceProducts(ctx context.Context, products []model.Product) error {
	return s.saveAll(s.productsPath, products)
}

// LoadUsers has the same never-fail contract as LoadProducts.
func (s *fileStore) LoadUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if !s.loadAll(s.usersPath, &users) || users == nil {
		return []model.User{}, nil
	}
	return users, nil
}

func (s *fileStore) StoreUsers(ctx context.Context, users []model.User) error {
	return s.saveAll(s.usersPath, users)
}

// loadAll decodes the file at path into dst and reports whether it succeeded.
// dst must be a fresh value: a failed decode may leave it partly filled, and
// callers discard it in that case.
func (s *fileStore) loadAll(path string, dst interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug().Str("file", path).Msg("collection file does not exist yet")
			return false
		}
		s.logger.Error().Err(err).Str("file", path).Msg("failed to read collection file")
		return false
	}

	if len(data) == 0 {
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("collection file is not a valid JSON array")
		return false
	}
	return true
}

// saveAll serialises the whole collection and swaps it in with a rename.
func (s *fileStore) saveAll(path string, records interface{}) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", dir).Msg("failed to create data directory")
		return fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to create temporary file")
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions on %s: %w", tmpPath, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		s.logger.Error().Err(err).Str("file", path).Msg("failed to write collection file")
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		s.logger.Error().Err(err).Str("file", path).Msg("failed to replace collection file")
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	s.logger.Debug().Str("file", path).Msg("collection saved")

	return nil
}
