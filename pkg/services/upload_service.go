package services

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"indexo/pkg/models"
)

// ErrUnauthorized is returned when an upload carries the wrong secret key
var ErrUnauthorized = errors.New("invalid upload token")

// Upload stores a new index document and returns the stored record
func (s *Service) Upload(ctx context.Context, upload models.Upload) (models.IndexRecord, error) {
	rec, err := s.store.Put(ctx, upload)
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("store upload: %w", err)
	}
	s.log.Info("Index uploaded",
		zap.String("id", rec.ID),
		zap.String("project", rec.ProjectID),
		zap.String("file", rec.FileName),
		zap.Int("bytes", len(rec.IndexData)))
	return rec, nil
}

// UploadFile stores the index document in path. An empty name falls back to
// the file's base name without extension.
func (s *Service) UploadFile(ctx context.Context, path string, meta models.Upload) (models.IndexRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("read %s: %w", path, err)
	}
	if !json.Valid(data) {
		return models.IndexRecord{}, fmt.Errorf("%s is not a JSON document", path)
	}

	meta.IndexData = data
	if meta.FileName == "" {
		meta.FileName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s.Upload(ctx, meta)
}

// CheckToken reports whether token grants upload access under secretKey. An
// empty secretKey leaves uploads open.
func CheckToken(secretKey, token string) error {
	if secretKey == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secretKey)) == 1 {
		return nil
	}
	return ErrUnauthorized
}
