// Package store persists uploaded index documents.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"indexo/pkg/models"
)

// ErrNotFound is returned when no record has the requested id
var ErrNotFound = errors.New("index file not found")

// ErrEmptyUpload is returned when an upload carries no index data
var ErrEmptyUpload = errors.New("upload has no index data")

// IndexStore is the record store behind the gallery
type IndexStore interface {
	Get(ctx context.Context, id string) (models.IndexRecord, error)
	List(ctx context.Context) ([]models.IndexSummary, error)
	Put(ctx context.Context, upload models.Upload) (models.IndexRecord, error)
	Close() error
}

// newRecord assigns an id and upload time to an upload
func newRecord(upload models.Upload, now time.Time) (models.IndexRecord, error) {
	data := json.RawMessage(strings.TrimSpace(string(upload.IndexData)))
	if len(data) == 0 || string(data) == "null" {
		return models.IndexRecord{}, ErrEmptyUpload
	}
	if !json.Valid(data) {
		return models.IndexRecord{}, fmt.Errorf("upload index data is not valid JSON")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("generate id: %w", err)
	}

	return models.IndexRecord{
		ID:           id.String(),
		ProjectID:    upload.ProjectID,
		FigmaFileKey: upload.FigmaFileKey,
		FileName:     upload.FileName,
		IndexData:    data,
		UploadedAt:   now.UTC(),
	}, nil
}

// sortNewestFirst orders summaries by upload time, newest first
func sortNewestFirst(summaries []models.IndexSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].UploadedAt.After(summaries[j].UploadedAt)
	})
}
