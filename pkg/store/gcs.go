package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"indexo/pkg/models"
)

const gcsPrefix = "indexes/"

// GCSStore keeps one JSON object per record in a Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket *storage.BucketHandle
	log    *zap.Logger
	now    func() time.Time
}

// OpenGCS connects to bucketName using application default credentials
func OpenGCS(ctx context.Context, bucketName string, log *zap.Logger) (*GCSStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: client.Bucket(bucketName),
		log:    log,
		now:    time.Now,
	}, nil
}

func objectName(id string) string {
	return gcsPrefix + id + ".json"
}

func (s *GCSStore) Get(ctx context.Context, id string) (models.IndexRecord, error) {
	if id == "" || strings.ContainsAny(id, "/\\") {
		return models.IndexRecord{}, ErrNotFound
	}
	return s.read(ctx, objectName(id))
}

func (s *GCSStore) read(ctx context.Context, name string) (models.IndexRecord, error) {
	reader, err := s.bucket.Object(name).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return models.IndexRecord{}, ErrNotFound
	}
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("Object(%q).NewReader: %w", name, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("read %s: %w", name, err)
	}

	var rec models.IndexRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.IndexRecord{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return rec, nil
}

func (s *GCSStore) List(ctx context.Context) ([]models.IndexSummary, error) {
	summaries := make([]models.IndexSummary, 0)

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: gcsPrefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if path.Ext(attrs.Name) != ".json" {
			continue
		}

		rec, err := s.read(ctx, attrs.Name)
		if err != nil {
			s.log.Warn("Skipping unreadable index object", zap.String("object", attrs.Name), zap.Error(err))
			continue
		}
		summaries = append(summaries, rec.Summarize())
	}

	sortNewestFirst(summaries)
	return summaries, nil
}

func (s *GCSStore) Put(ctx context.Context, upload models.Upload) (models.IndexRecord, error) {
	rec, err := newRecord(upload, s.now())
	if err != nil {
		return models.IndexRecord{}, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("encode record: %w", err)
	}

	name := objectName(rec.ID)
	writer := s.bucket.Object(name).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return models.IndexRecord{}, fmt.Errorf("Writer.Write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.IndexRecord{}, fmt.Errorf("Writer.Close: %w", err)
	}

	s.log.Info("Stored index file", zap.String("object", name), zap.String("file", rec.FileName))
	return rec, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
