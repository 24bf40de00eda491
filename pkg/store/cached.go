package store

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"indexo/pkg/models"
)

const listKey = "index-files"

// CachedStore is a read-through cache in front of another IndexStore
type CachedStore struct {
	inner IndexStore
	cache *cache.Cache
	log   *zap.Logger
}

// NewCached wraps inner, keeping reads for ttl
func NewCached(inner IndexStore, ttl time.Duration, log *zap.Logger) *CachedStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStore{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
		log:   log,
	}
}

func (c *CachedStore) Get(ctx context.Context, id string) (models.IndexRecord, error) {
	key := "record:" + id
	if cached, found := c.cache.Get(key); found {
		c.log.Debug("Using cached index file", zap.String("id", id))
		return cached.(models.IndexRecord), nil
	}

	rec, err := c.inner.Get(ctx, id)
	if err != nil {
		return models.IndexRecord{}, err
	}
	c.cache.Set(key, rec, cache.DefaultExpiration)
	return rec, nil
}

func (c *CachedStore) List(ctx context.Context) ([]models.IndexSummary, error) {
	if cached, found := c.cache.Get(listKey); found {
		c.log.Debug("Using cached index list")
		return cloneSummaries(cached.([]models.IndexSummary)), nil
	}

	summaries, err := c.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(listKey, cloneSummaries(summaries), cache.DefaultExpiration)
	return summaries, nil
}

// Put stores through to the inner store and drops everything cached
func (c *CachedStore) Put(ctx context.Context, upload models.Upload) (models.IndexRecord, error) {
	rec, err := c.inner.Put(ctx, upload)
	if err != nil {
		return models.IndexRecord{}, err
	}
	c.cache.Flush()
	return rec, nil
}

func (c *CachedStore) Close() error {
	c.cache.Flush()
	return c.inner.Close()
}

func cloneSummaries(in []models.IndexSummary) []models.IndexSummary {
	out := make([]models.IndexSummary, len(in))
	copy(out, in)
	return out
}
