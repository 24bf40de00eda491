package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"indexo/pkg/config"
	"indexo/pkg/favorites"
	"indexo/pkg/loader"
	"indexo/pkg/models"
	"indexo/pkg/store"
)

// Service handles operations related to projects and their galleries
type Service struct {
	store     store.IndexStore
	loader    *loader.Loader
	favorites *favorites.Registry
	log       *zap.Logger
}

// New assembles a service from its parts. favs may be nil, which keeps
// favorites in memory only.
func New(st store.IndexStore, ld *loader.Loader, favs *favorites.Registry, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if favs == nil {
		favs = favorites.NewRegistry(favorites.MemoryBackends(), 0, log)
	}
	return &Service{store: st, loader: ld, favorites: favs, log: log}
}

// Open builds the service described by cfg: the configured index store behind a
// cache, a loader reading from it and favorites kept on disk.
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		inner store.IndexStore
		err   error
	)
	switch cfg.Store {
	case config.StoreGCS:
		inner, err = store.OpenGCS(ctx, cfg.BucketName, log.Named("gcs"))
	default:
		inner, err = store.OpenSQLite(cfg.Database, log.Named("sqlite"))
	}
	if err != nil {
		return nil, err
	}

	st := store.IndexStore(inner)
	if cfg.CacheTTL > 0 {
		st = store.NewCached(inner, cfg.CacheTTL, log.Named("cache"))
	}

	ld := loader.New(loader.StoreFetcher{Store: st}, loader.Options{
		OnMissingID: cfg.OnMissingID,
		DefaultPath: cfg.DefaultIndex,
	}, log.Named("loader"))

	return New(st, ld, DiskFavorites(cfg.FavoritesDir, log), log), nil
}

// DiskFavorites keeps one favorites set per namespace under dir
func DiskFavorites(dir string, log *zap.Logger) *favorites.Registry {
	d := favorites.NewDiskv(dir)
	return favorites.NewRegistry(func(ns string) favorites.Backend {
		return favorites.NewDiskvBackend(d, ns)
	}, favorites.DefaultIdle, log.Named("favorites"))
}

// Close releases the index store
func (s *Service) Close() error {
	var err error
	if s.store != nil {
		err = multierr.Append(err, s.store.Close())
	}
	return err
}

// Sort orders for ListProjects
const (
	SortByDate = "date"
	SortByName = "name"
)

// ListProjects returns stored index summaries, newest first or by file name
func (s *Service) ListProjects(ctx context.Context, sortBy string) ([]models.IndexSummary, error) {
	summaries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	switch sortBy {
	case "", SortByDate:
	case SortByName:
		sort.SliceStable(summaries, func(i, j int) bool {
			return natural.Less(strings.ToLower(summaries[i].FileName), strings.ToLower(summaries[j].FileName))
		})
	default:
		return nil, fmt.Errorf("unknown sort order %q", sortBy)
	}
	return summaries, nil
}

// Record returns a stored record with its index data in the canonical
// {frames:[...]} shape
func (s *Service) Record(ctx context.Context, id string) (models.IndexRecord, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return models.IndexRecord{}, err
	}

	doc, err := models.ParseIndexData(rec.IndexData)
	if err != nil {
		s.log.Debug("Stored index data is malformed", zap.String("id", id), zap.Error(err))
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return models.IndexRecord{}, fmt.Errorf("encode index data: %w", err)
	}
	rec.IndexData = data
	return rec, nil
}

// Frames loads the frames of one document through the loader
func (s *Service) Frames(ctx context.Context, id string) ([]models.Frame, error) {
	return s.loader.Load(ctx, id)
}

// Favorites returns the favorites set for a namespace
func (s *Service) Favorites(namespace string) *favorites.Store {
	return s.favorites.For(namespace)
}

// ToggleFavorite flips one thumbnail in a namespace and reports whether it is now a favorite
func (s *Service) ToggleFavorite(namespace, thumbName string) bool {
	return s.favorites.For(namespace).Toggle(thumbName)
}
