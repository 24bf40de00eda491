// Package favorites keeps the set of favorite thumbnails. The set is loaded
// once from a Backend and written back in full after every toggle.
package favorites

import (
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Backend persists the favorites list
type Backend interface {
	ReadFavorites() ([]string, error)
	WriteFavorites(names []string) error
}

// Store is one favorites set bound to its backend
type Store struct {
	mu      sync.RWMutex
	backend Backend
	log     *zap.Logger
	set     map[string]struct{}
}

// New creates a store over backend. Call Load before use.
func New(backend Backend, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		backend: backend,
		log:     log,
		set:     make(map[string]struct{}),
	}
}

// Load reads the persisted set. A missing or unreadable backend yields an
// empty set; Load never fails.
func (s *Store) Load() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set = make(map[string]struct{})

	names, err := s.backend.ReadFavorites()
	if err != nil {
		s.log.Debug("Favorites unavailable, starting empty", zap.Error(err))
		return s.copySet()
	}
	for _, name := range names {
		if name != "" {
			s.set[name] = struct{}{}
		}
	}
	return s.copySet()
}

// Toggle flips membership of thumbName and persists the whole set. It returns
// the new membership. Persistence failures are logged and otherwise ignored.
func (s *Store) Toggle(thumbName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, had := s.set[thumbName]
	if had {
		delete(s.set, thumbName)
	} else {
		s.set[thumbName] = struct{}{}
	}

	if err := s.backend.WriteFavorites(s.sorted()); err != nil {
		s.log.Warn("Unable to save favorites", zap.String("thumb", thumbName), zap.Error(err))
	}
	return !had
}

// Contains reports whether thumbName is a favorite
func (s *Store) Contains(thumbName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.set[thumbName]
	return ok
}

// Set returns a copy of the favorites set
func (s *Store) Set() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copySet()
}

// List returns the favorites sorted by name
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted()
}

// Len returns the number of favorites
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.set)
}

func (s *Store) copySet() map[string]struct{} {
	dup := make(map[string]struct{}, len(s.set))
	for k := range s.set {
		dup[k] = struct{}{}
	}
	return dup
}

func (s *Store) sorted() []string {
	names := make([]string, 0, len(s.set))
	for k := range s.set {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DefaultIdle is how long a Registry keeps an unused Store loaded
const DefaultIdle = 30 * time.Minute

// Registry hands out one loaded Store per namespace, e.g. per browser. Stores
// nobody asked for within the idle period are dropped and reloaded from their
// backend on the next request.
type Registry struct {
	mu      sync.Mutex
	open    func(namespace string) Backend
	log     *zap.Logger
	entries *cache.Cache
}

// NewRegistry creates a registry that opens backends with open. idle <= 0
// means DefaultIdle.
func NewRegistry(open func(namespace string) Backend, idle time.Duration, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Registry{open: open, log: log, entries: cache.New(idle, idle)}
}

// For returns the store for namespace, loading it on first use
func (r *Registry) For(namespace string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, found := r.entries.Get(namespace); found {
		s := cached.(*Store)
		r.entries.Set(namespace, s, cache.DefaultExpiration)
		return s
	}
	s := New(r.open(namespace), r.log.With(zap.String("namespace", namespace)))
	s.Load()
	r.entries.Set(namespace, s, cache.DefaultExpiration)
	return s
}
