package favorites

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterbourgon/diskv/v3"
)

// DefaultNamespace is used when a caller has no namespace of its own
const DefaultNamespace = "default"

// DiskvBackend stores each namespace as one JSON array under BasePath
type DiskvBackend struct {
	d   *diskv.Diskv
	key string
}

// NewDiskv opens the favorites directory. Backends for different namespaces
// may share the returned *diskv.Diskv.
func NewDiskv(basePath string) *diskv.Diskv {
	return diskv.New(diskv.Options{
		BasePath:     basePath,
		CacheSizeMax: 256 * 1024,
	})
}

// NewDiskvBackend binds namespace to d
func NewDiskvBackend(d *diskv.Diskv, namespace string) *DiskvBackend {
	return &DiskvBackend{d: d, key: keyFor(namespace)}
}

// keyFor hex-encodes namespace so that any string maps to its own file name
func keyFor(namespace string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return "favorites-" + hex.EncodeToString([]byte(namespace))
}

func (b *DiskvBackend) ReadFavorites() ([]string, error) {
	val, err := b.d.Read(b.key)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(val, &names); err != nil {
		return nil, fmt.Errorf("decode favorites %s: %w", b.key, err)
	}
	return names, nil
}

func (b *DiskvBackend) WriteFavorites(names []string) error {
	if names == nil {
		names = []string{}
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	if err := b.d.Write(b.key, data); err != nil {
		return fmt.Errorf("write favorites %s: %w", b.key, err)
	}
	return nil
}

// MemoryBackends returns an open func for NewRegistry that keeps one
// MemoryBackend per namespace for as long as the func is referenced
func MemoryBackends() func(namespace string) Backend {
	var mu sync.Mutex
	backends := make(map[string]*MemoryBackend)
	return func(namespace string) Backend {
		mu.Lock()
		defer mu.Unlock()
		b, ok := backends[namespace]
		if !ok {
			b = &MemoryBackend{}
			backends[namespace] = b
		}
		return b
	}
}

// MemoryBackend keeps favorites in memory; ReadErr and WriteErr simulate an
// unavailable store.
type MemoryBackend struct {
	mu       sync.Mutex
	Names    []string
	Writes   int
	ReadErr  error
	WriteErr error
}

func (m *MemoryBackend) ReadFavorites() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]string(nil), m.Names...), nil
}

func (m *MemoryBackend) WriteFavorites(names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Writes++
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Names = append([]string(nil), names...)
	return nil
}
