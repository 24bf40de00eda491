package gallery

import "sync"

// Key names as delivered by the browser and translated by the terminal view
const (
	KeyArrowRight = "ArrowRight"
	KeyArrowLeft  = "ArrowLeft"
	KeyEscape     = "Escape"
)

// KeyListener receives key events from a KeyDispatcher
type KeyListener func(key string)

// KeyDispatcher fans key events out to the currently registered listeners.
type KeyDispatcher struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]KeyListener
}

// NewKeyDispatcher creates an empty dispatcher
func NewKeyDispatcher() *KeyDispatcher {
	return &KeyDispatcher{listeners: make(map[int]KeyListener)}
}

// Listen registers fn and returns the function that removes it. Calling the
// returned function more than once is a no-op.
func (d *KeyDispatcher) Listen(fn KeyListener) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}

// Dispatch delivers key to every listener registered at the time of the call.
// Listeners may unregister themselves while handling the event.
func (d *KeyDispatcher) Dispatch(key string) {
	d.mu.Lock()
	fns := make([]KeyListener, 0, len(d.listeners))
	for _, fn := range d.listeners {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

// Listeners returns the number of registered listeners
func (d *KeyDispatcher) Listeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners)
}
