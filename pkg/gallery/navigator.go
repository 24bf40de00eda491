package gallery

// Navigator is the lightbox state machine. It is either closed or open at a
// FlatIndex of the unfiltered sequence it was given, so next and prev walk the
// whole gallery even while a filter hides some entries.
type Navigator struct {
	all      []Entry
	keys     *KeyDispatcher
	open     bool
	index    int
	unlisten func()
}

// NewNavigator creates a closed navigator over all. keys may be nil when no
// keyboard is attached.
func NewNavigator(all []Entry, keys *KeyDispatcher) *Navigator {
	return &Navigator{all: all, keys: keys}
}

// Reset swaps in a newly loaded sequence and closes the lightbox
func (n *Navigator) Reset(all []Entry) {
	n.Close()
	n.all = all
}

// OpenAt opens the lightbox at flatIndex i. Out of range indices are ignored.
func (n *Navigator) OpenAt(i int) bool {
	if i < 0 || i >= len(n.all) {
		return false
	}
	n.index = i
	if !n.open {
		n.open = true
		if n.keys != nil && n.unlisten == nil {
			n.unlisten = n.keys.Listen(func(key string) { n.HandleKey(key) })
		}
	}
	return true
}

// Next moves forward one entry; no-op at the end of the sequence.
func (n *Navigator) Next() {
	if n.open && n.index+1 < len(n.all) {
		n.index++
	}
}

// Prev moves back one entry; no-op at the start of the sequence.
func (n *Navigator) Prev() {
	if n.open && n.index > 0 {
		n.index--
	}
}

// Close closes the lightbox and removes its key listener
func (n *Navigator) Close() {
	n.open = false
	n.index = 0
	if n.unlisten != nil {
		n.unlisten()
		n.unlisten = nil
	}
}

// HandleKey applies the transition bound to key. It reports whether the key
// was consumed; keys are ignored while closed.
func (n *Navigator) HandleKey(key string) bool {
	if !n.open {
		return false
	}
	switch key {
	case KeyArrowRight:
		n.Next()
	case KeyArrowLeft:
		n.Prev()
	case KeyEscape:
		n.Close()
	default:
		return false
	}
	return true
}

// IsOpen reports whether the lightbox is showing an entry
func (n *Navigator) IsOpen() bool {
	return n.open
}

// Index returns the current flatIndex when open
func (n *Navigator) Index() (int, bool) {
	return n.index, n.open
}

// Current returns the entry at the current index, whether or not it passes
// the active filters.
func (n *Navigator) Current() (Entry, bool) {
	if !n.open {
		return Entry{}, false
	}
	return n.all[n.index], true
}

func (n *Navigator) HasPrev() bool {
	return n.open && n.index > 0
}

func (n *Navigator) HasNext() bool {
	return n.open && n.index+1 < len(n.all)
}

// Len returns the length of the unfiltered sequence
func (n *Navigator) Len() int {
	return len(n.all)
}
