package gallery

import "testing"

func TestNavigator_ClampsWithoutWraparound(t *testing.T) {
	all := Flatten(sampleFrames())
	n := NewNavigator(all, nil)

	if !n.OpenAt(3) {
		t.Fatalf("OpenAt(3) = false")
	}
	for i := 0; i < 10; i++ {
		n.Next()
		if idx, _ := n.Index(); idx >= len(all) {
			t.Fatalf("index %d escaped the sequence", idx)
		}
	}
	if idx, _ := n.Index(); idx != len(all)-1 {
		t.Fatalf("index = %d, want %d", idx, len(all)-1)
	}
	if n.HasNext() {
		t.Fatalf("HasNext at end = true")
	}

	for i := 0; i < 10; i++ {
		n.Prev()
		if idx, _ := n.Index(); idx < 0 {
			t.Fatalf("index %d below zero", idx)
		}
	}
	if idx, _ := n.Index(); idx != 0 {
		t.Fatalf("index = %d, want 0", idx)
	}
	if n.HasPrev() {
		t.Fatalf("HasPrev at start = true")
	}
}

func TestNavigator_OpenAtOutOfRange(t *testing.T) {
	n := NewNavigator(Flatten(catDogFrames()), nil)
	if n.OpenAt(-1) || n.OpenAt(2) {
		t.Fatalf("OpenAt accepted an out of range index")
	}
	if n.IsOpen() {
		t.Fatalf("navigator opened on invalid index")
	}
}

func TestNavigator_ClosedIgnoresMoves(t *testing.T) {
	n := NewNavigator(Flatten(catDogFrames()), nil)
	n.Next()
	n.Prev()
	if n.HandleKey(KeyArrowRight) {
		t.Fatalf("HandleKey consumed a key while closed")
	}
	if _, ok := n.Current(); ok {
		t.Fatalf("Current returned an entry while closed")
	}
}

func TestNavigator_WalksUnfilteredSequence(t *testing.T) {
	frames := catDogFrames()
	all := Flatten(frames)

	// Only t2 is visible; the lightbox is opened from the filtered grid.
	visible := Visible(frames, "dog", nil, false)
	n := NewNavigator(all, nil)
	n.OpenAt(visible[0].FlatIndex)

	n.Prev()
	cur, ok := n.Current()
	if !ok || cur.Thumbnail.ThumbName != "t1" || cur.FlatIndex != 0 {
		t.Fatalf("Current = %+v, want hidden entry t1", cur)
	}

	// Open at 0 while a filter hides entry 0, then move next.
	n.Close()
	n.OpenAt(0)
	n.Next()
	if idx, _ := n.Index(); idx != 1 {
		t.Fatalf("index = %d, want 1", idx)
	}
}

func TestNavigator_KeyListenerLifecycle(t *testing.T) {
	keys := NewKeyDispatcher()
	n := NewNavigator(Flatten(sampleFrames()), keys)

	if keys.Listeners() != 0 {
		t.Fatalf("listener installed while closed")
	}

	n.OpenAt(1)
	n.OpenAt(2)
	n.OpenAt(1)
	if got := keys.Listeners(); got != 1 {
		t.Fatalf("Listeners = %d after repeated opens, want 1", got)
	}

	keys.Dispatch(KeyArrowRight)
	if idx, _ := n.Index(); idx != 2 {
		t.Fatalf("index = %d after ArrowRight, want 2", idx)
	}
	keys.Dispatch(KeyArrowLeft)
	keys.Dispatch(KeyArrowLeft)
	if idx, _ := n.Index(); idx != 0 {
		t.Fatalf("index = %d after two ArrowLeft, want 0", idx)
	}

	keys.Dispatch(KeyEscape)
	if n.IsOpen() {
		t.Fatalf("Escape did not close the lightbox")
	}
	if got := keys.Listeners(); got != 0 {
		t.Fatalf("Listeners = %d after close, want 0", got)
	}

	// Keys after close reach nobody.
	keys.Dispatch(KeyArrowRight)
	if n.IsOpen() {
		t.Fatalf("closed navigator reopened")
	}

	for i := 0; i < 5; i++ {
		n.OpenAt(0)
		n.Close()
	}
	if got := keys.Listeners(); got != 0 {
		t.Fatalf("Listeners = %d after toggling, want 0", got)
	}
}

func TestNavigator_Reset(t *testing.T) {
	keys := NewKeyDispatcher()
	n := NewNavigator(Flatten(sampleFrames()), keys)
	n.OpenAt(4)

	n.Reset(Flatten(catDogFrames()))
	if n.IsOpen() {
		t.Fatalf("Reset left the lightbox open")
	}
	if keys.Listeners() != 0 {
		t.Fatalf("Reset leaked a key listener")
	}
	if n.Len() != 2 {
		t.Fatalf("Len = %d, want 2", n.Len())
	}
	if n.OpenAt(4) {
		t.Fatalf("OpenAt used the old sequence length")
	}
}

func TestKeyDispatcher_UnlistenIsIdempotent(t *testing.T) {
	keys := NewKeyDispatcher()
	calls := 0
	stop := keys.Listen(func(string) { calls++ })
	other := keys.Listen(func(string) {})

	stop()
	stop()
	keys.Dispatch(KeyEscape)

	if calls != 0 {
		t.Fatalf("removed listener was called %d times", calls)
	}
	if keys.Listeners() != 1 {
		t.Fatalf("Listeners = %d, want 1", keys.Listeners())
	}
	other()
}
