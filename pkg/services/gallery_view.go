package services

import (
	"context"

	"indexo/pkg/gallery"
)

// GalleryState is everything the gallery page keeps in its URL
type GalleryState struct {
	IndexID       string
	Query         string
	FavoritesOnly bool
	// Open is the flat index shown in the lightbox, or -1 when it is closed
	Open int
}

// EntryView is one thumbnail as rendered on the page
type EntryView struct {
	FlatIndex int
	FrameName string
	ThumbName string
	Label     string
	Texts     string
	Image     string
	Url       string
	Favorite  bool
}

// LightboxView is the open lightbox
type LightboxView struct {
	Entry   EntryView
	HasPrev bool
	HasNext bool
	// FigmaURL is the frame link, or the thumbnail link when the frame has none
	FigmaURL string
}

// GalleryView is the model for the gallery page
type GalleryView struct {
	GalleryState
	Entries       []EntryView
	Total         int
	FavoriteCount int
	Lightbox      *LightboxView
}

func entryView(e gallery.Entry, favs map[string]struct{}) EntryView {
	_, fav := favs[e.Thumbnail.ThumbName]
	return EntryView{
		FlatIndex: e.FlatIndex,
		FrameName: e.Frame.Name,
		ThumbName: e.Thumbnail.ThumbName,
		Label:     e.Thumbnail.Label,
		Texts:     e.Thumbnail.Texts,
		Image:     e.Thumbnail.Image,
		Url:       e.Thumbnail.Url,
		Favorite:  fav,
	}
}

// Gallery loads a document and derives the visible entries and lightbox for
// state. An empty namespace shows the document with no favorites.
func (s *Service) Gallery(ctx context.Context, namespace string, state GalleryState) (GalleryView, error) {
	frames, err := s.loader.Load(ctx, state.IndexID)
	if err != nil {
		return GalleryView{}, err
	}

	// Without a namespace there are no favorites yet, and none are loaded.
	favs := map[string]struct{}{}
	if namespace != "" {
		favs = s.favorites.For(namespace).Set()
	}

	all := gallery.Flatten(frames)
	visible := gallery.FilterByFavorites(gallery.FilterBySearch(all, state.Query), favs, state.FavoritesOnly)

	view := GalleryView{
		GalleryState:  state,
		Entries:       make([]EntryView, 0, len(visible)),
		Total:         len(all),
		FavoriteCount: len(favs),
	}
	for _, e := range visible {
		view.Entries = append(view.Entries, entryView(e, favs))
	}

	nav := gallery.NewNavigator(all, nil)
	if nav.OpenAt(state.Open) {
		current, _ := nav.Current()
		view.Lightbox = &LightboxView{
			Entry:    entryView(current, favs),
			HasPrev:  nav.HasPrev(),
			HasNext:  nav.HasNext(),
			FigmaURL: current.FigmaURL(),
		}
	} else {
		view.Open = -1
	}
	return view, nil
}

// Navigate applies one key press to the lightbox of a loaded document and
// returns the resulting state. The lightbox walks the whole document, not just
// the entries visible under the current filters.
func (s *Service) Navigate(ctx context.Context, state GalleryState, key string) (GalleryState, error) {
	frames, err := s.loader.Load(ctx, state.IndexID)
	if err != nil {
		return state, err
	}

	keys := gallery.NewKeyDispatcher()
	nav := gallery.NewNavigator(gallery.Flatten(frames), keys)
	defer nav.Close()

	if nav.OpenAt(state.Open) {
		keys.Dispatch(key)
	}

	next := state
	next.Open = -1
	if i, ok := nav.Index(); ok {
		next.Open = i
	}
	return next, nil
}
