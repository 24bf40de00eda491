// Package gallery turns a loaded index document into the flat, filterable
// sequence the gallery grid and the lightbox work on.
//
// Every Entry carries the FlatIndex it had in the unfiltered flattening.
// Filters only drop entries; they never reorder them or renumber them, so an
// index held by the lightbox stays valid while the search or favorites filter
// changes underneath it.
package gallery

import (
	"strings"

	"indexo/pkg/models"
)

// Entry is one thumbnail placed in the flat gallery sequence
type Entry struct {
	Frame     *models.Frame
	Thumbnail *models.Thumbnail
	FlatIndex int
}

// FigmaURL links back to the design file, preferring the frame's own link
func (e Entry) FigmaURL() string {
	if e.Frame != nil && e.Frame.Url != "" {
		return e.Frame.Url
	}
	if e.Thumbnail != nil {
		return e.Thumbnail.Url
	}
	return ""
}

// Flatten walks frames and their thumbnails in document order. FlatIndex starts
// at zero and continues across frame boundaries.
func Flatten(frames []models.Frame) []Entry {
	n := 0
	for i := range frames {
		n += len(frames[i].Thumbnails)
	}

	entries := make([]Entry, 0, n)
	for i := range frames {
		frame := &frames[i]
		for j := range frame.Thumbnails {
			entries = append(entries, Entry{
				Frame:     frame,
				Thumbnail: &frame.Thumbnails[j],
				FlatIndex: len(entries),
			})
		}
	}
	return entries
}

// FilterBySearch keeps entries whose frame name, label or texts contain the
// query, case-insensitively. A blank query returns entries unchanged.
func FilterBySearch(entries []Entry, query string) []Entry {
	if strings.TrimSpace(query) == "" {
		return entries
	}
	q := strings.ToLower(query)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e Entry, q string) bool {
	if strings.Contains(strings.ToLower(e.Frame.Name), q) {
		return true
	}
	if e.Thumbnail.Label != "" && strings.Contains(strings.ToLower(e.Thumbnail.Label), q) {
		return true
	}
	return e.Thumbnail.Texts != "" && strings.Contains(strings.ToLower(e.Thumbnail.Texts), q)
}

// FilterByFavorites keeps entries whose thumbnail is in favorites when
// favoritesOnly is set.
func FilterByFavorites(entries []Entry, favorites map[string]struct{}, favoritesOnly bool) []Entry {
	if !favoritesOnly {
		return entries
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := favorites[e.Thumbnail.ThumbName]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Visible runs the whole pipeline: flatten, search, then favorites.
func Visible(frames []models.Frame, query string, favorites map[string]struct{}, favoritesOnly bool) []Entry {
	return FilterByFavorites(FilterBySearch(Flatten(frames), query), favorites, favoritesOnly)
}
