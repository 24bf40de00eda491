package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"indexo/pkg/gallery"
	"indexo/pkg/loader"
	"indexo/pkg/models"
	"indexo/pkg/store"
)

const catDog = `{"data":{"frames":[{"name":"A","thumbnails":[{"thumbName":"t1","label":"Cat","texts":"","image":"i1"}]},{"name":"B","thumbnails":[{"thumbName":"t2","label":"Dog","texts":"","image":"i2"}]}]}}`

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.OpenSQLite(":memory:", nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	svc := New(st, loader.New(loader.StoreFetcher{Store: st}, loader.Options{}, nil), nil, nil)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func upload(t *testing.T, svc *Service, name, data string) models.IndexRecord {
	t.Helper()
	rec, err := svc.Upload(context.Background(), models.Upload{FileName: name, IndexData: json.RawMessage(data)})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	return rec
}

func thumbNames(entries []EntryView) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.ThumbName)
	}
	return names
}

func TestGallery_SearchAndFavorites(t *testing.T) {
	svc := newTestService(t)
	rec := upload(t, svc, "pets", catDog)
	ctx := context.Background()

	view, err := svc.Gallery(ctx, "n1", GalleryState{IndexID: rec.ID, Query: "dog", Open: -1})
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if len(view.Entries) != 1 || view.Entries[0].ThumbName != "t2" || view.Entries[0].FlatIndex != 1 {
		t.Fatalf("entries = %+v", view.Entries)
	}
	if view.Total != 2 {
		t.Fatalf("Total = %d, want 2", view.Total)
	}

	svc.ToggleFavorite("n1", "t1")
	view, err = svc.Gallery(ctx, "n1", GalleryState{IndexID: rec.ID, FavoritesOnly: true, Open: -1})
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if got := thumbNames(view.Entries); len(got) != 1 || got[0] != "t1" || view.Entries[0].FlatIndex != 0 {
		t.Fatalf("favorites-only entries = %+v", view.Entries)
	}
	if !view.Entries[0].Favorite || view.FavoriteCount != 1 {
		t.Fatalf("favorite flags not set: %+v count=%d", view.Entries[0], view.FavoriteCount)
	}

	other, err := svc.Gallery(ctx, "n2", GalleryState{IndexID: rec.ID, FavoritesOnly: true, Open: -1})
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if len(other.Entries) != 0 {
		t.Fatalf("favorites leaked across namespaces: %v", thumbNames(other.Entries))
	}
}

func TestGallery_LightboxIgnoresFilter(t *testing.T) {
	svc := newTestService(t)
	rec := upload(t, svc, "pets", catDog)
	ctx := context.Background()

	state := GalleryState{IndexID: rec.ID, Query: "dog", Open: 0}
	view, err := svc.Gallery(ctx, "", state)
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if view.Lightbox == nil || view.Lightbox.Entry.ThumbName != "t1" {
		t.Fatalf("lightbox = %+v", view.Lightbox)
	}
	if view.Lightbox.HasPrev || !view.Lightbox.HasNext {
		t.Fatalf("HasPrev/HasNext = %v/%v", view.Lightbox.HasPrev, view.Lightbox.HasNext)
	}

	next, err := svc.Navigate(ctx, state, gallery.KeyArrowRight)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if next.Open != 1 {
		t.Fatalf("Open after ArrowRight = %d, want 1", next.Open)
	}

	next, err = svc.Navigate(ctx, next, gallery.KeyArrowRight)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if next.Open != 1 {
		t.Fatalf("Open past the end = %d, want 1", next.Open)
	}

	next, err = svc.Navigate(ctx, next, gallery.KeyEscape)
	if err != nil {
		t.Fatalf("Navigate: %v", err)
	}
	if next.Open != -1 {
		t.Fatalf("Open after Escape = %d, want -1", next.Open)
	}
	if next.Query != "dog" || next.IndexID != rec.ID {
		t.Fatalf("Navigate dropped state: %+v", next)
	}
}

func TestGallery_LightboxFigmaURL(t *testing.T) {
	svc := newTestService(t)
	rec := upload(t, svc, "linked", `{"frames":[{"name":"A","url":"https://figma.com/a","thumbnails":[{"thumbName":"a1","label":"Cat","url":"https://figma.com/a1"}]},{"name":"B","thumbnails":[{"thumbName":"b1","label":"Dog","url":"https://figma.com/b1"}]}]}`)

	tests := []struct {
		open int
		want string
	}{
		{0, "https://figma.com/a"},
		{1, "https://figma.com/b1"},
	}
	for _, tt := range tests {
		view, err := svc.Gallery(context.Background(), "", GalleryState{IndexID: rec.ID, Open: tt.open})
		if err != nil {
			t.Fatalf("Gallery: %v", err)
		}
		if view.Lightbox == nil || view.Lightbox.FigmaURL != tt.want {
			t.Errorf("open %d: lightbox = %+v, want FigmaURL %q", tt.open, view.Lightbox, tt.want)
		}
	}
}

func TestGallery_OutOfRangeOpenIsClosed(t *testing.T) {
	svc := newTestService(t)
	rec := upload(t, svc, "pets", catDog)

	view, err := svc.Gallery(context.Background(), "", GalleryState{IndexID: rec.ID, Open: 7})
	if err != nil {
		t.Fatalf("Gallery: %v", err)
	}
	if view.Lightbox != nil || view.Open != -1 {
		t.Fatalf("lightbox open at %d", view.Open)
	}
}

func TestGallery_LoadErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Gallery(ctx, "", GalleryState{Open: -1}); !errors.Is(err, loader.ErrNoIndexSpecified) {
		t.Fatalf("err = %v, want ErrNoIndexSpecified", err)
	}
	if _, err := svc.Gallery(ctx, "", GalleryState{IndexID: "missing", Open: -1}); !errors.Is(err, loader.ErrLoadFailed) {
		t.Fatalf("err = %v, want ErrLoadFailed", err)
	}
}

func TestListProjects_Sort(t *testing.T) {
	svc := newTestService(t)
	for _, name := range []string{"Screen 10", "screen 2", "Screen 1"} {
		upload(t, svc, name, catDog)
	}

	byName, err := svc.ListProjects(context.Background(), SortByName)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	want := []string{"Screen 1", "screen 2", "Screen 10"}
	for i, s := range byName {
		if s.FileName != want[i] {
			t.Fatalf("byName[%d] = %q, want %q", i, s.FileName, want[i])
		}
	}

	if _, err := svc.ListProjects(context.Background(), "size"); err == nil {
		t.Fatalf("unknown sort accepted")
	}
}

func TestRecord_NormalizesIndexData(t *testing.T) {
	svc := newTestService(t)
	rec := upload(t, svc, "pets", catDog)

	got, err := svc.Record(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	var doc models.IndexDocument
	if err := json.Unmarshal(got.IndexData, &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Frames) != 2 {
		t.Fatalf("len(frames) = %d, want 2", len(doc.Frames))
	}

	if _, err := svc.Record(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUploadFile(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	path := filepath.Join(dir, "landing-page.json")
	if err := os.WriteFile(path, []byte(catDog), 0o644); err != nil {
		t.Fatal(err)
	}
	rec, err := svc.UploadFile(context.Background(), path, models.Upload{ProjectID: "p"})
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if rec.FileName != "landing-page" || rec.ProjectID != "p" {
		t.Fatalf("rec = %+v", rec)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UploadFile(context.Background(), bad, models.Upload{}); err == nil {
		t.Fatalf("UploadFile accepted invalid JSON")
	}
}

func TestCheckToken(t *testing.T) {
	if err := CheckToken("", "anything"); err != nil {
		t.Fatalf("open uploads rejected: %v", err)
	}
	if err := CheckToken("k", "k"); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
	if err := CheckToken("k", "x"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
