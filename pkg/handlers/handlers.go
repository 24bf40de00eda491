package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/eknkc/pug"
	"github.com/eknkc/pug/compiler"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"indexo/pkg/gallery"
	"indexo/pkg/loader"
	"indexo/pkg/models"
	"indexo/pkg/services"
)

// favoritesCookie names the cookie holding the browser's favorites namespace
const favoritesCookie = "indexo_favorites"

// Handlers serves the gallery pages and the plugin API
type Handlers struct {
	svc       *services.Service
	secretKey string
	viewsDir  string
	publicDir string
	log       *zap.Logger
}

// Options configure Handlers
type Options struct {
	SecretKey string
	ViewsDir  string
	PublicDir string
}

func New(svc *services.Service, opts Options, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ViewsDir == "" {
		opts.ViewsDir = "./views"
	}
	if opts.PublicDir == "" {
		opts.PublicDir = "./public"
	}
	// pug rejects view paths that climb out of its directory
	if abs, err := filepath.Abs(opts.ViewsDir); err == nil {
		opts.ViewsDir = abs
	}
	return &Handlers{
		svc:       svc,
		secretKey: opts.SecretKey,
		viewsDir:  opts.ViewsDir,
		publicDir: opts.PublicDir,
		log:       log,
	}
}

// Routes returns the full route table
func (h *Handlers) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/", http.FileServer(http.Dir(h.publicDir)))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/projects", http.StatusFound)
	})
	mux.HandleFunc("GET /projects", h.ProjectsHandler)
	mux.HandleFunc("GET /gallery", h.GalleryHandler)
	mux.HandleFunc("POST /gallery/favorite", h.FavoriteHandler)

	mux.HandleFunc("OPTIONS /api/", withCORS(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mux.HandleFunc("GET /api/index-files", withCORS(h.IndexFilesHandler))
	mux.HandleFunc("GET /api/index-data", withCORS(h.IndexDataHandler))
	mux.HandleFunc("POST /api/upload-index", withCORS(h.UploadIndexHandler))
	mux.Handle("GET /api/ws", h.WebSocketHandler())

	return mux
}

// render executes <viewsDir>/<name>.pug with data
func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	tpl, err := pug.CompileFile(name+".pug", pug.Options{Dir: compiler.FsDir(h.viewsDir)})
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		h.log.Error("Template error", zap.String("view", name), zap.Error(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tpl.Execute(w, data); err != nil {
		h.log.Error("Template execution error", zap.String("view", name), zap.Error(err))
	}
}

type projectsPage struct {
	Projects []projectLink
	Sort     string
}

type projectLink struct {
	models.IndexSummary
	GalleryURL string
	Uploaded   string
}

// ProjectsHandler lists stored index files, newest first unless ?sort=name
func (h *Handlers) ProjectsHandler(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("Generating projects page")

	sortBy := r.URL.Query().Get("sort")
	if sortBy != services.SortByName {
		sortBy = services.SortByDate
	}

	summaries, err := h.svc.ListProjects(r.Context(), sortBy)
	if err != nil {
		h.log.Error("Failed to list projects", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Failed to fetch index files")
		return
	}

	page := projectsPage{Projects: make([]projectLink, 0, len(summaries)), Sort: sortBy}
	for _, s := range summaries {
		page.Projects = append(page.Projects, projectLink{
			IndexSummary: s,
			GalleryURL:   galleryURL(services.GalleryState{IndexID: s.ID, Open: -1}),
			Uploaded:     s.UploadedAt.Local().Format(time.DateTime),
		})
	}
	h.render(w, http.StatusOK, "projects", page)
}

type errorPage struct {
	Message string
	BackURL string
}

func (h *Handlers) renderError(w http.ResponseWriter, status int, message string) {
	h.render(w, status, "error", errorPage{Message: message, BackURL: "/projects"})
}

type galleryPage struct {
	IndexID       string
	Query         string
	FavoritesOnly bool
	Open          int
	Total         int
	Visible       int
	FavoriteCount int
	Entries       []entryLink
	Lightbox      *lightboxLinks

	ToggleFavoritesURL string
	ClearSearchURL     string
}

// entryLink carries everything a tile needs, since inside a pug each block
// only the loop variable is in scope
type entryLink struct {
	services.EntryView
	ImageSrc       template.URL
	OpenURL        string
	FavoriteAction string
}

type lightboxLinks struct {
	Entry    services.EntryView
	ImageSrc template.URL
	HasPrev  bool
	HasNext  bool
	PrevURL  string
	NextURL  string
	CloseURL string
	FigmaURL string
}

// GalleryHandler renders one index document. A key parameter applies a
// lightbox transition and redirects to the resulting state.
func (h *Handlers) GalleryHandler(w http.ResponseWriter, r *http.Request) {
	state := stateFromQuery(r.URL.Query())

	if key := r.URL.Query().Get("key"); key != "" {
		next, err := h.svc.Navigate(r.Context(), state, key)
		if err != nil {
			h.loadFailed(w, err)
			return
		}
		http.Redirect(w, r, galleryURL(next), http.StatusSeeOther)
		return
	}

	h.log.Debug("Generating gallery page", zap.String("index", state.IndexID))

	view, err := h.svc.Gallery(r.Context(), namespace(r), state)
	if err != nil {
		h.loadFailed(w, err)
		return
	}
	h.render(w, http.StatusOK, "gallery", newGalleryPage(view))
}

func newGalleryPage(view services.GalleryView) galleryPage {
	state := view.GalleryState

	page := galleryPage{
		IndexID:       state.IndexID,
		Query:         state.Query,
		FavoritesOnly: state.FavoritesOnly,
		Open:          state.Open,
		Total:         view.Total,
		Visible:       len(view.Entries),
		FavoriteCount: view.FavoriteCount,
		Entries:       make([]entryLink, 0, len(view.Entries)),
	}

	toggled := state
	toggled.FavoritesOnly = !state.FavoritesOnly
	toggled.Open = -1
	page.ToggleFavoritesURL = galleryURL(toggled)

	cleared := state
	cleared.Query = ""
	page.ClearSearchURL = galleryURL(cleared)

	back := state
	back.Open = -1
	favoriteAction := "/gallery/favorite"
	if q := stateQuery(back); len(q) > 0 {
		favoriteAction += "?" + q.Encode()
	}

	for _, e := range view.Entries {
		open := state
		open.Open = e.FlatIndex
		page.Entries = append(page.Entries, entryLink{
			EntryView:      e,
			ImageSrc:       imageSrc(e.Image),
			OpenURL:        galleryURL(open),
			FavoriteAction: favoriteAction,
		})
	}

	if view.Lightbox != nil {
		closed := state
		closed.Open = -1
		page.Lightbox = &lightboxLinks{
			Entry:    view.Lightbox.Entry,
			ImageSrc: imageSrc(view.Lightbox.Entry.Image),
			HasPrev:  view.Lightbox.HasPrev,
			HasNext:  view.Lightbox.HasNext,
			PrevURL:  keyURL(state, gallery.KeyArrowLeft),
			NextURL:  keyURL(state, gallery.KeyArrowRight),
			CloseURL: galleryURL(closed),
			FigmaURL: view.Lightbox.FigmaURL,
		}
	}
	return page
}

// imageSrc passes through the image sources an exported thumbnail can have.
// Inline data URIs would otherwise be replaced by html/template.
func imageSrc(src string) template.URL {
	switch {
	case strings.HasPrefix(src, "data:image/"),
		strings.HasPrefix(src, "https://"),
		strings.HasPrefix(src, "http://"),
		strings.HasPrefix(src, "/"):
		return template.URL(src)
	}
	return ""
}

func (h *Handlers) loadFailed(w http.ResponseWriter, err error) {
	var loadErr *loader.LoadError
	switch {
	case errors.Is(err, loader.ErrNoIndexSpecified):
		h.renderError(w, http.StatusBadRequest, "No index file specified")
	case errors.As(err, &loadErr):
		h.log.Warn("Failed to load index", zap.String("reason", loadErr.Reason))
		h.renderError(w, http.StatusNotFound, loadErr.Reason)
	default:
		h.log.Error("Failed to load index", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Failed to load index")
	}
}

// FavoriteHandler toggles one thumbnail and returns to the gallery state it was posted from
func (h *Handlers) FavoriteHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	thumb := r.PostForm.Get("thumb")
	if thumb == "" {
		http.Error(w, "Missing thumb", http.StatusBadRequest)
		return
	}

	ns := ensureNamespace(w, r)
	added := h.svc.ToggleFavorite(ns, thumb)
	h.log.Debug("Toggled favorite", zap.String("thumb", thumb), zap.Bool("favorite", added))

	http.Redirect(w, r, galleryURL(stateFromQuery(r.Form)), http.StatusSeeOther)
}

// namespace returns the favorites namespace of the browser, or "" when it has
// never saved a favorite
func namespace(r *http.Request) string {
	if c, err := r.Cookie(favoritesCookie); err == nil {
		return c.Value
	}
	return ""
}

// ensureNamespace returns the browser's namespace, issuing one when the
// request carries none
func ensureNamespace(w http.ResponseWriter, r *http.Request) string {
	if ns := namespace(r); ns != "" {
		return ns
	}

	ns := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     favoritesCookie,
		Value:    ns,
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ns
}

func stateFromQuery(q url.Values) services.GalleryState {
	state := services.GalleryState{
		IndexID:       q.Get("index"),
		Query:         q.Get("q"),
		FavoritesOnly: q.Get("favorites") == "1",
		Open:          -1,
	}
	if open, err := strconv.Atoi(q.Get("open")); err == nil && open >= 0 {
		state.Open = open
	}
	return state
}

func stateQuery(state services.GalleryState) url.Values {
	q := url.Values{}
	if state.IndexID != "" {
		q.Set("index", state.IndexID)
	}
	if state.Query != "" {
		q.Set("q", state.Query)
	}
	if state.FavoritesOnly {
		q.Set("favorites", "1")
	}
	if state.Open >= 0 {
		q.Set("open", strconv.Itoa(state.Open))
	}
	return q
}

func galleryURL(state services.GalleryState) string {
	q := stateQuery(state)
	if len(q) == 0 {
		return "/gallery"
	}
	return "/gallery?" + q.Encode()
}

func keyURL(state services.GalleryState, key string) string {
	q := stateQuery(state)
	q.Set("key", key)
	return "/gallery?" + q.Encode()
}
