// Package tui is a terminal gallery browser for one index document.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"indexo/pkg/favorites"
	"indexo/pkg/gallery"
	"indexo/pkg/models"
)

// FrameLoader loads the frames of a document. *loader.Loader satisfies it.
type FrameLoader interface {
	Load(ctx context.Context, id string) ([]models.Frame, error)
}

// LoaderFunc adapts a plain function to FrameLoader
type LoaderFunc func(ctx context.Context, id string) ([]models.Frame, error)

func (f LoaderFunc) Load(ctx context.Context, id string) ([]models.Frame, error) {
	return f(ctx, id)
}

// Options configures the browser
type Options struct {
	Context   context.Context
	Loader    FrameLoader
	IndexID   string
	Favorites *favorites.Store
}

type framesMsg struct {
	frames []models.Frame
	err    error
}

// Model is the browser state for Bubble Tea
type Model struct {
	ctx     context.Context
	loader  FrameLoader
	indexID string
	favs    *favorites.Store
	keymap  keyMap

	dispatcher *gallery.KeyDispatcher
	nav        *gallery.Navigator

	all     []gallery.Entry
	visible []gallery.Entry
	cursor  int

	query         string
	favoritesOnly bool
	search        textinput.Model
	searching     bool

	loading bool
	err     error
	width   int
	height  int
}

func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	favs := opts.Favorites
	if favs == nil {
		favs = favorites.New(&favorites.MemoryBackend{}, nil)
	}

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "frame, label or text"
	ti.CharLimit = 120

	dispatcher := gallery.NewKeyDispatcher()
	return Model{
		ctx:        ctx,
		loader:     opts.Loader,
		indexID:    opts.IndexID,
		favs:       favs,
		keymap:     defaultKeyMap(),
		dispatcher: dispatcher,
		nav:        gallery.NewNavigator(nil, dispatcher),
		search:     ti,
		loading:    true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return loadCmd(m.ctx, m.loader, m.indexID)
}

func loadCmd(ctx context.Context, l FrameLoader, id string) tea.Cmd {
	return func() tea.Msg {
		frames, err := l.Load(ctx, id)
		return framesMsg{frames: frames, err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case framesMsg:
		m.loading = false
		m.err = msg.err
		m.all = gallery.Flatten(msg.frames)
		m.nav.Reset(m.all)
		m.refilter()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if key.Matches(msg, m.keymap.Quit) {
		m.nav.Close()
		return m, tea.Quit
	}
	if m.nav.IsOpen() {
		return m.handleLightboxKey(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Search):
		m.searching = true
		m.search.SetValue(m.query)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor+1 < len(m.visible) {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Open):
		if e, ok := m.selected(); ok {
			m.nav.OpenAt(e.FlatIndex)
		}
	case key.Matches(msg, m.keymap.Favorite):
		if e, ok := m.selected(); ok {
			m.favs.Toggle(e.Thumbnail.ThumbName)
			m.refilter()
		}
	case key.Matches(msg, m.keymap.FavoritesOnly):
		m.favoritesOnly = !m.favoritesOnly
		m.refilter()
	}
	return m, nil
}

// handleLightboxKey routes arrow and escape keys through the dispatcher the
// navigator listens on while open.
func (m Model) handleLightboxKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Prev):
		m.dispatcher.Dispatch(gallery.KeyArrowLeft)
	case key.Matches(msg, m.keymap.Next):
		m.dispatcher.Dispatch(gallery.KeyArrowRight)
	case key.Matches(msg, m.keymap.Cancel):
		m.dispatcher.Dispatch(gallery.KeyEscape)
	case key.Matches(msg, m.keymap.Favorite):
		if e, ok := m.nav.Current(); ok {
			m.favs.Toggle(e.Thumbnail.ThumbName)
			m.refilter()
		}
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keymap.Cancel):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.query = ""
		m.refilter()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.search.Value()
	m.refilter()
	return m, cmd
}

func (m *Model) refilter() {
	m.visible = gallery.FilterByFavorites(gallery.FilterBySearch(m.all, m.query), m.favs.Set(), m.favoritesOnly)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (gallery.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return gallery.Entry{}, false
	}
	return m.visible[m.cursor], true
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7DD3FC"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717A"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#3F3F46"))
	starStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#52525B")).Padding(1, 2)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.loading {
		return "Loading index..."
	}
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\n" + mutedStyle.Render("q quit") + "\n"
	}
	if m.nav.IsOpen() {
		return m.renderLightbox()
	}
	return m.renderList()
}

func (m Model) star(thumbName string) string {
	if m.favs.Contains(thumbName) {
		return starStyle.Render("★")
	}
	return mutedStyle.Render("☆")
}

func (m Model) renderList() string {
	var b strings.Builder

	header := fmt.Sprintf("%d of %d thumbnails", len(m.visible), len(m.all))
	if m.favoritesOnly {
		header += " · favorites only"
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")

	if m.searching {
		b.WriteString(m.search.View())
	} else if m.query != "" {
		b.WriteString(mutedStyle.Render("search: " + m.query))
	}
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(mutedStyle.Render("Nothing matches."))
		b.WriteString("\n")
	}

	start, end := m.window()
	for i := start; i < end; i++ {
		e := m.visible[i]
		line := fmt.Sprintf("%s %4d  %s · %s", m.star(e.Thumbnail.ThumbName), e.FlatIndex, e.Frame.Name, e.Thumbnail.Label)
		if i == m.cursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("↑/↓ move · enter open · / search · f favorite · F favorites only · q quit"))
	return b.String()
}

// window returns the slice of visible rows that fits the terminal
func (m Model) window() (int, int) {
	rows := len(m.visible)
	limit := m.height - 6
	if limit <= 0 || rows <= limit {
		return 0, rows
	}
	start := m.cursor - limit/2
	if start < 0 {
		start = 0
	}
	if start+limit > rows {
		start = rows - limit
	}
	return start, start + limit
}

func (m Model) renderLightbox() string {
	e, _ := m.nav.Current()
	i, _ := m.nav.Index()

	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Frame.Name))
	b.WriteString("  ")
	b.WriteString(m.star(e.Thumbnail.ThumbName))
	b.WriteString("\n\n")
	b.WriteString(e.Thumbnail.Label)
	b.WriteString("\n")
	if e.Thumbnail.Texts != "" {
		b.WriteString(mutedStyle.Render(e.Thumbnail.Texts))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(truncate(e.Thumbnail.Image, 72)))
	b.WriteString("\n")
	if link := e.FigmaURL(); link != "" {
		b.WriteString("Open in Figma: " + link)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	prev, next := "  ", "  "
	if m.nav.HasPrev() {
		prev = "← "
	}
	if m.nav.HasNext() {
		next = " →"
	}
	b.WriteString(fmt.Sprintf("%s%d / %d%s", prev, i+1, m.nav.Len(), next))

	return boxStyle.Render(b.String()) + "\n" + mutedStyle.Render("←/→ navigate · f favorite · esc close · q quit")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
