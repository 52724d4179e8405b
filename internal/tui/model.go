// Package tui implements the interactive terminal browser for the sticker
// library using Bubbletea.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/androiddevnotesforks/Rays-Android/internal/library"
	"github.com/androiddevnotesforks/Rays-Android/internal/recommend"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// ─── Screens ─────────────────────────────────────────────────────────────────

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenSearch
	ScreenSearchResults
	ScreenRecent
	ScreenMostShared
	ScreenStickerDetail
)

// dashboardTagCount is how many popular tags the dashboard lists.
const dashboardTagCount = 8

// ─── Custom Messages ─────────────────────────────────────────────────────────

type dashboardLoadedMsg struct {
	stats *store.Stats
	tags  []recommend.TagScore
	err   error
}

type searchResultsMsg struct {
	query   string
	results []store.StickerWithTags
	err     error
}

type stickerListMsg struct {
	screen   Screen
	stickers []store.StickerWithTags
	err      error
}

type stickerDetailMsg struct {
	sticker *store.StickerWithTags
	err     error
}

// actionDoneMsg reports the outcome of export, share or delete on the
// selected sticker.
type actionDoneMsg struct {
	status  string
	deleted bool
	err     error
}

// ─── Model ───────────────────────────────────────────────────────────────────

type Model struct {
	lib        *library.Library
	Version    string
	Screen     Screen
	PrevScreen Screen
	Width      int
	Height     int
	Cursor     int
	Scroll     int

	ErrorMsg  string
	StatusMsg string

	// Dashboard
	Stats       *store.Stats
	PopularTags []recommend.TagScore

	// Search
	SearchInput   textinput.Model
	SearchQuery   string
	SearchResults []store.StickerWithTags

	// Lists
	Recent     []store.StickerWithTags
	MostShared []store.StickerWithTags

	// Detail
	Selected      *store.StickerWithTags
	DetailReturn  Screen
	ConfirmDelete bool
	Busy          bool
	Spinner       spinner.Model
}

// New creates a new TUI model connected to the given library.
func New(lib *library.Library, version string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search stickers..."
	ti.CharLimit = 256
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(colorAccent)

	return Model{
		lib:         lib,
		Version:     version,
		Screen:      ScreenDashboard,
		SearchInput: ti,
		Spinner:     sp,
	}
}

// Init loads initial data (stats and popular tags for the dashboard).
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadDashboard(m.lib),
		tea.EnterAltScreen,
	)
}

// ─── Commands (data loading) ─────────────────────────────────────────────────

func loadDashboard(lib *library.Library) tea.Cmd {
	return func() tea.Msg {
		stats, err := lib.Store().Stats()
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		tags, err := lib.PopularTags(dashboardTagCount)
		return dashboardLoadedMsg{stats: stats, tags: tags, err: err}
	}
}

func searchStickers(lib *library.Library, query string) tea.Cmd {
	return func() tea.Msg {
		results, err := lib.Search(query)
		return searchResultsMsg{query: query, results: results, err: err}
	}
}

func loadRecent(lib *library.Library) tea.Cmd {
	return func() tea.Msg {
		list, err := lib.RecentCreateStickers()
		return stickerListMsg{screen: ScreenRecent, stickers: list, err: err}
	}
}

func loadMostShared(lib *library.Library) tea.Cmd {
	return func() tea.Msg {
		list, err := lib.MostSharedStickers()
		return stickerListMsg{screen: ScreenMostShared, stickers: list, err: err}
	}
}

// loadStickerDetail counts a click, like opening a sticker in the grid does.
func loadStickerDetail(lib *library.Library, uuid string) tea.Cmd {
	return func() tea.Msg {
		if _, err := lib.AddClickCount(uuid, 1); err != nil {
			return stickerDetailMsg{err: err}
		}
		sw, err := lib.Sticker(uuid)
		return stickerDetailMsg{sticker: sw, err: err}
	}
}

func exportSticker(lib *library.Library, uuid string) tea.Cmd {
	return func() tea.Msg {
		n, err := lib.Export(context.Background(), []string{uuid})
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if n == 0 {
			return actionDoneMsg{err: errors.New("export failed, see log")}
		}
		return actionDoneMsg{status: "Exported to " + lib.Prefs().ExportStickerDir}
	}
}

func shareSticker(lib *library.Library, uuid string) tea.Cmd {
	return func() tea.Msg {
		res, err := lib.Share(context.Background(), []string{uuid}, "")
		if err != nil {
			return actionDoneMsg{err: err}
		}
		target := res.App
		if target == "" {
			target = "share chooser"
		}
		return actionDoneMsg{status: "Shared via " + target}
	}
}

func deleteSticker(lib *library.Library, uuid string) tea.Cmd {
	return func() tea.Msg {
		if _, err := lib.Delete([]string{uuid}); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Sticker deleted", deleted: true}
	}
}
