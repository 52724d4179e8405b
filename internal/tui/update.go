package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

// ─── Update ──────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case tea.KeyMsg:
		// Global quit
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.Screen == ScreenSearch && m.SearchInput.Focused() {
			return m.handleSearchInputKeys(msg)
		}
		return m.handleKeyPress(msg.String())

	// ─── Data loaded messages ────────────────────────────────────────────
	case dashboardLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.Stats = msg.stats
		m.PopularTags = msg.tags
		return m, nil

	case searchResultsMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			m.SearchInput.Focus()
			return m, nil
		}
		m.SearchResults = msg.results
		m.SearchQuery = msg.query
		m.Screen = ScreenSearchResults
		m.Cursor = 0
		m.Scroll = 0
		return m, nil

	case stickerListMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		switch msg.screen {
		case ScreenRecent:
			m.Recent = msg.stickers
		case ScreenMostShared:
			m.MostShared = msg.stickers
		}
		return m, nil

	case stickerDetailMsg:
		m.Busy = false
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.Selected = msg.sticker
		if m.Screen != ScreenStickerDetail {
			m.DetailReturn = m.Screen
		}
		m.Screen = ScreenStickerDetail
		m.ConfirmDelete = false
		m.StatusMsg = ""
		return m, nil

	case actionDoneMsg:
		m.Busy = false
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.StatusMsg = msg.status
		if msg.deleted && m.Selected != nil {
			m.removeFromLists(m.Selected.Sticker.UUID)
			m.Selected = nil
			m.Screen = m.DetailReturn
			m.clampCursor()
			return m, loadDashboard(m.lib)
		}
		return m, nil

	case spinner.TickMsg:
		// Only forward spinner ticks while an action runs
		if m.Busy {
			var cmd tea.Cmd
			m.Spinner, cmd = m.Spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m, nil
}

// ─── Key Press Router ────────────────────────────────────────────────────────

func (m Model) handleKeyPress(key string) (tea.Model, tea.Cmd) {
	// Clear messages on any keypress
	m.ErrorMsg = ""
	if m.Screen != ScreenStickerDetail {
		m.StatusMsg = ""
	}

	switch m.Screen {
	case ScreenDashboard:
		return m.handleDashboardKeys(key)
	case ScreenSearch:
		return m.handleSearchKeys(key)
	case ScreenSearchResults, ScreenRecent, ScreenMostShared:
		return m.handleListKeys(key)
	case ScreenStickerDetail:
		return m.handleDetailKeys(key)
	}
	return m, nil
}

// ─── Dashboard ───────────────────────────────────────────────────────────────

var dashboardMenuItems = []string{
	"Search stickers",
	"Recently added",
	"Most shared",
	"Quit",
}

func (m Model) handleDashboardKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(dashboardMenuItems)-1 {
			m.Cursor++
		}
	case "enter", " ":
		return m.handleDashboardSelection()
	case "s", "/":
		return m.openSearch(), nil
	case "r":
		return m, loadDashboard(m.lib)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleDashboardSelection() (tea.Model, tea.Cmd) {
	switch m.Cursor {
	case 0:
		return m.openSearch(), nil
	case 1:
		m.PrevScreen = ScreenDashboard
		m.Screen = ScreenRecent
		m.Cursor = 0
		m.Scroll = 0
		return m, loadRecent(m.lib)
	case 2:
		m.PrevScreen = ScreenDashboard
		m.Screen = ScreenMostShared
		m.Cursor = 0
		m.Scroll = 0
		return m, loadMostShared(m.lib)
	case 3:
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) openSearch() Model {
	m.PrevScreen = ScreenDashboard
	m.Screen = ScreenSearch
	m.Cursor = 0
	m.SearchInput.SetValue("")
	m.SearchInput.Focus()
	return m
}

// ─── Search Input ────────────────────────────────────────────────────────────

func (m Model) handleSearchInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// An empty query lists everything
		m.SearchInput.Blur()
		return m, searchStickers(m.lib, m.SearchInput.Value())
	case "esc":
		m.SearchInput.Blur()
		m.Screen = m.PrevScreen
		m.Cursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	return m, cmd
}

func (m Model) handleSearchKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc", "q":
		m.Screen = m.PrevScreen
		m.Cursor = 0
		return m, nil
	case "i", "/":
		m.SearchInput.Focus()
		return m, nil
	}
	return m, nil
}

// ─── Sticker Lists ───────────────────────────────────────────────────────────

// currentList is the list shown on the active list screen.
func (m Model) currentList() []store.StickerWithTags {
	switch m.Screen {
	case ScreenSearchResults:
		return m.SearchResults
	case ScreenRecent:
		return m.Recent
	case ScreenMostShared:
		return m.MostShared
	}
	return nil
}

func (m Model) listVisibleItems() int {
	n := (m.Height - 10) / 2 // 2 lines per sticker
	if n < 3 {
		n = 3
	}
	return n
}

func (m Model) handleListKeys(key string) (tea.Model, tea.Cmd) {
	list := m.currentList()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
			if m.Cursor < m.Scroll {
				m.Scroll = m.Cursor
			}
		}
	case "down", "j":
		if m.Cursor < len(list)-1 {
			m.Cursor++
			if m.Cursor >= m.Scroll+m.listVisibleItems() {
				m.Scroll = m.Cursor - m.listVisibleItems() + 1
			}
		}
	case "enter":
		// One detail load at a time; a second one would count another click.
		if m.Busy || m.Cursor >= len(list) {
			return m, nil
		}
		m.Busy = true
		return m, loadStickerDetail(m.lib, list[m.Cursor].Sticker.UUID)
	case "/":
		return m.openSearch(), nil
	case "esc", "q":
		if m.Screen == ScreenSearchResults {
			m.Screen = ScreenSearch
			m.SearchInput.Focus()
		} else {
			m.Screen = ScreenDashboard
		}
		m.Cursor = 0
		m.Scroll = 0
		return m, loadDashboard(m.lib)
	}
	return m, nil
}

// ─── Sticker Detail ──────────────────────────────────────────────────────────

func (m Model) handleDetailKeys(key string) (tea.Model, tea.Cmd) {
	if m.Busy {
		return m, nil
	}

	if m.ConfirmDelete {
		m.ConfirmDelete = false
		if key == "y" && m.Selected != nil {
			m.Busy = true
			return m, tea.Batch(m.Spinner.Tick, deleteSticker(m.lib, m.Selected.Sticker.UUID))
		}
		m.StatusMsg = ""
		return m, nil
	}

	if key == "esc" || key == "q" {
		m.Screen = m.DetailReturn
		if m.Screen == ScreenStickerDetail {
			m.Screen = ScreenDashboard
		}
		m.Selected = nil
		m.StatusMsg = ""
		return m, nil
	}
	if m.Selected == nil {
		return m, nil
	}
	id := m.Selected.Sticker.UUID

	switch key {
	case "e":
		m.Busy = true
		m.StatusMsg = ""
		return m, tea.Batch(m.Spinner.Tick, exportSticker(m.lib, id))
	case "s":
		m.Busy = true
		m.StatusMsg = ""
		return m, tea.Batch(m.Spinner.Tick, shareSticker(m.lib, id))
	case "d":
		m.ConfirmDelete = true
		m.StatusMsg = ""
	}
	return m, nil
}

func (m *Model) removeFromLists(uuid string) {
	drop := func(list []store.StickerWithTags) []store.StickerWithTags {
		out := list[:0]
		for _, sw := range list {
			if sw.Sticker.UUID != uuid {
				out = append(out, sw)
			}
		}
		return out
	}
	m.SearchResults = drop(m.SearchResults)
	m.Recent = drop(m.Recent)
	m.MostShared = drop(m.MostShared)
}

func (m *Model) clampCursor() {
	n := len(m.currentList())
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Scroll > m.Cursor {
		m.Scroll = m.Cursor
	}
}
