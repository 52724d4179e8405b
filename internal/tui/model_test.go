package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/androiddevnotesforks/Rays-Android/internal/library"
	"github.com/androiddevnotesforks/Rays-Android/internal/prefs"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

func newTestModel(t *testing.T) (Model, *library.Library) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.New(store.Config{DataDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	pr, err := prefs.Open(dir, nil)
	require.NoError(t, err)

	lib := library.New(st, pr, nil, library.Options{})
	m := New(lib, "test")
	m.Height = 40
	return m, lib
}

func add(t *testing.T, lib *library.Library, title, md5 string, tags ...string) string {
	t.Helper()
	id, err := lib.Store().AddSticker(store.AddStickerParams{Title: title, StickerMD5: md5, Tags: tags})
	require.NoError(t, err)
	return id
}

// step feeds msg to the model and then resolves the returned command once.
func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	if out := cmd(); out != nil {
		if _, isBatch := out.(tea.BatchMsg); !isBatch {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDashboardLoadsStatsAndTags(t *testing.T) {
	m, lib := newTestModel(t)
	id := add(t, lib, "cat", "m1", "cute")
	_, err := lib.Store().AddShareCount(id, 3)
	require.NoError(t, err)

	m = step(t, m, loadDashboard(lib)())
	require.NotNil(t, m.Stats)
	assert.Equal(t, 1, m.Stats.TotalStickers)
	require.Len(t, m.PopularTags, 1)
	assert.Equal(t, "cute", m.PopularTags[0].Tag)

	view := m.View()
	assert.Contains(t, view, "stickers")
	assert.Contains(t, view, "cute")
}

func TestSearchFlowOpensDetailAndCountsClick(t *testing.T) {
	m, lib := newTestModel(t)
	id := add(t, lib, "happy cat", "m1", "cute")
	add(t, lib, "dog", "m2")

	m = step(t, m, key("s"))
	require.Equal(t, ScreenSearch, m.Screen)
	require.True(t, m.SearchInput.Focused())

	m.SearchInput.SetValue("cute")
	m = step(t, m, key("enter"))
	require.Equal(t, ScreenSearchResults, m.Screen)
	require.Len(t, m.SearchResults, 1)
	assert.Contains(t, m.View(), "happy cat")

	m = step(t, m, key("enter"))
	require.Equal(t, ScreenStickerDetail, m.Screen)
	require.NotNil(t, m.Selected)
	assert.Equal(t, id, m.Selected.Sticker.UUID)
	assert.EqualValues(t, 1, m.Selected.Sticker.ClickCount)

	m = step(t, m, key("esc"))
	assert.Equal(t, ScreenSearchResults, m.Screen)
}

func TestRepeatedEnterLoadsDetailOnce(t *testing.T) {
	m, lib := newTestModel(t)
	id := add(t, lib, "cat", "m1")
	m = step(t, m, searchStickers(lib, "")())
	require.Equal(t, ScreenSearchResults, m.Screen)

	next, load := m.Update(key("enter"))
	m = next.(Model)
	require.NotNil(t, load)
	assert.True(t, m.Busy)

	next, again := m.Update(key("enter"))
	m = next.(Model)
	assert.Nil(t, again, "enter while a detail load runs is ignored")

	m = step(t, m, load())
	require.Equal(t, ScreenStickerDetail, m.Screen)
	assert.False(t, m.Busy)
	assert.EqualValues(t, 1, m.Selected.Sticker.ClickCount)

	// A late detail result must not make the detail screen its own parent.
	m = step(t, m, stickerDetailMsg{sticker: m.Selected})
	assert.Equal(t, ScreenSearchResults, m.DetailReturn)

	m = step(t, m, key("esc"))
	assert.Equal(t, ScreenSearchResults, m.Screen)
	assert.Nil(t, m.Selected)

	sw, err := lib.Sticker(id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sw.Sticker.ClickCount)
}

func TestDetailEscWithoutSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m.Screen = ScreenStickerDetail
	m.DetailReturn = ScreenStickerDetail

	m = step(t, m, key("esc"))
	assert.Equal(t, ScreenDashboard, m.Screen)
}

func TestRecentAndMostSharedScreens(t *testing.T) {
	m, lib := newTestModel(t)
	add(t, lib, "first", "m1")
	shared := add(t, lib, "second", "m2")
	_, err := lib.Store().AddShareCount(shared, 1)
	require.NoError(t, err)

	m = step(t, m, key("down"))
	m = step(t, m, key("enter"))
	require.Equal(t, ScreenRecent, m.Screen)
	assert.Len(t, m.Recent, 2)

	m = step(t, m, key("esc"))
	require.Equal(t, ScreenDashboard, m.Screen)

	m.Cursor = 2
	m = step(t, m, key("enter"))
	require.Equal(t, ScreenMostShared, m.Screen)
	require.Len(t, m.MostShared, 1)
	assert.Equal(t, shared, m.MostShared[0].Sticker.UUID)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, lib := newTestModel(t)
	id := add(t, lib, "cat", "m1")

	m = step(t, m, searchStickers(lib, "")())
	require.Len(t, m.SearchResults, 1)
	m = step(t, m, key("enter"))
	require.Equal(t, ScreenStickerDetail, m.Screen)

	m = step(t, m, key("d"))
	assert.True(t, m.ConfirmDelete)
	m = step(t, m, key("n"))
	assert.False(t, m.ConfirmDelete)
	_, err := lib.Sticker(id)
	require.NoError(t, err)

	m = step(t, m, key("d"))
	next, _ := m.Update(key("y"))
	m = next.(Model)
	assert.True(t, m.Busy)
	m = step(t, m, deleteSticker(lib, id)())

	assert.False(t, m.Busy)
	assert.Equal(t, ScreenSearchResults, m.Screen)
	assert.Empty(t, m.SearchResults)
	_, err = lib.Sticker(id)
	assert.ErrorIs(t, err, store.ErrStickerNotFound)
}

func TestExportWithoutDirShowsError(t *testing.T) {
	m, lib := newTestModel(t)
	id := add(t, lib, "cat", "m1")
	m = step(t, m, searchStickers(lib, "")())
	m = step(t, m, key("enter"))

	m = step(t, m, exportSticker(lib, id)())
	assert.False(t, m.Busy)
	assert.Contains(t, m.View(), "Error:")
}

func TestBlurredStickerHiddenInList(t *testing.T) {
	m, lib := newTestModel(t)
	add(t, lib, "secret title", "m1", "private")
	_, err := lib.PrefsStore().Update(func(p *prefs.Preferences) {
		p.BlurSticker = true
		p.BlurStickerKeywords = []string{"private"}
	})
	require.NoError(t, err)

	m = step(t, m, searchStickers(lib, "")())
	view := m.View()
	assert.False(t, strings.Contains(view, "secret title"))
	assert.Contains(t, view, "(hidden)")
}

func TestTruncateStrIsRuneSafe(t *testing.T) {
	assert.Equal(t, "早上好...", truncateStr("早上好呀朋友", 3))
	assert.Equal(t, "a b", truncateStr("a\nb", 10))
}
