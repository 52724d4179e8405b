package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestPrefs(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestOpenWithoutFileUsesDefaults(t *testing.T) {
	s := newTestPrefs(t)
	assert.Equal(t, Defaults(), s.Get())
}

func TestUpdatePersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	_, err = s.Update(func(p *Preferences) {
		p.UseRegexSearch = true
		p.BlurStickerKeywords = []string{" nsfw ", "nsfw", ""}
	})
	require.NoError(t, err)

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	got := reopened.Get()
	assert.True(t, got.UseRegexSearch)
	assert.True(t, got.IntersectSearchBySpace)
	assert.Equal(t, []string{"nsfw"}, got.BlurStickerKeywords)
}

func TestSetParsesValues(t *testing.T) {
	s := newTestPrefs(t)

	p, err := s.Set("intersect_search_by_space", "false")
	require.NoError(t, err)
	assert.False(t, p.IntersectSearchBySpace)

	p, err = s.Set("blur_sticker_keywords", "a,b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.BlurStickerKeywords)

	_, err = s.Set("use_regex_search", "maybe")
	assert.Error(t, err)

	_, err = s.Set("no_such_key", "1")
	assert.Error(t, err)
}

func TestSetRejectsBadValueWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	ch := s.Subscribe()

	_, err = s.Set("use_regex_search", "maybe")
	require.Error(t, err)

	assert.NoFileExists(t, filepath.Join(dir, FileName))
	assert.Equal(t, Defaults(), s.Get())
	select {
	case p := <-ch:
		t.Fatalf("unexpected update published: %+v", p)
	default:
	}
}

func TestShouldBlur(t *testing.T) {
	p := Defaults()
	p.BlurStickerKeywords = []string{"secret"}
	assert.False(t, p.ShouldBlur([]string{"top secret"}), "blur disabled")

	p.BlurSticker = true
	assert.True(t, p.ShouldBlur([]string{"cat", "top secret stuff"}))
	assert.False(t, p.ShouldBlur([]string{"cat"}))
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	s := newTestPrefs(t)
	ch := s.Subscribe()

	_, err := s.Update(func(p *Preferences) { p.ExportStickerDir = "/tmp/out" })
	require.NoError(t, err)

	select {
	case p := <-ch:
		assert.Equal(t, "/tmp/out", p.ExportStickerDir)
	case <-time.After(time.Second):
		t.Fatal("no update published")
	}
}

func TestWatchReloadsExternalEdits(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	ch := s.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("use_regex_search: true\n"), 0644))

	select {
	case p := <-ch:
		assert.True(t, p.UseRegexSearch)
	case <-time.After(3 * time.Second):
		t.Fatal("external edit not picked up")
	}
}
