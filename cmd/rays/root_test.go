package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/androiddevnotesforks/Rays-Android/internal/share"
	"github.com/androiddevnotesforks/Rays-Android/internal/store"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func newDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("RAYS_DATA_DIR", dir)
	t.Setenv("RAYS_CONFIG", "")
	t.Setenv("RAYS_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := run(t, dataDir, args...)
	require.NoError(t, err, "rays %v: %s", args, out)
	return out
}

func searchJSON(t *testing.T, dataDir string, keyword ...string) []store.StickerWithTags {
	t.Helper()
	out := mustRun(t, dataDir, append([]string{"search", "--json"}, keyword...)...)
	var list []store.StickerWithTags
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	return list
}

func importOne(t *testing.T, dataDir, name string, args ...string) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(src, pngBytes, 0644))
	out := mustRun(t, dataDir, append([]string{"import", src}, args...)...)
	require.Contains(t, out, "Imported")

	list := searchJSON(t, dataDir)
	require.Len(t, list, 1)
	return list[0].Sticker.UUID
}

func TestVersion(t *testing.T) {
	dir := newDataDir(t)
	out := mustRun(t, dir, "version")
	assert.Equal(t, "rays "+version+"\n", out)
}

func TestImportTagSearchDelete(t *testing.T) {
	dir := newDataDir(t)
	id := importOne(t, dir, "good-morning.png", "--tag", "greeting,daily")

	assert.FileExists(t, filepath.Join(dir, "stickers", id))

	mustRun(t, dir, "title", id, "早上好")
	mustRun(t, dir, "tag", id, "sunny")
	out := mustRun(t, dir, "untag", id, "daily")
	assert.Contains(t, out, "greeting, sunny")

	list := searchJSON(t, dir, "sunny")
	require.Len(t, list, 1)
	assert.Equal(t, "早上好", list[0].Sticker.Title)

	out = mustRun(t, dir, "show", id)
	assert.Contains(t, out, "Title:       早上好")
	assert.Contains(t, out, "Last shared: never")

	out = mustRun(t, dir, "tag", "--replace", id, "only")
	assert.Contains(t, out, id+" tags: only")

	out = mustRun(t, dir, "delete", id)
	assert.Contains(t, out, "Deleted 1 of 1")
	assert.NoFileExists(t, filepath.Join(dir, "stickers", id))
	assert.Empty(t, searchJSON(t, dir))
}

func TestImportSkipsDuplicates(t *testing.T) {
	dir := newDataDir(t)
	importOne(t, dir, "a.png")

	src := filepath.Join(t.TempDir(), "copy.png")
	require.NoError(t, os.WriteFile(src, pngBytes, 0644))
	out := mustRun(t, dir, "import", src)
	assert.Contains(t, out, "Skipped")
}

func TestShowMissingSticker(t *testing.T) {
	dir := newDataDir(t)
	_, err := run(t, dir, "show", "nope")
	assert.ErrorIs(t, err, store.ErrStickerNotFound)
}

func TestBackupAndRestore(t *testing.T) {
	dir := newDataDir(t)
	id := importOne(t, dir, "cat.png", "--tag", "cute")
	backup := filepath.Join(t.TempDir(), "backup.json")

	out := mustRun(t, dir, "backup", backup)
	assert.Contains(t, out, "Backed up 1 stickers")

	other := newDataDir(t)
	out = mustRun(t, other, "restore", backup)
	assert.Contains(t, out, "Stickers: 1")

	list := searchJSON(t, other, "cute")
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].Sticker.UUID)
}

func TestPrefsAndDomains(t *testing.T) {
	dir := newDataDir(t)
	importOne(t, dir, "cat.png", "--tag", "cute")

	mustRun(t, dir, "domains", "disable", "tags.tag")
	out := mustRun(t, dir, "domains")
	assert.Contains(t, out, "tags.tag")
	assert.Contains(t, out, "off")
	assert.Empty(t, searchJSON(t, dir, "cute"))

	_, err := run(t, dir, "domains", "enable", "tag")
	assert.Error(t, err)

	mustRun(t, dir, "prefs", "set", "use_regex_search", "true")
	out = mustRun(t, dir, "prefs")
	assert.Contains(t, out, "use_regex_search: true")

	_, err = run(t, dir, "prefs", "set", "no_such_key", "1")
	assert.Error(t, err)
}

func TestExportNeedsDirectory(t *testing.T) {
	dir := newDataDir(t)
	id := importOne(t, dir, "cat.png")

	_, err := run(t, dir, "export", id)
	assert.Error(t, err)

	exportDir := t.TempDir()
	out := mustRun(t, dir, "export", "--dir", exportDir, id)
	assert.Contains(t, out, "Exported 1 of 1")
	assert.FileExists(t, filepath.Join(exportDir, id+".png"))
}

func TestShareWithoutDevice(t *testing.T) {
	dir := newDataDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("adb:\n  path: "+filepath.Join(dir, "no-adb")+"\n"), 0644))
	id := importOne(t, dir, "cat.png")

	_, err := run(t, dir, "share", id)
	assert.ErrorIs(t, err, share.ErrNoDevice)
}

func TestStatsAndTags(t *testing.T) {
	dir := newDataDir(t)
	importOne(t, dir, "cat.png", "--tag", "cute")

	out := mustRun(t, dir, "stats")
	assert.Contains(t, out, "Stickers:  1")

	out = mustRun(t, dir, "tags", "recommend")
	assert.Contains(t, out, "cute")

	_, err := run(t, dir, "tags", "bogus")
	assert.Error(t, err)
}
