package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RAYS_DATA_DIR", dir)
	t.Setenv("RAYS_CONFIG", "")
	t.Setenv("RAYS_PORT", "")
	t.Setenv("RAYS_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 7438, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Lists.Count)
	assert.Equal(t, filepath.Join(dir, "stickers"), cfg.StickerDir())
}

func TestLoadReadsFileAndEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rays.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
lists:
  count: 25
adb:
  serial: emulator-5554
logging:
  level: debug
`), 0644))

	t.Setenv("RAYS_DATA_DIR", dir)
	t.Setenv("RAYS_CONFIG", path)
	t.Setenv("RAYS_PORT", "9100")
	t.Setenv("RAYS_LOG_LEVEL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Lists.Count)
	assert.Equal(t, "emulator-5554", cfg.ADB.Serial)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "adb", cfg.ADB.Path, "unset fields keep defaults")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0644))
	t.Setenv("RAYS_DATA_DIR", dir)
	t.Setenv("RAYS_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
