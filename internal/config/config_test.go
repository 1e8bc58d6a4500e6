package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	require.Equal(t, "files", cfg.DefaultChannel)
	require.True(t, cfg.UI.PreviewEnabled)
	require.Equal(t, 50, cfg.UI.PreviewWidth)
	require.True(t, cfg.UI.HelpBar)
	require.Equal(t, 60, cfg.UI.TickMS)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_channel = "git-repos"

[ui]
preview_enabled = false
preview_width = 35

[log]
level = "debug"
file = "/tmp/trawl.log"
`), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "git-repos", cfg.DefaultChannel)
	require.False(t, cfg.UI.PreviewEnabled)
	require.Equal(t, 35, cfg.UI.PreviewWidth)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/trawl.log", cfg.Log.File)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ui]
preview_width = 70
`), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, "files", cfg.DefaultChannel)
	require.True(t, cfg.UI.PreviewEnabled)
	require.Equal(t, 70, cfg.UI.PreviewWidth)
}

func TestOutOfRangeWidthClamped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ui]
preview_width = 99
tick_ms = 4
`), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 90, cfg.UI.PreviewWidth)
	require.Equal(t, 16, cfg.UI.TickMS)
}

func TestMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("HOME", tmp)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "files", cfg.DefaultChannel)
}
