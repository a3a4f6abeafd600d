package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithHome_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(EnvConfigDir, filepath.Join(tmpDir, "cfg"))
	t.Setenv(EnvStateDir, filepath.Join(tmpDir, "state"))
	t.Setenv(EnvCacheDir, filepath.Join(tmpDir, "cache"))

	p := NewWithHome("/home/u")

	assert.Equal(t, filepath.Join(tmpDir, "cfg"), p.ConfigDir())
	assert.Equal(t, filepath.Join(tmpDir, "state"), p.StateDir())
	assert.Equal(t, filepath.Join(tmpDir, "cache"), p.CacheDir())
	assert.Equal(t, filepath.Join(tmpDir, "state", "backups"), p.BackupsRoot())
	assert.Equal(t, filepath.Join(tmpDir, "cache", "clones"), p.ClonesDir())
	assert.Equal(t, filepath.Join(tmpDir, "cache", "staging"), p.StagingDir())
	assert.Equal(t, filepath.Join(tmpDir, "cfg", "catalog.toml"), p.CatalogPath())
}

func TestEditorPaths(t *testing.T) {
	p := NewWithHome("/home/u")

	assert.Equal(t, "/home/u/.config/nvim/init.vim", p.InitFilePath())
	assert.Equal(t, "/home/u/.local/share/nvim/site/autoload/plug.vim", p.PlugFilePath())
	assert.Equal(t, "/home/u/.local/share/nvim/plugged", p.PluginDir())
}

func TestProfilePath(t *testing.T) {
	p := NewWithHome("/home/u")

	assert.Equal(t, "/home/u/.zshrc", p.ProfilePath("darwin"))
	assert.Equal(t, "/home/u/.bashrc", p.ProfilePath("linux"))
}

func TestGetHomeDirectory(t *testing.T) {
	home, err := GetHomeDirectory()
	require.NoError(t, err)
	assert.NotEmpty(t, home)
}
