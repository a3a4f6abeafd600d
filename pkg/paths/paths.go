// Package paths provides centralized path handling for devup.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/devup/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for devup
	EnvConfigDir = "DEVUP_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for devup
	EnvStateDir = "DEVUP_STATE_DIR"

	// EnvCacheDir overrides the XDG cache directory for devup
	EnvCacheDir = "DEVUP_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
// IMPORTANT: These constants define devup's internal layout and are NOT
// user-configurable. The backup, clone and staging directories must remain
// consistent across runs for sweep and incremental update to work.
const (
	// DevupDirName is the directory name for devup-specific files
	DevupDirName = "devup"

	// BackupsDir is the subdirectory holding timestamped config backups
	BackupsDir = "backups"

	// ClonesDir is the subdirectory holding plugin source clones
	ClonesDir = "clones"

	// StagingDir is the subdirectory where archive contents are assembled
	StagingDir = "staging"

	// CatalogFile is the name of the user catalog override file
	CatalogFile = "catalog.toml"

	// DefaultArchiveName is the default plugin archive file name
	DefaultArchiveName = "nvim-plugins.tar.gz"

	// ManifestFile is the bundle manifest name, both inside the archive
	// and written alongside it
	ManifestFile = "devup-manifest.yaml"
)

// Paths provides centralized path management for devup
type Paths interface {
	Home() string
	ConfigDir() string
	StateDir() string
	CacheDir() string
	BackupsRoot() string
	ClonesDir() string
	StagingDir() string
	CatalogPath() string
	ArchivePath(name string) string
	NvimConfigDir() string
	InitFilePath() string
	PlugFilePath() string
	PluginDir() string
	ProfilePath(family string) string
}

type paths struct {
	home      string
	configDir string
	stateDir  string
	cacheDir  string
	dataDir   string
}

// New creates a Paths instance rooted at the current user's home directory.
// XDG directories honor the DEVUP_* override variables.
func New() (Paths, error) {
	home, err := GetHomeDirectory()
	if err != nil {
		return nil, err
	}
	return NewWithHome(home), nil
}

// NewWithHome creates a Paths instance rooted at an explicit home directory.
// Used by tests to sandbox every path devup touches.
func NewWithHome(home string) Paths {
	p := &paths{home: home}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = dir
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, DevupDirName)
	}

	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = dir
	} else {
		p.stateDir = filepath.Join(xdg.StateHome, DevupDirName)
	}

	if dir := os.Getenv(EnvCacheDir); dir != "" {
		p.cacheDir = dir
	} else {
		p.cacheDir = filepath.Join(xdg.CacheHome, DevupDirName)
	}

	p.dataDir = xdg.DataHome

	return p
}

func (p *paths) Home() string      { return p.home }
func (p *paths) ConfigDir() string { return p.configDir }
func (p *paths) StateDir() string  { return p.stateDir }
func (p *paths) CacheDir() string  { return p.cacheDir }

// BackupsRoot returns the directory under which per-run backup
// directories are created
func (p *paths) BackupsRoot() string {
	return filepath.Join(p.stateDir, BackupsDir)
}

// ClonesDir returns the directory holding plugin source clones, kept
// between runs for fast-forward updates
func (p *paths) ClonesDir() string {
	return filepath.Join(p.cacheDir, ClonesDir)
}

// StagingDir returns the clean assembly area for archive contents
func (p *paths) StagingDir() string {
	return filepath.Join(p.cacheDir, StagingDir)
}

// CatalogPath returns the path of the user catalog override file
func (p *paths) CatalogPath() string {
	return filepath.Join(p.configDir, CatalogFile)
}

// ArchivePath returns the full path for a named plugin archive
func (p *paths) ArchivePath(name string) string {
	return filepath.Join(p.cacheDir, name)
}

// NvimConfigDir returns the editor configuration directory
func (p *paths) NvimConfigDir() string {
	return filepath.Join(p.home, ".config", "nvim")
}

// InitFilePath returns the fixed path of the generated configuration document
func (p *paths) InitFilePath() string {
	return filepath.Join(p.NvimConfigDir(), "init.vim")
}

// PlugFilePath returns the path of the plugin-manager bootstrap file
func (p *paths) PlugFilePath() string {
	return filepath.Join(p.home, ".local", "share", "nvim", "site", "autoload", "plug.vim")
}

// PluginDir returns the well-known directory plugins are installed into.
// This is also where the remote unpacker extracts the plugin archive.
func (p *paths) PluginDir() string {
	return filepath.Join(p.home, ".local", "share", "nvim", "plugged")
}

// ProfilePath returns the shell startup file that receives PATH appends
func (p *paths) ProfilePath(family string) string {
	if family == "darwin" {
		return filepath.Join(p.home, ".zshrc")
	}
	return filepath.Join(p.home, ".bashrc")
}

// GetHomeDirectory returns the user's home directory.
// It first tries os.UserHomeDir(), then falls back to the HOME environment
// variable. If both fail, it returns an error rather than using dangerous
// defaults.
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err == nil && homeDir != "" {
		return homeDir, nil
	}

	homeDir = os.Getenv(EnvHome)
	if homeDir != "" {
		return homeDir, nil
	}

	return "", errors.New(errors.ErrFileAccess, "unable to determine home directory: neither os.UserHomeDir() nor HOME environment variable are available")
}
