// Package catalog holds the declarative description of everything devup
// provisions: packages, casks, editor plugins, the language runtime and
// the backup candidate list. A catalog is loaded once per run and never
// mutated; ordering is declaration order and carries no dependency
// semantics between entries.
package catalog

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var defaultCatalog []byte

// Tool declares one installable unit. Formula and Apt name the unit in
// the respective package manager; Cask and App are set for bundle-style
// GUI applications, where App is the name used for the OS-level
// application search fallback.
type Tool struct {
	Name    string `toml:"name"`
	Formula string `toml:"formula,omitempty"`
	Apt     string `toml:"apt,omitempty"`
	Cask    string `toml:"cask,omitempty"`
	App     string `toml:"app,omitempty"`
}

// Runtime declares the interpreter and the auxiliary libraries installed
// system-wide during the language runtime stage
type Runtime struct {
	Interpreter string   `toml:"interpreter"`
	Libraries   []string `toml:"libraries"`
}

// Catalog is the full declaration set for one run
type Catalog struct {
	Version int `toml:"version"`

	// Tools are standard package-manager formulae
	Tools []Tool `toml:"tools"`

	// Casks are opaque application bundles (macOS only)
	Casks []Tool `toml:"casks"`

	Runtime Runtime `toml:"runtime"`

	// Plugins are source-control URLs bundled for offline transfer
	Plugins []string `toml:"plugins"`

	// RemotePackages is the OS-package list installed by the unpacker
	RemotePackages []string `toml:"remote_packages"`

	// BackupCandidates are home-relative paths relocated before devup
	// overwrites them
	BackupCandidates []string `toml:"backup_candidates"`
}

// Load returns the user's catalog override if one exists at path,
// otherwise the embedded default. Override files replace the catalog
// wholesale, they are not merged.
func Load(path string) (*Catalog, error) {
	logger := logging.GetLogger("catalog")

	data := defaultCatalog
	source := "embedded"
	if path != "" {
		if content, err := os.ReadFile(path); err == nil {
			data = content
			source = path
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrCatalogLoad, "failed to read catalog %s", path)
		}
	}

	var cat Catalog
	if err := toml.Unmarshal(data, &cat); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCatalogParse, "failed to parse catalog from %s", source)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("source", source).
		Int("tools", len(cat.Tools)).
		Int("casks", len(cat.Casks)).
		Int("plugins", len(cat.Plugins)).
		Msg("Catalog loaded")

	return &cat, nil
}

// Validate enforces the catalog invariants: non-empty tool names, unique
// derived plugin names (they become filesystem keys in the staging area
// and the archive), and unique backup candidate base names (they become
// entries directly under the per-run backup directory).
func (c *Catalog) Validate() error {
	for _, tool := range append(append([]Tool{}, c.Tools...), c.Casks...) {
		if tool.Name == "" {
			return errors.New(errors.ErrCatalogInvalid, "catalog entry with empty name")
		}
	}

	seen := make(map[string]string)
	for _, url := range c.Plugins {
		name := DeriveName(url)
		if name == "" {
			return errors.Newf(errors.ErrCatalogInvalid, "cannot derive a directory name from plugin URL %q", url)
		}
		if prev, ok := seen[name]; ok {
			return errors.Newf(errors.ErrCatalogInvalid,
				"plugin URLs %q and %q both derive directory name %q", prev, url, name)
		}
		seen[name] = url
	}

	bases := make(map[string]string)
	for _, candidate := range c.BackupCandidates {
		base := filepath.Base(candidate)
		if base == "." || base == string(filepath.Separator) {
			return errors.Newf(errors.ErrCatalogInvalid, "invalid backup candidate %q", candidate)
		}
		if prev, ok := bases[base]; ok {
			return errors.Newf(errors.ErrCatalogInvalid,
				"backup candidates %q and %q would collide in the backup directory", prev, candidate)
		}
		bases[base] = candidate
	}

	return nil
}

// DeriveName maps a source-control URL to its local directory name: the
// final path segment minus any ".git" suffix
func DeriveName(url string) string {
	trimmed := strings.TrimRight(url, "/")
	segment := trimmed[strings.LastIndex(trimmed, "/")+1:]
	return strings.TrimSuffix(segment, ".git")
}

// PluginNames returns the derived directory name for every plugin URL,
// in declaration order
func (c *Catalog) PluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for _, url := range c.Plugins {
		names = append(names, DeriveName(url))
	}
	return names
}
