// Package editor materializes the static Neovim configuration from a
// versioned template asset. Rendering is a pure function of platform
// facts and options: identical inputs produce byte-identical output, so
// regenerating on every run is safe and the document is always fully
// overwritten, never merged.
package editor

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/platform"
)

//go:embed init.vim.tmpl
var initTemplate string

// Options are the externally supplied slots of the configuration template
type Options struct {
	// PluginDir is where the plugin manager loads plugins from
	PluginDir string

	// Plugins are the source-control URLs of the bundled plugin set
	Plugins []string
}

// templateData is what the template actually sees
type templateData struct {
	Darwin      bool
	RuntimeProg string
	PluginDir   string
	Plugins     []string
}

// Render produces the configuration document for the given platform and
// options. It performs no I/O.
func Render(facts platform.Facts, opts Options) ([]byte, error) {
	tmpl, err := template.New("init.vim").Parse(initTemplate)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigRender, "invalid configuration template")
	}

	data := templateData{
		Darwin:    facts.IsDarwin(),
		PluginDir: opts.PluginDir,
	}
	// The host-prog points at the actual interpreter, not at anything
	// under the editor's own bin directory; unresolvable drops the line
	if facts.LookPath != nil {
		if prog, err := facts.LookPath("python3"); err == nil {
			data.RuntimeProg = prog
		}
	}
	for _, url := range opts.Plugins {
		data.Plugins = append(data.Plugins, plugSpec(url))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigRender, "failed to render configuration")
	}
	return buf.Bytes(), nil
}

// Write renders the document and overwrites the file at path, creating
// parent directories as needed
func Write(path string, facts platform.Facts, opts Options) error {
	logger := logging.GetLogger("editor")

	content, err := Render(facts, opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrConfigWrite, "failed to write %s", path)
	}

	logger.Info().Str("path", path).Int("bytes", len(content)).Msg("Wrote editor configuration")
	return nil
}

// plugSpec maps a repository URL to the short owner/name form the plugin
// manager prefers, falling back to the full URL for non-GitHub hosts
func plugSpec(url string) string {
	const github = "https://github.com/"
	if strings.HasPrefix(url, github) {
		return strings.TrimSuffix(strings.TrimPrefix(url, github), ".git")
	}
	return strings.TrimSuffix(url, ".git")
}

// ManifestText renders the companion plain-text listing of expected
// bundled plugin names, written alongside the configuration document
func ManifestText(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("# Plugins expected by the generated configuration\n")
	for _, name := range cat.PluginNames() {
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}
