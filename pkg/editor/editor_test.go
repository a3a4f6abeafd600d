package editor

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/testutil"
)

func linuxFacts() platform.Facts {
	return platform.Facts{
		Family:   platform.FamilyLinux,
		Arch:     "amd64",
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
}

func darwinFacts() platform.Facts {
	return platform.Facts{
		Family:   platform.FamilyDarwin,
		Arch:     "arm64",
		LookPath: func(string) (string, error) { return "", errors.New("not found") },
	}
}

func TestRender_Deterministic(t *testing.T) {
	opts := Options{
		PluginDir: "/home/u/.local/share/nvim/plugged",
		Plugins:   []string{"https://github.com/junegunn/fzf.vim.git"},
	}

	first, err := Render(linuxFacts(), opts)
	require.NoError(t, err)
	second, err := Render(linuxFacts(), opts)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical inputs must render byte-identical documents")
}

func TestRender_OSConditionals(t *testing.T) {
	opts := Options{PluginDir: "/p"}

	darwin, err := Render(darwinFacts(), opts)
	require.NoError(t, err)
	linux, err := Render(linuxFacts(), opts)
	require.NoError(t, err)

	assert.Contains(t, string(darwin), "clipboard=unnamed\n")
	assert.Contains(t, string(linux), "clipboard=unnamedplus")
	assert.NotEqual(t, darwin, linux)
}

func TestRender_HostProgFromResolvedInterpreter(t *testing.T) {
	// The host-prog line names the interpreter where it actually is,
	// independent of whether the editor binary itself resolves
	facts := linuxFacts()
	facts.LookPath = func(name string) (string, error) {
		if name == "python3" {
			return "/usr/bin/python3", nil
		}
		return "", errors.New("not found")
	}

	with, err := Render(facts, Options{PluginDir: "/p"})
	require.NoError(t, err)
	assert.Contains(t, string(with), "let g:python3_host_prog = '/usr/bin/python3'")

	without, err := Render(linuxFacts(), Options{PluginDir: "/p"})
	require.NoError(t, err)
	assert.NotContains(t, string(without), "python3_host_prog",
		"an unresolvable interpreter omits the line")
}

func TestRender_PlugSpecs(t *testing.T) {
	content, err := Render(linuxFacts(), Options{
		PluginDir: "/p",
		Plugins: []string{
			"https://github.com/tpope/vim-surround.git",
			"https://sr.ht/~user/some-plugin.git",
		},
	})
	require.NoError(t, err)

	assert.Contains(t, string(content), "Plug 'tpope/vim-surround'")
	assert.Contains(t, string(content), "Plug 'https://sr.ht/~user/some-plugin'")
}

func TestWrite_OverwritesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nvim", "init.vim")

	testutil.CreateFile(t, tmpDir, filepath.Join("nvim", "init.vim"), "old user content")

	require.NoError(t, Write(path, linuxFacts(), Options{PluginDir: "/p"}))

	content := testutil.ReadFile(t, path)
	assert.NotContains(t, content, "old user content", "document is regenerated, never merged")
	assert.True(t, strings.HasPrefix(content, `" init.vim generated by devup`))
}

func TestManifestText_ListsPluginNames(t *testing.T) {
	cat := &catalog.Catalog{
		Plugins: []string{
			"https://github.com/junegunn/fzf.git",
			"https://github.com/tpope/vim-fugitive.git",
		},
	}

	text := ManifestText(cat)
	assert.Contains(t, text, "fzf\n")
	assert.Contains(t, text, "vim-fugitive\n")
}
