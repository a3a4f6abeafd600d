package unpack

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/devup/pkg/bundle"
	"github.com/arthur-debert/devup/pkg/catalog"
	devuperrors "github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/pkgmgr"
	"github.com/arthur-debert/devup/pkg/testutil"
)

// buildArchive assembles a real archive through the bundler, the same
// code path the bundle command uses
func buildArchive(t *testing.T, plugins map[string]string) (string, *catalog.Catalog) {
	t.Helper()

	clones := t.TempDir()
	staging := t.TempDir()

	var urls []string
	for name, content := range plugins {
		urls = append(urls, "https://github.com/acme/"+name+".git")
		dir := testutil.CreateDir(t, clones, name)
		testutil.CreateFile(t, dir, "plugin/"+name+".vim", content)
	}

	cat := &catalog.Catalog{Plugins: urls}
	require.NoError(t, cat.Validate())

	bundler := bundle.New(clones, staging, cat)
	require.NoError(t, bundler.Stage())

	archivePath := filepath.Join(t.TempDir(), "plugins.tar.gz")
	require.NoError(t, bundler.Archive(archivePath))
	return archivePath, cat
}

func TestExtract_Roundtrip(t *testing.T) {
	archivePath, cat := buildArchive(t, map[string]string{
		"fzf":      "\" fzf body\n",
		"nerdtree": "\" nerdtree body\n",
	})

	pluginDir := filepath.Join(t.TempDir(), "plugged")
	manifest, err := Extract(archivePath, pluginDir)
	require.NoError(t, err)

	assert.ElementsMatch(t, cat.PluginNames(), manifest.Plugins)
	assert.Equal(t, "\" fzf body\n",
		testutil.ReadFile(t, filepath.Join(pluginDir, "fzf", "plugin", "fzf.vim")))
	assert.Equal(t, "\" nerdtree body\n",
		testutil.ReadFile(t, filepath.Join(pluginDir, "nerdtree", "plugin", "nerdtree.vim")))
}

func TestExtract_ManifestWrittenAlongsideArchive(t *testing.T) {
	archivePath, _ := buildArchive(t, map[string]string{"fzf": "x"})

	manifestPath := filepath.Join(filepath.Dir(archivePath), bundle.ManifestName)
	assert.True(t, testutil.FileExists(t, manifestPath))
}

func TestExtract_MissingManifestRejected(t *testing.T) {
	// A bare tarball without the embedded manifest is not a valid bundle
	archivePath := filepath.Join(t.TempDir(), "bare.tar.gz")
	writeRawArchive(t, archivePath, map[string]string{"fzf/plugin/fzf.vim": "x"})

	_, err := Extract(archivePath, t.TempDir())
	require.Error(t, err)
	assert.True(t, devuperrors.IsErrorCode(err, devuperrors.ErrManifestMissing))
}

func TestExtract_ContentMismatchRejected(t *testing.T) {
	manifest := &bundle.Manifest{FormatVersion: bundle.ManifestFormatVersion, Plugins: []string{"fzf", "missing-one"}}
	manifestData, err := manifest.Marshal()
	require.NoError(t, err)

	archivePath := filepath.Join(t.TempDir(), "bad.tar.gz")
	writeRawArchive(t, archivePath, map[string]string{
		bundle.ManifestName:  string(manifestData),
		"fzf/plugin/fzf.vim": "x",
		"rogue/evil.vim":     "y",
	})

	_, err = Extract(archivePath, t.TempDir())
	require.Error(t, err)
	assert.True(t, devuperrors.IsErrorCode(err, devuperrors.ErrManifestInvalid))
}

func TestExtract_PathTraversalRejected(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	writeRawArchive(t, archivePath, map[string]string{
		"../outside.vim": "pwned",
	})

	target := t.TempDir()
	_, err := Extract(archivePath, target)
	require.Error(t, err)
	assert.True(t, devuperrors.IsErrorCode(err, devuperrors.ErrArchiveExtract))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(target), "outside.vim"))
}

func TestExtract_SymlinkEscapeRejected(t *testing.T) {
	manifest := &bundle.Manifest{FormatVersion: bundle.ManifestFormatVersion, Plugins: []string{"fzf"}}
	manifestData, err := manifest.Marshal()
	require.NoError(t, err)

	// Entry names stay inside the target; only the link target escapes
	archivePath := filepath.Join(t.TempDir(), "sneaky.tar.gz")
	f, err := os.Create(archivePath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: bundle.ManifestName, Mode: 0644, Size: int64(len(manifestData))}))
	_, err = tw.Write(manifestData)
	require.NoError(t, err)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     "fzf/link",
		Typeflag: tar.TypeSymlink,
		Linkname: "../../outside",
		Mode:     0777,
	}))
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	_, err = Extract(archivePath, t.TempDir())
	require.Error(t, err)
	assert.True(t, devuperrors.IsErrorCode(err, devuperrors.ErrArchiveExtract))
	assert.Contains(t, err.Error(), "links outside")
}

func TestLinkEscapes(t *testing.T) {
	root := filepath.Join("/", "plug")
	link := filepath.Join(root, "fzf", "link")

	assert.False(t, linkEscapes(root, link, "doc/tags"))
	assert.False(t, linkEscapes(root, link, filepath.Join("..", "fzf", "doc")))
	assert.True(t, linkEscapes(root, link, filepath.Join("..", "..", "etc")))
	assert.True(t, linkEscapes(root, link, filepath.Join("/", "etc", "passwd")))
}

func TestExtract_NotAnArchive(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateFile(t, tmpDir, "not-gzip.tar.gz", "plain text")

	_, err := Extract(path, t.TempDir())
	require.Error(t, err)
	assert.True(t, devuperrors.IsErrorCode(err, devuperrors.ErrArchiveOpen))
}

func TestInstallBasePackages_FailSoft(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.FailOn("dpkg-query", errors.New("nothing installed"))
	runner.FailOn("sudo apt-get install -y tmux", errors.New("mirror missing tmux"))
	apt := pkgmgr.NewApt(runner)

	failed := InstallBasePackages(context.Background(), apt, []string{"git", "tmux", "curl"})

	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, runner.CallCount("sudo apt-get install -y git"))
	assert.Equal(t, 1, runner.CallCount("sudo apt-get install -y curl"),
		"packages after a failure are still attempted")
}

func TestInstallBasePackages_SkipsPresent(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.OutputFor("dpkg-query", []byte("install ok installed"))
	apt := pkgmgr.NewApt(runner)

	failed := InstallBasePackages(context.Background(), apt, []string{"git", "tmux"})

	assert.Equal(t, 0, failed)
	assert.Equal(t, 0, runner.CallCount("sudo apt-get install"))
}

func TestPrintManifest(t *testing.T) {
	var buf bytes.Buffer
	PrintManifest(&buf, &bundle.Manifest{FormatVersion: 1, Plugins: []string{"fzf", "ale"}})

	out := buf.String()
	assert.Contains(t, out, "fzf")
	assert.Contains(t, out, "ale")
	assert.Contains(t, out, "v1")
}

// writeRawArchive builds a tar.gz by hand, bypassing the bundler, for
// malformed-input cases
func writeRawArchive(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	for name, content := range entries {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
}
