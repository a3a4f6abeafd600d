package bundle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Plugins: []string{
			"https://github.com/junegunn/fzf.git",
			"https://github.com/tpope/vim-fugitive.git",
		},
	}
}

func TestManifest_Roundtrip(t *testing.T) {
	manifest := NewManifest(testCatalog())

	data, err := manifest.Marshal()
	require.NoError(t, err)

	parsed, err := ParseManifest(data)
	require.NoError(t, err)

	assert.Equal(t, ManifestFormatVersion, parsed.FormatVersion)
	assert.Equal(t, []string{"fzf", "vim-fugitive"}, parsed.Plugins)
}

func TestParseManifest_RejectsUnknownVersion(t *testing.T) {
	_, err := ParseManifest([]byte("format_version: 99\nplugins: [a]\n"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
}

func TestParseManifest_RejectsGarbage(t *testing.T) {
	_, err := ParseManifest([]byte("\tnot yaml"))
	require.Error(t, err)
}

func TestManifest_ValidateExactMatch(t *testing.T) {
	manifest := NewManifest(testCatalog())
	assert.NoError(t, manifest.Validate([]string{"vim-fugitive", "fzf"}))
}

func TestManifest_ValidateReportsMissingAndUnexpected(t *testing.T) {
	manifest := NewManifest(testCatalog())

	err := manifest.Validate([]string{"fzf", "rogue-plugin"})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))

	var devupErr *errors.DevupError
	require.ErrorAs(t, err, &devupErr)
	assert.Equal(t, []string{"vim-fugitive"}, devupErr.Details["missing"])
	assert.Equal(t, []string{"rogue-plugin"}, devupErr.Details["unexpected"])
}
