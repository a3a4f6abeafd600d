package editor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/testutil"
)

func TestAppendPathLine_AppendsWhenUnresolvable(t *testing.T) {
	tmpDir := t.TempDir()
	profile := filepath.Join(tmpDir, ".bashrc")

	appended, err := AppendPathLine(profile, "/opt/nvim/bin", "nvim", linuxFacts())
	require.NoError(t, err)
	assert.True(t, appended)

	content := testutil.ReadFile(t, profile)
	assert.Contains(t, content, `export PATH="$PATH:/opt/nvim/bin"`)
}

func TestAppendPathLine_SkipsWhenResolvable(t *testing.T) {
	tmpDir := t.TempDir()
	profile := testutil.CreateFile(t, tmpDir, ".bashrc", "# existing\n")

	facts := platform.Facts{
		Family:   platform.FamilyLinux,
		LookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
	}

	appended, err := AppendPathLine(profile, "/opt/nvim/bin", "nvim", facts)
	require.NoError(t, err)
	assert.False(t, appended)
	assert.Equal(t, "# existing\n", testutil.ReadFile(t, profile))
}

// The append is deliberately not de-duplicated: two runs with the binary
// still unresolvable produce two identical lines. This test pins that
// behavior so any future de-duplication is a conscious change.
func TestAppendPathLine_DoubleAppendYieldsTwoLines(t *testing.T) {
	tmpDir := t.TempDir()
	profile := filepath.Join(tmpDir, ".bashrc")

	for i := 0; i < 2; i++ {
		appended, err := AppendPathLine(profile, "/opt/nvim/bin", "nvim", linuxFacts())
		require.NoError(t, err)
		require.True(t, appended)
	}

	content := testutil.ReadFile(t, profile)
	count := strings.Count(content, `export PATH="$PATH:/opt/nvim/bin"`)
	assert.Equal(t, 2, count, "append is not de-duplicated by design")
}

func TestEnsurePlugBootstrap_ExistingFileUntouched(t *testing.T) {
	tmpDir := t.TempDir()
	path := testutil.CreateFile(t, tmpDir, "plug.vim", "\" my patched plug\n")

	require.NoError(t, EnsurePlugBootstrap(context.Background(), path))
	assert.Equal(t, "\" my patched plug\n", testutil.ReadFile(t, path))
}

func TestInstallPlugins_FailureIsSwallowed(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.FailOn("nvim", errors.New("plugin install exploded"))

	// Must not panic or propagate the error
	InstallPlugins(context.Background(), runner)

	assert.Equal(t, 1, runner.CallCount("nvim --headless"))
}
