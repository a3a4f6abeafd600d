package pkgmgr

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/testutil"
)

var testTools = []catalog.Tool{
	{Name: "neovim", Formula: "neovim", Apt: "neovim"},
	{Name: "ripgrep", Formula: "ripgrep", Apt: "ripgrep"},
	{Name: "tmux", Formula: "tmux", Apt: "tmux"},
}

func darwinFacts(onPath ...string) platform.Facts {
	resolvable := make(map[string]bool)
	for _, name := range onPath {
		resolvable[name] = true
	}
	return platform.Facts{
		Family: platform.FamilyDarwin,
		Arch:   "arm64",
		LookPath: func(name string) (string, error) {
			if resolvable[name] {
				return "/usr/local/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
	}
}

func TestInstallTools_SkipsPresentTools(t *testing.T) {
	runner := testutil.NewStubRunner()
	// brew list succeeds for everything: all tools read as installed
	mgr := NewHomebrew(runner, "/dev/null")

	require.NoError(t, InstallTools(context.Background(), mgr, testTools))

	assert.Equal(t, 0, runner.CallCount("brew install"),
		"present tools must not trigger an install invocation")
	assert.Equal(t, len(testTools), runner.CallCount("brew list --formula"))
}

func TestInstallTools_InstallsAbsentToolsOnce(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.FailOn("brew list", errors.New("not installed"))
	mgr := NewHomebrew(runner, "/dev/null")

	require.NoError(t, InstallTools(context.Background(), mgr, testTools))

	for _, tool := range testTools {
		assert.Equal(t, 1, runner.CallCount("brew install "+tool.Formula),
			"tool %s must be installed exactly once", tool.Name)
	}
}

func TestInstallTools_FailFastOnInstallError(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.FailOn("brew list", errors.New("not installed"))
	runner.FailOn("brew install ripgrep", errors.New("formula broken"))
	mgr := NewHomebrew(runner, "/dev/null")

	err := InstallTools(context.Background(), mgr, testTools)
	require.Error(t, err)

	// neovim precedes ripgrep in declaration order; tmux is never reached
	assert.Equal(t, 1, runner.CallCount("brew install neovim"))
	assert.Equal(t, 0, runner.CallCount("brew install tmux"))
}

// Installation order has no semantic effect: no entry depends on another,
// so the same set of installs happens regardless of declaration order.
func TestInstallTools_OrderCommutes(t *testing.T) {
	forward := testutil.NewStubRunner()
	forward.FailOn("brew list", errors.New("not installed"))
	require.NoError(t, InstallTools(context.Background(), NewHomebrew(forward, "/dev/null"), testTools))

	reversed := make([]catalog.Tool, len(testTools))
	for i, tool := range testTools {
		reversed[len(testTools)-1-i] = tool
	}
	backward := testutil.NewStubRunner()
	backward.FailOn("brew list", errors.New("not installed"))
	require.NoError(t, InstallTools(context.Background(), NewHomebrew(backward, "/dev/null"), reversed))

	assert.ElementsMatch(t, installLines(forward), installLines(backward))
}

func installLines(runner *testutil.StubRunner) []string {
	var lines []string
	for _, call := range runner.Calls() {
		line := call.String()
		if len(line) >= len("brew install") && line[:len("brew install")] == "brew install" {
			lines = append(lines, line)
		}
	}
	sort.Strings(lines)
	return lines
}

func TestInstallCasks_NonCaskManagerIsNoop(t *testing.T) {
	runner := testutil.NewStubRunner()
	apt := NewApt(runner)

	require.NoError(t, InstallCasks(context.Background(), apt, []catalog.Tool{{Name: "iterm2", Cask: "iterm2"}}))
	assert.Empty(t, runner.Calls())
}

func TestInstallCasks_InstallsAbsentCask(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.FailOn("brew list --cask", errors.New("not installed"))
	mgr := NewHomebrew(runner, "/dev/null")

	casks := []catalog.Tool{{Name: "iterm2", Cask: "iterm2", App: "iTerm"}}
	require.NoError(t, InstallCasks(context.Background(), mgr, casks))

	assert.Equal(t, 1, runner.CallCount("brew install --cask iterm2"))
}

func TestSetupRuntime_InstallsLibrariesInOneBatch(t *testing.T) {
	runner := testutil.NewStubRunner()
	mgr := NewHomebrew(runner, "/dev/null")

	rt := catalog.Runtime{Interpreter: "python3", Libraries: []string{"pynvim", "black"}}
	require.NoError(t, SetupRuntime(context.Background(), mgr, darwinFacts("python3"), rt, runner))

	assert.Equal(t, 1, runner.CallCount("python3 -m pip install --upgrade pynvim black"))
	assert.Equal(t, 0, runner.CallCount("brew install python3"),
		"interpreter already on PATH must not be reinstalled")
}

func TestSetupRuntime_InstallsMissingInterpreter(t *testing.T) {
	runner := testutil.NewStubRunner()
	runner.FailOn("brew list", errors.New("not installed"))
	mgr := NewHomebrew(runner, "/dev/null")

	rt := catalog.Runtime{Interpreter: "python3"}
	require.NoError(t, SetupRuntime(context.Background(), mgr, darwinFacts(), rt, runner))

	assert.Equal(t, 1, runner.CallCount("brew install python3"))
}

func TestForPlatform(t *testing.T) {
	runner := testutil.NewStubRunner()

	mgr, err := ForPlatform(darwinFacts(), runner, "/dev/null")
	require.NoError(t, err)
	assert.Equal(t, "homebrew", mgr.Name())

	linux := platform.Facts{
		Family: platform.FamilyLinux,
		LookPath: func(name string) (string, error) {
			if name == "apt-get" {
				return "/usr/bin/apt-get", nil
			}
			return "", errors.New("not found")
		},
	}
	mgr, err = ForPlatform(linux, runner, "/dev/null")
	require.NoError(t, err)
	assert.Equal(t, "apt", mgr.Name())

	_, err = ForPlatform(platform.Facts{Family: "plan9"}, runner, "/dev/null")
	require.Error(t, err)
}
