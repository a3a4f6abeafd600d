package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/run"
)

const brewInstallURL = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

// Homebrew drives the brew front-end on macOS (and Linuxbrew hosts)
type Homebrew struct {
	runner run.Runner

	// profilePath receives the shellenv hook after bootstrap
	profilePath string

	// brewPath is how brew is invoked. It starts as the bare name and
	// is pinned to the install prefix after a bootstrap, since the
	// running process never picks up the profile's shellenv hook.
	brewPath string
}

// NewHomebrew creates a Homebrew manager. profilePath is the shell
// startup file that receives the shellenv hook when brew is first
// installed.
func NewHomebrew(runner run.Runner, profilePath string) *Homebrew {
	return &Homebrew{runner: runner, profilePath: profilePath, brewPath: "brew"}
}

func (h *Homebrew) Name() string {
	return "homebrew"
}

func (h *Homebrew) Available(facts platform.Facts) bool {
	return facts.OnPath("brew")
}

// Bootstrap installs Homebrew via its upstream install script and
// registers the shellenv hook in the shell profile. The hook line is
// de-duplicated against existing profile content. The hook only takes
// effect in future shells, so brew invocations in this process switch
// to the freshly installed prefix.
func (h *Homebrew) Bootstrap(ctx context.Context, facts platform.Facts) error {
	logger := logging.GetLogger("pkgmgr.homebrew")

	if h.Available(facts) {
		logger.Debug().Msg("Homebrew already installed")
		return nil
	}

	logger.Info().Msg("Installing Homebrew")
	script := fmt.Sprintf(`/bin/bash -c "$(curl -fsSL %s)"`, brewInstallURL)
	if err := h.runner.Run(ctx, "/bin/bash", "-c", script); err != nil {
		return errors.Wrap(err, errors.ErrManagerBootstrap, "homebrew install script failed")
	}

	h.brewPath = filepath.Join(brewPrefix(facts), "bin", "brew")
	logger.Info().Str("brew", h.brewPath).Msg("Using freshly installed brew")

	return h.registerShellEnv(facts)
}

// Installed queries brew's own formula list for the tool
func (h *Homebrew) Installed(ctx context.Context, tool catalog.Tool) bool {
	_, err := h.runner.Output(ctx, h.brewPath, "list", "--formula", tool.Formula)
	return err == nil
}

func (h *Homebrew) Install(ctx context.Context, tool catalog.Tool) error {
	if err := h.runner.Run(ctx, h.brewPath, "install", tool.Formula); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "brew install %s failed", tool.Formula)
	}
	return nil
}

// InstalledCask checks brew's cask list first, then falls back to an
// OS-level application search for bundles installed outside brew
func (h *Homebrew) InstalledCask(ctx context.Context, tool catalog.Tool) bool {
	if _, err := h.runner.Output(ctx, h.brewPath, "list", "--cask", tool.Cask); err == nil {
		return true
	}
	if tool.App == "" {
		return false
	}
	return h.appInstalled(ctx, tool.App)
}

func (h *Homebrew) InstallCask(ctx context.Context, tool catalog.Tool) error {
	if err := h.runner.Run(ctx, h.brewPath, "install", "--cask", tool.Cask); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "brew install --cask %s failed", tool.Cask)
	}
	return nil
}

// appInstalled searches the Spotlight index for an application bundle.
// An unavailable index reads as "not installed".
func (h *Homebrew) appInstalled(ctx context.Context, appName string) bool {
	query := fmt.Sprintf("kMDItemKind == 'Application' && kMDItemDisplayName == '%s*'", appName)
	out, err := h.runner.Output(ctx, "mdfind", query)
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

// brewPrefix is where the upstream install script puts Homebrew for
// the given OS family and architecture
func brewPrefix(facts platform.Facts) string {
	if facts.Family == platform.FamilyLinux {
		return "/home/linuxbrew/.linuxbrew"
	}
	if facts.Arch == "amd64" {
		return "/usr/local"
	}
	return "/opt/homebrew"
}

// registerShellEnv appends the brew shellenv hook to the shell profile
// unless an equivalent line is already present
func (h *Homebrew) registerShellEnv(facts platform.Facts) error {
	logger := logging.GetLogger("pkgmgr.homebrew")

	hook := fmt.Sprintf(`eval "$(%s/bin/brew shellenv)"`, brewPrefix(facts))

	existing, err := os.ReadFile(h.profilePath)
	if err == nil && strings.Contains(string(existing), hook) {
		logger.Debug().Str("profile", h.profilePath).Msg("shellenv hook already registered")
		return nil
	}

	f, err := os.OpenFile(h.profilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, errors.ErrManagerBootstrap, "failed to open shell profile")
	}
	defer func() { _ = f.Close() }()

	if _, err := fmt.Fprintf(f, "\n%s\n", hook); err != nil {
		return errors.Wrap(err, errors.ErrManagerBootstrap, "failed to register shellenv hook")
	}

	logger.Info().Str("profile", h.profilePath).Msg("Registered brew shellenv hook")
	return nil
}
