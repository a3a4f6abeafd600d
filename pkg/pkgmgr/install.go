package pkgmgr

import (
	"context"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/run"
)

// ForPlatform picks the package manager for the detected OS family
func ForPlatform(facts platform.Facts, runner run.Runner, profilePath string) (Manager, error) {
	switch facts.Family {
	case platform.FamilyDarwin:
		return NewHomebrew(runner, profilePath), nil
	case platform.FamilyLinux:
		if facts.OnPath("apt-get") {
			return NewApt(runner), nil
		}
		// Linuxbrew hosts without apt
		return NewHomebrew(runner, profilePath), nil
	default:
		return nil, errors.Newf(errors.ErrPlatformUnsupported, "no package manager for OS family %q", facts.Family)
	}
}

// InstallTools brings every catalog tool to installed state, in
// declaration order. Each entry is checked against the manager's own
// query first; already-present tools are logged and skipped. An install
// failure aborts immediately (fail-fast).
func InstallTools(ctx context.Context, mgr Manager, tools []catalog.Tool) error {
	logger := logging.GetLogger("pkgmgr.install")

	for _, tool := range tools {
		if mgr.Installed(ctx, tool) {
			logger.Info().Str("tool", tool.Name).Msg("Already installed, skipping")
			continue
		}

		logger.Info().Str("tool", tool.Name).Str("manager", mgr.Name()).Msg("Installing")
		if err := mgr.Install(ctx, tool); err != nil {
			return err
		}
		logger.Info().Str("tool", tool.Name).Msg("Installed")
	}

	return nil
}

// InstallCasks installs bundle-style applications. It is a no-op when
// the manager does not support casks (Linux hosts).
func InstallCasks(ctx context.Context, mgr Manager, casks []catalog.Tool) error {
	logger := logging.GetLogger("pkgmgr.install")

	caskMgr, ok := mgr.(CaskManager)
	if !ok {
		if len(casks) > 0 {
			logger.Debug().Str("manager", mgr.Name()).Msg("Manager does not support casks, skipping")
		}
		return nil
	}

	for _, cask := range casks {
		if caskMgr.InstalledCask(ctx, cask) {
			logger.Info().Str("cask", cask.Name).Msg("Already installed, skipping")
			continue
		}

		logger.Info().Str("cask", cask.Name).Msg("Installing cask")
		if err := caskMgr.InstallCask(ctx, cask); err != nil {
			return err
		}
		logger.Info().Str("cask", cask.Name).Msg("Installed")
	}

	return nil
}

// SetupRuntime ensures the language runtime is present and installs its
// auxiliary libraries system-wide. The interpreter comes from the
// package manager; the libraries go through pip in one batch.
func SetupRuntime(ctx context.Context, mgr Manager, facts platform.Facts, rt catalog.Runtime, runner run.Runner) error {
	logger := logging.GetLogger("pkgmgr.runtime")

	if rt.Interpreter == "" {
		return nil
	}

	if !facts.OnPath(rt.Interpreter) {
		tool := catalog.Tool{Name: rt.Interpreter, Formula: rt.Interpreter, Apt: rt.Interpreter}
		if !mgr.Installed(ctx, tool) {
			logger.Info().Str("interpreter", rt.Interpreter).Msg("Installing runtime interpreter")
			if err := mgr.Install(ctx, tool); err != nil {
				return err
			}
		}
	}

	if len(rt.Libraries) == 0 {
		return nil
	}

	logger.Info().Strs("libraries", rt.Libraries).Msg("Installing runtime libraries")
	args := append([]string{"-m", "pip", "install", "--upgrade"}, rt.Libraries...)
	if err := runner.Run(ctx, rt.Interpreter, args...); err != nil {
		return errors.Wrap(err, errors.ErrInstallFailed, "runtime library installation failed")
	}

	return nil
}
