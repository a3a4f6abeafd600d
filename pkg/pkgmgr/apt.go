package pkgmgr

import (
	"context"
	"strings"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/run"
)

// Apt drives the apt front-end on Debian-family hosts
type Apt struct {
	runner run.Runner
}

// NewApt creates an Apt manager
func NewApt(runner run.Runner) *Apt {
	return &Apt{runner: runner}
}

func (a *Apt) Name() string {
	return "apt"
}

func (a *Apt) Available(facts platform.Facts) bool {
	return facts.OnPath("apt-get")
}

// Bootstrap refreshes the package index. Apt itself ships with the OS,
// so there is nothing to install.
func (a *Apt) Bootstrap(ctx context.Context, facts platform.Facts) error {
	logger := logging.GetLogger("pkgmgr.apt")
	logger.Info().Msg("Updating apt package index")

	if err := a.runner.Run(ctx, "sudo", "apt-get", "update"); err != nil {
		return errors.Wrap(err, errors.ErrManagerBootstrap, "apt-get update failed")
	}
	return nil
}

// Installed queries dpkg's status database for the package
func (a *Apt) Installed(ctx context.Context, tool catalog.Tool) bool {
	out, err := a.runner.Output(ctx, "dpkg-query", "-W", "-f=${Status}", tool.Apt)
	if err != nil {
		return false
	}
	return strings.Contains(string(out), "install ok installed")
}

func (a *Apt) Install(ctx context.Context, tool catalog.Tool) error {
	if err := a.runner.Run(ctx, "sudo", "apt-get", "install", "-y", tool.Apt); err != nil {
		return errors.Wrapf(err, errors.ErrInstallFailed, "apt-get install %s failed", tool.Apt)
	}
	return nil
}

// InstalledPackage and InstallPackage are convenience forms for bare
// package names, used by the remote unpacker's fail-soft catalog.
func (a *Apt) InstalledPackage(ctx context.Context, pkg string) bool {
	return a.Installed(ctx, catalog.Tool{Name: pkg, Apt: pkg})
}

func (a *Apt) InstallPackage(ctx context.Context, pkg string) error {
	return a.Install(ctx, catalog.Tool{Name: pkg, Apt: pkg})
}
