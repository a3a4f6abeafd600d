package editor

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/run"
)

// PlugURL is where the plugin-manager bootstrap file is fetched from
const PlugURL = "https://raw.githubusercontent.com/junegunn/vim-plug/master/plug.vim"

// EnsurePlugBootstrap downloads the plugin-manager bootstrap file if it
// is not already present. An existing file is left untouched.
func EnsurePlugBootstrap(ctx context.Context, path string) error {
	logger := logging.GetLogger("editor.plug")

	if _, err := os.Stat(path); err == nil {
		logger.Debug().Str("path", path).Msg("Plugin manager bootstrap already present")
		return nil
	}

	logger.Info().Str("path", path).Msg("Downloading plugin manager bootstrap")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, PlugURL, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to build plug.vim request")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "failed to download plug.vim")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrFileAccess, "plug.vim download returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", path)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
	}

	return nil
}

// InstallPlugins triggers the editor's batch plugin installation. This
// is best-effort: individual plugin failures are the editor's business,
// so any error here is logged and swallowed and the run continues.
func InstallPlugins(ctx context.Context, runner run.Runner) {
	logger := logging.GetLogger("editor.plug")

	logger.Info().Msg("Running editor plugin installation")
	err := runner.Run(ctx, "nvim", "--headless", "+PlugInstall --sync", "+qall")
	if err != nil {
		logger.Warn().Err(err).Msg("Plugin installation reported errors, continuing")
		return
	}
	logger.Info().Msg("Plugin installation completed")
}
