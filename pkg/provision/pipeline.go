// Package provision orchestrates the main pipeline: sweep, backup,
// package-manager bootstrap, tool installation, runtime setup and editor
// configuration, strictly in that order and strictly sequential. There
// are no retries and no cleanup on interrupt; except for the explicitly
// fail-soft plugin-install trigger, the first error aborts the run.
package provision

import (
	"context"
	"path/filepath"
	"time"

	"github.com/arthur-debert/devup/pkg/backup"
	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/editor"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/paths"
	"github.com/arthur-debert/devup/pkg/pkgmgr"
	"github.com/arthur-debert/devup/pkg/platform"
	"github.com/arthur-debert/devup/pkg/run"
	"github.com/arthur-debert/devup/pkg/style"
)

// Options configure one pipeline run
type Options struct {
	// DryRun logs external commands instead of executing them
	DryRun bool

	// RuntimePath optionally points at a directory holding the editor
	// binary itself (e.g. an unpacked nvim tarball); it is appended to
	// PATH when the binary is unresolvable
	RuntimePath string

	// Scheduler registers deferred backup deletion; nil skips scheduling
	Scheduler backup.Scheduler

	// SkipPlugDownload leaves the plugin-manager bootstrap file alone
	// even when absent (network-isolated hosts)
	SkipPlugDownload bool
}

// Pipeline wires the stages together over injected collaborators
type Pipeline struct {
	Facts   platform.Facts
	Paths   paths.Paths
	Catalog *catalog.Catalog
	Runner  run.Runner
}

// New assembles a pipeline
func New(facts platform.Facts, p paths.Paths, cat *catalog.Catalog, runner run.Runner) *Pipeline {
	return &Pipeline{Facts: facts, Paths: p, Catalog: cat, Runner: runner}
}

// Run executes the pipeline top to bottom
func (pl *Pipeline) Run(ctx context.Context, opts Options) error {
	logger := logging.GetLogger("provision")
	done := logging.LogOperationStart(logger, "provision")
	defer done()

	// Sweep expired backups from earlier runs before creating a new one.
	// Dry runs touch nothing on disk, so both stages are skipped outright.
	if opts.DryRun {
		style.PrintStage("sweep", style.StatusSkipped, "dry run")
		style.PrintStage("backup", style.StatusSkipped, "dry run")
	} else {
		style.PrintStage("sweep", style.StatusRunning, "")
		if err := backup.Sweep(pl.Paths.BackupsRoot(), time.Now()); err != nil {
			style.PrintStage("sweep", style.StatusFailed, err.Error())
			return err
		}
		style.PrintStage("sweep", style.StatusOK, "")

		style.PrintStage("backup", style.StatusRunning, "")
		result, err := backup.Stage(ctx, backup.Options{
			Home:       pl.Paths.Home(),
			Candidates: pl.Catalog.BackupCandidates,
			Root:       pl.Paths.BackupsRoot(),
			Scheduler:  opts.Scheduler,
		})
		if err != nil {
			style.PrintStage("backup", style.StatusFailed, err.Error())
			return err
		}
		if result.Dir == "" {
			style.PrintStage("backup", style.StatusSkipped, "nothing to back up")
		} else {
			style.PrintStage("backup", style.StatusOK, result.Dir)
		}
	}

	profile := pl.Paths.ProfilePath(pl.Facts.Family)

	style.PrintStage("bootstrap", style.StatusRunning, "")
	mgr, err := pkgmgr.ForPlatform(pl.Facts, pl.Runner, profile)
	if err != nil {
		style.PrintStage("bootstrap", style.StatusFailed, err.Error())
		return err
	}
	if err := mgr.Bootstrap(ctx, pl.Facts); err != nil {
		style.PrintStage("bootstrap", style.StatusFailed, err.Error())
		return err
	}
	style.PrintStage("bootstrap", style.StatusOK, mgr.Name())

	style.PrintStage("tools", style.StatusRunning, "")
	if err := pkgmgr.InstallTools(ctx, mgr, pl.Catalog.Tools); err != nil {
		style.PrintStage("tools", style.StatusFailed, err.Error())
		return err
	}
	if err := pkgmgr.InstallCasks(ctx, mgr, pl.Catalog.Casks); err != nil {
		style.PrintStage("tools", style.StatusFailed, err.Error())
		return err
	}
	style.PrintStage("tools", style.StatusOK, "")

	style.PrintStage("runtime", style.StatusRunning, "")
	if err := pkgmgr.SetupRuntime(ctx, mgr, pl.Facts, pl.Catalog.Runtime, pl.Runner); err != nil {
		style.PrintStage("runtime", style.StatusFailed, err.Error())
		return err
	}
	style.PrintStage("runtime", style.StatusOK, "")

	if opts.DryRun {
		style.PrintStage("editor", style.StatusSkipped, "dry run")
		return nil
	}
	style.PrintStage("editor", style.StatusRunning, "")
	if err := pl.configureEditor(ctx, opts, profile); err != nil {
		style.PrintStage("editor", style.StatusFailed, err.Error())
		return err
	}
	style.PrintStage("editor", style.StatusOK, pl.Paths.InitFilePath())

	return nil
}

// configureEditor writes the configuration document and its companion
// manifest, ensures the plugin-manager bootstrap, conditionally extends
// PATH, and triggers the best-effort plugin install
func (pl *Pipeline) configureEditor(ctx context.Context, opts Options, profile string) error {
	logger := logging.GetLogger("provision.editor")

	err := editor.Write(pl.Paths.InitFilePath(), pl.Facts, editor.Options{
		PluginDir: pl.Paths.PluginDir(),
		Plugins:   pl.Catalog.Plugins,
	})
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(pl.Paths.NvimConfigDir(), "plugins.txt")
	if err := writeManifest(manifestPath, pl.Catalog); err != nil {
		return err
	}

	if !opts.SkipPlugDownload {
		if err := editor.EnsurePlugBootstrap(ctx, pl.Paths.PlugFilePath()); err != nil {
			return err
		}
	}

	if opts.RuntimePath != "" {
		appended, err := editor.AppendPathLine(profile, opts.RuntimePath, "nvim", pl.Facts)
		if err != nil {
			return err
		}
		if appended {
			logger.Info().Str("profile", profile).Msg("Extended PATH for editor runtime")
		}
	}

	editor.InstallPlugins(ctx, pl.Runner)
	return nil
}

func writeManifest(path string, cat *catalog.Catalog) error {
	return writeFile(path, []byte(editor.ManifestText(cat)))
}
