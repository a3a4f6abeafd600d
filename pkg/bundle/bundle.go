// Package bundle produces a portable, version-control-free archive of
// the plugin repository set for transfer to a network-isolated host.
// Source clones are kept between runs for fast-forward updates; only
// the staging copies are stripped of metadata.
package bundle

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
)

// Bundler assembles the plugin archive
type Bundler struct {
	// ClonesDir holds the persistent source clones
	ClonesDir string

	// StagingDir is the clean assembly area for archive contents
	StagingDir string

	// Catalog supplies the plugin URL set
	Catalog *catalog.Catalog
}

// New creates a Bundler. The catalog must already be validated, which
// guarantees derived plugin names are unique.
func New(clonesDir, stagingDir string, cat *catalog.Catalog) *Bundler {
	return &Bundler{ClonesDir: clonesDir, StagingDir: stagingDir, Catalog: cat}
}

// Sync brings every plugin clone up to date: shallow clone when absent,
// fast-forward pull otherwise. Any failure aborts (fail-fast).
func (b *Bundler) Sync(ctx context.Context) error {
	logger := logging.GetLogger("bundle")

	if err := os.MkdirAll(b.ClonesDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", b.ClonesDir)
	}

	for _, url := range b.Catalog.Plugins {
		name := catalog.DeriveName(url)
		dir := filepath.Join(b.ClonesDir, name)

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			logger.Info().Str("plugin", name).Msg("Updating existing clone")
			if err := fastForward(ctx, dir); err != nil {
				return errors.Wrapf(err, errors.ErrBundleUpdate, "failed to update %s", name)
			}
			continue
		}

		logger.Info().Str("plugin", name).Str("url", url).Msg("Cloning")
		_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
			URL:          url,
			Depth:        1,
			SingleBranch: true,
		})
		if err != nil {
			return errors.Wrapf(err, errors.ErrBundleClone, "failed to clone %s", url)
		}
	}

	return nil
}

func fastForward(ctx context.Context, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	err = wt.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if stderrors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	return err
}
