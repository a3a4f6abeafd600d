package bundle

import (
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
)

// metadataEntries are version-control and CI artifacts stripped from the
// staged copies at every directory level. Source clones keep theirs.
var metadataEntries = map[string]bool{
	".git":           true,
	".github":        true,
	".gitlab-ci.yml": true,
	".circleci":      true,
	".travis.yml":    true,
	".gitignore":     true,
	".gitattributes": true,
	".gitmodules":    true,
}

// Stage copies every synced clone into the staging area. Each staged
// entry is a full replace: any pre-existing same-named entry is removed
// first, never merged into.
func (b *Bundler) Stage() error {
	logger := logging.GetLogger("bundle.stage")

	if err := os.MkdirAll(b.StagingDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", b.StagingDir)
	}

	for _, url := range b.Catalog.Plugins {
		name := catalog.DeriveName(url)
		src := filepath.Join(b.ClonesDir, name)
		dest := filepath.Join(b.StagingDir, name)

		if err := os.RemoveAll(dest); err != nil {
			return errors.Wrapf(err, errors.ErrBundleStage, "failed to clear staged entry %s", name)
		}
		if err := copyTree(src, dest); err != nil {
			return errors.Wrapf(err, errors.ErrBundleStage, "failed to stage %s", name)
		}
		logger.Info().Str("plugin", name).Msg("Staged")
	}

	return nil
}

// copyTree copies src into dest, dropping metadata entries at every level
func copyTree(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, info.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if metadataEntries[entry.Name()] {
			continue
		}

		srcPath := filepath.Join(src, entry.Name())
		destPath := filepath.Join(dest, entry.Name())

		if entry.IsDir() {
			if err := copyTree(srcPath, destPath); err != nil {
				return err
			}
			continue
		}

		if entry.Type()&os.ModeSymlink != 0 {
			target, err := os.Readlink(srcPath)
			if err != nil {
				return err
			}
			if err := os.Symlink(target, destPath); err != nil {
				return err
			}
			continue
		}

		if err := copyFile(srcPath, destPath); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	_, err = io.Copy(out, in)
	return err
}
