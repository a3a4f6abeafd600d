package bundle

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
)

// Archive compresses the staging area into a single tar.gz at
// archivePath, replacing any prior archive of the same name. The
// manifest is embedded at the archive root and also written next to the
// archive for the operator.
func (b *Bundler) Archive(archivePath string) error {
	logger := logging.GetLogger("bundle.archive")

	manifest := NewManifest(b.Catalog)
	manifestData, err := manifest.Marshal()
	if err != nil {
		return err
	}

	if err := os.Remove(archivePath); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrBundleArchive, "failed to replace prior archive %s", archivePath)
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrBundleArchive, "failed to create archive %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	if err := writeTarEntry(tw, ManifestName, manifestData); err != nil {
		return errors.Wrap(err, errors.ErrBundleArchive, "failed to embed manifest")
	}

	if err := tarTree(tw, b.StagingDir); err != nil {
		return errors.Wrap(err, errors.ErrBundleArchive, "failed to archive staging area")
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, errors.ErrBundleArchive, "failed to finalize archive")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, errors.ErrBundleArchive, "failed to finalize archive")
	}

	manifestPath := filepath.Join(filepath.Dir(archivePath), ManifestName)
	if err := manifest.WriteFile(manifestPath); err != nil {
		return err
	}

	logger.Info().
		Str("archive", archivePath).
		Int("plugins", len(manifest.Plugins)).
		Msg("Archive written")
	return nil
}

// tarTree adds every entry under root to the tar stream, with paths
// relative to root so top-level archive entries are plugin names
func tarTree(tw *tar.Writer, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		header, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		_, err = io.Copy(tw, f)
		return err
	})
}

func writeTarEntry(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name: strings.TrimPrefix(name, "/"),
		Mode: 0644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}
