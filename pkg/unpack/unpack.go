// Package unpack provisions a target host from a received plugin
// archive: base packages via the OS package manager, archive extraction
// into the well-known plugin directory, and the same configuration
// document the main pipeline generates. Package installation here is
// fail-soft, since a mirror missing one package is an acceptable
// degraded state; everything else is fail-fast.
package unpack

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/devup/pkg/bundle"
	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
	"github.com/arthur-debert/devup/pkg/pkgmgr"
)

// InstallBasePackages installs the remote OS-package catalog. Each
// failure is logged and skipped; the function only reports how many
// packages could not be installed.
func InstallBasePackages(ctx context.Context, apt *pkgmgr.Apt, packages []string) int {
	logger := logging.GetLogger("unpack.packages")

	failed := 0
	for _, pkg := range packages {
		if apt.InstalledPackage(ctx, pkg) {
			logger.Info().Str("package", pkg).Msg("Already installed, skipping")
			continue
		}
		if err := apt.InstallPackage(ctx, pkg); err != nil {
			logger.Warn().Err(err).Str("package", pkg).Msg("Install failed, continuing")
			failed++
			continue
		}
		logger.Info().Str("package", pkg).Msg("Installed")
	}

	return failed
}

// Extract unpacks the plugin archive into pluginDir and validates the
// extracted top-level entries against the embedded manifest. The
// returned manifest lets the caller print the expected plugin list for
// the operator.
func Extract(archivePath, pluginDir string) (*bundle.Manifest, error) {
	logger := logging.GetLogger("unpack.extract")

	f, err := os.Open(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveOpen, "failed to open archive %s", archivePath)
	}
	defer func() { _ = f.Close() }()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrArchiveOpen, "%s is not a gzip archive", archivePath)
	}
	defer func() { _ = gz.Close() }()

	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", pluginDir)
	}

	var manifest *bundle.Manifest
	topLevel := make(map[string]bool)

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrArchiveExtract, "corrupt archive")
		}

		name := filepath.Clean(header.Name)
		if name == bundle.ManifestName {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrArchiveExtract, "failed to read embedded manifest")
			}
			manifest, err = bundle.ParseManifest(data)
			if err != nil {
				return nil, err
			}
			continue
		}

		// Guard against entries escaping the plugin directory
		if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
			return nil, errors.Newf(errors.ErrArchiveExtract, "archive entry %q escapes the target directory", header.Name)
		}
		topLevel[strings.SplitN(filepath.ToSlash(name), "/", 2)[0]] = true

		target := filepath.Join(pluginDir, name)
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode).Perm()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrArchiveExtract, "failed to create %s", target)
			}
		case tar.TypeSymlink:
			if linkEscapes(pluginDir, target, header.Linkname) {
				return nil, errors.Newf(errors.ErrArchiveExtract, "archive entry %q links outside the target directory", header.Name)
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return nil, errors.Wrapf(err, errors.ErrArchiveExtract, "failed to link %s", target)
			}
		case tar.TypeReg:
			if err := writeExtracted(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrArchiveExtract, "failed to write %s", target)
			}
		}
	}

	if manifest == nil {
		return nil, errors.Newf(errors.ErrManifestMissing, "archive %s carries no %s", archivePath, bundle.ManifestName)
	}

	names := make([]string, 0, len(topLevel))
	for name := range topLevel {
		names = append(names, name)
	}
	if err := manifest.Validate(names); err != nil {
		return nil, err
	}

	logger.Info().
		Str("archive", archivePath).
		Str("dir", pluginDir).
		Int("plugins", len(manifest.Plugins)).
		Msg("Archive extracted and validated")
	return manifest, nil
}

// PrintManifest writes the expected plugin list to w so the operator can
// eyeball the unpacked contents
func PrintManifest(w io.Writer, manifest *bundle.Manifest) {
	fmt.Fprintf(w, "Plugins unpacked (manifest format v%d):\n", manifest.FormatVersion)
	for _, name := range manifest.Plugins {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

// linkEscapes reports whether a symlink at target pointing at linkname
// would resolve outside root. Absolute targets are rejected outright;
// the bundler only ever records repository-relative links.
func linkEscapes(root, target, linkname string) bool {
	if filepath.IsAbs(linkname) {
		return true
	}
	resolved := filepath.Clean(filepath.Join(filepath.Dir(target), linkname))
	rel, err := filepath.Rel(root, resolved)
	if err != nil {
		return true
	}
	return rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func writeExtracted(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(f, r)
	return err
}
