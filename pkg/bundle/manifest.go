package bundle

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/errors"
)

// ManifestFormatVersion marks the archive layout contract between the
// bundling and unpacking sides. Bump it whenever the layout changes.
const ManifestFormatVersion = 1

// ManifestName is the manifest's file name, both at the archive root and
// next to the archive on disk
const ManifestName = "devup-manifest.yaml"

// Manifest describes an archive's expected contents so the unpacking
// side can validate instead of trusting the layout blindly
type Manifest struct {
	FormatVersion int      `yaml:"format_version"`
	Plugins       []string `yaml:"plugins"`
}

// NewManifest builds the manifest for a catalog's plugin set
func NewManifest(cat *catalog.Catalog) *Manifest {
	return &Manifest{
		FormatVersion: ManifestFormatVersion,
		Plugins:       cat.PluginNames(),
	}
}

// Marshal renders the manifest as YAML
func (m *Manifest) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to marshal manifest")
	}
	return data, nil
}

// WriteFile writes the manifest to path
func (m *Manifest) WriteFile(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write manifest %s", path)
	}
	return nil
}

// ParseManifest reads a manifest and rejects unknown format versions
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrManifestInvalid, "failed to parse manifest")
	}
	if m.FormatVersion != ManifestFormatVersion {
		return nil, errors.Newf(errors.ErrManifestInvalid,
			"unsupported manifest format version %d (want %d)", m.FormatVersion, ManifestFormatVersion)
	}
	return &m, nil
}

// Validate compares the manifest's plugin list against the names actually
// found, reporting anything missing or unexpected
func (m *Manifest) Validate(found []string) error {
	expected := make(map[string]bool, len(m.Plugins))
	for _, name := range m.Plugins {
		expected[name] = true
	}

	var missing, unexpected []string
	seen := make(map[string]bool, len(found))
	for _, name := range found {
		seen[name] = true
		if !expected[name] {
			unexpected = append(unexpected, name)
		}
	}
	for _, name := range m.Plugins {
		if !seen[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(unexpected)
	return errors.New(errors.ErrManifestInvalid, "archive contents do not match manifest").
		WithDetail("missing", missing).
		WithDetail("unexpected", unexpected)
}
