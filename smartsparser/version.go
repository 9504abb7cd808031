package smartsparser

import (
	"errors"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/MolecularAI/smartsrx/logging"
)

// DefaultVersion is used when the manifest or its version is unavailable.
const DefaultVersion = "1.0.0"

// pyprojectToml is the part of a pyproject.toml manifest we read.
type pyprojectToml struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
}

// LoadVersion returns [project].version from the manifest at path, or
// DefaultVersion when the file or the key is missing.
func LoadVersion(path string) string {
	var manifest pyprojectToml
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.Debug("Manifest not found, using default version", "path", path, "version", DefaultVersion)
		} else {
			logging.Warn("Failed to parse manifest, using default version", "path", path, "error", err)
		}
		return DefaultVersion
	}

	version := manifest.Project.Version
	if version == "" {
		logging.Debug("Manifest has no project version, using default", "path", path, "version", DefaultVersion)
		return DefaultVersion
	}

	// Non semver tags are kept, only reported.
	if _, err := semver.StrictNewVersion(version); err != nil {
		logging.Warn("Manifest version is not a semantic version", "version", version, "error", err)
	}

	return version
}
