// Package manifest reads an optional per-directory "marin.yaml" naming a
// package's display name and a built-in standard library root override.
//
// This supplements a feature the distillation dropped: original_source's
// build.rs and src/com/file_tree.rs locate a project's std-lib root and
// package metadata from the filesystem next to the entry file. Marin's
// version is a single flat YAML file rather than a build-script convention.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the manifest's fixed name, looked for by Find in its start
// directory and in each ancestor directory up to the filesystem root.
const FileName = "marin.yaml"

// Manifest is the decoded contents of a marin.yaml file.
type Manifest struct {
	// Name is a display name for the package; purely cosmetic, never
	// consulted by the checker or dependency analyzer.
	Name string `yaml:"name"`

	// StdRoot overrides config.Options.BuiltinRoot when set, relative to
	// the manifest's own directory.
	StdRoot string `yaml:"std_root"`
}

// Load reads and decodes the manifest at dir/marin.yaml. A missing file is
// not an error: it returns a zero Manifest and ok=false.
func Load(dir string) (m Manifest, ok bool, err error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, false, nil
		}
		return Manifest{}, false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, false, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, true, nil
}

// ResolveStdRoot returns m.StdRoot resolved against dir, or "" if the
// manifest did not set one.
func (m Manifest) ResolveStdRoot(dir string) string {
	if m.StdRoot == "" {
		return ""
	}
	if filepath.IsAbs(m.StdRoot) {
		return filepath.Clean(m.StdRoot)
	}
	return filepath.Clean(filepath.Join(dir, m.StdRoot))
}

// Find walks upward from startDir to root, returning the first marin.yaml
// found, its directory, and whether one was found at all.
func Find(startDir string) (m Manifest, dir string, ok bool, err error) {
	dir = startDir
	for {
		m, ok, err = Load(dir)
		if err != nil {
			return Manifest{}, "", false, err
		}
		if ok {
			return m, dir, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Manifest{}, "", false, nil
		}
		dir = parent
	}
}
