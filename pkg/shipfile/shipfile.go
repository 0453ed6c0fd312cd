// SPDX-License-Identifier: MPL-2.0

// Package shipfile loads the optional per-project pyship manifest.
//
// A shipfile is a pyship.toml at the root of the shipped directory. It
// carries project-local defaults for a ship run:
//
//	extensions = [".py", ".sql"]
//	exclude = ["__pycache__", ".venv"]
//
//	[hooks]
//	pre_ship = ["python -m compileall -q ."]
//
// Command-line flags still win over shipfile values; the manifest only
// replaces the built-in defaults.
package shipfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Name is the manifest file name looked up at the root of the shipped
// directory.
const Name = "pyship.toml"

// ErrNotFound reports that a directory carries no shipfile.
var ErrNotFound = errors.New("shipfile not found")

// Shipfile carries project-local defaults for a ship run.
type Shipfile struct {
	// Extensions lists the file suffixes to ship (e.g. ".py", ".sql").
	// Every entry must start with a dot.
	Extensions []string `toml:"extensions"`
	// Exclude lists directory base names that are never descended into
	// (e.g. "__pycache__", ".venv"). Entries must be bare names without
	// path separators.
	Exclude []string `toml:"exclude"`
	// Hooks groups the shell snippets that run around a ship.
	Hooks Hooks `toml:"hooks"`
}

// Hooks holds the shell snippets executed during a ship run.
type Hooks struct {
	// PreShip snippets run in the shipped directory before anything is
	// registered. A failing snippet aborts the whole run.
	PreShip []string `toml:"pre_ship"`
}

// Load reads and validates the shipfile in dir. A missing manifest is
// reported as an error wrapping ErrNotFound so callers can fall back to
// their defaults.
func Load(dir string) (*Shipfile, error) {
	path := filepath.Join(dir, Name)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open shipfile: %w", err)
	}
	defer f.Close()

	var sf Shipfile
	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sf); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("failed to parse %s: unknown keys\n%s", path, strict.String())
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := sf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shipfile %s: %w", path, err)
	}

	return &sf, nil
}

// Validate checks the manifest invariants. It is called by Load and
// exposed for manifests assembled in memory.
func (s *Shipfile) Validate() error {
	for _, ext := range s.Extensions {
		if len(ext) < 2 || !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot and name a suffix (e.g. \".py\")", ext)
		}
	}

	for _, name := range s.Exclude {
		if name == "" || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("exclude entry %q must be a bare directory name without separators", name)
		}
	}

	for _, snippet := range s.Hooks.PreShip {
		if strings.TrimSpace(snippet) == "" {
			return errors.New("pre_ship hooks must not be empty")
		}
	}

	return nil
}
