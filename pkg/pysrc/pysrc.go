// SPDX-License-Identifier: MPL-2.0

// Package pysrc locates Python source files eligible for shipping.
//
// Lookup is extension-driven: a file qualifies when its final dot-suffix
// (as reported by filepath.Ext) equals one of the requested extensions
// exactly. Matching is case-sensitive, so "module.test.py" qualifies for
// ".py" but "module.PY" does not. Hidden files whose name is nothing but
// a dot run plus the suffix (".py", "..py") have no extension and never
// qualify.
//
// All returned paths are absolute and sorted lexicographically so callers
// get a deterministic shipping order.
package pysrc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions is the extension filter used when the caller supplies
// none. Callers must treat it as read-only.
var DefaultExtensions = []string{".py"}

// ErrNotDir reports that a search root does not exist or is not a directory.
var ErrNotDir = errors.New("not a directory")

// Find returns the absolute paths of all files under root whose extension
// matches one of exts. With recursive set, the whole tree below root is
// searched; otherwise only root's direct children are considered.
//
// An empty exts falls back to DefaultExtensions. No matches yield an empty
// slice, not an error. A root that does not exist or is not a directory
// fails with an error wrapping ErrNotDir.
func Find(root string, exts []string, recursive bool) ([]string, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	if recursive {
		return walk(absRoot, exts, nil)
	}

	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", absRoot, err)
	}

	matches := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !matchExt(entry.Name(), exts) {
			continue
		}
		matches = append(matches, filepath.Join(absRoot, entry.Name()))
	}
	slices.Sort(matches)
	return matches, nil
}

// FindPruned searches the whole tree below root like Find in recursive
// mode, but skips any directory whose base name appears in excludes
// (e.g. "__pycache__", ".venv"). The root itself is never pruned.
func FindPruned(root string, exts, excludes []string) ([]string, error) {
	absRoot, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return walk(absRoot, exts, excludes)
}

// checkRoot resolves root to an absolute path and verifies that it is an
// existing directory.
func checkRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve search root: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("search root %s: %w", root, ErrNotDir)
	}

	return absRoot, nil
}

// walk collects matching files below absRoot, pruning excluded directories.
func walk(absRoot string, exts, excludes []string) ([]string, error) {
	matches := []string{}
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			if path != absRoot && slices.Contains(excludes, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if matchExt(d.Name(), exts) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	slices.Sort(matches)
	return matches, nil
}

// matchExt reports whether name's extension equals one of exts exactly.
func matchExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}

	// A name that is only a run of dots plus the suffix is a hidden file
	// without an extension.
	if strings.TrimLeft(name[:len(name)-len(ext)], ".") == "" {
		return false
	}

	return slices.Contains(exts, ext)
}
