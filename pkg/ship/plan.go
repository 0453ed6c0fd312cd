// SPDX-License-Identifier: MPL-2.0

package ship

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pyship/pyship/pkg/pysrc"
)

// SubmodulePlan describes one sub-directory's would-be archive.
type SubmodulePlan struct {
	// Name is the archive name the sub-directory would ship under (e.g.
	// "pkg.zip").
	Name string
	// Files lists the matched files, relative to the base directory and
	// forward-slashed, exactly as the archive entries would be named.
	Files []string
}

// Plan reports what a ship run would register for a base directory.
type Plan struct {
	// Base is the absolute directory the plan covers.
	Base string
	// Files lists the top-level source files that would be registered
	// (absolute paths).
	Files []string
	// Submodules lists each sub-directory that would produce an archive.
	Submodules []SubmodulePlan
	// Skipped lists sub-directories that would produce no archive.
	Skipped []string
	// Hooks lists the pre-ship snippets a ship run would execute. Plan
	// itself never runs them.
	Hooks []string
	// Extensions and Excludes record the effective filters the plan was
	// computed with, after option/shipfile/default resolution.
	Extensions []string
	Excludes   []string
}

// Plan computes what AddDeps would register for base without packaging,
// registering, or running hooks. The shipfile in base, if any, applies
// exactly as it would during a ship, so the plan and a subsequent run
// always agree.
func (s *Shipper) Plan(ctx context.Context, base string) (*Plan, error) {
	absBase, err := filepath.Abs(filepath.Clean(base))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	info, err := os.Stat(absBase)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("base directory %s: %w", base, pysrc.ErrNotDir)
	}

	exts, excludes, hooks, err := s.effectiveOptions(absBase)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Base: absBase, Hooks: hooks, Extensions: exts, Excludes: excludes}

	plan.Files, err = pysrc.Find(absBase, exts, false)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(absBase)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() || slices.Contains(excludes, entry.Name()) {
			continue
		}

		matches, err := pysrc.FindPruned(filepath.Join(absBase, entry.Name()), exts, excludes)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			plan.Skipped = append(plan.Skipped, entry.Name())
			continue
		}

		rel := make([]string, len(matches))
		for i, m := range matches {
			r, err := filepath.Rel(absBase, m)
			if err != nil {
				return nil, fmt.Errorf("failed to relativize %s: %w", m, err)
			}
			rel[i] = filepath.ToSlash(r)
		}
		plan.Submodules = append(plan.Submodules, SubmodulePlan{
			Name:  entry.Name() + ".zip",
			Files: rel,
		})
	}

	return plan, nil
}
