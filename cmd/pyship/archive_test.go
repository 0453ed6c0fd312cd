// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/pyship/pyship/pkg/pysrc"
)

// zipEntryNames returns the sorted entry names of the archive at path.
func zipEntryNames(t *testing.T, path string) []string {
	t.Helper()

	reader, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer reader.Close()

	var names []string
	for _, file := range reader.File {
		names = append(names, file.Name)
	}
	slices.Sort(names)
	return names
}

func TestRunArchive_BuildsArchives(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeJobTree(t, base, map[string]string{
		"main.py":        "print('main')",
		"pkg/mod.py":     "MOD = 1",
		"pkg/sub/two.py": "TWO = 2",
		"lib/util.py":    "UTIL = 1",
		"docs/readme.md": "prose",
	})
	output := filepath.Join(t.TempDir(), "out")

	built, err := runArchive(context.Background(), archiveParams{
		stdout: io.Discard,
		base:   base,
		output: output,
	})
	if err != nil {
		t.Fatalf("runArchive() error: %v", err)
	}

	if len(built) != 2 {
		t.Fatalf("built = %v, want two archives", built)
	}

	var names []string
	for _, path := range built {
		names = append(names, filepath.Base(path))
		if _, statErr := os.Stat(path); statErr != nil {
			t.Errorf("built archive %s missing on disk: %v", path, statErr)
		}
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"lib.zip", "pkg.zip"}) {
		t.Errorf("archive names = %v, want [lib.zip pkg.zip]", names)
	}

	// Entry names stay relative to the job directory, so the import
	// structure survives unpacking.
	gotEntries := zipEntryNames(t, filepath.Join(output, "pkg.zip"))
	if !slices.Equal(gotEntries, []string{"pkg/mod.py", "pkg/sub/two.py"}) {
		t.Errorf("pkg.zip entries = %v, want [pkg/mod.py pkg/sub/two.py]", gotEntries)
	}
}

func TestRunArchive_NoMatchingSubmodules(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeJobTree(t, base, map[string]string{
		"main.py":        "print('main')",
		"docs/readme.md": "prose",
	})
	output := filepath.Join(t.TempDir(), "out")

	built, err := runArchive(context.Background(), archiveParams{
		stdout: io.Discard,
		base:   base,
		output: output,
	})
	if err != nil {
		t.Fatalf("runArchive() error: %v", err)
	}

	if len(built) != 0 {
		t.Errorf("built = %v, want none", built)
	}
	if info, statErr := os.Stat(output); statErr != nil || !info.IsDir() {
		t.Errorf("output directory %s was not created", output)
	}
}

func TestRunArchive_ExtensionsOverride(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeJobTree(t, base, map[string]string{
		"pkg/schema.sql": "SELECT 1;",
		"pkg/mod.py":     "MOD = 1",
	})
	output := filepath.Join(t.TempDir(), "out")

	built, err := runArchive(context.Background(), archiveParams{
		stdout:     io.Discard,
		base:       base,
		output:     output,
		extensions: []string{".sql"},
	})
	if err != nil {
		t.Fatalf("runArchive() error: %v", err)
	}

	if len(built) != 1 {
		t.Fatalf("built = %v, want one archive", built)
	}
	gotEntries := zipEntryNames(t, built[0])
	if !slices.Equal(gotEntries, []string{"pkg/schema.sql"}) {
		t.Errorf("pkg.zip entries = %v, want [pkg/schema.sql]", gotEntries)
	}
}

func TestRunArchive_BaseNotDir(t *testing.T) {
	t.Parallel()

	_, err := runArchive(context.Background(), archiveParams{
		stdout: io.Discard,
		base:   filepath.Join(t.TempDir(), "missing"),
		output: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for missing base directory, got nil")
	}
	if !errors.Is(err, pysrc.ErrNotDir) {
		t.Errorf("expected error wrapping pysrc.ErrNotDir, got: %v", err)
	}
}
