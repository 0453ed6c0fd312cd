// SPDX-License-Identifier: MPL-2.0

package pysrc

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// writeFiles creates empty files under dir, creating parent directories
// as needed. Paths use forward slashes and are converted per platform.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# "+name+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func abs(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, filepath.Join(dir, filepath.FromSlash(name)))
	}
	return paths
}

func TestFind(t *testing.T) {
	tests := []struct {
		name      string
		files     []string
		exts      []string
		recursive bool
		expected  []string // relative to the test root
	}{
		{
			name:      "non-recursive sees direct children only",
			files:     []string{"main.py", "utils.py", "notes.txt", "pkg/mod.py"},
			exts:      []string{".py"},
			recursive: false,
			expected:  []string{"main.py", "utils.py"},
		},
		{
			name:      "recursive descends into subdirectories",
			files:     []string{"main.py", "pkg/mod.py", "pkg/sub/deep.py", "pkg/data.json"},
			exts:      []string{".py"},
			recursive: true,
			expected:  []string{"main.py", "pkg/mod.py", "pkg/sub/deep.py"},
		},
		{
			name:      "multiple extensions",
			files:     []string{"job.py", "schema.sql", "config.yaml"},
			exts:      []string{".py", ".sql"},
			recursive: false,
			expected:  []string{"job.py", "schema.sql"},
		},
		{
			name:      "final suffix only",
			files:     []string{"module.test.py", "cached.pyc", "module.py.bak"},
			exts:      []string{".py"},
			recursive: false,
			expected:  []string{"module.test.py"},
		},
		{
			name:      "hidden dot-run names have no extension",
			files:     []string{".py", "..py", ".config.py", "real.py"},
			exts:      []string{".py"},
			recursive: false,
			expected:  []string{".config.py", "real.py"},
		},
		{
			name:      "matching is case-sensitive",
			files:     []string{"upper.PY", "lower.py"},
			exts:      []string{".py"},
			recursive: false,
			expected:  []string{"lower.py"},
		},
		{
			name:      "nil extensions fall back to the default",
			files:     []string{"main.py", "notes.txt"},
			exts:      nil,
			recursive: false,
			expected:  []string{"main.py"},
		},
		{
			name:      "no matches yields an empty result",
			files:     []string{"readme.md"},
			exts:      []string{".py"},
			recursive: true,
			expected:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFiles(t, root, tt.files...)

			got, err := Find(root, tt.exts, tt.recursive)
			if err != nil {
				t.Fatalf("Find() error = %v", err)
			}

			want := abs(t, root, tt.expected...)
			if !slices.Equal(got, want) {
				t.Errorf("Find() = %v, want %v", got, want)
			}
		})
	}
}

func TestFind_SortedOutput(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "zeta.py", "alpha.py", "mid.py")

	got, err := Find(root, []string{".py"}, false)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if !slices.IsSorted(got) {
		t.Errorf("Find() result not sorted: %v", got)
	}
}

func TestFind_RootErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string // returns the root to search
	}{
		{
			name: "root does not exist",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing")
			},
		},
		{
			name: "root is a regular file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "main.py")
				if err := os.WriteFile(path, []byte("pass"), 0644); err != nil {
					t.Fatal(err)
				}
				return path
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := tt.setup(t)

			_, err := Find(root, nil, true)
			if !errors.Is(err, ErrNotDir) {
				t.Errorf("Find() error = %v, want ErrNotDir", err)
			}

			_, err = FindPruned(root, nil, nil)
			if !errors.Is(err, ErrNotDir) {
				t.Errorf("FindPruned() error = %v, want ErrNotDir", err)
			}
		})
	}
}

func TestFindPruned(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"pkg/mod.py",
		"pkg/__pycache__/mod.cpython-311.py",
		"pkg/.venv/lib/site.py",
		"pkg/sub/deep.py",
	)

	got, err := FindPruned(root, []string{".py"}, []string{"__pycache__", ".venv"})
	if err != nil {
		t.Fatalf("FindPruned() error = %v", err)
	}

	want := abs(t, root, "pkg/mod.py", "pkg/sub/deep.py")
	if !slices.Equal(got, want) {
		t.Errorf("FindPruned() = %v, want %v", got, want)
	}
}

func TestFindPruned_RootNeverPruned(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "__pycache__")
	if err := os.Mkdir(root, 0755); err != nil {
		t.Fatal(err)
	}
	writeFiles(t, root, "inner.py")

	got, err := FindPruned(root, []string{".py"}, []string{"__pycache__"})
	if err != nil {
		t.Fatalf("FindPruned() error = %v", err)
	}

	if len(got) != 1 {
		t.Errorf("FindPruned() = %v, want the file inside the root itself", got)
	}
}

func TestFind_ReturnsAbsolutePaths(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "main.py")

	got, err := Find(root, nil, false)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}

	if len(got) != 1 || !filepath.IsAbs(got[0]) {
		t.Errorf("Find() = %v, want a single absolute path", got)
	}
}
