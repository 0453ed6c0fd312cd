// SPDX-License-Identifier: MPL-2.0

package registrar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalDir copies registered files into a distribution directory, flat
// under their base names, the way a cluster's shared staging volume
// receives them.
type LocalDir struct {
	dir string
}

// NewLocalDir creates the distribution directory if needed and returns a
// registrar writing into it.
func NewLocalDir(dir string) (*LocalDir, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("distribution directory is required")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve distribution directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create distribution directory: %w", err)
	}

	return &LocalDir{dir: absDir}, nil
}

// Dir returns the absolute distribution directory.
func (l *LocalDir) Dir() string {
	return l.dir
}

// Register copies path into the distribution directory under its base
// name. An existing file with the same name is overwritten; the namespace
// is flat by contract.
func (l *LocalDir) Register(_ context.Context, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer src.Close()

	destPath := filepath.Join(l.dir, filepath.Base(path))
	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		os.Remove(destPath)
		return fmt.Errorf("failed to copy to %s: %w", destPath, err)
	}

	return dest.Close()
}
