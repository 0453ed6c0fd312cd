// SPDX-License-Identifier: MPL-2.0

// Package workspace manages the scoped temporary directory that holds
// sub-module archives while a ship run registers them.
package workspace

import (
	"fmt"
	"os"
)

// Workspace is a temporary directory with a bounded lifetime: created at
// the start of a ship run, removed when the run finishes, successfully or
// not. It is not safe for concurrent use.
type Workspace struct {
	dir string
}

// New creates a fresh workspace directory under parent. With parent empty
// the system temporary directory is used.
func New(parent string) (*Workspace, error) {
	dir, err := os.MkdirTemp(parent, "pyship-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Path returns the workspace directory, or "" once the workspace has been
// closed.
func (w *Workspace) Path() string {
	return w.dir
}

// Close removes the workspace directory and everything inside it. Closing
// an already closed workspace is a no-op.
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}

	dir := w.dir
	w.dir = ""

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", dir, err)
	}
	return nil
}
