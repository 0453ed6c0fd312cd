// SPDX-License-Identifier: MPL-2.0

package registrar

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Discard logs registrations and drops them. It backs --dry-run, so a
// ship can be rehearsed without touching any cluster.
type Discard struct {
	logger *log.Logger
}

// NewDiscard returns a discarding registrar. A nil logger falls back to a
// stderr logger.
func NewDiscard(logger *log.Logger) *Discard {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "registrar"})
	}
	return &Discard{logger: logger}
}

// Register logs the would-be registration and succeeds.
func (d *Discard) Register(_ context.Context, path string) error {
	d.logger.Info("Dry run, dropping registration", "name", filepath.Base(path))
	return nil
}
