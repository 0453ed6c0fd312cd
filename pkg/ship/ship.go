// SPDX-License-Identifier: MPL-2.0

// Package ship assembles the Python dependencies of a job directory and
// registers them with a cluster.
//
// A ship run walks one base directory: top-level source files are
// registered as they are, every immediate sub-directory is packaged into
// a ZIP archive (entries relative to the base, so remote imports keep
// resolving) and registered under the archive name. Archives live in a
// temporary workspace that is released when the run finishes, whether it
// succeeded or not.
package ship

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pyship/pyship/internal/hook"
	"github.com/pyship/pyship/internal/workspace"
	"github.com/pyship/pyship/pkg/pysrc"
	"github.com/pyship/pyship/pkg/shipfile"
	"github.com/pyship/pyship/pkg/submod"

	"github.com/charmbracelet/log"
)

// Registrar ships one local file or archive to every execution context of
// the target job. Implementations must treat the path's base name as the
// file's remote identity.
type Registrar interface {
	Register(ctx context.Context, path string) error
}

// Report summarizes a completed ship run.
type Report struct {
	// Base is the absolute directory that was shipped.
	Base string
	// Files lists the registered top-level source files (absolute paths).
	Files []string
	// Archives lists the registered sub-module archive names (e.g.
	// "pkg.zip").
	Archives []string
	// Skipped lists sub-directories that produced no archive because
	// nothing inside them matched.
	Skipped []string
	// Hooks lists the pre-ship snippets that ran.
	Hooks []string
}

// Shipper wires source discovery, sub-module packaging, and registration
// together. A Shipper is not safe for concurrent AddDeps calls on the
// same instance.
type Shipper struct {
	reg    Registrar
	logger *log.Logger

	// nil means "not configured": the shipfile value, then the default
	// tier, applies.
	extensions []string
	excludes   []string
	hooks      []string

	// The default tier sits below the shipfile: it replaces the built-in
	// fallbacks without overriding a project's manifest.
	defaultExtensions []string
	defaultExcludes   []string

	hooksOff     bool
	workspaceDir string
}

// Option configures a Shipper.
type Option func(*Shipper)

// WithLogger replaces the default stderr logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Shipper) { s.logger = logger }
}

// WithExtensions pins the shipped file extensions, overriding any
// shipfile value.
func WithExtensions(exts ...string) Option {
	return func(s *Shipper) { s.extensions = exts }
}

// WithExcludes pins the pruned directory names, overriding any shipfile
// value.
func WithExcludes(names ...string) Option {
	return func(s *Shipper) { s.excludes = names }
}

// WithHooks pins the pre-ship hook snippets, overriding any shipfile
// value.
func WithHooks(snippets ...string) Option {
	return func(s *Shipper) { s.hooks = snippets }
}

// WithDefaultExtensions replaces the built-in extension fallback used
// when neither the Shipper nor the shipfile names extensions.
func WithDefaultExtensions(exts ...string) Option {
	return func(s *Shipper) { s.defaultExtensions = exts }
}

// WithDefaultExcludes supplies pruned directory names used when neither
// the Shipper nor the shipfile names excludes.
func WithDefaultExcludes(names ...string) Option {
	return func(s *Shipper) { s.defaultExcludes = names }
}

// WithoutHooks disables pre-ship hooks for the run, whatever the shipfile
// says.
func WithoutHooks() Option {
	return func(s *Shipper) { s.hooksOff = true }
}

// WithWorkspaceDir places the run's temporary workspace under dir instead
// of the system temporary directory.
func WithWorkspaceDir(dir string) Option {
	return func(s *Shipper) { s.workspaceDir = dir }
}

// New returns a Shipper that registers through reg.
func New(reg Registrar, opts ...Option) *Shipper {
	s := &Shipper{
		reg:    reg,
		logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "ship"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddDeps ships every dependency found under base: top-level source files
// first, then one archive per immediate sub-directory. The shipfile in
// base, if any, supplies defaults for options not set on the Shipper.
//
// The run fails before any registration when base is not a directory, and
// aborts on the first registration or hook failure. The temporary
// workspace is released on every path out.
func (s *Shipper) AddDeps(ctx context.Context, base string) (*Report, error) {
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

	report := &Report{Base: absBase}
	s.logger.Info("Shipping dependencies", "base", absBase)

	if err := s.runHooks(ctx, absBase, hooks, report); err != nil {
		return nil, err
	}

	files, err := pysrc.Find(absBase, exts, false)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		if err := s.register(ctx, file); err != nil {
			return nil, err
		}
		report.Files = append(report.Files, file)
	}

	// Snapshot the sub-directories before the workspace exists, so a
	// workspace parented inside base can never ship itself.
	entries, err := os.ReadDir(absBase)
	if err != nil {
		return nil, fmt.Errorf("failed to read base directory: %w", err)
	}

	ws, err := workspace.New(s.workspaceDir)
	if err != nil {
		return nil, err
	}
	wsPath := ws.Path()
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			s.logger.Warn("Failed to remove workspace", "path", wsPath, "error", cerr)
		}
	}()
	s.logger.Debug("Created workspace", "path", wsPath)

	for _, entry := range entries {
		if !entry.IsDir() || slices.Contains(excludes, entry.Name()) {
			continue
		}

		archive, err := submod.Build(absBase, filepath.Join(absBase, entry.Name()), wsPath, exts, excludes)
		if err != nil {
			return nil, err
		}
		if archive == "" {
			report.Skipped = append(report.Skipped, entry.Name())
		}

		if err := s.register(ctx, archive); err != nil {
			return nil, err
		}
		if archive != "" {
			report.Archives = append(report.Archives, filepath.Base(archive))
		}
	}

	s.logger.Info("Shipped dependencies",
		"files", len(report.Files),
		"archives", len(report.Archives),
		"skipped", len(report.Skipped))
	return report, nil
}

// effectiveOptions resolves the run configuration: values set on the
// Shipper win, then the shipfile in base, then the default tier, then
// built-in defaults.
func (s *Shipper) effectiveOptions(absBase string) (exts, excludes, hooks []string, err error) {
	exts = s.extensions
	excludes = s.excludes
	hooks = s.hooks

	sf, err := shipfile.Load(absBase)
	switch {
	case errors.Is(err, shipfile.ErrNotFound):
		// No manifest; the configured values stand.
	case err != nil:
		return nil, nil, nil, err
	default:
		if exts == nil {
			exts = sf.Extensions
		}
		if excludes == nil {
			excludes = sf.Exclude
		}
		if hooks == nil {
			hooks = sf.Hooks.PreShip
		}
	}

	if len(exts) == 0 {
		exts = s.defaultExtensions
	}
	if len(exts) == 0 {
		exts = pysrc.DefaultExtensions
	}
	if len(excludes) == 0 {
		excludes = s.defaultExcludes
	}
	if s.hooksOff {
		hooks = nil
	}
	return exts, excludes, hooks, nil
}

// runHooks executes the pre-ship snippets inside absBase, recording each
// completed snippet in the report.
func (s *Shipper) runHooks(ctx context.Context, absBase string, hooks []string, report *Report) error {
	if len(hooks) == 0 {
		return nil
	}

	runner := &hook.Runner{Dir: absBase}
	for _, snippet := range hooks {
		s.logger.Info("Running pre-ship hook", "hook", snippet)
		if err := runner.Run(ctx, snippet); err != nil {
			return fmt.Errorf("pre-ship hook failed: %w", err)
		}
		report.Hooks = append(report.Hooks, snippet)
	}
	return nil
}

// register makes one path available to the job through the Registrar. An
// empty path is a warned no-op, so callers can funnel "nothing to ship"
// results through without special-casing them.
func (s *Shipper) register(ctx context.Context, path string) error {
	if path == "" {
		s.logger.Warn("Registration requested with an empty path, skipping")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.logger.Info("Registering", "name", filepath.Base(path))
	if err := s.reg.Register(ctx, path); err != nil {
		return fmt.Errorf("failed to register %s: %w", filepath.Base(path), err)
	}
	return nil
}
