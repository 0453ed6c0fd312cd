// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pyship/pyship/internal/config"
	"github.com/pyship/pyship/pkg/pysrc"
	"github.com/pyship/pyship/pkg/ship"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// shipParams bundles the dependencies and flags for the ship command,
// enabling the core logic in runShip to be tested without a real Cobra
// command or a live backend.
type shipParams struct {
	stdout  io.Writer
	reg     ship.Registrar
	backend config.Backend
	base    string

	// extensions and excludes are flag overrides; nil means "flag not
	// set", so shipfile and config values keep applying.
	extensions []string
	excludes   []string

	// defaultExtensions and defaultExcludes are the config-file values,
	// applied below any shipfile in the base directory.
	defaultExtensions []string
	defaultExcludes   []string

	noHooks      bool
	workspaceDir string
	dryRun       bool
	logger       *log.Logger
}

// newShipCommand creates the `pyship ship` command, the end-to-end path:
// discover sources, package sub-modules, register everything with the
// configured backend.
func newShipCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ship <dir>",
		Short: "Ship a job directory's Python dependencies to the cluster",
		Long: `Ship a job directory's Python dependencies to the cluster.

Top-level source files are registered as they are; every sub-directory
is zipped with entry names relative to the job directory, so nested
imports keep resolving on the workers, and registered as one archive.

Where artifacts go is decided by the configured backend (local directory,
HTTP endpoint, S3 bucket, or discard). A pyship.toml in the job directory
supplies per-project extensions, excludes, and pre-ship hooks.`,
		Example: `  # Ship with the configured backend
  pyship ship ./job

  # See what would ship without shipping anything
  pyship ship ./job --dry-run

  # Stage into a local directory regardless of config
  pyship ship ./job --dist-dir ./staging

  # Ship SQL files too, skip the notebook checkouts
  pyship ship ./job --extensions .py,.sql --exclude notebooks`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := app.loadConfig(cmd.Context(), cfgFile)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			overrides := registrarOverrides{}
			overrides.backend, _ = cmd.Flags().GetString("backend")
			overrides.distDir, _ = cmd.Flags().GetString("dist-dir")
			overrides.dryRun, _ = cmd.Flags().GetBool("dry-run")

			logger := newRunLogger(app.stderr)
			reg, backend, err := buildRegistrar(cfg, overrides, logger)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			p := shipParams{
				stdout:            app.stdout,
				reg:               reg,
				backend:           backend,
				base:              args[0],
				defaultExtensions: extensionStrings(cfg.Extensions),
				defaultExcludes:   excludeStrings(cfg.Exclude),
				dryRun:            overrides.dryRun,
				logger:            logger,
			}
			if cmd.Flags().Changed("extensions") {
				p.extensions, _ = cmd.Flags().GetStringSlice("extensions")
			}
			if cmd.Flags().Changed("exclude") {
				p.excludes, _ = cmd.Flags().GetStringSlice("exclude")
			}
			p.noHooks, _ = cmd.Flags().GetBool("no-hooks")
			p.workspaceDir, _ = cmd.Flags().GetString("workspace-dir")

			report, err := runShip(cmd.Context(), p)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyShipExitCode(err), Err: err}
			}

			renderShipReport(p.stdout, p.backend, p.dryRun, report)
			return nil
		},
	}

	cmd.Flags().StringSlice("extensions", nil, "file extensions to ship (overrides shipfile and config)")
	cmd.Flags().StringSlice("exclude", nil, "directory names to prune (overrides shipfile and config)")
	cmd.Flags().String("backend", "", "registration backend: discard, local, http, s3 (overrides config)")
	cmd.Flags().String("dist-dir", "", "stage into this directory (forces the local backend)")
	cmd.Flags().Bool("dry-run", false, "plan and package, register nothing (forces the discard backend)")
	cmd.Flags().Bool("no-hooks", false, "skip pre-ship hooks")
	cmd.Flags().String("workspace-dir", "", "parent directory for the temporary workspace")

	return cmd
}

// runShip is the core ship logic, separated from Cobra for testability.
func runShip(ctx context.Context, p shipParams) (*ship.Report, error) {
	opts := []ship.Option{ship.WithLogger(p.logger)}
	if p.extensions != nil {
		opts = append(opts, ship.WithExtensions(p.extensions...))
	}
	if p.excludes != nil {
		opts = append(opts, ship.WithExcludes(p.excludes...))
	}
	if len(p.defaultExtensions) > 0 {
		opts = append(opts, ship.WithDefaultExtensions(p.defaultExtensions...))
	}
	if len(p.defaultExcludes) > 0 {
		opts = append(opts, ship.WithDefaultExcludes(p.defaultExcludes...))
	}
	if p.noHooks {
		opts = append(opts, ship.WithoutHooks())
	}
	if p.workspaceDir != "" {
		opts = append(opts, ship.WithWorkspaceDir(p.workspaceDir))
	}

	return ship.New(p.reg, opts...).AddDeps(ctx, p.base)
}

// renderShipReport prints the styled run summary.
func renderShipReport(w io.Writer, backend config.Backend, dryRun bool, report *ship.Report) {
	if dryRun {
		fmt.Fprintf(w, "%s Dry run complete for %s\n", SuccessStyle.Render("✓"), report.Base)
	} else {
		fmt.Fprintf(w, "%s Shipped %s via %s\n", SuccessStyle.Render("✓"), report.Base, NameStyle.Render(string(backend)))
	}

	fmt.Fprintf(w, "  %s %d%s\n", SubtitleStyle.Render("Files:   "), len(report.Files), nameList(baseNames(report.Files)))
	fmt.Fprintf(w, "  %s %d%s\n", SubtitleStyle.Render("Archives:"), len(report.Archives), nameList(report.Archives))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(w, "  %s %d%s\n", SubtitleStyle.Render("Skipped: "), len(report.Skipped), nameList(report.Skipped))
	}
	if len(report.Hooks) > 0 {
		fmt.Fprintf(w, "  %s %d\n", SubtitleStyle.Render("Hooks:   "), len(report.Hooks))
	}
}

// classifyShipExitCode maps a ship error to the process exit code:
// 1 for user-correctable input problems, 2 for everything else.
func classifyShipExitCode(err error) int {
	if errors.Is(err, pysrc.ErrNotDir) {
		return 1
	}
	return 2
}

// newRunLogger builds the logger injected into the ship pipeline.
func newRunLogger(w io.Writer) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "pyship"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// baseNames maps absolute paths to their base names for display.
func baseNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

// nameList formats names as " (a, b, c)", or "" when there are none.
func nameList(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " (" + strings.Join(names, ", ") + ")"
}

// extensionStrings converts config extensions for the ship options.
func extensionStrings(exts []config.Extension) []string {
	out := make([]string, len(exts))
	for i, e := range exts {
		out[i] = string(e)
	}
	return out
}

// excludeStrings converts config excludes for the ship options.
func excludeStrings(names []config.ExcludeName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	return out
}
