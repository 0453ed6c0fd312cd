// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pyship/pyship/internal/registrar"
	"github.com/pyship/pyship/pkg/ship"
	"github.com/pyship/pyship/pkg/submod"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// archiveParams bundles the inputs for the archive command, enabling the
// core logic in runArchive to be tested without a real Cobra command.
type archiveParams struct {
	stdout io.Writer
	base   string
	output string

	extensions        []string
	excludes          []string
	defaultExtensions []string
	defaultExcludes   []string
}

// newArchiveCommand creates the `pyship archive` command: it builds every
// sub-module archive into an output directory without registering.
func newArchiveCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <dir>",
		Short: "Build the sub-module archives without registering them",
		Long: `Build the sub-module archives without registering them.

Each sub-directory of the job directory becomes one zip in the output
directory, with entry names relative to the job directory, exactly as a
ship run would package it. Nothing is registered with any backend.`,
		Example: `  # Build archives into ./dist
  pyship archive ./job

  # Choose the output directory
  pyship archive ./job --output ./artifacts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := app.loadConfig(cmd.Context(), cfgFile)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			p := archiveParams{
				stdout:            app.stdout,
				base:              args[0],
				defaultExtensions: extensionStrings(cfg.Extensions),
				defaultExcludes:   excludeStrings(cfg.Exclude),
			}
			p.output, _ = cmd.Flags().GetString("output")
			if cmd.Flags().Changed("extensions") {
				p.extensions, _ = cmd.Flags().GetStringSlice("extensions")
			}
			if cmd.Flags().Changed("exclude") {
				p.excludes, _ = cmd.Flags().GetStringSlice("exclude")
			}

			built, err := runArchive(cmd.Context(), p)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyShipExitCode(err), Err: err}
			}

			fmt.Fprintf(p.stdout, "%s Built %d archive(s) into %s\n", SuccessStyle.Render("✓"), len(built), p.output)
			for _, archive := range built {
				fmt.Fprintf(p.stdout, "  %s\n", NameStyle.Render(filepath.Base(archive)))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "dist", "directory the archives are written into")
	cmd.Flags().StringSlice("extensions", nil, "file extensions to package (overrides shipfile and config)")
	cmd.Flags().StringSlice("exclude", nil, "directory names to prune (overrides shipfile and config)")

	return cmd
}

// runArchive resolves the plan for base and builds each planned archive
// into the output directory. It returns the built archive paths.
func runArchive(ctx context.Context, p archiveParams) ([]string, error) {
	quiet := log.New(io.Discard)
	opts := []ship.Option{ship.WithLogger(quiet)}
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

	plan, err := ship.New(registrar.NewDiscard(quiet), opts...).Plan(ctx, p.base)
	if err != nil {
		return nil, err
	}

	outDir, err := filepath.Abs(p.output)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var built []string
	for _, sub := range plan.Submodules {
		if err := ctx.Err(); err != nil {
			return built, err
		}

		subdir := filepath.Join(plan.Base, strings.TrimSuffix(sub.Name, ".zip"))
		archive, err := submod.Build(plan.Base, subdir, outDir, plan.Extensions, plan.Excludes)
		if err != nil {
			return built, err
		}
		if archive != "" {
			built = append(built, archive)
		}
	}
	return built, nil
}
