// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pyship/pyship/internal/registrar"
	"github.com/pyship/pyship/pkg/ship"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// inspectParams bundles the inputs for the inspect command, enabling the
// core logic in runInspect to be tested without a real Cobra command.
type inspectParams struct {
	stdout io.Writer
	base   string

	extensions        []string
	excludes          []string
	defaultExtensions []string
	defaultExcludes   []string

	verbose bool
}

// newInspectCommand creates the `pyship inspect` command: it prints the
// ship plan without writing, packaging, or registering anything.
func newInspectCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <dir>",
		Short: "Show what a ship run would register, without shipping",
		Long: `Show what a ship run would register, without shipping.

The plan applies the same resolution a real run does: command-line flags
win, then the pyship.toml in the directory, then the config file, then
the built-in defaults. Nothing is packaged or registered and no hook
runs.`,
		Example: `  # Print the plan
  pyship inspect ./job

  # Include every planned archive entry
  pyship inspect ./job --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			cfg, err := app.loadConfig(cmd.Context(), cfgFile)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: 1, Err: err}
			}

			p := inspectParams{
				stdout:            app.stdout,
				base:              args[0],
				defaultExtensions: extensionStrings(cfg.Extensions),
				defaultExcludes:   excludeStrings(cfg.Exclude),
				verbose:           verbose,
			}
			if cmd.Flags().Changed("extensions") {
				p.extensions, _ = cmd.Flags().GetStringSlice("extensions")
			}
			if cmd.Flags().Changed("exclude") {
				p.excludes, _ = cmd.Flags().GetStringSlice("exclude")
			}

			plan, err := runInspect(cmd.Context(), p)
			if err != nil {
				fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
				return &ExitError{Code: classifyShipExitCode(err), Err: err}
			}

			renderPlan(p.stdout, plan, p.verbose)
			return nil
		},
	}

	cmd.Flags().StringSlice("extensions", nil, "file extensions to plan for (overrides shipfile and config)")
	cmd.Flags().StringSlice("exclude", nil, "directory names to prune (overrides shipfile and config)")

	return cmd
}

// runInspect computes the ship plan. The discard registrar is wired in
// only to satisfy the Shipper constructor; Plan never registers.
func runInspect(ctx context.Context, p inspectParams) (*ship.Plan, error) {
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

	return ship.New(registrar.NewDiscard(quiet), opts...).Plan(ctx, p.base)
}

// renderPlan prints the styled plan.
func renderPlan(w io.Writer, plan *ship.Plan, showEntries bool) {
	fmt.Fprintln(w, TitleStyle.Render("Ship plan for ")+plan.Base)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", SubtitleStyle.Render(fmt.Sprintf("Files (%d):", len(plan.Files))))
	for _, f := range plan.Files {
		fmt.Fprintf(w, "  %s\n", NameStyle.Render(filepath.Base(f)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", SubtitleStyle.Render(fmt.Sprintf("Archives (%d):", len(plan.Submodules))))
	for _, sub := range plan.Submodules {
		fmt.Fprintf(w, "  %s %s\n", NameStyle.Render(sub.Name), SubtitleStyle.Render(fmt.Sprintf("(%d entries)", len(sub.Files))))
		if showEntries {
			for _, entry := range sub.Files {
				fmt.Fprintf(w, "    %s\n", VerboseStyle.Render(entry))
			}
		}
	}

	if len(plan.Skipped) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s%s\n", SubtitleStyle.Render(fmt.Sprintf("Skipped (%d):", len(plan.Skipped))), nameList(plan.Skipped))
	}
	if len(plan.Hooks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", SubtitleStyle.Render(fmt.Sprintf("Pre-ship hooks (%d):", len(plan.Hooks))))
		for _, h := range plan.Hooks {
			fmt.Fprintf(w, "  %s\n", VerboseStyle.Render(h))
		}
	}
}
