// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pyship/pyship/internal/config"
	"github.com/pyship/pyship/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Build identity, stamped with -ldflags at release time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Targets for the persistent flags every subcommand inherits.
var (
	verbose bool
	cfgFile string
)

// newRootCommand builds the base command and hangs the subcommands off it.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pyship",
		Short: "Ship Python dependencies to distributed compute clusters",
		Long: TitleStyle.Render("pyship") + SubtitleStyle.Render(" - Ship Python dependencies to distributed compute clusters") + `

pyship walks a job directory, registers top-level Python source files
directly, and zips each sub-directory (preserving relative import paths)
before registering the archive. Where the artifacts go is decided by the
configured backend: a local distribution directory, an HTTP intake
endpoint, an S3-compatible bucket, or nowhere (discard).

An optional 'pyship.toml' in the job directory supplies per-project
extensions, excludes, and pre-ship hooks.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'pyship config init' to write a starter configuration
  2. Point 'pyship ship <dir>' at your job directory
  3. Submit your job; workers import the shipped modules

` + SubtitleStyle.Render("Examples:") + `
  pyship ship ./job             Ship a job directory
  pyship ship ./job --dry-run   Show what would ship without shipping
  pyship inspect ./job          Print the ship plan
  pyship archive ./job -o dist  Build the sub-module archives only
  pyship config show            Show current configuration`,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/pyship/config.cue)")

	rootCmd.AddCommand(newShipCommand(app))
	rootCmd.AddCommand(newInspectCommand(app))
	rootCmd.AddCommand(newArchiveCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newUpgradeCommand())

	return rootCmd
}

// versionString is what --version prints. Release builds carry the full
// stamped triple; source builds just say so.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process on failure. main calls it once.
func Execute() {
	cobra.OnInitialize(applyGlobalConfig)

	// fang wraps cobra execution with styled help and owns the --version
	// flag, so the version string has to go through WithVersion.
	err := fang.Execute(
		context.Background(),
		newRootCommand(NewApp(Dependencies{})),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err == nil {
		return
	}
	if exitErr, ok := errors.AsType[*ExitError](err); ok {
		os.Exit(exitErr.Code)
	}
	os.Exit(1)
}

// applyGlobalConfig runs after flag parsing and before any RunE. It routes
// an explicit --config to the loader and lets the config file turn on
// verbose output when the flag did not.
func applyGlobalConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
}

// formatErrorForDisplay prefers the actionable rendering (message plus
// suggestions, and the cause chain when verbose) over a bare Error().
func formatErrorForDisplay(err error, verboseMode bool) string {
	if ae, ok := errors.AsType[*issue.ActionableError](err); ok {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
