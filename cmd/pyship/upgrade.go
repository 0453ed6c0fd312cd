// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pyship/pyship/internal/selfupdate"
	"github.com/pyship/pyship/internal/wizard"
)

// upgradeOptions carries the flag values and writers for one upgrade
// invocation, keeping runUpgrade testable without cobra or the live
// GitHub API.
type upgradeOptions struct {
	stdout  io.Writer
	stderr  io.Writer
	updater *selfupdate.Updater
	target  string // version tag to install; empty means latest stable
	check   bool   // report availability without installing
	yes     bool   // skip the confirmation prompt
}

func newUpgradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [version]",
		Short: "Replace the pyship binary with a newer release",
		Long: `Replace the pyship binary with a newer release.

Releases come from GitHub. The downloaded archive's SHA256 checksum is
verified before the running binary is swapped out atomically. Homebrew
and go install builds are left to their package manager: for those,
the command prints the matching upgrade instructions instead of
touching the binary.`,
		Example: `  pyship upgrade              # latest stable release
  pyship upgrade v1.2.0       # exact version
  pyship upgrade --check      # report without installing
  pyship upgrade --yes        # skip the confirmation prompt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true

			var target string
			if len(args) > 0 {
				target = args[0]
			}

			opts := []selfupdate.ClientOption{
				selfupdate.WithUserAgent("pyship/" + Version),
			}
			// A token raises the GitHub API rate limit from 60 to 5000
			// requests per hour.
			if token := os.Getenv("GITHUB_TOKEN"); token != "" {
				opts = append(opts, selfupdate.WithToken(token))
			}
			updater := selfupdate.NewUpdater(Version,
				selfupdate.WithGitHubClient(selfupdate.NewGitHubClient(opts...)))

			check, _ := cmd.Flags().GetBool("check")
			yes, _ := cmd.Flags().GetBool("yes")

			p := upgradeOptions{
				stdout:  cmd.OutOrStdout(),
				stderr:  cmd.ErrOrStderr(),
				updater: updater,
				target:  target,
				check:   check,
				yes:     yes,
			}
			if err := runUpgrade(cmd.Context(), p); err != nil {
				fmt.Fprintln(p.stderr, formatUpgradeError(err))
				return &ExitError{Code: classifyUpgradeExitCode(err), Err: err}
			}
			return nil
		},
	}

	cmd.Flags().Bool("check", false, "Check for available upgrade without installing")
	cmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	return cmd
}

// runUpgrade drives the upgrade flow against the configured updater. All
// user-facing output goes to p.stdout; failures come back for the caller
// to render.
func runUpgrade(ctx context.Context, p upgradeOptions) error {
	check, err := p.updater.Check(ctx, p.target)
	if err != nil {
		return fmt.Errorf("checking for upgrade: %w", err)
	}

	// Brew- and go-install-managed binaries belong to their package
	// manager; Check composes the guidance to print.
	if check.InstallMethod == selfupdate.InstallMethodHomebrew ||
		check.InstallMethod == selfupdate.InstallMethodGoInstall {
		fmt.Fprintln(p.stdout, check.Message)
		return nil
	}

	fmt.Fprintf(p.stdout, "Installed: %s\n", check.CurrentVersion)
	if check.LatestVersion != "" {
		fmt.Fprintf(p.stdout, "Latest:    %s\n", check.LatestVersion)
	}

	// Covers both up-to-date installs and pre-release builds running
	// ahead of the latest stable release.
	if !check.UpgradeAvailable {
		fmt.Fprintf(p.stdout, "\n%s\n", check.Message)
		return nil
	}

	if p.check {
		fmt.Fprintf(p.stdout, "\n%s\n", check.Message)
		fmt.Fprintln(p.stdout, "Run 'pyship upgrade' to install it.")
		return nil
	}

	if !p.yes {
		confirmed, err := wizard.Confirm(wizard.ConfirmOptions{
			Title:       fmt.Sprintf("Upgrade pyship from %s to %s?", check.CurrentVersion, check.LatestVersion),
			Affirmative: "Yes",
			Negative:    "No",
		})
		if err != nil {
			return fmt.Errorf("confirmation prompt: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	fmt.Fprintf(p.stdout, "\nDownloading pyship %s and verifying checksum...\n", check.LatestVersion)
	if err := p.updater.Apply(ctx, check.TargetRelease); err != nil {
		return fmt.Errorf("applying upgrade: %w", err)
	}

	fmt.Fprintln(p.stdout, SuccessStyle.Render("✓ Upgraded to "+check.LatestVersion))
	return nil
}

// classifyUpgradeExitCode separates user-correctable failures from
// transient ones so scripts can react: permission problems and unknown
// versions exit 1, everything else (network, API, corruption) exits 2.
func classifyUpgradeExitCode(err error) int {
	if errors.Is(err, os.ErrPermission) || errors.Is(err, selfupdate.ErrReleaseNotFound) {
		return 1
	}
	return 2
}

// formatUpgradeError turns an upgrade failure into a message with
// remediation steps matched to the failure type.
func formatUpgradeError(err error) string {
	if rl, ok := errors.AsType[*selfupdate.RateLimitError](err); ok {
		return fmt.Sprintf("%s\n\nSet a GitHub token to raise the limit, then retry:\n  export GITHUB_TOKEN=ghp_...\n  pyship upgrade", rl.Error())
	}

	if ce, ok := errors.AsType[*selfupdate.ChecksumError](err); ok {
		return fmt.Sprintf("checksum verification failed for %s\n  expected %s\n  got      %s\n\nThe download is likely corrupted; retry the upgrade.\nIf it keeps failing, report it at https://github.com/pyship/pyship/issues",
			ce.Filename, ce.Expected, ce.Got)
	}

	if errors.Is(err, os.ErrPermission) {
		return "insufficient permissions to replace the binary\n\nRetry with elevated privileges:\n  sudo pyship upgrade"
	}

	return err.Error() + "\n\nCheck your network connection and retry.\nBehind a proxy or firewall, set GITHUB_TOKEN for authenticated access."
}
