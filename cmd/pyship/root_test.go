// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/pyship/pyship/internal/issue"

	"github.com/spf13/cobra"
)

func TestVersionString(t *testing.T) {
	// Not parallel: mutates the package-level build identity vars.

	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{
			name:    "release build formats the stamped triple",
			version: "v1.2.3",
			commit:  "abc1234",
			date:    "2026-06-15T10:00:00Z",
			want:    "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)",
		},
		{
			name:    "source build omits commit detail",
			version: "dev",
			commit:  "unknown",
			date:    "unknown",
			want:    "dev (built from source)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origVersion, origCommit, origDate := Version, Commit, BuildDate
			t.Cleanup(func() {
				Version, Commit, BuildDate = origVersion, origCommit, origDate
			})

			Version, Commit, BuildDate = tt.version, tt.commit, tt.date
			if got := versionString(); got != tt.want {
				t.Errorf("versionString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRootCommand_Wiring(t *testing.T) {
	t.Parallel()

	root := newRootCommand(NewApp(Dependencies{}))

	for _, name := range []string{"ship", "inspect", "archive", "config", "upgrade"} {
		if !slices.ContainsFunc(root.Commands(), func(c *cobra.Command) bool { return c.Name() == name }) {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}

	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command is missing persistent flag --%s", flag)
		}
	}
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Parallel()

	actionable := issue.NewErrorContext().
		WithOperation("load shipfile").
		WithSuggestion("run 'pyship config init' to create one").
		Wrap(errors.New("boom")).
		BuildError()

	tests := []struct {
		name    string
		err     error
		verbose bool
		want    []string
		exclude []string
	}{
		{
			name: "plain error passes through",
			err:  errors.New("test failure"),
			want: []string{"test failure"},
		},
		{
			name:    "actionable error renders suggestions",
			err:     actionable,
			want:    []string{"failed to load shipfile", "run 'pyship config init' to create one"},
			exclude: []string{"Error chain:"},
		},
		{
			name:    "verbose adds the cause chain",
			err:     actionable,
			verbose: true,
			want:    []string{"Error chain:", "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := formatErrorForDisplay(tt.err, tt.verbose)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("formatErrorForDisplay() = %q, want it to contain %q", got, want)
				}
			}
			for _, absent := range tt.exclude {
				if strings.Contains(got, absent) {
					t.Errorf("formatErrorForDisplay() = %q, must not contain %q", got, absent)
				}
			}
		})
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	t.Run("message comes from the wrapped error", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("backend unreachable")
		err := &ExitError{Code: 2, Err: cause}
		if err.Error() != "backend unreachable" {
			t.Errorf("Error() = %q, want the cause message", err.Error())
		}
		if !errors.Is(err, cause) {
			t.Error("errors.Is() does not see through ExitError")
		}
	})

	t.Run("bare code prints the code", func(t *testing.T) {
		t.Parallel()

		err := &ExitError{Code: 3}
		if got, want := err.Error(), "exit code 3"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}
