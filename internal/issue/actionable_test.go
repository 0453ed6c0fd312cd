// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableErrorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "load shipfile"},
			want: "failed to load shipfile",
		},
		{
			name: "with resource",
			err: &ActionableError{
				Operation: "load shipfile",
				Resource:  "./pyship.toml",
			},
			want: "failed to load shipfile: ./pyship.toml",
		},
		{
			name: "with cause",
			err: &ActionableError{
				Operation: "parse config",
				Cause:     errors.New("syntax error at line 5"),
			},
			want: "failed to parse config: syntax error at line 5",
		},
		{
			name: "with resource and cause",
			err: &ActionableError{
				Operation: "load shipfile",
				Resource:  "./pyship.toml",
				Cause:     errors.New("file not found"),
			},
			want: "failed to load shipfile: ./pyship.toml: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("underlying error")
	wrapped := &ActionableError{Operation: "register file", Cause: cause}

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is() did not find the wrapped cause")
	}

	bare := &ActionableError{Operation: "register file"}
	if bare.Unwrap() != nil {
		t.Errorf("Unwrap() = %v without a cause, want nil", bare.Unwrap())
	}
}

func TestActionableErrorFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "bare operation",
			err:      &ActionableError{Operation: "load config"},
			contains: []string{"failed to load config"},
		},
		{
			name: "suggestions become bullets",
			err: &ActionableError{
				Operation:   "load shipfile",
				Resource:    "./pyship.toml",
				Suggestions: []string{"run 'pyship config init'", "check file permissions"},
			},
			contains: []string{
				"failed to load shipfile",
				"./pyship.toml",
				"• run 'pyship config init'",
				"• check file permissions",
			},
		},
		{
			name: "verbose walks the cause chain",
			err: &ActionableError{
				Operation: "ship dependencies",
				Cause: &ActionableError{
					Operation: "register archive",
					Cause:     errors.New("connection refused"),
				},
			},
			verbose: true,
			contains: []string{
				"Error chain:",
				"1. failed to register archive: connection refused",
				"2. connection refused",
			},
		},
		{
			name: "chain is hidden without verbose",
			err: &ActionableError{
				Operation: "parse config",
				Cause:     errors.New("syntax error"),
			},
			contains: []string{"failed to parse config: syntax error"},
			excludes: []string{"Error chain:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.err.Format(tt.verbose)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() must not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestActionableErrorHasSuggestions(t *testing.T) {
	t.Parallel()

	with := &ActionableError{Operation: "x", Suggestions: []string{"try this"}}
	if !with.HasSuggestions() {
		t.Error("HasSuggestions() = false with suggestions attached")
	}
	without := &ActionableError{Operation: "x"}
	if without.HasSuggestions() {
		t.Error("HasSuggestions() = true without suggestions")
	}
}

func TestErrorContextBuild(t *testing.T) {
	t.Parallel()

	cause := errors.New("parse error")
	built := NewErrorContext().
		WithOperation("load config").
		WithResource("/etc/pyship/config.cue").
		WithSuggestion("check syntax").
		WithSuggestions("verify permissions", "regenerate with 'pyship config init'").
		Wrap(cause).
		Build()

	if built == nil {
		t.Fatal("Build() = nil with an operation set")
	}
	if built.Operation != "load config" {
		t.Errorf("Operation = %q, want %q", built.Operation, "load config")
	}
	if built.Resource != "/etc/pyship/config.cue" {
		t.Errorf("Resource = %q, want %q", built.Resource, "/etc/pyship/config.cue")
	}
	if len(built.Suggestions) != 3 {
		t.Errorf("Suggestions count = %d, want 3", len(built.Suggestions))
	}
	if !errors.Is(built, cause) {
		t.Error("Build() dropped the wrapped cause")
	}
}

func TestErrorContextBuild_RequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("some/path").Build(); got != nil {
		t.Errorf("Build() = %v without an operation, want nil", got)
	}
}

func TestErrorContextBuildError(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().WithOperation("inspect sources").BuildError()
	if err == nil {
		t.Fatal("BuildError() = nil with an operation set")
	}
	if _, ok := errors.AsType[*ActionableError](err); !ok {
		t.Errorf("BuildError() returned %T, want *ActionableError", err)
	}

	// A typed nil inside the interface would make err != nil checks at
	// call sites misfire.
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() = %v without an operation, want nil interface", err)
	}
}

func TestErrorContextReuse(t *testing.T) {
	t.Parallel()

	ctx := NewErrorContext().
		WithOperation("register file").
		WithResource("/data/job.py")

	first := ctx.Wrap(errors.New("timeout")).Build()
	second := ctx.Wrap(errors.New("connection refused")).Build()

	if first.Cause.Error() == second.Cause.Error() {
		t.Error("reused context kept the earlier cause")
	}
	if first.Operation != second.Operation || first.Resource != second.Resource {
		t.Error("reused context lost operation or resource")
	}
}
