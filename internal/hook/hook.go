// SPDX-License-Identifier: MPL-2.0

// Package hook executes shipfile hooks in an embedded POSIX shell
// interpreter, so pre-ship snippets behave the same on every platform
// without depending on a system shell.
package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// BaseDirEnv is the environment variable that exposes the shipped
// directory to hook snippets.
const BaseDirEnv = "PYSHIP_BASE_DIR"

// ExitError reports a hook snippet that ran to completion but exited
// non-zero.
type ExitError struct {
	// Snippet is the hook text as written in the shipfile.
	Snippet string
	// Code is the shell exit status.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("hook %q exited with status %d", e.Snippet, e.Code)
}

// Runner executes hook snippets inside a fixed working directory.
type Runner struct {
	// Dir is the working directory for every snippet. It is also
	// published to snippets as PYSHIP_BASE_DIR.
	Dir string
	// Env holds extra KEY=VALUE pairs appended to the inherited
	// environment.
	Env []string
	// Stdout and Stderr receive the snippet's output. Nil writers fall
	// back to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run parses and executes a single hook snippet. A snippet that exits
// non-zero is reported as an *ExitError; parse and interpreter failures
// are wrapped as plain errors.
func (r *Runner) Run(ctx context.Context, snippet string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(snippet), "hook")
	if err != nil {
		return fmt.Errorf("failed to parse hook %q: %w", snippet, err)
	}

	env := append(os.Environ(), BaseDirEnv+"="+r.Dir)
	env = append(env, r.Env...)

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	runner, err := interp.New(
		interp.Dir(r.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(nil, stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExitError{Snippet: snippet, Code: int(exitStatus)}
		}
		return fmt.Errorf("hook execution failed: %w", err)
	}

	return nil
}

// RunAll executes snippets in order, stopping at the first failure.
func (r *Runner) RunAll(ctx context.Context, snippets []string) error {
	for _, snippet := range snippets {
		if err := r.Run(ctx, snippet); err != nil {
			return err
		}
	}
	return nil
}
