// SPDX-License-Identifier: MPL-2.0

package cmd

import "strconv"

// ExitError carries the exit code a failed command run maps to. RunE
// handlers return it instead of calling os.Exit; Execute translates it
// into the process exit status at the top of the command tree.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit code " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
