// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize caps CUE files at 5MB so a runaway or hostile
// config cannot exhaust memory during parsing.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// FormatError rewrites a CUE error list as one user-facing error of the
// form "<file>: <json-path>: <message>", for example:
//
//	config.cue: extensions[1]: invalid value "py" (does not match =~"^\\.")
//	config.cue: s3.use_ssl: expected bool, got string
//
// Multiple failures are folded into an indented list under a single
// "validation failed" header. A non-CUE error is wrapped with the file
// path as-is.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrs := errors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	lines := make([]string, 0, len(cueErrs))
	for _, e := range cueErrs {
		lines = append(lines, describe(e))
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// describe renders a single CUE error as "<json-path>: <message>". CUE
// sometimes bakes the path into the message itself; that prefix is
// stripped rather than printed twice.
func describe(e errors.Error) string {
	pathStr := formatPath(errors.Path(e))
	if pathStr == "" {
		return e.Error()
	}

	msg := e.Error()
	if rest, ok := strings.CutPrefix(msg, pathStr); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return pathStr + ": " + msg
}

// formatPath converts CUE's flat path slice (["extensions", "0"]) to
// JSON-path notation ("extensions[0]").
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isIndex(part):
			b.WriteString("[")
			b.WriteString(part)
			b.WriteString("]")
		case i > 0:
			b.WriteString(".")
			b.WriteString(part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}

// isIndex reports whether a path element is a list index.
func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects data larger than maxSize before it reaches the
// CUE parser. Callers that stream can check the byte count up front.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
