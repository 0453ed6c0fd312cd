// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError carries enough context to tell the user what failed,
// where, and what to do about it. Build one with ErrorContext:
//
//	return issue.NewErrorContext().
//		WithOperation("load shipfile").
//		WithResource("./pyship.toml").
//		WithSuggestion("run 'pyship config init' to create one").
//		Wrap(err).
//		BuildError()
type ActionableError struct {
	// Operation is the verb phrase that failed, such as "load shipfile"
	// or "register archive".
	Operation string

	// Resource is the file, path, or entity involved, when there is one.
	Resource string

	// Suggestions are remediation hints shown under the message.
	Suggestions []string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *ActionableError) Error() string {
	msg := "failed to " + e.Operation
	if e.Resource != "" {
		msg += ": " + e.Resource
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasSuggestions reports whether any remediation hints are attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Format renders the error for terminal output. Suggestions appear as a
// bulleted list under the message; verbose additionally walks the cause
// chain, one numbered line per error.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if e.HasSuggestions() {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}

	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		depth := 1
		for cause := e.Cause; cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(&b, "\n  %d. %s", depth, cause)
			depth++
		}
	}
	return b.String()
}

// ErrorContext accumulates error context incrementally. It suits call
// sites where the operation and resource are known up front and the
// cause arrives later:
//
//	ctx := issue.NewErrorContext().
//		WithOperation("parse shipfile").
//		WithResource(path)
//	...
//	return ctx.Wrap(err).BuildError()
type ErrorContext struct {
	operation   string
	resource    string
	suggestions []string
	cause       error
}

func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WithOperation sets the verb phrase describing what was attempted.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the file, path, or entity involved.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends one remediation hint.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.suggestions = append(c.suggestions, s)
	return c
}

// WithSuggestions appends several remediation hints at once.
func (c *ErrorContext) WithSuggestions(s ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, s...)
	return c
}

// Wrap records the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build materializes the ActionableError. The operation is required;
// without it Build returns nil.
func (c *ErrorContext) Build() *ActionableError {
	if c.operation == "" {
		return nil
	}
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// BuildError is Build for return statements that want a plain error. A
// missing operation comes back as a true nil interface, not a typed nil.
func (c *ErrorContext) BuildError() error {
	if ae := c.Build(); ae != nil {
		return ae
	}
	return nil
}
