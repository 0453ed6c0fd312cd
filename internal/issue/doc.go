// SPDX-License-Identifier: MPL-2.0

// Package issue maps pyship failure modes to user-facing guidance.
//
// Each known failure carries a Markdown help page rendered with glamour
// plus optional reference links. ActionableError attaches operation,
// resource, and remediation context to errors on their way up to the CLI.
package issue
