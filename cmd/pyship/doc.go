// SPDX-License-Identifier: MPL-2.0

// Package cmd implements the pyship command tree: the root command, the
// ship/inspect/archive pipeline commands, and the config and upgrade
// utilities. Handlers stay thin; the work happens in pkg/ship and the
// registrar backends, with an App value carrying shared dependencies.
package cmd
