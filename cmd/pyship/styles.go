// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette for terminal output. Hex values assume a dark background;
// lipgloss downsamples them on terminals without truecolor support.
const (
	colorPrimary   = lipgloss.Color("#7C3AED") // purple
	colorMuted     = lipgloss.Color("#6B7280") // gray
	colorSuccess   = lipgloss.Color("#10B981") // green
	colorError     = lipgloss.Color("#EF4444") // red
	colorWarning   = lipgloss.Color("#F59E0B") // amber
	colorHighlight = lipgloss.Color("#3B82F6") // blue
	colorVerbose   = lipgloss.Color("#9CA3AF") // light gray
)

// Styles shared across subcommands so ship, archive, inspect, and config
// output stays visually consistent.
var (
	// TitleStyle renders primary headers.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	// SubtitleStyle renders secondary headers and section labels.
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)

	// SuccessStyle renders checkmarks and completion notices.
	SuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)

	// ErrorStyle renders failure notices.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	// WarningStyle renders non-fatal warnings.
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)

	// NameStyle renders file, archive, and backend names.
	NameStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// VerboseStyle renders supplementary detail shown with --verbose.
	VerboseStyle = lipgloss.NewStyle().Foreground(colorVerbose)
)
