// SPDX-License-Identifier: MPL-2.0

package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmOptions configures a yes/no prompt.
type ConfirmOptions struct {
	// Title is the question put to the user.
	Title string
	// Affirmative relabels the yes option; empty means "Yes".
	Affirmative string
	// Negative relabels the no option; empty means "No".
	Negative string
	// Default preselects the yes option when true.
	Default bool
}

// Confirm shows a yes/no prompt and reports the choice. Dismissing the
// prompt with esc or ctrl+c counts as a negative answer, never an error.
func Confirm(opts ConfirmOptions) (bool, error) {
	final, err := tea.NewProgram(newConfirmModel(opts)).Run()
	if err != nil {
		return false, fmt.Errorf("running confirmation prompt: %w", err)
	}

	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected confirm model type")
	}
	return m.answer, nil
}

var (
	confirmActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("12")).
				Padding(0, 1)
	confirmInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("8")).
				Padding(0, 1)
)

type confirmModel struct {
	title       string
	affirmative string
	negative    string

	selection bool // true while the yes option is highlighted
	answer    bool
	done      bool
}

func newConfirmModel(opts ConfirmOptions) confirmModel {
	m := confirmModel{
		title:       opts.Title,
		affirmative: opts.Affirmative,
		negative:    opts.Negative,
		selection:   opts.Default,
	}
	if m.affirmative == "" {
		m.affirmative = "Yes"
	}
	if m.negative == "" {
		m.negative = "No"
	}
	return m
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		return m.decide(true)
	case "n", "N", "esc", "ctrl+c":
		return m.decide(false)
	case "enter", " ":
		return m.decide(m.selection)
	case "left", "h":
		m.selection = true
	case "right", "l":
		m.selection = false
	case "tab", "up", "down":
		m.selection = !m.selection
	}
	return m, nil
}

// decide records the answer and quits the program.
func (m confirmModel) decide(answer bool) (tea.Model, tea.Cmd) {
	m.answer = answer
	m.done = true
	return m, tea.Quit
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	yes := confirmInactiveStyle.Render(m.affirmative)
	no := confirmInactiveStyle.Render(m.negative)
	if m.selection {
		yes = confirmActiveStyle.Render(m.affirmative)
	} else {
		no = confirmActiveStyle.Render(m.negative)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(yes)
	b.WriteString("  ")
	b.WriteString(no)
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("←/→ choose · y/n answer · enter confirm · esc cancel"))
	b.WriteString("\n")
	return b.String()
}
