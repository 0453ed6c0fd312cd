// SPDX-License-Identifier: MPL-2.0

// Package wizard implements the interactive setup flow behind
// `pyship config init --interactive`. It walks the user through three
// stages: picking a shipping backend, filling in the backend's
// connection fields, and confirming the resulting configuration.
// The caller is responsible for persisting the returned Config.
package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pyship/pyship/internal/config"
)

// Options configures the wizard run.
type Options struct {
	// DefaultBackend preselects a backend in the picker. Empty means the
	// DefaultConfig backend.
	DefaultBackend config.Backend
	// Yes skips the interactive flow entirely and returns defaults.
	// It is also the path taken when no TTY is attached.
	Yes bool
}

// Run launches the interactive wizard and returns the configuration the
// user assembled. With opts.Yes set it returns the default configuration
// without starting the TUI, so scripted and non-TTY invocations never
// block on input.
func Run(opts Options) (*config.Config, error) {
	if opts.Yes {
		return defaultResult(opts), nil
	}

	model := newModel(opts)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("running setup wizard: %w", err)
	}

	m, ok := final.(wizardModel)
	if !ok {
		return nil, fmt.Errorf("unexpected wizard model type")
	}
	if m.cancelled {
		return nil, fmt.Errorf("configuration cancelled")
	}

	return m.toConfig(), nil
}

// defaultResult is the non-interactive answer: library defaults with the
// requested backend swapped in.
func defaultResult(opts Options) *config.Config {
	cfg := config.DefaultConfig()
	if opts.DefaultBackend != "" {
		cfg.Backend = opts.DefaultBackend
	}
	return cfg
}

// Styles
var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	normalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	helpStyle     = dimStyle
)

type stage int

const (
	stageBackend stage = iota
	stageFields
	stageConfirm
)

// backendItem is one entry in the backend picker.
type backendItem struct {
	backend config.Backend
	desc    string
}

// field is one labelled text input on the fields stage. The key ties the
// entered value back to a Config field in toConfig.
type field struct {
	key      string
	label    string
	required bool
	input    textinput.Model
}

type wizardModel struct {
	errMsg string

	backends   []backendItem
	backendIdx int // committed selection, set on enter

	fields      []field
	activeField int

	stage     stage
	cursor    int
	cancelled bool
	confirmed bool
}

func newModel(opts Options) wizardModel {
	backends := []backendItem{
		{backend: config.BackendLocal, desc: "copy dependency archives into a distribution directory"},
		{backend: config.BackendS3, desc: "upload archives to an S3-compatible object store"},
		{backend: config.BackendHTTP, desc: "POST archives to a registration endpoint"},
		{backend: config.BackendDiscard, desc: "plan and validate only, ship nothing"},
	}

	preselect := opts.DefaultBackend
	if preselect == "" {
		preselect = config.DefaultConfig().Backend
	}
	cursor := 0
	for i, b := range backends {
		if b.backend == preselect {
			cursor = i
			break
		}
	}

	return wizardModel{
		backends:   backends,
		backendIdx: cursor,
		cursor:     cursor,
		stage:      stageBackend,
	}
}

func (m wizardModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.stage {
		case stageBackend:
			return m.handleBackendKey(msg)
		case stageFields:
			return m.handleFieldsKey(msg)
		case stageConfirm:
			return m.handleConfirmKey(msg)
		}
	}

	// Forward everything else to the focused input so the cursor blinks.
	if m.stage == stageFields && len(m.fields) > 0 {
		var cmd tea.Cmd
		m.fields[m.activeField].input, cmd = m.fields[m.activeField].input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m wizardModel) handleBackendKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.backends)-1 {
			m.cursor++
		}
	case "enter":
		m.backendIdx = m.cursor
		m.fields = buildFields(m.selectedBackend())
		m.activeField = 0
		m.errMsg = ""
		if len(m.fields) == 0 {
			m.stage = stageConfirm
			return m, nil
		}
		m.fields[0].input.Focus()
		m.stage = stageFields
		return m, textinput.Blink
	}
	return m, nil
}

func (m wizardModel) handleFieldsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "tab", "down":
		m.focusField((m.activeField + 1) % len(m.fields))
		return m, textinput.Blink
	case "shift+tab", "up":
		m.focusField((m.activeField + len(m.fields) - 1) % len(m.fields))
		return m, textinput.Blink
	case "enter":
		if err := m.validateFields(); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.stage = stageConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.activeField].input, cmd = m.fields[m.activeField].input.Update(msg)
	return m, cmd
}

func (m wizardModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "n", "N":
		m.cancelled = true
		return m, tea.Quit
	case "enter", "y", "Y":
		m.confirmed = true
		return m, tea.Quit
	case "b":
		// Step back to rework the fields (or the picker for discard).
		if len(m.fields) == 0 {
			m.stage = stageBackend
		} else {
			m.stage = stageFields
		}
		return m, textinput.Blink
	}
	return m, nil
}

// focusField moves keyboard focus to the field at index i.
func (m *wizardModel) focusField(i int) {
	m.fields[m.activeField].input.Blur()
	m.activeField = i
	m.fields[m.activeField].input.Focus()
}

// validateFields checks the required fields for the committed backend.
func (m wizardModel) validateFields() error {
	for _, f := range m.fields {
		if f.required && strings.TrimSpace(f.input.Value()) == "" {
			return fmt.Errorf("%s is required for the %s backend", f.label, m.selectedBackend())
		}
	}
	if exts := strings.TrimSpace(m.fieldValue("extensions")); exts != "" {
		for _, e := range splitList(exts) {
			if !strings.HasPrefix(e, ".") {
				return fmt.Errorf("extension %q must start with a dot, e.g. .py", e)
			}
		}
	}
	return nil
}

func (m wizardModel) selectedBackend() config.Backend {
	return m.backends[m.backendIdx].backend
}

// fieldValue returns the trimmed value of the field with the given key,
// or "" if the current backend has no such field.
func (m wizardModel) fieldValue(key string) string {
	for _, f := range m.fields {
		if f.key == key {
			return strings.TrimSpace(f.input.Value())
		}
	}
	return ""
}

func (m wizardModel) View() string {
	switch m.stage {
	case stageBackend:
		return m.viewBackend()
	case stageFields:
		return m.viewFields()
	case stageConfirm:
		return m.viewConfirm()
	}
	return ""
}

func (m wizardModel) viewBackend() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pyship configuration"))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Choose a shipping backend"))
	b.WriteString("\n\n")

	for i, item := range m.backends {
		cursor := "  "
		nameStyle := normalStyle
		if i == m.cursor {
			cursor = selectedStyle.Render("▶ ")
			nameStyle = selectedStyle
		}
		b.WriteString(fmt.Sprintf("%s%s  %s\n",
			cursor,
			nameStyle.Render(string(item.backend)),
			dimStyle.Render(item.desc)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ move · enter select · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m wizardModel) viewFields() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pyship configuration"))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render(fmt.Sprintf("Backend: %s", m.selectedBackend())))
	b.WriteString("\n\n")

	for i, f := range m.fields {
		label := f.label
		if f.required {
			label += " (required)"
		}
		if i == m.activeField {
			b.WriteString(focusStyle.Render(label + ":"))
		} else {
			b.WriteString(normalStyle.Render(label + ":"))
		}
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n\n")
	}

	if m.errMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errMsg))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("tab/↑/↓ switch field · enter continue · esc cancel"))
	b.WriteString("\n")
	return b.String()
}

func (m wizardModel) viewConfirm() string {
	var b strings.Builder
	cfg := m.toConfig()

	b.WriteString(titleStyle.Render("pyship configuration"))
	b.WriteString("\n\n")
	b.WriteString(sectionStyle.Render("Review"))
	b.WriteString("\n\n")

	write := func(k, v string) {
		if v == "" {
			v = dimStyle.Render("(default)")
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", normalStyle.Render(k+":"), v))
	}

	write("backend", string(cfg.Backend))
	write("extensions", joinExtensions(cfg.Extensions))
	switch cfg.Backend {
	case config.BackendLocal:
		write("dist_dir", string(cfg.Local.DistDir))
	case config.BackendHTTP:
		write("endpoint", string(cfg.HTTP.Endpoint))
	case config.BackendS3:
		write("endpoint", string(cfg.S3.Endpoint))
		write("region", cfg.S3.Region)
		write("bucket", string(cfg.S3.Bucket))
		write("prefix", cfg.S3.Prefix)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter/y write config · b back · n/esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// buildFields returns the inputs for the given backend. Every backend
// gets the extensions field; discard needs nothing else.
func buildFields(backend config.Backend) []field {
	exts := makeInput(".py, .pyi", ".py")

	switch backend {
	case config.BackendLocal:
		return []field{
			{key: "extensions", label: "File extensions", input: exts},
			{key: "dist_dir", label: "Distribution directory", input: makeInput("dist", "")},
		}
	case config.BackendHTTP:
		return []field{
			{key: "extensions", label: "File extensions", input: exts},
			{key: "endpoint", label: "Registration endpoint", required: true, input: makeInput("https://deps.internal/register", "")},
		}
	case config.BackendS3:
		return []field{
			{key: "extensions", label: "File extensions", input: exts},
			{key: "endpoint", label: "S3 endpoint", required: true, input: makeInput("s3.amazonaws.com", "")},
			{key: "region", label: "Region", input: makeInput("us-east-1", "")},
			{key: "bucket", label: "Bucket", required: true, input: makeInput("pyship-artifacts", "")},
			{key: "prefix", label: "Key prefix", input: makeInput("deps", "")},
		}
	case config.BackendDiscard:
		return []field{
			{key: "extensions", label: "File extensions", input: exts},
		}
	}
	return nil
}

func makeInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.Width = 50
	return in
}

// toConfig assembles the Config from the committed backend and field
// values. Fields left empty keep their DefaultConfig values.
func (m wizardModel) toConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend = m.selectedBackend()

	if exts := parseExtensions(m.fieldValue("extensions")); len(exts) > 0 {
		cfg.Extensions = exts
	}

	switch cfg.Backend {
	case config.BackendLocal:
		cfg.Local.DistDir = config.DistDirPath(m.fieldValue("dist_dir"))
	case config.BackendHTTP:
		cfg.HTTP.Endpoint = config.EndpointURL(m.fieldValue("endpoint"))
	case config.BackendS3:
		cfg.S3.Endpoint = config.EndpointURL(m.fieldValue("endpoint"))
		cfg.S3.Region = m.fieldValue("region")
		cfg.S3.Bucket = config.BucketName(m.fieldValue("bucket"))
		cfg.S3.Prefix = m.fieldValue("prefix")
	}

	return cfg
}

// parseExtensions turns a comma-separated list like ".py, .pyi" into
// Extension values. Empty input yields nil so callers can fall back to
// defaults.
func parseExtensions(s string) []config.Extension {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil
	}
	exts := make([]config.Extension, 0, len(parts))
	for _, p := range parts {
		exts = append(exts, config.Extension(p))
	}
	return exts
}

// splitList splits a comma-separated list, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinExtensions(exts []config.Extension) string {
	parts := make([]string, len(exts))
	for i, e := range exts {
		parts[i] = string(e)
	}
	return strings.Join(parts, ", ")
}
