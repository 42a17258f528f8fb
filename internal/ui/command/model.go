package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg struct {
	Name string
	Args []string
}

// Arg returns the arguments joined back into one string.
func (c CommandMsg) Arg() string {
	return strings.Join(c.Args, " ")
}

// Info describes a palette command for completion and help.
type Info struct {
	Name  string
	Usage string
	Help  string
}

// Commands is the palette catalogue.
var Commands = []Info{
	{"add", "add", "add a technology"},
	{"random", "random", "open a random not-started technology"},
	{"complete-all", "complete-all", "mark every technology completed"},
	{"reset", "reset", "set every technology back to not started"},
	{"bulk", "bulk <status>", "set the status of marked technologies"},
	{"filter", "filter <status>", "show one status (all to show everything)"},
	{"tag", "tag <name>", "show technologies carrying a tag"},
	{"tags", "tags", "edit tags and resources of the selection"},
	{"clear", "clear", "clear filters and marks"},
	{"clear-data", "clear-data", "delete every technology and reset settings"},
	{"stats", "stats", "show statistics"},
	{"settings", "settings", "edit settings"},
	{"export", "export [path]", "write a backup in the configured format"},
	{"import", "import <path>", "replace the collection from a JSON backup"},
	{"save", "save", "write unsaved changes now"},
	{"quit", "quit", "exit"},
}

// Parse splits a palette line into a command name and arguments.
func Parse(line string) CommandMsg {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return CommandMsg{}
	}
	return CommandMsg{Name: strings.ToLower(fields[0]), Args: fields[1:]}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command, tab completes..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	suggestions := make([]string, len(Commands))
	for i, c := range Commands {
		suggestions[i] = c.Name
	}
	ti.SetSuggestions(suggestions)
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "enter" {
		c := Parse(m.input.Value())
		m.input.Reset()
		if c.Name == "" {
			return m, nil
		}
		return m, func() tea.Msg { return c }
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")

	typed := Parse(m.input.Value()).Name
	var hints []string
	for _, c := range Commands {
		if strings.HasPrefix(c.Name, typed) {
			hints = append(hints, theme.HelpStyle.Render(c.Usage+"  "+c.Help))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title, m.input.View(), "", strings.Join(hints, "\n"))

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Prefill replaces the input with text and focuses it.
func (m *Model) Prefill(text string) tea.Cmd {
	m.input.SetValue(text)
	m.input.CursorEnd()
	return m.input.Focus()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
