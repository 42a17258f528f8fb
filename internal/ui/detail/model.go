package detail

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/keys"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// LoadedMsg carries the technology to display.
type LoadedMsg struct {
	Tech  model.Technology
	Today civil.Date
}

// Actions emitted by the detail view.
const (
	ActionAdvance  = "advance"
	ActionNotes    = "notes"
	ActionDeadline = "deadline"
	ActionDelete   = "delete"
)

// ActionMsg signals the parent to execute an action on the shown technology.
type ActionMsg struct {
	Action string
	ID     int64
}

// Model is the technology detail view component.
type Model struct {
	tech     *model.Technology
	today    civil.Date
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int

	// renderer is rebuilt when the wrap width or markdown style changes.
	renderer      *glamour.TermRenderer
	rendererWrap  int
	rendererStyle string
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// ID returns the id of the shown technology, or 0.
func (m Model) ID() int64 {
	if m.tech == nil {
		return 0
	}
	return m.tech.ID
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		t := msg.Tech
		keepOffset := m.tech != nil && m.tech.ID == t.ID
		m.tech = &t
		m.today = msg.Today
		m.prepareRenderer()
		m.viewport.SetContent(m.renderContent())
		if !keepOffset {
			m.viewport.GotoTop()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }
		case key.Matches(msg, m.keys.Advance):
			return m, m.action(ActionAdvance)
		case key.Matches(msg, m.keys.Notes):
			return m, m.action(ActionNotes)
		case key.Matches(msg, m.keys.Deadline):
			return m, m.action(ActionDeadline)
		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(name string) tea.Cmd {
	if m.tech == nil {
		return nil
	}
	id := m.tech.ID
	return func() tea.Msg {
		return ActionMsg{Action: name, ID: id}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.tech == nil {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No technology selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.tech == nil {
		return ""
	}

	t := m.tech
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(t.Title))

	statusBadge := theme.StatusStyle(t.Status).Render(theme.StatusIcon(t.Status) + " " + t.Status.Label())
	nextHint := theme.HelpStyle.Render("next: " + t.Status.Next().Label())
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, statusBadge, "  ", nextHint))
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(12)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	row := func(label, value string) {
		sections = append(sections, metaStyle.Render(label+":")+valStyle.Render(value))
	}

	row("Category", string(t.CategoryOrOther()))
	if t.Difficulty != "" {
		row("Difficulty", string(t.Difficulty))
	}
	if t.Deadline != nil {
		days := deadline.DaysRemaining(*t.Deadline, m.today)
		due := t.Deadline.String()
		if !t.IsCompleted() {
			u := deadline.ClassifyDays(days)
			due += "  " + theme.UrgencyStyle(u).Render(deadline.Describe(days))
		}
		row("Deadline", due)
	} else {
		row("Deadline", "none")
	}
	if len(t.Tags) > 0 {
		row("Tags", theme.TagStyle.Render("#"+strings.Join(t.Tags, " #")))
	}
	if !t.CreatedAt.IsZero() {
		row("Added", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	row("ID", fmt.Sprintf("%d", t.ID))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0)))
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)

	section := func(title, body, empty string) {
		sections = append(sections, "", separator, "", headerStyle.Render(title), "")
		if strings.TrimSpace(body) == "" {
			body = emptyStyle.Render(empty)
		}
		sections = append(sections, body)
	}

	section("Description", t.Description, "No description")
	section("Notes", m.renderNotes(t.Notes), "No notes yet. Press n to write some.")

	if len(t.Resources) > 0 {
		lines := make([]string, len(t.Resources))
		for i, r := range t.Resources {
			lines[i] = "• " + r
		}
		section("Resources", strings.Join(lines, "\n"), "")
	}

	sections = append(sections, "", theme.HelpStyle.Render(
		"space advance • n notes • d deadline • x delete • esc back",
	))

	return strings.Join(sections, "\n")
}

// prepareRenderer builds the notes renderer for the current width and theme,
// reusing the previous one when neither changed.
func (m *Model) prepareRenderer() {
	wrap := max(min(m.width-4, 80), 20)
	style := theme.MarkdownStyle()
	if m.renderer != nil && m.rendererWrap == wrap && m.rendererStyle == style {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		m.renderer = nil
		return
	}
	m.renderer, m.rendererWrap, m.rendererStyle = r, wrap, style
}

// renderNotes renders notes as markdown. Plain text is returned when no
// renderer is available or rendering fails.
func (m Model) renderNotes(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	if m.renderer == nil {
		return notes
	}
	out, err := m.renderer.Render(notes)
	if err != nil {
		return notes
	}
	return strings.Trim(out, "\n")
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.prepareRenderer()
	if m.tech != nil {
		m.viewport.SetContent(m.renderContent())
	}
}
