// Package statsview renders the statistics screen: overall progress, a
// per-category breakdown, deadline pressure and the most used tags.
package statsview

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/keys"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/stats"
	"github.com/nhle/techtracker/internal/theme"
)

// BackMsg signals the parent to leave the statistics screen.
type BackMsg struct{}

// LoadedMsg carries a fresh snapshot to aggregate.
type LoadedMsg struct {
	Items []model.Technology
	Today civil.Date
}

const maxTags = 10

// Model is the statistics view component.
type Model struct {
	report    stats.Report
	deadlines map[deadline.Urgency]int
	loaded    bool
	viewport  viewport.Model
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates a new statistics view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		viewport: viewport.New(width, height-2),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the statistics view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.report = stats.Compute(msg.Items)
		m.deadlines = stats.Deadlines(msg.Items, msg.Today)
		m.loaded = true
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) || key.Matches(msg, m.keys.Stats) {
			return m, func() tea.Msg { return BackMsg{} }
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the statistics view.
func (m Model) View() string {
	if !m.loaded {
		return ""
	}
	return m.viewport.View()
}

func (m Model) barWidth() int {
	return min(max(m.width-40, 10), 40)
}

func (m Model) renderContent() string {
	r := m.report
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	label := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(14)

	var b strings.Builder

	b.WriteString(heading.Render("Overall progress"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %3d%%  %d of %d completed\n",
		theme.ProgressBar(r.Percent, m.barWidth()), r.Percent, r.Completed, r.Total)
	fmt.Fprintf(&b, "%s%s  %s  %s\n\n",
		label.Render("By status:"),
		theme.StatusStyle(model.StatusCompleted).Render(fmt.Sprintf("%d completed", r.Completed)),
		theme.StatusStyle(model.StatusInProgress).Render(fmt.Sprintf("%d in progress", r.InProgress)),
		theme.StatusStyle(model.StatusNotStarted).Render(fmt.Sprintf("%d not started", r.NotStarted)),
	)

	if len(r.Categories) > 0 {
		b.WriteString(heading.Render("Categories"))
		b.WriteString("\n\n")
		for _, c := range r.Categories {
			fmt.Fprintf(&b, "%s%s %3d%%  %d/%d\n",
				label.Render(string(c.Category)),
				theme.ProgressBar(c.Percent, m.barWidth()),
				c.Percent, c.Completed, c.Total)
		}
		b.WriteString("\n")
	}

	b.WriteString(heading.Render("Deadlines"))
	b.WriteString("\n\n")
	for _, u := range []deadline.Urgency{
		deadline.UrgencyOverdue, deadline.UrgencyToday, deadline.UrgencyUrgent,
		deadline.UrgencyUpcoming, deadline.UrgencyNormal, deadline.UrgencyNone,
	} {
		name := string(u)
		if u == deadline.UrgencyNone {
			name = "no deadline"
		}
		fmt.Fprintf(&b, "%s%s\n", label.Render(name), theme.UrgencyStyle(u).Render(fmt.Sprintf("%d", m.deadlines[u])))
	}

	if len(r.Tags) > 0 {
		b.WriteString("\n")
		b.WriteString(heading.Render("Top tags"))
		b.WriteString("\n\n")
		for i, tc := range r.Tags {
			if i == maxTags {
				fmt.Fprintf(&b, "%s\n", theme.HelpStyle.Render(fmt.Sprintf("and %d more", len(r.Tags)-maxTags)))
				break
			}
			fmt.Fprintf(&b, "%s%d\n", label.Render(theme.TagStyle.Render("#"+tc.Tag)), tc.Count)
		}
	}

	return b.String()
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	if m.loaded {
		m.viewport.SetContent(m.renderContent())
	}
}
