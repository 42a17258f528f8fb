// Package help renders the keyboard and command reference.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/keys"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
	"github.com/nhle/techtracker/internal/ui/command"
)

// Model is the help overlay. Long content scrolls.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	viewport viewport.Model
	width    int
	height   int
}

func New(k *keys.KeyMap, width, height int) Model {
	m := Model{
		keys:     k,
		help:     help.New(),
		viewport: viewport.New(width, height),
	}
	m.help.ShowAll = true
	m.SetSize(width, height)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(m.viewport.View())
}

func (m Model) render() string {
	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)

	var b strings.Builder
	b.WriteString(heading.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n\n")

	b.WriteString(heading.Render("Status cycle"))
	b.WriteString("\n")
	cycle := make([]string, 0, 4)
	s := model.StatusNotStarted
	for range 3 {
		cycle = append(cycle, theme.StatusStyle(s).Render(theme.StatusIcon(s)+" "+s.Label()))
		s = s.Next()
	}
	cycle = append(cycle, theme.DimmedStyle.Render("back to start"))
	b.WriteString(strings.Join(cycle, " → "))
	b.WriteString("\n\n")

	b.WriteString(heading.Render("Commands"))
	b.WriteString("\n")
	usageWidth := 0
	for _, c := range command.Commands {
		usageWidth = max(usageWidth, len(c.Usage))
	}
	for _, c := range command.Commands {
		fmt.Fprintf(&b, ":%-*s  %s\n", usageWidth, c.Usage, theme.HelpStyle.Render(c.Help))
	}
	return b.String()
}

// SetSize updates the overlay dimensions and re-renders its content.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 6
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-6, 0)
	m.viewport.SetContent(m.render())
}
