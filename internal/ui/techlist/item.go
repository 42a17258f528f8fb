package techlist

import (
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
)

// TechItem wraps a model.Technology so it can be used in a bubbles/list.
type TechItem struct {
	Tech   model.Technology
	Marked bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i TechItem) FilterValue() string { return i.Tech.Title }

// Title returns the technology title for the list.
func (i TechItem) Title() string { return i.Tech.Title }

// Description returns a short summary line for the list.
func (i TechItem) Description() string {
	parts := []string{i.Tech.Status.Label(), string(i.Tech.CategoryOrOther())}
	if i.Tech.Deadline != nil {
		parts = append(parts, i.Tech.Deadline.String())
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering technologies.
type ItemDelegate struct {
	// today is shared with the Model so deadline badges follow the clock.
	today *civil.Date
}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TechItem)
	if !ok {
		return
	}
	t := ti.Tech

	mark := " "
	if ti.Marked {
		mark = lipgloss.NewStyle().Foreground(theme.ColorMagenta).Render("•")
	}

	statusBadge := theme.StatusStyle(t.Status).Render(t.Status.Label())
	category := lipgloss.NewStyle().
		Foreground(theme.ColorBlue).
		Render(string(t.CategoryOrOther()))

	dueStr := ""
	if t.Deadline != nil && d.today != nil && !t.IsCompleted() {
		days := deadline.DaysRemaining(*t.Deadline, *d.today)
		u := deadline.ClassifyDays(days)
		dueStr = " " + theme.UrgencyStyle(u).Render(deadline.Describe(days))
	}

	tagStr := ""
	if len(t.Tags) > 0 {
		display := t.Tags
		if len(display) > 2 {
			display = append(append([]string(nil), display[:2]...), "…")
		}
		tagStr = theme.TagStyle.Render(" #" + strings.Join(display, " #"))
	}

	line := fmt.Sprintf(
		"%s %s %s %s %s%s%s",
		mark, theme.StatusIcon(t.Status), statusBadge, t.Title, category, tagStr, dueStr,
	)

	if t.IsCompleted() {
		line = theme.DimmedStyle.Render(line)
	}

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}
