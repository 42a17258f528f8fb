package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/theme"
)

// Layout manages the terminal layout dimensions.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the main content area,
// accounting for the header and status bar.
func (l Layout) ContentHeight() int {
	return l.Height - l.HeaderHeight - l.StatusBarHeight
}

// RenderHeader renders the top bar with a title on the left and a summary
// (overall progress) on the right.
func (l Layout) RenderHeader(title, summary string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	summaryRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(summary)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		l.fill(theme.HeaderStyle, lipgloss.Width(titleRendered)+lipgloss.Width(summaryRendered)),
		summaryRendered,
	)
}

// RenderStatusBar renders the bottom bar. A non-empty notice replaces the
// key hints; isError selects the error color over the warning color.
func (l Layout) RenderStatusBar(hints, notice string, isError bool) string {
	var rendered string
	switch {
	case notice == "":
		rendered = theme.StatusBarStyle.Render(hints)
	case isError:
		rendered = theme.ErrorStyle.Inherit(theme.StatusBarStyle).Padding(0, 1).Render(notice)
	default:
		rendered = theme.WarningStyle.Inherit(theme.StatusBarStyle).Padding(0, 1).Render(notice)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		rendered,
		l.fill(theme.StatusBarStyle, lipgloss.Width(rendered)),
	)
}

func (l Layout) fill(style lipgloss.Style, used int) string {
	gap := l.Width - used
	if gap <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
