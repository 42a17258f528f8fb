package settingsview

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
)

// SavedMsg is dispatched when the user confirms the settings form.
type SavedMsg struct {
	Settings model.Settings
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// Model is the settings editor.
type Model struct {
	form   *huh.Form
	values *model.Settings
	width  int
	height int
}

// New creates a new settings editor.
func New(width, height int) Model {
	return Model{
		values: &model.Settings{},
		width:  width,
		height: height,
	}
}

// Start opens the form prefilled with current.
func (m *Model) Start(current model.Settings) tea.Cmd {
	*m.values = current.Normalize()
	v := m.values

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Theme]().
				Title("Theme").
				Options(
					huh.NewOption("Light", model.ThemeLight),
					huh.NewOption("Dark", model.ThemeDark),
				).
				Value(&v.Theme),
			huh.NewSelect[model.Language]().
				Title("Language").
				Options(
					huh.NewOption("Русский", model.LanguageRussian),
					huh.NewOption("English", model.LanguageEnglish),
				).
				Value(&v.Language),
			huh.NewConfirm().
				Title("Deadline reminders").
				Affirmative("On").
				Negative("Off").
				Value(&v.Notifications),
			huh.NewConfirm().
				Title("Save after every change").
				Description("When off, press ctrl+s or run :save to write changes.").
				Affirmative("On").
				Negative("Off").
				Value(&v.AutoSave),
			huh.NewSelect[model.ExportFormat]().
				Title("Export format").
				Options(
					huh.NewOption("JSON (re-importable)", model.ExportJSON),
					huh.NewOption("CSV", model.ExportCSV),
				).
				Value(&v.ExportFormat),
		),
	).WithWidth(min(max(m.width-4, 40), 80))

	return m.form.Init()
}

// Update handles messages for the settings form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		s := *m.values
		return m, func() tea.Msg { return SavedMsg{Settings: s} }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the settings form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Settings")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(title + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
