package techform

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
	"github.com/nhle/techtracker/internal/tracker"
)

// CreatedMsg is dispatched when a new technology is submitted.
type CreatedMsg struct {
	Input tracker.NewTechnology
}

// NotesMsg is dispatched when edited notes are submitted.
type NotesMsg struct {
	ID    int64
	Notes string
}

// DeadlineMsg is dispatched when a deadline is submitted. A nil Deadline
// clears it.
type DeadlineMsg struct {
	ID       int64
	Deadline *civil.Date
}

// TagsMsg is dispatched when tags and resources are submitted.
type TagsMsg struct {
	ID        int64
	Tags      []string
	Resources []string
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

type mode int

const (
	modeCreate mode = iota
	modeNotes
	modeDeadline
	modeTags
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	status      model.Status
	category    model.Category
	difficulty  model.Difficulty
	deadline    string
	tags        string
	resources   string
	notes       string
}

// Model is the Bubble Tea model for the technology forms.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	mode   mode
	id     int64
	title  string
	today  civil.Date
	width  int
	height int
}

// New creates a new technology form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for adding a technology. today bounds
// the deadline field.
func (m *Model) StartCreate(today civil.Date) tea.Cmd {
	*m.fb = formBindings{
		status:   model.StatusNotStarted,
		category: model.CategoryOther,
	}
	m.mode = modeCreate
	m.id = 0
	m.title = "New Technology"
	m.today = today
	m.form = m.newForm(huh.NewGroup(m.createFields()...))
	return m.form.Init()
}

// StartNotes initializes the notes editor for tech.
func (m *Model) StartNotes(tech model.Technology) tea.Cmd {
	*m.fb = formBindings{notes: tech.Notes}
	m.mode = modeNotes
	m.id = tech.ID
	m.title = "Notes: " + tech.Title
	m.form = m.newForm(huh.NewGroup(
		huh.NewText().
			Title("Notes").
			Placeholder("What have you learned so far?").
			CharLimit(0).
			Lines(10).
			Value(&m.fb.notes),
	))
	return m.form.Init()
}

// StartDeadline initializes the deadline editor for tech.
func (m *Model) StartDeadline(tech model.Technology, today civil.Date) tea.Cmd {
	*m.fb = formBindings{}
	if tech.Deadline != nil {
		m.fb.deadline = tech.Deadline.String()
	}
	m.mode = modeDeadline
	m.id = tech.ID
	m.title = "Deadline: " + tech.Title
	m.today = today
	m.form = m.newForm(huh.NewGroup(m.deadlineField()))
	return m.form.Init()
}

// StartTags initializes the tags and resources editor for tech.
func (m *Model) StartTags(tech model.Technology) tea.Cmd {
	*m.fb = formBindings{
		tags:      strings.Join(tech.Tags, ", "),
		resources: strings.Join(tech.Resources, "\n"),
	}
	m.mode = modeTags
	m.id = tech.ID
	m.title = "Tags: " + tech.Title
	m.form = m.newForm(huh.NewGroup(m.tagsField(), m.resourcesField()))
	return m.form.Init()
}

// Update handles messages for the form.
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
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(m.title) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) createFields() []huh.Field {
	statusOpts := make([]huh.Option[model.Status], 0, 3)
	for _, s := range model.ValidStatuses() {
		statusOpts = append(statusOpts, huh.NewOption(s.Label(), s))
	}

	categoryOpts := make([]huh.Option[model.Category], 0, 8)
	for _, c := range model.ValidCategories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), c))
	}

	difficultyOpts := []huh.Option[model.Difficulty]{huh.NewOption("Not set", model.Difficulty(""))}
	for _, d := range model.ValidDifficulties() {
		difficultyOpts = append(difficultyOpts, huh.NewOption(string(d), d))
	}

	return []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What do you want to learn?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("What it is and why it matters").
			Value(&m.fb.description).
			Validate(validateRequired("Description")),
		huh.NewSelect[model.Status]().
			Title("Status").
			Options(statusOpts...).
			Value(&m.fb.status),
		huh.NewSelect[model.Category]().
			Title("Category").
			Options(categoryOpts...).
			Value(&m.fb.category),
		huh.NewSelect[model.Difficulty]().
			Title("Difficulty").
			Options(difficultyOpts...).
			Value(&m.fb.difficulty),
		m.deadlineField(),
		m.tagsField(),
	}
}

func (m *Model) deadlineField() huh.Field {
	today := m.today
	return huh.NewInput().
		Title("Deadline").
		Description(fmt.Sprintf("between %s and %s, empty for none", today, deadline.Latest(today))).
		Placeholder("YYYY-MM-DD").
		Value(&m.fb.deadline).
		Validate(func(s string) error { return validateDeadline(s, today) })
}

func (m *Model) tagsField() huh.Field {
	return huh.NewInput().
		Title("Tags").
		Placeholder("comma separated, e.g. react, hooks").
		Value(&m.fb.tags)
}

func (m *Model) resourcesField() huh.Field {
	return huh.NewText().
		Title("Resources").
		Placeholder("one link or book per line").
		Value(&m.fb.resources)
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	id := m.id

	switch m.mode {
	case modeNotes:
		return func() tea.Msg { return NotesMsg{ID: id, Notes: fb.notes} }

	case modeDeadline:
		d, _ := deadline.Parse(fb.deadline)
		return func() tea.Msg { return DeadlineMsg{ID: id, Deadline: d} }

	case modeTags:
		return func() tea.Msg {
			return TagsMsg{
				ID:        id,
				Tags:      SplitTags(fb.tags),
				Resources: strings.Split(fb.resources, "\n"),
			}
		}
	}

	d, _ := deadline.Parse(fb.deadline)
	in := tracker.NewTechnology{
		Title:       fb.title,
		Description: fb.description,
		Status:      fb.status,
		Deadline:    d,
		Category:    fb.category,
		Difficulty:  fb.difficulty,
		Tags:        SplitTags(fb.tags),
	}
	return func() tea.Msg { return CreatedMsg{Input: in} }
}

// SplitTags splits a comma separated tag list. Normalization is left to
// the tracker.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDeadline(s string, today civil.Date) error {
	d, err := deadline.Parse(s)
	if err != nil || d == nil {
		return err
	}
	return deadline.Validate(*d, today)
}
