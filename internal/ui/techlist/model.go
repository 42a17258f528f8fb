package techlist

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/techtracker/internal/keys"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
	"github.com/nhle/techtracker/internal/tracker"
)

// ItemsLoadedMsg is sent when technologies have been read from the tracker.
type ItemsLoadedMsg struct {
	Items []model.Technology
}

// SelectedMsg is sent when the user opens a technology.
type SelectedMsg struct {
	ID int64
}

// Lister is the read side of the tracker used by the list.
type Lister interface {
	List(f tracker.Filter) []model.Technology
}

// statusFilters is the order the filter key cycles through. The empty
// status shows everything.
var statusFilters = []model.Status{
	"",
	model.StatusNotStarted,
	model.StatusInProgress,
	model.StatusCompleted,
}

// Model is the technology list view component.
type Model struct {
	list        list.Model
	source      Lister
	keys        *keys.KeyMap
	filter      tracker.Filter
	filterIndex int
	marked      map[int64]bool
	today       *civil.Date
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new technology list model.
func New(src Lister, k *keys.KeyMap, width, height int) Model {
	today := &civil.Date{}
	delegate := ItemDelegate{today: today}
	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Technologies"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search title, description, tags..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		source:      src,
		keys:        k,
		marked:      make(map[int64]bool),
		today:       today,
		searchInput: si,
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the initial set of technologies.
func (m Model) Init() tea.Cmd {
	return m.LoadItems()
}

// SetToday sets the date deadline badges are computed against.
func (m *Model) SetToday(d civil.Date) {
	*m.today = d
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ItemsLoadedMsg:
		present := make(map[int64]bool, len(msg.Items))
		items := make([]list.Item, len(msg.Items))
		for i, t := range msg.Items {
			present[t.ID] = true
			items[i] = TechItem{Tech: t, Marked: m.marked[t.ID]}
		}
		for id := range m.marked {
			if !present[id] {
				delete(m.marked, id)
			}
		}
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.filter.Query = strings.TrimSpace(m.searchInput.Value())
		return m, m.LoadItems()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = ""
		return m, m.LoadItems()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TechItem)
		if !ok {
			return m, nil
		}
		id := item.Tech.ID
		return m, func() tea.Msg { return SelectedMsg{ID: id} }

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleFilter):
		m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
		m.filter.Status = statusFilters[m.filterIndex]
		return m, m.LoadItems()

	case key.Matches(msg, m.keys.Mark):
		item, ok := m.list.SelectedItem().(TechItem)
		if !ok {
			return m, nil
		}
		if m.marked[item.Tech.ID] {
			delete(m.marked, item.Tech.ID)
		} else {
			m.marked[item.Tech.ID] = true
		}
		item.Marked = m.marked[item.Tech.ID]
		cmd := m.list.SetItem(m.list.Index(), item)
		m.list.CursorDown()
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Selected returns the technology under the cursor.
func (m Model) Selected() (model.Technology, bool) {
	item, ok := m.list.SelectedItem().(TechItem)
	if !ok {
		return model.Technology{}, false
	}
	return item.Tech, true
}

// Marked returns the ids marked for a bulk edit.
func (m Model) Marked() []int64 {
	ids := make([]int64, 0, len(m.marked))
	for _, it := range m.list.Items() {
		if ti, ok := it.(TechItem); ok && m.marked[ti.Tech.ID] {
			ids = append(ids, ti.Tech.ID)
		}
	}
	return ids
}

// ClearMarks unmarks everything.
func (m *Model) ClearMarks() tea.Cmd {
	m.marked = make(map[int64]bool)
	return m.LoadItems()
}

// SetStatusFilter shows only technologies with status. The empty status
// shows everything.
func (m *Model) SetStatusFilter(status model.Status) tea.Cmd {
	m.filter.Status = status
	m.filterIndex = 0
	for i, s := range statusFilters {
		if s == status {
			m.filterIndex = i
		}
	}
	return m.LoadItems()
}

// SetTagFilter shows only technologies carrying tag.
func (m *Model) SetTagFilter(tag string) tea.Cmd {
	m.filter.Tag = tag
	return m.LoadItems()
}

// ClearFilters resets status, tag and search filters.
func (m *Model) ClearFilters() tea.Cmd {
	m.filter = tracker.Filter{}
	m.filterIndex = 0
	m.searchInput.Reset()
	return m.LoadItems()
}

// FilterSummary describes the active filters, or "" when none.
func (m Model) FilterSummary() string {
	var parts []string
	if m.filter.Status != "" {
		parts = append(parts, "status: "+m.filter.Status.Label())
	}
	if m.filter.Tag != "" {
		parts = append(parts, "tag: "+m.filter.Tag)
	}
	if m.filter.Query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.filter.Query))
	}
	if n := len(m.marked); n > 0 {
		parts = append(parts, fmt.Sprintf("%d marked", n))
	}
	return strings.Join(parts, " | ")
}

// View renders the list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when nothing is listed.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.filter != (tracker.Filter{}) {
		return style.Render("No matching technologies.\nPress tab to change the filter or : then 'clear'.")
	}

	return style.Render("Nothing to study yet.\n\nPress a to add a technology.")
}

// LoadItems returns a tea.Cmd that lists technologies with the current filter.
func (m Model) LoadItems() tea.Cmd {
	filter := m.filter
	src := m.source
	return func() tea.Msg {
		return ItemsLoadedMsg{Items: src.List(filter)}
	}
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
