package app

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/keys"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/reminder"
	"github.com/nhle/techtracker/internal/settings"
	"github.com/nhle/techtracker/internal/tracker"
	"github.com/nhle/techtracker/internal/ui"
	"github.com/nhle/techtracker/internal/ui/command"
	"github.com/nhle/techtracker/internal/ui/detail"
	helpview "github.com/nhle/techtracker/internal/ui/help"
	"github.com/nhle/techtracker/internal/ui/settingsview"
	"github.com/nhle/techtracker/internal/ui/statsview"
	"github.com/nhle/techtracker/internal/ui/techform"
	"github.com/nhle/techtracker/internal/ui/techlist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewStats
	ViewSettings
	ViewHelp
	ViewCommand
)

// Config holds the services the root model drives.
type Config struct {
	Tracker  *tracker.Tracker
	Settings *settings.Manager
	Current  model.Settings

	// Reminders may be nil to run without deadline notifications.
	Reminders *reminder.Poller

	// ExportDir receives backups exported without an explicit path.
	ExportDir string

	Logger *zap.Logger
	Now    func() time.Time
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the tracker.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	tracker   *tracker.Tracker
	settings  *settings.Manager
	current   model.Settings
	poller    *reminder.Poller
	exportDir string
	logger    *zap.Logger
	now       func() time.Time

	techList     techlist.Model
	detail       detail.Model
	form         techform.Model
	statsView    statsview.Model
	settingsView settingsview.Model
	helpView     helpview.Model
	commandView  command.Model

	ready         bool
	notice        string
	noticeErr     bool
	pendingDelete int64
	pendingQuit   bool
}

// New creates a new root application model.
func New(cfg Config) Model {
	k := keys.DefaultKeyMap()
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	m := Model{
		currentView:  ViewList,
		keys:         k,
		tracker:      cfg.Tracker,
		settings:     cfg.Settings,
		current:      cfg.Current.Normalize(),
		poller:       cfg.Reminders,
		exportDir:    cfg.ExportDir,
		logger:       cfg.Logger,
		now:          cfg.Now,
		techList:     techlist.New(cfg.Tracker, k, 80, 24),
		detail:       detail.New(k, 80, 24),
		form:         techform.New(80, 24),
		statsView:    statsview.New(k, 80, 24),
		settingsView: settingsview.New(80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
	}
	m.techList.SetToday(m.today())

	report := cfg.Tracker.LoadReport()
	switch {
	case report.Quarantined > 0:
		m.notice = fmt.Sprintf("%d unreadable technologies were set aside", report.Quarantined)
	case report.Seeded:
		m.notice = "Added a few starter technologies"
	}

	return m
}

func (m Model) today() civil.Date {
	return deadline.Today(m.now())
}

// Init returns the initial commands to load technologies and start the
// reminder poller.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.techList.Init()}
	if m.poller != nil {
		m.poller.SetEnabled(m.current.Notifications)
		cmds = append(cmds, m.poller.Start())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.techList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.statsView.SetSize(w, h)
		m.settingsView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case resultMsg:
		if msg.settings != nil && (msg.err == nil || tracker.IsWarning(msg.err)) {
			m.applySettings(*msg.settings)
		}
		m.report(msg.notice, msg.err)
		m.techList.SetToday(m.today())
		if m.poller != nil {
			m.poller.Refresh()
		}
		cmds := []tea.Cmd{m.techList.LoadItems()}
		if msg.clearMarks {
			cmds = append(cmds, m.techList.ClearMarks())
		}
		if m.currentView == ViewDetail {
			cmds = append(cmds, m.loadDetail(m.detail.ID()))
		}
		if m.currentView == ViewStats {
			cmds = append(cmds, m.loadStats())
		}
		return m, tea.Batch(cmds...)

	case reminder.NotificationsMsg:
		m.techList.SetToday(m.today())
		if n := len(msg.Notifications); n > 0 {
			m.notice = msg.Notifications[0].Message
			if n > 1 {
				m.notice += fmt.Sprintf(" (+%d more)", n-1)
			}
			m.noticeErr = msg.Notifications[0].Urgency == string(deadline.UrgencyOverdue)
		}
		return m, tea.Batch(m.techList.LoadItems(), m.poller.WaitForNext())

	case randomPickMsg:
		if !msg.ok {
			m.report("Nothing left to start: every technology is in progress or completed", nil)
			return m, nil
		}
		m.notice = "Why not start with " + msg.tech.Title + "?"
		m.noticeErr = false
		return m, m.openDetail(msg.tech.ID)

	case techlist.SelectedMsg:
		return m, m.openDetail(msg.ID)

	case detail.LoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		return m, m.handleAction(msg.Action, msg.ID)

	case statsview.LoadedMsg:
		var cmd tea.Cmd
		m.statsView, cmd = m.statsView.Update(msg)
		return m, cmd

	case statsview.BackMsg:
		m.currentView = ViewList
		return m, nil

	case techform.CreatedMsg:
		m.currentView = m.previousView
		return m, m.addTechnology(msg.Input)

	case techform.NotesMsg:
		m.currentView = m.previousView
		return m, m.setNotes(msg.ID, msg.Notes)

	case techform.DeadlineMsg:
		m.currentView = m.previousView
		return m, m.setDeadline(msg.ID, msg.Deadline)

	case techform.TagsMsg:
		m.currentView = m.previousView
		return m, m.setTags(msg.ID, msg.Tags, msg.Resources)

	case techform.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case settingsview.SavedMsg:
		m.currentView = m.previousView
		return m, m.saveSettings(msg.Settings)

	case settingsview.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

// handleKey processes global and list-level keys before delegating to the
// active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Delete) {
		m.pendingDelete = 0
	}
	quitKey := msg.String() == "ctrl+c" || (key.Matches(msg, m.keys.Quit) && m.currentView == ViewList && !m.techList.Searching())
	if !quitKey {
		m.pendingQuit = false
	}
	if m.currentView == ViewList || m.currentView == ViewDetail {
		m.notice = ""
	}

	if quitKey {
		return m, m.quit()
	}

	// Forms own every other key.
	if m.currentView == ViewForm || m.currentView == ViewSettings {
		return m.updateActiveView(msg)
	}
	if m.currentView == ViewList && m.techList.Searching() {
		return m.updateActiveView(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		return m, m.flush()

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
		if m.currentView == ViewCommand {
			break
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus()

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp || m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil
		}
	}

	if m.currentView != ViewList {
		return m.updateActiveView(msg)
	}

	selected, hasSelection := m.techList.Selected()

	switch {
	case key.Matches(msg, m.keys.Add):
		return m, m.startCreate()

	case key.Matches(msg, m.keys.Advance):
		if hasSelection {
			return m, m.advance(selected.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Notes):
		if hasSelection {
			return m, m.handleAction(detail.ActionNotes, selected.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Deadline):
		if hasSelection {
			return m, m.handleAction(detail.ActionDeadline, selected.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if hasSelection {
			return m, m.handleAction(detail.ActionDelete, selected.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Random):
		return m, m.pickRandom()

	case key.Matches(msg, m.keys.BulkApply):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Prefill("bulk ")

	case key.Matches(msg, m.keys.Stats):
		return m, m.openStats()

	case key.Matches(msg, m.keys.Settings):
		return m, m.openSettings()
	}

	return m.updateActiveView(msg)
}

// quit exits, asking once for confirmation when changes are unsaved.
func (m *Model) quit() tea.Cmd {
	if m.tracker.Dirty() && !m.pendingQuit {
		m.pendingQuit = true
		m.notice = "Unsaved changes: ctrl+s to save, quit again to discard"
		m.noticeErr = true
		return nil
	}
	if m.poller != nil {
		m.poller.Stop()
	}
	return tea.Quit
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.techList, cmd = m.techList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewStats:
		m.statsView, cmd = m.statsView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Tech Tracker", m.progressSummary())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.notice, m.noticeErr)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.techList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewStats:
		return m.statsView.View()
	case ViewSettings:
		return m.settingsView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// progressSummary returns the header text on the right: overall progress
// and whether there are unsaved changes.
func (m Model) progressSummary() string {
	items := m.tracker.Snapshot()
	done := 0
	for _, t := range items {
		if t.IsCompleted() {
			done++
		}
	}
	s := fmt.Sprintf("%d/%d completed · %d%%", done, len(items), tracker.ProgressPercent(items))
	if m.tracker.Dirty() {
		s += " · unsaved"
	}
	return s
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | space advance | n notes | d deadline | x delete | j/k scroll"
	case ViewForm, ViewSettings:
		return "enter next/submit | esc cancel"
	case ViewStats:
		return "esc back | j/k scroll"
	default:
		if summary := m.techList.FilterSummary(); summary != "" {
			return summary + " | : clear"
		}
		return "q quit | ? help | a add | space advance | / search | tab filter | r random | S stats"
	}
}
