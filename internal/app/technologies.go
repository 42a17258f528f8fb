package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
	"github.com/nhle/techtracker/internal/tracker"
	"github.com/nhle/techtracker/internal/ui/detail"
	"github.com/nhle/techtracker/internal/ui/statsview"
)

// resultMsg is sent after a tracker or settings operation finishes.
type resultMsg struct {
	notice     string
	err        error
	clearMarks bool

	// settings is set when new settings were saved and should take effect.
	settings *model.Settings
}

// randomPickMsg carries the outcome of a random pick.
type randomPickMsg struct {
	tech model.Technology
	ok   bool
}

// report shows the outcome of an operation in the status bar. A storage
// warning keeps the success text since the change was applied in memory.
func (m *Model) report(notice string, err error) {
	switch {
	case err == nil:
		m.notice, m.noticeErr = notice, false
	case tracker.IsWarning(err):
		m.logger.Warn("change kept in memory only", zap.Error(err))
		m.notice = fmt.Sprintf("%s, but saving failed: %v (ctrl+s to retry)", notice, err)
		m.noticeErr = true
	default:
		m.notice, m.noticeErr = err.Error(), true
	}
}

// mutate runs fn against the tracker and reports notice on success.
func (m *Model) mutate(notice string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{notice: notice, err: fn(context.Background())}
	}
}

func (m *Model) addTechnology(in tracker.NewTechnology) tea.Cmd {
	tr := m.tracker
	return m.mutate("Added "+in.Title, func(ctx context.Context) error {
		_, err := tr.Add(ctx, in)
		return err
	})
}

func (m *Model) advance(id int64) tea.Cmd {
	tr := m.tracker
	return func() tea.Msg {
		tech, err := tr.AdvanceStatus(context.Background(), id)
		notice := ""
		if err == nil || tracker.IsWarning(err) {
			notice = fmt.Sprintf("%s %s: %s", theme.StatusIcon(tech.Status), tech.Title, tech.Status.Label())
		}
		return resultMsg{notice: notice, err: err}
	}
}

func (m *Model) setNotes(id int64, notes string) tea.Cmd {
	tr := m.tracker
	return m.mutate("Notes saved", func(ctx context.Context) error {
		return tr.SetNotes(ctx, id, notes)
	})
}

func (m *Model) setDeadline(id int64, d *civil.Date) tea.Cmd {
	tr := m.tracker
	if d == nil {
		return m.mutate("Deadline cleared", func(ctx context.Context) error {
			return tr.ClearDeadline(ctx, id)
		})
	}
	date := *d
	return m.mutate("Deadline set to "+date.String(), func(ctx context.Context) error {
		return tr.SetDeadline(ctx, id, date)
	})
}

func (m *Model) setTags(id int64, tags, resources []string) tea.Cmd {
	tr := m.tracker
	return m.mutate("Tags and resources saved", func(ctx context.Context) error {
		return tr.SetTagsAndResources(ctx, id, tags, resources)
	})
}

func (m *Model) remove(id int64) tea.Cmd {
	tr := m.tracker
	return m.mutate("Technology deleted", func(ctx context.Context) error {
		return tr.Remove(ctx, id)
	})
}

func (m *Model) bulkSetStatus(ids []int64, status model.Status) tea.Cmd {
	tr := m.tracker
	return func() tea.Msg {
		n, err := tr.BulkSetStatus(context.Background(), ids, status)
		return resultMsg{
			notice:     fmt.Sprintf("%d technologies set to %s", n, status.Label()),
			err:        err,
			clearMarks: err == nil || tracker.IsWarning(err),
		}
	}
}

func (m *Model) pickRandom() tea.Cmd {
	tr := m.tracker
	return func() tea.Msg {
		tech, ok := tr.PickRandomUnstarted()
		return randomPickMsg{tech: tech, ok: ok}
	}
}

func (m *Model) flush() tea.Cmd {
	tr := m.tracker
	return func() tea.Msg {
		if err := tr.Flush(context.Background()); err != nil {
			return resultMsg{notice: "Changes kept in memory", err: err}
		}
		return resultMsg{notice: "All changes saved"}
	}
}

// openDetail switches to the detail view and loads id into it.
func (m *Model) openDetail(id int64) tea.Cmd {
	if m.currentView != ViewDetail {
		m.previousView = m.currentView
	}
	m.currentView = ViewDetail
	return m.loadDetail(id)
}

func (m *Model) loadDetail(id int64) tea.Cmd {
	tr := m.tracker
	today := m.today()
	return func() tea.Msg {
		tech, err := tr.Get(id)
		if err != nil {
			return detail.BackMsg{}
		}
		return detail.LoadedMsg{Tech: tech, Today: today}
	}
}

func (m *Model) openStats() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewStats
	return m.loadStats()
}

func (m *Model) loadStats() tea.Cmd {
	tr := m.tracker
	today := m.today()
	return func() tea.Msg {
		return statsview.LoadedMsg{Items: tr.Snapshot(), Today: today}
	}
}

func (m *Model) openSettings() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	return m.settingsView.Start(m.current)
}

func (m *Model) saveSettings(s model.Settings) tea.Cmd {
	mgr := m.settings
	tr := m.tracker
	return func() tea.Msg {
		ctx := context.Background()
		saved, err := mgr.Save(ctx, s)
		if err != nil {
			return resultMsg{err: err}
		}
		// Turning autosave back on writes anything pending.
		return resultMsg{notice: "Settings saved", err: tr.SetAutoSave(ctx, saved.AutoSave), settings: &saved}
	}
}

// applySettings makes saved settings take effect in the running UI.
func (m *Model) applySettings(s model.Settings) {
	m.current = s
	theme.Apply(s.Theme)
	if m.poller != nil {
		m.poller.SetEnabled(s.Notifications)
		m.poller.Refresh()
	}
}

func (m *Model) startCreate() tea.Cmd {
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m.form.StartCreate(m.today())
}

// handleAction runs a per-technology action requested from the list or
// the detail view.
func (m *Model) handleAction(action string, id int64) tea.Cmd {
	if action == detail.ActionAdvance {
		return m.advance(id)
	}

	tech, err := m.tracker.Get(id)
	if err != nil {
		m.report("", err)
		return nil
	}

	switch action {
	case detail.ActionDelete:
		if m.pendingDelete != id {
			m.pendingDelete = id
			m.notice = fmt.Sprintf("Delete %q? Press x again to confirm", tech.Title)
			m.noticeErr = true
			return nil
		}
		m.pendingDelete = 0
		return m.remove(id)

	case detail.ActionNotes:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m.form.StartNotes(tech)

	case detail.ActionDeadline:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m.form.StartDeadline(tech, m.today())

	case actionTags:
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m.form.StartTags(tech)
	}
	return nil
}

const actionTags = "tags"

// selectedID returns the technology the user is looking at: the one open in
// the detail view, else the list selection.
func (m Model) selectedID() (int64, bool) {
	if m.currentView == ViewDetail && m.detail.ID() != 0 {
		return m.detail.ID(), true
	}
	tech, ok := m.techList.Selected()
	return tech.ID, ok
}
