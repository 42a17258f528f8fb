package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/reminder"
	"github.com/nhle/techtracker/internal/settings"
	"github.com/nhle/techtracker/internal/tracker"
	"github.com/nhle/techtracker/internal/ui/command"
	"github.com/nhle/techtracker/internal/ui/techlist"
)

var fixedNow = time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)

type memBlobs map[string][]byte

func (b memBlobs) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, ok := b[key]
	return data, ok, nil
}

func (b memBlobs) Save(_ context.Context, key string, data []byte) error {
	b[key] = data
	return nil
}

func newTestModel(t *testing.T, titles []string, opts ...tracker.Option) (Model, *tracker.Tracker) {
	t.Helper()
	ctx := context.Background()
	blobs := memBlobs{}
	clock := func() time.Time { return fixedNow }

	tr, err := tracker.New(ctx, blobs, append([]tracker.Option{tracker.WithClock(clock)}, opts...)...)
	if err != nil {
		t.Fatalf("tracker.New: %v", err)
	}
	for _, title := range titles {
		if _, err := tr.Add(ctx, tracker.NewTechnology{Title: title, Description: title + " basics"}); err != nil {
			t.Fatalf("Add(%q): %v", title, err)
		}
	}

	m := New(Config{
		Tracker:   tr,
		Settings:  settings.NewManager(blobs, nil),
		Current:   model.DefaultSettings(),
		ExportDir: t.TempDir(),
		Now:       clock,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, techlist.ItemsLoadedMsg{Items: tr.List(tracker.Filter{})})
	return m, tr
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runResult(t *testing.T, cmd tea.Cmd) resultMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	raw := cmd()
	msg, ok := raw.(resultMsg)
	if !ok {
		t.Fatalf("command returned %T, want resultMsg", raw)
	}
	return msg
}

func TestAdvanceFromList(t *testing.T) {
	m, tr := newTestModel(t, []string{"Go"})
	id := tr.Snapshot()[0].ID

	m, cmd := press(t, m, " ")
	res := runResult(t, cmd)
	if res.err != nil {
		t.Fatalf("advance: %v", res.err)
	}

	got, _ := tr.Get(id)
	if got.Status != model.StatusInProgress {
		t.Fatalf("status = %q, want in-progress", got.Status)
	}

	m = update(t, m, res)
	if !strings.Contains(m.notice, "In progress") || m.noticeErr {
		t.Fatalf("notice = %q (err %v)", m.notice, m.noticeErr)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, tr := newTestModel(t, []string{"Go", "Rust"})

	m, cmd := press(t, m, "x")
	if cmd != nil {
		t.Fatal("first x should only ask for confirmation")
	}
	if !strings.Contains(m.notice, "again") {
		t.Fatalf("notice = %q", m.notice)
	}
	if tr.Len() != 2 {
		t.Fatal("deleted without confirmation")
	}

	_, cmd = press(t, m, "x")
	if res := runResult(t, cmd); res.err != nil {
		t.Fatalf("remove: %v", res.err)
	}
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
}

func TestDeleteConfirmationResetByOtherKey(t *testing.T) {
	m, tr := newTestModel(t, []string{"Go"})

	m, _ = press(t, m, "x")
	m, _ = press(t, m, "j")
	m, cmd := press(t, m, "x")
	if cmd != nil {
		t.Fatal("x after another key should ask again")
	}
	if tr.Len() != 1 {
		t.Fatal("technology was deleted")
	}
	_ = m
}

func TestBulkCommand(t *testing.T) {
	m, tr := newTestModel(t, []string{"A", "B", "C"})

	if cmd := m.executeCommand(command.Parse("bulk completed")); cmd != nil {
		t.Fatal("bulk without marks returned a command")
	}
	if !m.noticeErr {
		t.Fatalf("expected an error notice, got %q", m.notice)
	}

	m, _ = press(t, m, "m")
	m, _ = press(t, m, "m")

	res := runResult(t, m.executeCommand(command.Parse("bulk completed")))
	if res.err != nil {
		t.Fatalf("bulk: %v", res.err)
	}
	if !strings.HasPrefix(res.notice, "2 ") {
		t.Fatalf("notice = %q", res.notice)
	}

	var completed int
	for _, tech := range tr.Snapshot() {
		if tech.IsCompleted() {
			completed++
		}
	}
	if completed != 2 {
		t.Fatalf("completed = %d, want 2", completed)
	}
}

func TestBulkCommandRejectsUnknownStatus(t *testing.T) {
	m, _ := newTestModel(t, []string{"A"})
	m, _ = press(t, m, "m")

	if cmd := m.executeCommand(command.Parse("bulk done")); cmd != nil {
		t.Fatal("expected no command for an unknown status")
	}
	if !m.noticeErr {
		t.Fatal("expected an error notice")
	}
}

func TestCompleteAllAndResetCommands(t *testing.T) {
	m, tr := newTestModel(t, []string{"A", "B"})

	runResult(t, m.executeCommand(command.Parse("complete-all")))
	if tr.Progress() != 100 {
		t.Fatalf("progress = %d, want 100", tr.Progress())
	}

	runResult(t, m.executeCommand(command.Parse("reset")))
	if tr.Progress() != 0 {
		t.Fatalf("progress = %d, want 0", tr.Progress())
	}
}

func TestRandomPick(t *testing.T) {
	m, tr := newTestModel(t, nil)

	msg := m.pickRandom()().(randomPickMsg)
	m = update(t, m, msg)
	if !strings.Contains(m.notice, "Nothing left") {
		t.Fatalf("notice = %q", m.notice)
	}

	if _, err := tr.Add(context.Background(), tracker.NewTechnology{Title: "Go", Description: "lang"}); err != nil {
		t.Fatal(err)
	}
	msg = m.pickRandom()().(randomPickMsg)
	if !msg.ok || msg.tech.Title != "Go" {
		t.Fatalf("pick = %+v", msg)
	}
	m = update(t, m, msg)
	if m.currentView != ViewDetail {
		t.Fatalf("view = %v, want detail", m.currentView)
	}
}

func TestExportImportCommands(t *testing.T) {
	m, tr := newTestModel(t, []string{"Go", "Rust"})

	res := runResult(t, m.executeCommand(command.Parse("export")))
	if res.err != nil {
		t.Fatalf("export: %v", res.err)
	}
	path := filepath.Join(m.exportDir, "tech-tracker-backup-2026-05-04.json")
	if !strings.HasSuffix(res.notice, path) {
		t.Fatalf("notice = %q, want it to name %s", res.notice, path)
	}

	if err := tr.Clear(context.Background()); err != nil {
		t.Fatal(err)
	}

	res = runResult(t, m.executeCommand(command.Parse("import "+path)))
	if res.err != nil {
		t.Fatalf("import: %v", res.err)
	}
	if tr.Len() != 2 {
		t.Fatalf("Len after import = %d, want 2", tr.Len())
	}

	if cmd := m.executeCommand(command.Parse("import")); cmd != nil {
		t.Fatal("import without a path returned a command")
	}
}

func TestUnknownCommand(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if cmd := m.executeCommand(command.Parse("frobnicate")); cmd != nil {
		t.Fatal("unknown command returned a command")
	}
	if !strings.Contains(m.notice, "frobnicate") {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestQuitAsksWhenUnsaved(t *testing.T) {
	m, tr := newTestModel(t, []string{"Go"}, tracker.WithAutoSave(false))
	if !tr.Dirty() {
		t.Fatal("expected unsaved changes")
	}

	m, cmd := press(t, m, "q")
	if cmd != nil {
		t.Fatal("quit with unsaved changes should ask first")
	}

	_, cmd = press(t, m, "q")
	if cmd == nil {
		t.Fatal("second q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestSaveCommandFlushes(t *testing.T) {
	m, tr := newTestModel(t, []string{"Go"}, tracker.WithAutoSave(false))

	res := runResult(t, m.executeCommand(command.Parse("save")))
	if res.err != nil {
		t.Fatalf("save: %v", res.err)
	}
	if tr.Dirty() {
		t.Fatal("still dirty after save")
	}
}

func TestSettingsSaveTakesEffect(t *testing.T) {
	m, tr := newTestModel(t, nil)

	s := model.DefaultSettings()
	s.AutoSave = false
	s.ExportFormat = model.ExportCSV

	m = update(t, m, runResult(t, m.saveSettings(s)))
	if m.current.ExportFormat != model.ExportCSV || m.current.AutoSave {
		t.Fatalf("current = %+v", m.current)
	}

	if _, err := tr.Add(context.Background(), tracker.NewTechnology{Title: "Go", Description: "lang"}); err != nil {
		t.Fatal(err)
	}
	if !tr.Dirty() {
		t.Fatal("autosave should be off after saving settings")
	}
}

func TestNotificationsShowInStatusBar(t *testing.T) {
	m, tr := newTestModel(t, nil)
	m.poller = reminder.New(tr, time.Hour)

	m = update(t, m, reminder.NotificationsMsg{Notifications: []model.Notification{
		{TechnologyID: 1, Urgency: "overdue", Message: "Go: overdue by 2 days"},
		{TechnologyID: 2, Urgency: "today", Message: "Rust: due today"},
	}})

	if m.notice != "Go: overdue by 2 days (+1 more)" {
		t.Fatalf("notice = %q", m.notice)
	}
	if !m.noticeErr {
		t.Fatal("overdue reminders should use the error style")
	}
}

func TestSeedNotice(t *testing.T) {
	m, tr := newTestModel(t, nil, tracker.WithSeed())
	if tr.Len() != 3 {
		t.Fatalf("Len = %d, want 3 starters", tr.Len())
	}
	if !strings.Contains(m.notice, "starter") {
		t.Fatalf("notice = %q", m.notice)
	}
}
