package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/transfer"
	"github.com/nhle/techtracker/internal/ui/command"
)

// executeCommand handles a command from the command palette.
func (m *Model) executeCommand(c command.CommandMsg) tea.Cmd {
	switch c.Name {
	case "add", "new":
		return m.startCreate()

	case "random":
		return m.pickRandom()

	case "complete-all":
		tr := m.tracker
		return m.mutate("Everything marked completed", tr.MarkAllCompleted)

	case "reset":
		tr := m.tracker
		return m.mutate("Everything set back to not started", tr.ResetAll)

	case "bulk":
		status, ok := model.ParseStatus(c.Arg())
		if !ok {
			m.report("", fmt.Errorf("bulk needs a status: not-started, in-progress or completed"))
			return nil
		}
		ids := m.techList.Marked()
		if len(ids) == 0 {
			m.report("", errors.New("nothing marked: press m on technologies first"))
			return nil
		}
		return m.bulkSetStatus(ids, status)

	case "filter":
		arg := c.Arg()
		if arg == "" || strings.EqualFold(arg, "all") {
			return m.techList.SetStatusFilter("")
		}
		status, ok := model.ParseStatus(arg)
		if !ok {
			m.report("", fmt.Errorf("unknown status %q", arg))
			return nil
		}
		return m.techList.SetStatusFilter(status)

	case "tag":
		return m.techList.SetTagFilter(strings.TrimPrefix(c.Arg(), "#"))

	case "tags":
		id, ok := m.selectedID()
		if !ok {
			return nil
		}
		return m.handleAction(actionTags, id)

	case "clear":
		m.techList.ClearFilters()
		return m.techList.ClearMarks()

	case "clear-data":
		return m.clearData()

	case "stats", "statistics":
		return m.openStats()

	case "settings":
		return m.openSettings()

	case "export":
		return m.export(c.Arg())

	case "import":
		if c.Arg() == "" {
			m.report("", errors.New("import needs a file path"))
			return nil
		}
		return m.importFile(c.Arg())

	case "save", "w":
		return m.flush()

	case "quit", "q":
		return m.quit()

	default:
		m.report("", fmt.Errorf("unknown command %q, press ? for the list", c.Name))
		return nil
	}
}

func (m *Model) export(path string) tea.Cmd {
	if path == "" {
		path = m.exportDir
	}
	tr := m.tracker
	format := m.current.ExportFormat
	return func() tea.Msg {
		written, err := transfer.WriteFile(path, format, tr.Export())
		if err != nil {
			return resultMsg{err: fmt.Errorf("export: %w", err)}
		}
		return resultMsg{notice: "Exported to " + written}
	}
}

func (m *Model) importFile(path string) tea.Cmd {
	tr := m.tracker
	im := transfer.NewImporter(m.now)
	return func() tea.Msg {
		res, err := im.ImportFile(context.Background(), tr, path)
		if res == nil {
			return resultMsg{err: fmt.Errorf("import: %w", err)}
		}
		notice := fmt.Sprintf("Imported %d technologies", len(res.Technologies))
		if n := len(res.Rejected); n > 0 {
			r := res.Rejected[0]
			notice += fmt.Sprintf(", skipped %d (first: record %d, %s)", n, r.Index, r.Reason)
		}
		return resultMsg{notice: notice, err: err, clearMarks: err == nil}
	}
}

// clearData empties the collection and restores default settings.
func (m *Model) clearData() tea.Cmd {
	tr := m.tracker
	mgr := m.settings
	return func() tea.Msg {
		ctx := context.Background()
		if err := tr.Clear(ctx); err != nil {
			return resultMsg{notice: "All technologies deleted", err: err, clearMarks: true}
		}
		s, err := mgr.Reset(ctx)
		if err != nil {
			return resultMsg{err: fmt.Errorf("technologies deleted, settings kept: %w", err), clearMarks: true}
		}
		return resultMsg{
			notice:     "All data cleared",
			err:        tr.SetAutoSave(ctx, s.AutoSave),
			clearMarks: true,
			settings:   &s,
		}
	}
}
