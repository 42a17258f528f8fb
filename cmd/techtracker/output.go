package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/theme"
)

func today() civil.Date {
	return deadline.Today(time.Now())
}

func encodeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func dueText(t model.Technology, today civil.Date) string {
	if t.Deadline == nil {
		return ""
	}
	if t.IsCompleted() {
		return t.Deadline.String()
	}
	days := deadline.DaysRemaining(*t.Deadline, today)
	return fmt.Sprintf("%s (%s)", t.Deadline, deadline.Describe(days))
}

// renderTable lays technologies out one per row.
func renderTable(items []model.Technology, today civil.Date) string {
	rows := make([][]string, len(items))
	for i, t := range items {
		rows[i] = []string{
			strconv.FormatInt(t.ID, 10),
			theme.StatusIcon(t.Status) + " " + t.Status.Label(),
			t.Title,
			string(t.CategoryOrOther()),
			dueText(t, today),
			strings.Join(t.Tags, ", "),
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("ID", "STATUS", "TITLE", "CATEGORY", "DEADLINE", "TAGS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Bold(true)
			}
			return s
		}).
		String()
}

// writeDetail prints every field of t.
func writeDetail(w io.Writer, t model.Technology, today civil.Date) {
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%-12s %s\n", name+":", value)
		}
	}

	field("ID", strconv.FormatInt(t.ID, 10))
	field("Title", t.Title)
	field("Status", t.Status.Label())
	field("Category", string(t.CategoryOrOther()))
	field("Difficulty", string(t.Difficulty))
	field("Deadline", dueText(t, today))
	field("Tags", strings.Join(t.Tags, ", "))
	field("Added", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	field("Description", t.Description)
	if t.Notes != "" {
		fmt.Fprintf(w, "\nNotes:\n%s\n", t.Notes)
	}
	if len(t.Resources) > 0 {
		fmt.Fprintln(w, "\nResources:")
		for _, r := range t.Resources {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}
