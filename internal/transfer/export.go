// Package transfer reads and writes backup files of the technology
// collection.
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/tracker"
)

// FileName returns the default backup file name for the export date.
func FileName(format model.ExportFormat, now time.Time) string {
	return fmt.Sprintf("tech-tracker-backup-%s.%s", now.Format("2006-01-02"), format)
}

// Write encodes snap in the given format.
func Write(w io.Writer, format model.ExportFormat, snap tracker.ExportSnapshot) error {
	switch format {
	case model.ExportJSON:
		return WriteJSON(w, snap)
	case model.ExportCSV:
		return WriteCSV(w, snap.Technologies)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteJSON writes the backup envelope as indented JSON.
func WriteJSON(w io.Writer, snap tracker.ExportSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding backup: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"id", "title", "description", "status", "category", "difficulty",
	"deadline", "tags", "resources", "notes", "createdAt",
}

// WriteCSV writes one row per technology. Tags and resources are joined
// with "; ". CSV output is for spreadsheets and is not read back by import.
func WriteCSV(w io.Writer, items []model.Technology) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, t := range items {
		deadline := ""
		if t.Deadline != nil {
			deadline = t.Deadline.String()
		}
		row := []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Description,
			string(t.Status),
			string(t.Category),
			string(t.Difficulty),
			deadline,
			strings.Join(t.Tags, "; "),
			strings.Join(t.Resources, "; "),
			t.Notes,
			t.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", t.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteFile writes snap to path, or to FileName inside path when path is a
// directory. It returns the file actually written.
func WriteFile(path string, format model.ExportFormat, snap tracker.ExportSnapshot) (string, error) {
	if path == "" {
		path = "."
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, FileName(format, snap.ExportedAt))
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating backup file: %w", err)
	}
	if err := Write(f, format, snap); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing backup file: %w", err)
	}
	return path, nil
}
