package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/tracker"
)

var importNow = time.Date(2026, time.June, 1, 9, 30, 0, 0, time.UTC)

type memBlobs map[string][]byte

func (m memBlobs) Load(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := m[key]
	return b, ok, nil
}

func (m memBlobs) Save(_ context.Context, key string, data []byte) error {
	m[key] = data
	return nil
}

func sampleItems() []model.Technology {
	d := civil.Date{Year: 2026, Month: time.July, Day: 14}
	return []model.Technology{
		{
			ID:          1700000000001,
			Title:       "React Hooks",
			Description: "useEffect and friends",
			Status:      model.StatusInProgress,
			Notes:       "watch the dependency array",
			Deadline:    &d,
			Category:    model.CategoryFrontend,
			Difficulty:  model.DifficultyIntermediate,
			Tags:        []string{"react", "hooks"},
			Resources:   []string{"https://react.dev/reference/react"},
			CreatedAt:   time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC),
		},
		{
			ID:          1700000000002,
			Title:       "Postgres",
			Description: "Indexes, EXPLAIN",
			Status:      model.StatusNotStarted,
			CreatedAt:   time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          1700000000003,
			Title:       "Docker",
			Description: "Images and layers",
			Status:      model.StatusCompleted,
			Category:    model.CategoryDevOps,
			CreatedAt:   time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2026, time.February, 9, 23, 0, 0, 0, time.UTC)
	if got := FileName(model.ExportJSON, now); got != "tech-tracker-backup-2026-02-09.json" {
		t.Fatalf("FileName json = %q", got)
	}
	if got := FileName(model.ExportCSV, now); got != "tech-tracker-backup-2026-02-09.csv" {
		t.Fatalf("FileName csv = %q", got)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, err := tracker.New(ctx, memBlobs{}, tracker.WithClock(func() time.Time { return importNow }))
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Replace(ctx, sampleItems()); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, model.ExportJSON, src.Export()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dst, err := tracker.New(ctx, memBlobs{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewImporter(nil).Import(ctx, dst, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Rejected) != 0 {
		t.Fatalf("rejected: %+v", res.Rejected)
	}

	if diff := cmp.Diff(src.Snapshot(), dst.Snapshot()); diff != "" {
		t.Fatalf("round trip mismatch (-exported +imported):\n%s", diff)
	}
}

func TestRoundTripKeepsLongFields(t *testing.T) {
	ctx := context.Background()
	src, err := tracker.New(ctx, memBlobs{}, tracker.WithClock(func() time.Time { return importNow }))
	if err != nil {
		t.Fatal(err)
	}

	inputs := []tracker.NewTechnology{
		{Title: strings.Repeat("ж", 201), Description: "multi-byte title past 200 runes"},
		{Title: "Long description", Description: strings.Repeat("описание ", 400)},
		{Title: "Short", Description: "stays as is", Status: model.StatusCompleted},
	}
	for _, in := range inputs {
		if _, err := src.Add(ctx, in); err != nil {
			t.Fatalf("Add(%.20q): %v", in.Title, err)
		}
	}

	var buf bytes.Buffer
	if err := Write(&buf, model.ExportJSON, src.Export()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	dst, err := tracker.New(ctx, memBlobs{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := NewImporter(nil).Import(ctx, dst, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Rejected) != 0 {
		t.Fatalf("rejected: %+v", res.Rejected)
	}
	if diff := cmp.Diff(src.Snapshot(), dst.Snapshot()); diff != "" {
		t.Fatalf("round trip mismatch (-exported +imported):\n%s", diff)
	}
}

func TestWriteFileIntoDirectory(t *testing.T) {
	ctx := context.Background()
	src, err := tracker.New(ctx, memBlobs{}, tracker.WithClock(func() time.Time { return importNow }))
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Replace(ctx, sampleItems()); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	path, err := WriteFile(dir, model.ExportJSON, src.Export())
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if want := filepath.Join(dir, "tech-tracker-backup-2026-06-01.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	dst, err := tracker.New(ctx, memBlobs{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewImporter(nil).ImportFile(ctx, dst, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if dst.Len() != 3 {
		t.Fatalf("imported %d technologies, want 3", dst.Len())
	}

	if _, err := NewImporter(nil).ImportFile(ctx, dst, filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("ImportFile of a missing file succeeded")
	}
}

func TestDecodeBareArray(t *testing.T) {
	in := `[
		{"id": 1, "title": "React Components", "description": "Lifecycle", "status": "not-started", "notes": ""},
		{"id": 2, "title": "JSX Syntax", "description": "Expressions", "status": "completed", "notes": "done"}
	]`

	res, err := NewImporter(func() time.Time { return importNow }).Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(res.Technologies) != 2 || len(res.Rejected) != 0 {
		t.Fatalf("result = %+v", res)
	}
	if !res.Technologies[0].CreatedAt.Equal(importNow) {
		t.Fatalf("missing createdAt not defaulted: %v", res.Technologies[0].CreatedAt)
	}
	if res.Technologies[1].Status != model.StatusCompleted {
		t.Fatalf("status = %q", res.Technologies[1].Status)
	}
}

func TestDecodeRejectsInvalidRecords(t *testing.T) {
	in := `{"technologies": [
		{"id": 1, "title": "Good", "description": "ok", "status": "in-progress"},
		{"id": 2, "title": "   ", "description": "blank title", "status": "completed"},
		{"id": 3, "title": "Bad status", "description": "x", "status": "paused"},
		{"id": 4, "title": "Bad category", "description": "x", "status": "completed", "category": "cooking"},
		{"id": 5, "title": "Bad date", "description": "x", "status": "completed", "deadline": "2026-02-30"},
		{"id": 1, "title": "Dup", "description": "x", "status": "completed"},
		{"id": "six", "title": "Wrong type"},
		{"title": "No id", "description": "x", "status": "completed"}
	]}`

	res, err := NewImporter(nil).Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if len(res.Technologies) != 1 || res.Technologies[0].Title != "Good" {
		t.Fatalf("accepted = %+v", res.Technologies)
	}

	var indexes []int
	for _, r := range res.Rejected {
		indexes = append(indexes, r.Index)
		if r.Reason == "" {
			t.Errorf("rejection %d has no reason", r.Index)
		}
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4, 5, 6, 7}, indexes); diff != "" {
		t.Fatalf("rejected indexes mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(res.Rejected[1].Reason, "status must be one of") {
		t.Errorf("status reason = %q", res.Rejected[1].Reason)
	}
}

func TestDecodeFormatErrors(t *testing.T) {
	for _, in := range []string{"", "42", `{"other": []}`, `[1, 2`} {
		if _, err := NewImporter(nil).Decode(strings.NewReader(in)); !errors.Is(err, ErrFormat) {
			t.Errorf("Decode(%q) = %v, want ErrFormat", in, err)
		}
	}
}

func TestImportAllRejectedLeavesCollection(t *testing.T) {
	ctx := context.Background()
	dst, err := tracker.New(ctx, memBlobs{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dst.Add(ctx, tracker.NewTechnology{Title: "Keep", Description: "me"}); err != nil {
		t.Fatal(err)
	}

	_, err = NewImporter(nil).Import(ctx, dst, strings.NewReader(`[{"id": 1}]`))
	if !errors.Is(err, ErrNothingImported) {
		t.Fatalf("Import error = %v, want ErrNothingImported", err)
	}
	if dst.Len() != 1 {
		t.Fatalf("collection replaced despite rejection")
	}
}

func TestRecordEnumsMatchModel(t *testing.T) {
	// The oneof lists on record must stay in step with the model enums.
	im := NewImporter(nil)
	for _, s := range model.ValidStatuses() {
		rec := record{ID: 1, Title: "t", Description: "d", Status: string(s)}
		if err := im.validate.Struct(rec); err != nil {
			t.Errorf("status %q rejected: %v", s, err)
		}
	}
	for _, c := range model.ValidCategories() {
		rec := record{ID: 1, Title: "t", Description: "d", Status: "completed", Category: string(c)}
		if err := im.validate.Struct(rec); err != nil {
			t.Errorf("category %q rejected: %v", c, err)
		}
	}
	for _, d := range model.ValidDifficulties() {
		rec := record{ID: 1, Title: "t", Description: "d", Status: "completed", Difficulty: string(d)}
		if err := im.validate.Struct(rec); err != nil {
			t.Errorf("difficulty %q rejected: %v", d, err)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleItems()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want header + 3", len(rows))
	}
	if diff := cmp.Diff(csvHeader, rows[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}

	first := rows[1]
	if first[1] != "React Hooks" || first[3] != "in-progress" || first[6] != "2026-07-14" || first[7] != "react; hooks" {
		t.Fatalf("first row = %q", first)
	}
	if rows[2][6] != "" {
		t.Fatalf("missing deadline rendered as %q", rows[2][6])
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xml", tracker.ExportSnapshot{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
