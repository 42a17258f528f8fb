package techform

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"

	"github.com/nhle/techtracker/internal/deadline"
	"github.com/nhle/techtracker/internal/model"
)

func TestValidateDeadline(t *testing.T) {
	today := civil.Date{Year: 2026, Month: 3, Day: 10}

	tests := []struct {
		in   string
		want error
	}{
		{"", nil},
		{"none", nil},
		{"2026-03-10", nil},
		{"2027-03-11", nil},
		{"2026-03-09", deadline.ErrInPast},
		{"2027-03-12", deadline.ErrTooFar},
		{"10/03/2026", deadline.ErrInvalidDate},
	}

	for _, tt := range tests {
		err := validateDeadline(tt.in, today)
		if tt.want == nil {
			if err != nil {
				t.Errorf("validateDeadline(%q) = %v, want nil", tt.in, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("validateDeadline(%q) = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	if got := SplitTags("  "); got != nil {
		t.Errorf("SplitTags(blank) = %v, want nil", got)
	}
	got := SplitTags("react, hooks,")
	if len(got) != 3 || got[0] != "react" || got[1] != " hooks" {
		t.Errorf("SplitTags = %q", got)
	}
}

func TestSubmitCreate(t *testing.T) {
	m := New(80, 24)
	today := civil.Date{Year: 2026, Month: 3, Day: 10}
	m.StartCreate(today)

	m.fb.title = "Go"
	m.fb.description = "Concurrency"
	m.fb.category = model.CategoryBackend
	m.fb.deadline = "2026-04-01"
	m.fb.tags = "lang, backend"

	msg, ok := m.handleSubmit()().(CreatedMsg)
	if !ok {
		t.Fatal("expected CreatedMsg")
	}
	if msg.Input.Title != "Go" || msg.Input.Category != model.CategoryBackend {
		t.Errorf("input = %+v", msg.Input)
	}
	if msg.Input.Status != model.StatusNotStarted {
		t.Errorf("status = %q, want not-started", msg.Input.Status)
	}
	if msg.Input.Deadline == nil || msg.Input.Deadline.String() != "2026-04-01" {
		t.Errorf("deadline = %v", msg.Input.Deadline)
	}
	if len(msg.Input.Tags) != 2 {
		t.Errorf("tags = %q", msg.Input.Tags)
	}
}

func TestSubmitDeadlineClears(t *testing.T) {
	d := civil.Date{Year: 2026, Month: 4, Day: 1}
	m := New(80, 24)
	m.StartDeadline(model.Technology{ID: 7, Title: "Go", Deadline: &d}, civil.Date{Year: 2026, Month: 3, Day: 10})

	if m.fb.deadline != "2026-04-01" {
		t.Fatalf("prefilled deadline = %q", m.fb.deadline)
	}
	m.fb.deadline = ""

	msg, ok := m.handleSubmit()().(DeadlineMsg)
	if !ok {
		t.Fatal("expected DeadlineMsg")
	}
	if msg.ID != 7 || msg.Deadline != nil {
		t.Errorf("msg = %+v, want id 7 and nil deadline", msg)
	}
}

func TestSubmitNotes(t *testing.T) {
	m := New(80, 24)
	m.StartNotes(model.Technology{ID: 3, Title: "SQL", Notes: "joins"})
	m.fb.notes = "joins and indexes"

	msg, ok := m.handleSubmit()().(NotesMsg)
	if !ok {
		t.Fatal("expected NotesMsg")
	}
	if msg.ID != 3 || msg.Notes != "joins and indexes" {
		t.Errorf("msg = %+v", msg)
	}
}
