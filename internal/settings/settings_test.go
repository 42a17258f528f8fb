package settings_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nhle/techtracker/internal/model"
	"github.com/nhle/techtracker/internal/settings"
	"github.com/nhle/techtracker/tests/testutil"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	m := settings.NewManager(testutil.NewTestStore(t), nil)

	got, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(model.DefaultSettings(), got); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadAndReset(t *testing.T) {
	ctx := context.Background()
	m := settings.NewManager(testutil.NewTestStore(t), nil)

	want := model.Settings{
		Theme:         model.ThemeDark,
		Language:      model.LanguageEnglish,
		Notifications: false,
		AutoSave:      false,
		ExportFormat:  model.ExportCSV,
	}
	if _, err := m.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("loaded settings mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, _ = m.Load(ctx)
	if diff := cmp.Diff(model.DefaultSettings(), got); diff != "" {
		t.Fatalf("settings after reset (-want +got):\n%s", diff)
	}
}

func TestLoadFallsBackPerField(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	if err := s.Save(ctx, settings.Key, []byte(`{"theme":"neon","language":"en","autoSave":false}`)); err != nil {
		t.Fatal(err)
	}

	got, err := settings.NewManager(s, nil).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := model.DefaultSettings()
	want.Language = model.LanguageEnglish
	want.AutoSave = false
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadIgnoresUnreadableBlob(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewTestStore(t)
	if err := s.Save(ctx, settings.Key, []byte(`not json`)); err != nil {
		t.Fatal(err)
	}
	got, err := settings.NewManager(s, nil).Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != model.DefaultSettings() {
		t.Fatalf("got %+v, want defaults", got)
	}
}

func TestSet(t *testing.T) {
	ctx := context.Background()
	m := settings.NewManager(testutil.NewTestStore(t), nil)

	cases := []struct {
		name, value string
		wantErr     bool
	}{
		{"theme", "DARK", false},
		{"autosave", "false", false},
		{"exportFormat", "csv", false},
		{"language", "de", true},
		{"notifications", "maybe", true},
		{"fontSize", "12", true},
	}
	for _, tc := range cases {
		_, err := m.Set(ctx, tc.name, tc.value)
		if (err != nil) != tc.wantErr {
			t.Errorf("Set(%s, %s) error = %v, wantErr %v", tc.name, tc.value, err, tc.wantErr)
		}
	}

	got, _ := m.Load(ctx)
	if got.Theme != model.ThemeDark || got.AutoSave || got.ExportFormat != model.ExportCSV {
		t.Fatalf("settings after Set = %+v", got)
	}
	if v, _ := settings.Get(got, "exportformat"); v != "csv" {
		t.Fatalf("Get exportformat = %q", v)
	}
}
