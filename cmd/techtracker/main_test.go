package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/nhle/techtracker/internal/model"
)

type cli struct {
	t   *testing.T
	dir string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	return &cli{t: t, dir: t.TempDir()}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{
		"--config", filepath.Join(c.dir, "config.yaml"),
		"--db", filepath.Join(c.dir, "data", "techtracker.db"),
		"--log-file", filepath.Join(c.dir, "techtracker.log"),
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run(args...)
	if err != nil {
		c.t.Fatalf("%s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

var addedID = regexp.MustCompile(`Added (\d+):`)

func (c *cli) add(title string, extra ...string) string {
	c.t.Helper()
	out := c.mustRun(append([]string{"add", title, "-d", title + " basics"}, extra...)...)
	m := addedID.FindStringSubmatch(out)
	if m == nil {
		c.t.Fatalf("add output %q has no id", out)
	}
	return m[1]
}

func (c *cli) list(args ...string) []model.Technology {
	c.t.Helper()
	out := c.mustRun(append([]string{"list", "--json"}, args...)...)
	var items []model.Technology
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		c.t.Fatalf("decoding list output: %v\n%s", err, out)
	}
	return items
}

func TestFirstRunSeedsStarters(t *testing.T) {
	c := newCLI(t)
	if got := len(c.list()); got != 3 {
		t.Fatalf("starters = %d, want 3", got)
	}
}

func TestAddListShow(t *testing.T) {
	c := newCLI(t)
	id := c.add("Go", "--category", "backend", "--tag", "lang,cli", "--resource", "https://go.dev/tour")

	items := c.list("--tag", "lang")
	if len(items) != 1 || items[0].Title != "Go" {
		t.Fatalf("list --tag lang = %+v", items)
	}
	if items[0].Category != model.CategoryBackend {
		t.Fatalf("category = %q", items[0].Category)
	}

	out := c.mustRun("show", id)
	for _, want := range []string{"Go basics", "Not started", "https://go.dev/tour"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	if _, err := c.run("show", "42"); err == nil {
		t.Fatal("show of an unknown id should fail")
	}
}

func TestAddValidation(t *testing.T) {
	c := newCLI(t)
	cases := [][]string{
		{"add", "Go"},
		{"add", "Go", "-d", "lang", "--status", "done"},
		{"add", "Go", "-d", "lang", "--category", "games"},
		{"add", "Go", "-d", "lang", "--deadline", "2020-01-01"},
	}
	for _, args := range cases {
		if _, err := c.run(args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
	if got := len(c.list()); got != 3 {
		t.Fatalf("Len = %d, rejected adds must not change the collection", got)
	}
}

func TestAdvanceCyclesStatus(t *testing.T) {
	c := newCLI(t)
	id := c.add("Go")

	for _, want := range []string{"In progress", "Completed", "Not started"} {
		out := c.mustRun("advance", id)
		if !strings.Contains(out, want) {
			t.Fatalf("advance output = %q, want %q", out, want)
		}
	}
}

func TestBulkStatusSkipsUnknownIDs(t *testing.T) {
	c := newCLI(t)
	a := c.add("Go")
	b := c.add("Rust")

	out := c.mustRun("status", "completed", a, b, "999")
	if !strings.HasPrefix(out, "2 technologies set to Completed") {
		t.Fatalf("output = %q", out)
	}
	if got := len(c.list("--status", "completed")); got != 2 {
		t.Fatalf("completed = %d, want 2", got)
	}

	if _, err := c.run("status", "done", a); err == nil {
		t.Fatal("unknown status should fail")
	}
}

func TestCompleteAllAndReset(t *testing.T) {
	c := newCLI(t)

	c.mustRun("complete-all")
	out := c.mustRun("stats")
	if !strings.Contains(out, "100%") {
		t.Fatalf("stats after complete-all:\n%s", out)
	}

	c.mustRun("reset")
	if got := len(c.list("--status", "not-started")); got != 3 {
		t.Fatalf("not started = %d, want 3", got)
	}
}

func TestNotesAndDeadline(t *testing.T) {
	c := newCLI(t)
	id := c.add("Go")

	c.mustRun("notes", id, "read", "effective", "go")
	if _, err := c.run("deadline", id, "1999-12-31"); err == nil {
		t.Fatal("past deadline should fail")
	}
	if _, err := c.run("deadline", id, "soon"); err == nil {
		t.Fatal("unparseable deadline should fail")
	}

	var got model.Technology
	if err := json.Unmarshal([]byte(c.mustRun("show", id, "--json")), &got); err != nil {
		t.Fatal(err)
	}
	if got.Notes != "read effective go" {
		t.Fatalf("notes = %q", got.Notes)
	}
	if got.Deadline != nil {
		t.Fatalf("deadline = %v, want none", got.Deadline)
	}
}

func TestRemove(t *testing.T) {
	c := newCLI(t)
	id := c.add("Go")

	c.mustRun("rm", id)
	if got := len(c.list()); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	if _, err := c.run("rm", id); err == nil {
		t.Fatal("removing twice should fail")
	}
}

func TestExportClearImport(t *testing.T) {
	c := newCLI(t)
	c.add("Go")
	backupDir := filepath.Join(c.dir, "backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		t.Fatal(err)
	}

	out := c.mustRun("export", backupDir)
	matches, _ := filepath.Glob(filepath.Join(backupDir, "tech-tracker-backup-*.json"))
	if len(matches) != 1 {
		t.Fatalf("backup files = %v (output %q)", matches, out)
	}

	if _, err := c.run("clear"); err == nil {
		t.Fatal("clear without --yes should fail")
	}
	c.mustRun("clear", "--yes")
	if got := len(c.list()); got != 0 {
		t.Fatalf("Len after clear = %d, want 0", got)
	}

	out = c.mustRun("import", matches[0])
	if !strings.Contains(out, "Imported 4 technologies") {
		t.Fatalf("import output = %q", out)
	}
	if got := len(c.list()); got != 4 {
		t.Fatalf("Len after import = %d, want 4", got)
	}
}

func TestImportRejectsEmptyBackup(t *testing.T) {
	c := newCLI(t)
	path := filepath.Join(c.dir, "bad.json")
	if err := os.WriteFile(path, []byte(`[{"id": 1, "title": "", "status": "completed"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := c.run("import", path)
	if err == nil {
		t.Fatal("expected an error when nothing is importable")
	}
	if !strings.Contains(out, "skipped record 0") {
		t.Fatalf("output = %q", out)
	}
	if got := len(c.list()); got != 3 {
		t.Fatalf("Len = %d, collection should be untouched", got)
	}
}

func TestSettings(t *testing.T) {
	c := newCLI(t)

	c.mustRun("settings", "set", "theme", "dark")
	if got := strings.TrimSpace(c.mustRun("settings", "get", "theme")); got != "dark" {
		t.Fatalf("theme = %q", got)
	}
	if _, err := c.run("settings", "set", "theme", "purple"); err == nil {
		t.Fatal("invalid theme should fail")
	}

	out := c.mustRun("settings", "reset")
	if !strings.Contains(out, "light") {
		t.Fatalf("reset output = %q", out)
	}
}

func TestAutoSaveOffStillPersistsCLIChanges(t *testing.T) {
	c := newCLI(t)
	c.mustRun("settings", "set", "autoSave", "false")
	c.add("Go")

	if got := len(c.list()); got != 4 {
		t.Fatalf("Len = %d, want the add flushed on exit", got)
	}
}

func TestConfigInit(t *testing.T) {
	c := newCLI(t)

	c.mustRun("config", "init")
	data, err := os.ReadFile(filepath.Join(c.dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "techtracker.db") {
		t.Fatalf("config = %s", data)
	}

	if _, err := c.run("config", "init"); err == nil {
		t.Fatal("second init without --force should fail")
	}
	c.mustRun("config", "init", "--force")
}

func TestStorageListsKeys(t *testing.T) {
	c := newCLI(t)
	c.mustRun("settings", "set", "language", "en")

	out := c.mustRun("storage")
	for _, want := range []string{"Schema    v2", "techTrackerData", "appSettings"} {
		if !strings.Contains(out, want) {
			t.Errorf("storage output missing %q:\n%s", want, out)
		}
	}
}
