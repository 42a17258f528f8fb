package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want CommandMsg
	}{
		{"", CommandMsg{}},
		{"   ", CommandMsg{}},
		{"stats", CommandMsg{Name: "stats", Args: []string{}}},
		{"Bulk in-progress", CommandMsg{Name: "bulk", Args: []string{"in-progress"}}},
		{"import  /tmp/my backup.json", CommandMsg{Name: "import", Args: []string{"/tmp/my", "backup.json"}}},
	}

	for _, tt := range tests {
		got := Parse(tt.line)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}

	if got := Parse("import /tmp/my backup.json").Arg(); got != "/tmp/my backup.json" {
		t.Errorf("Arg() = %q", got)
	}
}

func TestCommandsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Commands {
		if seen[c.Name] {
			t.Errorf("duplicate command %q", c.Name)
		}
		seen[c.Name] = true
	}
}
