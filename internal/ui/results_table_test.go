package ui

import (
	"strings"
	"testing"
)

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a longe…"},
		{"Gödel, Escher", 6, "Gödel…"},
		{"abc", 1, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := TruncateWithEllipsis(tt.in, tt.max); got != tt.want {
				t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestResultsTableWidths(t *testing.T) {
	tbl := NewResultsTable(NewDisplayContextWithWidth(100), PaperLayout)
	widths := tbl.calculateWidths()

	if widths[2] != ColYear.MinWidth || widths[3] != ColKey.MinWidth {
		t.Errorf("fixed columns should keep their width, got %v", widths)
	}
	if widths[0] <= widths[1] {
		t.Errorf("title column should be wider than creator, got %v", widths)
	}
}

func TestResultsTableRender(t *testing.T) {
	tbl := NewResultsTable(NewDisplayContextWithWidth(120), PaperLayout)
	if tbl.Render() != "" {
		t.Fatal("empty table should render nothing")
	}

	tbl.AddRow("Notes on the Analytical Engine", "Lovelace et al.", "1843", "LOVE1843")
	tbl.AddRow("Untitled", "Unknown Author", "Unknown", "ABCD1234", "ignored")
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d", tbl.Len())
	}

	out := tbl.Render()
	for _, want := range []string{"TITLE", "Notes on the Analytical Engine", "Lovelace et al.", "LOVE1843", "ABCD1234"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ignored") {
		t.Errorf("extra cells should be dropped:\n%s", out)
	}
}
