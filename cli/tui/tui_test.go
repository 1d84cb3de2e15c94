package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/qrare/assembly"
)

func TestIsTUISupported(t *testing.T) {
	tests := []struct {
		viewType string
		want     bool
	}{
		{ViewAnalyzeReport, true},
		{"encode", false},
		{"decode", false},
		{"estimate", false},
		{"version", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.viewType, func(t *testing.T) {
			if got := IsTUISupported(tt.viewType); got != tt.want {
				t.Errorf("IsTUISupported(%q) = %v, want %v", tt.viewType, got, tt.want)
			}
		})
	}
}

func TestSupportedTUIViews(t *testing.T) {
	for _, v := range SupportedTUIViews() {
		if !IsTUISupported(v) {
			t.Errorf("SupportedTUIViews() returned %q but IsTUISupported returns false", v)
		}
	}
}

func TestRun_UnsupportedViewType(t *testing.T) {
	if err := Run("decode", nil); err == nil {
		t.Error("Expected error for unsupported view type")
	}
}

func testReport() assembly.Report {
	return assembly.Report{
		TotalArtifacts: 6,
		Readable:       5,
		Failed:         1,
		UniqueFiles:    2,
		Files: []assembly.FileReport{
			{FileName: "a.bin", Total: 4, Found: []int{0, 1, 3}, Missing: []int{2}},
			{FileName: "b.bin", Total: 2, Found: []int{0, 1}, Complete: true},
		},
		Errors: []assembly.ArtifactError{{Artifact: "smudged.png", Kind: "carrier_read"}},
	}
}

func TestAnalyzeModel_View(t *testing.T) {
	out := RenderAnalyzeStatic(ViewAnalyzeReport, testReport())
	for _, want := range []string{"Artifact Analysis", "a.bin", "b.bin", "incomplete", "complete", "smudged.png", "0-1,3"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeModel_Navigation(t *testing.T) {
	r := testReport()
	var m tea.Model = NewAnalyzeModel(ViewAnalyzeReport, &r)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(AnalyzeModel).cursor; got != 1 {
		t.Fatalf("cursor after down = %d, want 1", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := m.(AnalyzeModel).cursor; got != 1 {
		t.Errorf("cursor must stop at the last file, got %d", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(AnalyzeModel).cursor; got != 0 {
		t.Errorf("cursor must stop at the first file, got %d", got)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil || m.View() != "" {
		t.Error("q should quit and clear the view")
	}
}

func TestAnalyzeModel_InvalidData(t *testing.T) {
	m := NewAnalyzeModel(ViewAnalyzeReport, "nope")
	if !strings.Contains(m.View(), "Invalid data type") {
		t.Errorf("View() = %q", m.View())
	}
}

func TestFileStatus(t *testing.T) {
	if FileStatus(assembly.FileReport{Complete: true}) != "complete" ||
		FileStatus(assembly.FileReport{Conflicts: []assembly.Conflict{{}}}) != "conflicting" ||
		FileStatus(assembly.FileReport{}) != "incomplete" {
		t.Error("unexpected file status")
	}
}

func TestCoverageStrip(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		found      []int
		duplicates []int
		foundCells, dup, missing int
	}{
		{"complete", 3, []int{0, 1, 2}, nil, 3, 0, 0},
		{"gap", 4, []int{0, 1, 3}, nil, 3, 0, 1},
		{"duplicate", 2, []int{0, 1}, []int{1}, 1, 1, 0},
		{"out of range ignored", 2, []int{0, 5}, []int{-1}, 1, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strip := CoverageStrip(tt.total, tt.found, tt.duplicates)
			if got := strings.Count(strip, cellFound); got != tt.foundCells {
				t.Errorf("found cells = %d, want %d", got, tt.foundCells)
			}
			if got := strings.Count(strip, cellDuplicate); got != tt.dup {
				t.Errorf("duplicate cells = %d, want %d", got, tt.dup)
			}
			if got := strings.Count(strip, cellMissing); got != tt.missing {
				t.Errorf("missing cells = %d, want %d", got, tt.missing)
			}
		})
	}

	if CoverageStrip(0, nil, nil) != "" || CoverageStrip(maxCoverageCells+1, nil, nil) != "" {
		t.Error("empty and oversized sets should not draw a strip")
	}
}
