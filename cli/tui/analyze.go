package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/qrare/assembly"
	"github.com/pithecene-io/qrare/chunk"
)

// AnalyzeModel is a Bubble Tea model for an analysis report. It lists
// the detected files and shows the chunk coverage of the selected one.
type AnalyzeModel struct {
	viewType string
	report   *assembly.Report
	cursor   int
	width    int
	height   int
	quitting bool
}

// NewAnalyzeModel creates a new analyze model. data must be an
// assembly.Report or *assembly.Report.
func NewAnalyzeModel(viewType string, data any) AnalyzeModel {
	m := AnalyzeModel{viewType: viewType}
	switch r := data.(type) {
	case *assembly.Report:
		m.report = r
	case assembly.Report:
		m.report = &r
	}
	return m
}

// Init implements tea.Model.
func (m AnalyzeModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m AnalyzeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.report != nil && m.cursor < len(m.report.Files)-1 {
				m.cursor++
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m AnalyzeModel) View() string {
	if m.quitting {
		return ""
	}
	if m.report == nil {
		return "Invalid data type for " + m.viewType
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Artifact Analysis"))
	b.WriteString("\n\n")

	r := m.report
	boxes := []string{
		renderStatBox("Artifacts", r.TotalArtifacts, highlightColor),
		renderStatBox("Readable", r.Readable, successColor),
		renderStatBox("Failed", r.Failed, errorColor),
		renderStatBox("Files", r.UniqueFiles, primaryColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	if len(r.Files) == 0 {
		b.WriteString(WarningStyle.Render("No readable transport units found"))
	} else {
		b.WriteString(m.renderFileList())
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(renderFileDetail(r.Files[m.cursor])))
	}

	if len(r.Errors) > 0 {
		b.WriteString("\n\n")
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Unreadable artifacts (%d)", len(r.Errors))))
		for _, e := range r.Errors {
			b.WriteString("\n  ")
			b.WriteString(fmt.Sprintf("%s  %s", e.Artifact, LabelStyle.Render(e.Kind)))
		}
	}

	help := HelpStyle.Render("↑/↓ select file • q quit")
	return b.String() + "\n" + help
}

func (m AnalyzeModel) renderFileList() string {
	var b strings.Builder
	for i, f := range m.report.Files {
		status := FileStatus(f)
		line := fmt.Sprintf("%s  %d/%d  %s",
			f.FileName, len(f.Found), f.Total, StateStyle(status).Render(status))
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderFileDetail(f assembly.FileReport) string {
	rows := [][2]string{
		{"File", f.FileName},
		{"Content hash", f.ContentHash},
		{"Compression", f.Transform},
		{"Digest", f.Digest},
		{"Chunks", fmt.Sprintf("%d", f.Total)},
		{"Found", chunk.FormatRanges(f.Found)},
		{"Missing", chunk.FormatRanges(f.Missing)},
		{"Duplicates", chunk.FormatRanges(f.Duplicates)},
		{"Conflicts", fmt.Sprintf("%d", len(f.Conflicts))},
	}
	lines := make([]string, 0, len(rows)+len(f.Conflicts))
	for _, row := range rows {
		lines = append(lines, LabelStyle.Render(row[0]+":")+" "+ValueStyle.Render(row[1]))
	}
	if strip := CoverageStrip(f.Total, f.Found, f.Duplicates); strip != "" {
		lines = append(lines, LabelStyle.Render("Coverage:")+" "+strip)
	}
	for _, c := range f.Conflicts {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("  %s: %s is %q, expected %q",
			c.Artifact, c.Field, c.Actual, c.Expected)))
	}
	return strings.Join(lines, "\n")
}

// FileStatus summarizes a file report as complete, conflicting or
// incomplete.
func FileStatus(f assembly.FileReport) string {
	switch {
	case f.Complete:
		return "complete"
	case len(f.Conflicts) > 0:
		return "conflicting"
	default:
		return "incomplete"
	}
}

func renderStatBox(label string, value int, color lipgloss.Color) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value)),
		StatLabelStyle.Render(label))
	return StatBoxStyle.BorderForeground(color).Render(content)
}

// RunAnalyzeTUI runs the analyze TUI.
func RunAnalyzeTUI(viewType string, data any) error {
	model := NewAnalyzeModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderAnalyzeStatic renders the report without full TUI (for fallback).
func RenderAnalyzeStatic(viewType string, data any) string {
	model := NewAnalyzeModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}

type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous file"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next file"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
