// Package tui provides the Bubble Tea analysis view of the qrare CLI.
//
// The TUI is opt-in (--tui), read-only, and renders the same
// assembly.Report as the table and json outputs.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette. Each color stands for one chunk or file condition.
var (
	primaryColor   = lipgloss.Color("#7C3AED")
	successColor   = lipgloss.Color("#10B981") // present, complete, verified
	warningColor   = lipgloss.Color("#F59E0B") // duplicated, conflicting, incomplete
	errorColor     = lipgloss.Color("#EF4444") // missing, failed
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#3B82F6")
	textColor      = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).MarginBottom(1)
	LabelStyle    = lipgloss.NewStyle().Foreground(mutedColor).Width(14)
	ValueStyle    = lipgloss.NewStyle().Foreground(textColor)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(highlightColor)
	HelpStyle     = lipgloss.NewStyle().Foreground(mutedColor).MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Width(16).
			Align(lipgloss.Center)
	StatValueStyle = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center)
	StatLabelStyle = lipgloss.NewStyle().Foreground(mutedColor).Align(lipgloss.Center)
)

// StateStyle returns the style for a file status or decode state.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "complete", "verified_ok":
		return SuccessStyle
	case "incomplete", "conflicting":
		return WarningStyle
	case "failed", "verified_failed":
		return ErrorStyle
	default:
		return ValueStyle
	}
}

// Coverage cells.
const (
	cellFound     = "■"
	cellDuplicate = "▣"
	cellMissing   = "□"
)

// maxCoverageCells caps the coverage strip; larger sets are summarized
// by FormatRanges only.
const maxCoverageCells = 64

// CoverageStrip draws one cell per chunk index: found, duplicated or
// missing. It returns "" for sets too large to draw.
func CoverageStrip(total int, found, duplicates []int) string {
	if total <= 0 || total > maxCoverageCells {
		return ""
	}
	present := make([]bool, total)
	dup := make([]bool, total)
	for _, i := range found {
		if i >= 0 && i < total {
			present[i] = true
		}
	}
	for _, i := range duplicates {
		if i >= 0 && i < total {
			dup[i] = true
		}
	}

	var b strings.Builder
	for i := range total {
		switch {
		case dup[i]:
			b.WriteString(WarningStyle.Render(cellDuplicate))
		case present[i]:
			b.WriteString(SuccessStyle.Render(cellFound))
		default:
			b.WriteString(ErrorStyle.Render(cellMissing))
		}
	}
	return b.String()
}
