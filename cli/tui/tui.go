package tui

import (
	"fmt"
	"slices"
)

// View types.
const (
	ViewAnalyzeReport = "analyze_report"
)

// runners maps each view type to the program that displays it.
var runners = map[string]func(viewType string, data any) error{
	ViewAnalyzeReport: RunAnalyzeTUI,
}

// Run starts the TUI registered for viewType.
func Run(viewType string, data any) error {
	run, ok := runners[viewType]
	if !ok {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}
	return run(viewType, data)
}

// IsTUISupported reports whether viewType has a TUI.
func IsTUISupported(viewType string) bool {
	_, ok := runners[viewType]
	return ok
}

// SupportedTUIViews returns the view types that have a TUI, sorted.
func SupportedTUIViews() []string {
	views := make([]string, 0, len(runners))
	for v := range runners {
		views = append(views, v)
	}
	slices.Sort(views)
	return views
}
