// Package style centralizes the terminal presentation of stage progress.
package style

import (
	"github.com/pterm/pterm"
)

// Status of a pipeline stage as shown to the operator
type Status string

const (
	StatusRunning Status = "running" // Stage in progress
	StatusOK      Status = "ok"      // Stage completed
	StatusSkipped Status = "skipped" // Stage had nothing to do
	StatusWarn    Status = "warn"    // Stage degraded but the run continues
	StatusFailed  Status = "failed"  // Stage aborted the run
)

// StatusStyle returns the pterm style for a stage status
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusOK:
		return pterm.NewStyle(pterm.FgGreen)
	case StatusFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case StatusWarn:
		return pterm.NewStyle(pterm.FgYellow)
	case StatusSkipped:
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.FgCyan)
	}
}

// PrintStage renders one stage line: a styled status tag, the stage
// name, and an optional detail
func PrintStage(name string, status Status, detail string) {
	tag := StatusStyle(status).Sprintf("[%s]", status)
	line := tag + " " + name
	if detail != "" {
		line += ": " + detail
	}
	pterm.Println(line)
}

// PrintHeader renders a section header before a stage group
func PrintHeader(text string) {
	pterm.DefaultSection.Println(text)
}
