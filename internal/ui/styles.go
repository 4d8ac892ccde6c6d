package ui

import (
	"fmt"

	"github.com/alfredjeanlab/casos/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorMuted  = 245 // medium gray
	colorOK     = 114 // green
	colorWarn   = 179 // amber
	colorError  = 203 // red
)

var noColor bool

func paint(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return paint(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return paint(colorMuted, s) }

// RenderCommand returns s in the command color, used for command names in help.
func RenderCommand(s string) string { return paint(colorOK, s) }

// RenderError returns s in red.
func RenderError(s string) string { return paint(colorError, s) }

// RenderStatus colors a case status: closed and resolved cases green,
// cases under review amber, pending cases blue.
func RenderStatus(s model.CaseStatus) string {
	switch s {
	case model.StatusCerrado, model.StatusResuelto:
		return paint(colorOK, s.String())
	case model.StatusEnRevision:
		return paint(colorWarn, s.String())
	case model.StatusPendiente:
		return paint(colorAccent, s.String())
	}
	return s.String()
}

// RenderChecklist colors a checklist verdict.
func RenderChecklist(s model.ChecklistStatus) string {
	switch s {
	case model.ChecklistCumple:
		return paint(colorOK, s.String())
	case model.ChecklistNoCumple:
		return paint(colorError, s.String())
	case model.ChecklistRevisionManual:
		return paint(colorWarn, s.String())
	}
	return s.String()
}

// RenderMode highlights any mode other than the default, so that working
// against test data is hard to miss.
func RenderMode(mode string) string {
	if mode == "" || mode == model.DefaultMode.String() {
		return RenderMuted(model.DefaultMode.String())
	}
	return paint(colorWarn, mode)
}

// Check renders a validated flag as a check mark or a dot.
func Check(validated bool) string {
	if validated {
		return paint(colorOK, "✓")
	}
	return RenderMuted("·")
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}

// SetColor enables or disables color output globally.
func SetColor(enabled bool) {
	noColor = !enabled
}
