package ui

import (
	"fmt"

	"github.com/alfredjeanlab/records/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent = 74  // blue
	colorCmd    = 250 // light gray
	colorMuted  = 245 // medium gray
	colorGood   = 114 // green
	colorWarn   = 215 // orange
)

var noColor bool

func render(code int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

// RenderWarn returns s in the warning (orange) color.
func RenderWarn(s string) string { return render(colorWarn, s) }

// RenderStatus colors a record status by its observed meaning. Unknown
// statuses are returned unstyled.
func RenderStatus(status string) string {
	switch status {
	case model.StatusActive:
		return render(colorGood, status)
	case model.StatusOnHold:
		return render(colorWarn, status)
	case model.StatusInactive:
		return render(colorMuted, status)
	default:
		return status
	}
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
