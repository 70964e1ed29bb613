package shell

import (
	"fmt"

	"github.com/fatih/color"
)

// ColorPrinter decorates shell output when colors are enabled.
type ColorPrinter struct {
	enabled bool
	red     *color.Color
}

// NewColorPrinter creates a printer, colors are only emitted if enabled is
// true regardless of what the output is connected to.
func NewColorPrinter(enabled bool) *ColorPrinter {
	red := color.New(color.FgRed, color.Bold)
	if enabled {
		red.EnableColor()
	} else {
		red.DisableColor()
	}

	return &ColorPrinter{enabled: enabled, red: red}
}

// ShouldColor reports whether output is decorated.
func (c *ColorPrinter) ShouldColor() bool {
	return c != nil && c.enabled
}

// Error renders an error message prefix.
func (c *ColorPrinter) Error(s string) string {
	if !c.ShouldColor() {
		return s
	}
	return c.red.Sprint(s)
}

// Sprintf formats with the given color if colors are enabled.
func (c *ColorPrinter) Sprintf(clr *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		return clr.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}
