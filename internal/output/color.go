package output

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorScheme provides color functions for status lines and tables
type ColorScheme struct {
	// Stage colors stage names
	Stage func(format string, a ...interface{}) string

	// Info colors informational status tags
	Info func(format string, a ...interface{}) string

	// Success colors success status
	Success func(format string, a ...interface{}) string

	// Error colors error messages
	Error func(format string, a ...interface{}) string

	// Warning colors warning messages and skipped stages
	Warning func(format string, a ...interface{}) string

	// Header colors table headers
	Header func(format string, a ...interface{}) string

	// Duration colors duration values
	Duration func(format string, a ...interface{}) string

	// Disabled indicates if colors are disabled
	Disabled bool
}

// NewColorScheme creates a new color scheme.
// Colors are disabled for non-TTY writers or when noColor is true.
func NewColorScheme(w io.Writer, noColor bool) *ColorScheme {
	if noColor || !IsTTY(w) {
		plain := color.New()
		plain.DisableColor()
		return &ColorScheme{
			Stage:    plain.Sprintf,
			Info:     plain.Sprintf,
			Success:  plain.Sprintf,
			Error:    plain.Sprintf,
			Warning:  plain.Sprintf,
			Header:   plain.Sprintf,
			Duration: plain.Sprintf,
			Disabled: true,
		}
	}

	return &ColorScheme{
		Stage:    enabled(color.FgCyan, color.Bold).Sprintf,
		Info:     enabled(color.FgBlue).Sprintf,
		Success:  enabled(color.FgGreen).Sprintf,
		Error:    enabled(color.FgRed, color.Bold).Sprintf,
		Warning:  enabled(color.FgYellow).Sprintf,
		Header:   enabled(color.FgWhite, color.Bold).Sprintf,
		Duration: enabled(color.FgBlue).Sprintf,
		Disabled: false,
	}
}

// enabled forces color on; the TTY decision has already been made per writer
// and must not depend on color.NoColor, which only inspects stdout.
func enabled(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	c.EnableColor()
	return c
}

// IsTTY checks if the writer is a terminal
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// StatusColor returns an appropriate color function based on error status
func (cs *ColorScheme) StatusColor(hasError bool) func(format string, a ...interface{}) string {
	if hasError {
		return cs.Error
	}
	return cs.Success
}
