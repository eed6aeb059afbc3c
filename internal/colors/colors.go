// Package colors provides terminal color support for commitscope output.
//
// Color is on when stdout is a terminal, unless NO_COLOR is set or TERM is
// "dumb". FORCE_COLOR turns it on regardless.
package colors

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorBold  = "\033[1m"
	ColorDim   = "\033[2m"
	ColorGray  = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
)

var colorEnabled = shouldUseColor(os.Getenv, term.IsTerminal(int(os.Stdout.Fd())))

func shouldUseColor(getenv func(string) string, isTTY bool) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	if strings.ToLower(getenv("TERM")) == "dumb" {
		return false
	}
	return isTTY
}

// SetColorEnabled allows manual control of color output
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// IsColorEnabled returns whether colors are currently enabled
func IsColorEnabled() bool {
	return colorEnabled
}

func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + ColorReset
}

func Red(text string) string     { return colorize(text, BrightRed) }
func Green(text string) string   { return colorize(text, BrightGreen) }
func Blue(text string) string    { return colorize(text, BrightBlue) }
func Yellow(text string) string  { return colorize(text, BrightYellow) }
func Cyan(text string) string    { return colorize(text, BrightCyan) }
func Magenta(text string) string { return colorize(text, BrightMagenta) }
func Gray(text string) string    { return colorize(text, ColorGray) }
func Bold(text string) string    { return colorize(text, ColorBold) }
func Dim(text string) string     { return colorize(text, ColorDim) }

// Change colors a diff line by the name of its change kind.
func Change(kind, text string) string {
	switch kind {
	case "added":
		return Green(text)
	case "removed":
		return Red(text)
	case "reparented", "reordered":
		return Yellow(text)
	case "renamed":
		return Magenta(text)
	case "duration":
		return Blue(text)
	default:
		return text
	}
}

// Section headers with colors
func SectionHeader(text string) string {
	return Bold(text)
}

func ErrorText(text string) string {
	return Red(text)
}

func SuccessText(text string) string {
	return Green(text)
}

func InfoText(text string) string {
	return Cyan(text)
}

func WarningText(text string) string {
	return Yellow(text)
}
