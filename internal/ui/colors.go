// internal/ui/colors.go

// Package ui holds terminal styling for CLI output.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"

	ansiCyan   = "\033[36m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiWhite  = "\033[97m"
	ansiRed    = "\033[31m"
)

// ANSI color and style codes for CLI output. They are empty strings while
// color is disabled, so callers can concatenate them unconditionally.
var (
	ColorReset string
	ColorBold  string
	ColorDim   string

	ColorCyan   string
	ColorGreen  string
	ColorYellow string
	ColorWhite  string
	ColorRed    string
)

func init() {
	SetEnabled(true)
}

// SetEnabled turns styling on or off
func SetEnabled(on bool) {
	if !on {
		ColorReset, ColorBold, ColorDim = "", "", ""
		ColorCyan, ColorGreen, ColorYellow, ColorWhite, ColorRed = "", "", "", "", ""
		return
	}
	ColorReset, ColorBold, ColorDim = ansiReset, ansiBold, ansiDim
	ColorCyan, ColorGreen, ColorYellow, ColorWhite, ColorRed = ansiCyan, ansiGreen, ansiYellow, ansiWhite, ansiRed
}

// Detect enables color only when f is a terminal and NO_COLOR is unset
func Detect(f *os.File) bool {
	on := os.Getenv("NO_COLOR") == "" &&
		(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	SetEnabled(on)
	return on
}

func Bold(s string) string {
	return ColorBold + s + ColorReset
}

func Success(s string) string {
	return ColorGreen + s + ColorReset
}

func Info(s string) string {
	return ColorDim + ColorYellow + s + ColorReset
}

func Error(s string) string {
	return ColorRed + s + ColorReset
}
