package colorformat

import (
	"fmt"
)

// ANSI foreground codes.
const (
	red     = "31"
	green   = "32"
	yellow  = "33"
	magenta = "35"
	cyan    = "36"
)

func colorFormat(color string, a ...any) string {
	return fmt.Sprintf("\x1b[%sm%s\x1b[0m", color, fmt.Sprint(a...))
}

// Red returns a in red. Used for command names and failures.
func Red(a ...any) string {
	return colorFormat(red, a...)
}

// Green returns a in green.
func Green(a ...any) string {
	return colorFormat(green, a...)
}

// Yellow returns a in yellow.
func Yellow(a ...any) string {
	return colorFormat(yellow, a...)
}

// Magenta returns a in magenta.
func Magenta(a ...any) string {
	return colorFormat(magenta, a...)
}

// Cyan returns a in cyan.
func Cyan(a ...any) string {
	return colorFormat(cyan, a...)
}
