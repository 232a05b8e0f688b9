package main

import (
	"os"

	"github.com/gdamore/tcell/v2"
)

// colorScheme gates every color decision on the NO_COLOR convention
// (https://no-color.org/): set to any value, even empty, colors are off.
type colorScheme struct {
	enabled bool
}

func colorSchemeFromEnv() colorScheme {
	_, noColor := os.LookupEnv("NO_COLOR")
	return colorScheme{enabled: !noColor}
}

func (c colorScheme) pick(color tcell.Color) tcell.Color {
	if c.enabled {
		return color
	}
	return tcell.ColorDefault
}

func (c colorScheme) running() tcell.Color         { return c.pick(tcell.ColorYellow) }
func (c colorScheme) success() tcell.Color         { return c.pick(tcell.ColorGreen) }
func (c colorScheme) failed() tcell.Color          { return c.pick(tcell.ColorRed) }
func (c colorScheme) pending() tcell.Color         { return c.pick(tcell.ColorGray) }
func (c colorScheme) inputWaiting() tcell.Color    { return c.pick(tcell.ColorFuchsia) }
func (c colorScheme) inputWaitingDim() tcell.Color { return c.pick(tcell.NewRGBColor(139, 69, 139)) }
func (c colorScheme) diffMarker() tcell.Color      { return c.pick(tcell.ColorYellow) }
func (c colorScheme) gutter() tcell.Color          { return c.pick(tcell.ColorAqua) }
func (c colorScheme) variantText() tcell.Color     { return c.pick(tcell.ColorSilver) }
func (c colorScheme) missingText() tcell.Color     { return c.pick(tcell.ColorGray) }
func (c colorScheme) selectionBg() tcell.Color     { return c.pick(tcell.ColorDarkGray) }
func (c colorScheme) placeholder() tcell.Color     { return c.pick(tcell.ColorYellow) }

// ANSI wrappers for the text-mode fallback.

func (c colorScheme) ansi(code, s string) string {
	if !c.enabled {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func (c colorScheme) ansiYellow(s string) string { return c.ansi("33", s) }
func (c colorScheme) ansiGreen(s string) string  { return c.ansi("32", s) }
func (c colorScheme) ansiRed(s string) string    { return c.ansi("31", s) }
func (c colorScheme) ansiCyan(s string) string   { return c.ansi("36", s) }
func (c colorScheme) ansiGray(s string) string   { return c.ansi("90", s) }
