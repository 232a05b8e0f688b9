package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const (
	statusBarHeight = 3
	helpBarHeight   = 3
)

func drawWatch(screen tcell.Screen, s *watchState, spinner rune) {
	screen.Clear()
	width, height := screen.Size()
	if width <= 0 || height <= 0 {
		screen.Show()
		return
	}

	contentTop := statusBarHeight
	contentBottom := height - helpBarHeight
	if contentBottom < contentTop+2 {
		// Too small for chrome: give everything to the content box.
		contentTop = 0
		contentBottom = height
	} else {
		drawStatusBar(screen, width, s, spinner)
		drawHelpBar(screen, width, height, s.colors)
	}

	drawConsensus(screen, width, contentTop, contentBottom, s)
	screen.Show()
}

func drawStatusBar(screen tcell.Screen, width int, s *watchState, spinner rune) {
	borderStyle := tcell.StyleDefault
	drawBox(screen, 0, 0, width, statusBarHeight, borderStyle)

	tail := ""
	if s.tailMode {
		tail = " [TAIL]"
	}
	keep := ""
	if s.keepOutput {
		keep = " [KEEP]"
	}
	title := fmt.Sprintf(" Consensus View (%d hosts)%s%s ", len(s.hosts), tail, keep)
	drawText(screen, 2, 0, width-4, title, borderStyle.Bold(true))

	// Blink the input indicator at a slower rate than the spinner.
	showInputIndicator := (s.spinnerFrame/5)%2 == 0

	x := 1
	for i, host := range s.hosts {
		if x >= width-1 {
			break
		}
		x = drawTextClipped(screen, x, 1, width-1, host+":", tcell.StyleDefault)
		status := s.statuses[host]
		if s.waitingForInput[host] {
			// Window number is i+1: window 0 is the watch view itself.
			indicator := fmt.Sprintf("⌨[%d]", i+1)
			color := s.colors.inputWaiting()
			if !showInputIndicator {
				color = s.colors.inputWaitingDim()
			}
			x = drawTextClipped(screen, x, 1, width-1, indicator, tcell.StyleDefault.Foreground(color))
		} else {
			symbol, color := statusGlyph(status, spinner, s.colors)
			x = drawTextClipped(screen, x, 1, width-1, symbol, tcell.StyleDefault.Foreground(color))
		}
		x = drawTextClipped(screen, x, 1, width-1, "  ", tcell.StyleDefault)
	}
}

func statusGlyph(status hostStatus, spinner rune, colors colorScheme) (string, tcell.Color) {
	switch status {
	case statusRunning:
		return string(spinner), colors.running()
	case statusSuccess:
		return "✓", colors.success()
	case statusFailed:
		return "✗", colors.failed()
	default:
		return "?", colors.pending()
	}
}

func drawConsensus(screen tcell.Screen, width, top, bottom int, s *watchState) {
	drawBox(screen, 0, top, width, bottom-top, tcell.StyleDefault)
	innerHeight := bottom - top - 2
	innerWidth := width - 2
	if innerHeight <= 0 || innerWidth <= 0 {
		return
	}

	offset := s.view.scrollOffset(innerHeight)
	rows := buildDisplayRows(&s.view, offset, innerHeight)
	for i, row := range rows {
		if i >= innerHeight {
			break
		}
		drawDisplayRow(screen, 1, top+1+i, innerWidth, row, s.colors)
	}
}

func drawDisplayRow(screen tcell.Screen, x, y, width int, row displayRow, colors colorScheme) {
	base := tcell.StyleDefault
	if row.selected {
		base = base.Background(colors.selectionBg())
	}

	switch row.kind {
	case rowIdentical:
		drawText(screen, x, y, width, row.text, base)
	case rowDiffMain:
		markerStyle := base.Foreground(colors.diffMarker())
		next := drawTextClipped(screen, x, y, x+width, row.marker+" ", markerStyle)
		drawText(screen, next, y, x+width-next, row.text, base)
	case rowVariant, rowMissing:
		textStyle := base.Foreground(colors.variantText())
		if row.kind == rowMissing {
			textStyle = base.Foreground(colors.missingText())
		}
		gutter := "  " + runewidth.FillLeft(row.gutter, row.gutterWidth) + " "
		next := drawTextClipped(screen, x, y, x+width, gutter, base.Foreground(colors.gutter()))
		next = drawTextClipped(screen, next, y, x+width, "│ ", base.Foreground(colors.missingText()))
		drawText(screen, next, y, x+width-next, row.text, textStyle)
	case rowPlaceholderNoHosts:
		drawText(screen, x, y, width, row.text, base.Foreground(colors.placeholder()))
	case rowPlaceholderNoOutput:
		drawText(screen, x, y, width, row.text, base.Foreground(colors.missingText()))
	}
}

func drawHelpBar(screen tcell.Screen, width, height int, colors colorScheme) {
	y0 := height - helpBarHeight
	drawBox(screen, 0, y0, width, helpBarHeight, tcell.StyleDefault)
	drawText(screen, 2, y0, 6, " Help ", tcell.StyleDefault)
	help := "↑↓:scroll  →←:expand/collapse  Tab:next-diff  t:tail  e/c:all  K:keep  q:quit"
	drawText(screen, 1, y0+1, width-2, help, tcell.StyleDefault)
}

func drawBox(screen tcell.Screen, x0, y0, w, h int, style tcell.Style) {
	if w <= 1 || h <= 1 {
		return
	}
	x1 := x0 + w
	y1 := y0 + h
	for x := x0; x < x1; x++ {
		screen.SetContent(x, y0, '─', nil, style)
		screen.SetContent(x, y1-1, '─', nil, style)
	}
	for y := y0; y < y1; y++ {
		screen.SetContent(x0, y, '│', nil, style)
		screen.SetContent(x1-1, y, '│', nil, style)
	}
	screen.SetContent(x0, y0, '┌', nil, style)
	screen.SetContent(x1-1, y0, '┐', nil, style)
	screen.SetContent(x0, y1-1, '└', nil, style)
	screen.SetContent(x1-1, y1-1, '┘', nil, style)
}

// drawText writes text starting at x, padding the remaining width with
// spaces in the given style.
func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	if width <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	for i := 0; i < width; i++ {
		ch := ' '
		if i < len(runes) {
			ch = runes[i]
		}
		screen.SetContent(x+i, y, ch, nil, style)
	}
}

// drawTextClipped writes text up to xMax and returns the next column.
func drawTextClipped(screen tcell.Screen, x, y, xMax int, text string, style tcell.Style) int {
	for _, r := range text {
		if x >= xMax {
			return x
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
