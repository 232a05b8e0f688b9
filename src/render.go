package main

import "fmt"

// contentTruncateWidth bounds variant content in the breakdown rows.
const contentTruncateWidth = 60

type rowKind int

const (
	rowIdentical rowKind = iota
	rowDiffMain
	rowVariant
	rowMissing
	rowPlaceholderNoHosts
	rowPlaceholderNoOutput
)

// displayRow is one renderable line of the consensus view: plain text plus
// the semantic tags the drawing layer needs. Pixel concerns (colors, cell
// widths) stay out of here.
type displayRow struct {
	kind        rowKind
	text        string
	marker      string // diff main rows: ">[N]" or "v[N]"
	gutter      string // variant rows: host column text
	gutterWidth int    // shared column width for this line's gutters
	selected    bool
}

// buildDisplayRows flattens the consensus view into the virtual rows that
// fall inside [scrollOffset, scrollOffset+viewportHeight). Pure: no session
// state is touched.
func buildDisplayRows(v *consensusView, scrollOffset, viewportHeight int) []displayRow {
	var rows []displayRow
	visible := func(row int) bool {
		return row >= scrollOffset && row < scrollOffset+viewportHeight
	}

	currentRow := 0
	for i := range v.lines {
		line := &v.lines[i]
		onLine := i == v.sel.lineIndex

		if line.identical {
			if visible(currentRow) {
				rows = append(rows, displayRow{
					kind:     rowIdentical,
					text:     line.content,
					selected: onLine,
				})
			}
			currentRow++
			continue
		}

		marker := ">"
		if line.expanded {
			marker = "v"
		}
		if visible(currentRow) {
			rows = append(rows, displayRow{
				kind:     rowDiffMain,
				text:     line.content,
				marker:   fmt.Sprintf("%s[%d]", marker, len(line.variants)),
				selected: onLine && v.sel.variantIndex < 0,
			})
		}
		currentRow++

		if !line.expanded {
			continue
		}

		width := maxGutterWidth(line.variants, line.missing, line.expandedHosts)
		for vi, g := range line.variants {
			if visible(currentRow) {
				rows = append(rows, displayRow{
					kind:        rowVariant,
					text:        truncate(g.content, contentTruncateWidth),
					gutter:      formatGutter(g.hosts, line.expandedHosts[g.content]),
					gutterWidth: width,
					selected:    onLine && v.sel.variantIndex == vi,
				})
			}
			currentRow++
		}
		if len(line.missing) > 0 {
			if visible(currentRow) {
				rows = append(rows, displayRow{
					kind:        rowMissing,
					text:        missingKey,
					gutter:      formatGutter(line.missing, line.expandedHosts[missingKey]),
					gutterWidth: width,
					selected:    onLine && v.sel.variantIndex == len(line.variants),
				})
			}
			currentRow++
		}
	}

	if len(rows) == 0 {
		if !v.hasHosts {
			rows = append(rows, displayRow{kind: rowPlaceholderNoHosts, text: "No host directories found..."})
		} else {
			rows = append(rows, displayRow{kind: rowPlaceholderNoOutput, text: "(no output yet)"})
		}
	}
	return rows
}
