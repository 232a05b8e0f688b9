package main

// The consensus view is a two-level hierarchy: each line is one row, and an
// expanded diff line additionally contributes one row per variant plus one
// for the missing pseudo-variant. Selection moves over these virtual rows:
//
//	identical line                      lineIndex=0, variantIndex=-1
//	>[2] consensus output               lineIndex=1, variantIndex=-1 (collapsed)
//	v[2] consensus output               lineIndex=2, variantIndex=-1 (expanded, main)
//	      host1 | variant A             lineIndex=2, variantIndex=0
//	      host2 | variant B             lineIndex=2, variantIndex=1
//	       [2]  | <missing>             lineIndex=2, variantIndex=2
//	another line                        lineIndex=3, variantIndex=-1

func (v *consensusView) updateConsensus(lines []consensusLine, hasHosts bool) {
	v.lines = lines
	v.hasHosts = hasHosts
	v.clampSelection()
}

// clampSelection keeps the selection addressing a row that still exists:
// the line index is pulled back into range, and the variant index is reset
// whenever its line stopped being an expanded diff.
func (v *consensusView) clampSelection() {
	maxLine := len(v.lines) - 1
	if maxLine < 0 {
		maxLine = 0
	}
	if v.sel.lineIndex > maxLine {
		v.sel.lineIndex = maxLine
	}
	if v.sel.variantIndex >= 0 {
		line := v.currentLine()
		if line == nil || line.identical || !line.expanded ||
			v.sel.variantIndex >= line.virtualChildren() {
			v.sel.variantIndex = -1
		}
	}
}

func (v *consensusView) currentLine() *consensusLine {
	if v.sel.lineIndex < 0 || v.sel.lineIndex >= len(v.lines) {
		return nil
	}
	return &v.lines[v.sel.lineIndex]
}

// scrollToEnd selects the last line; if that line is an expanded diff, its
// last virtual row.
func (v *consensusView) scrollToEnd() {
	if len(v.lines) == 0 {
		return
	}
	v.sel.lineIndex = len(v.lines) - 1
	v.sel.variantIndex = -1
	if line := v.currentLine(); !line.identical && line.expanded {
		if n := line.virtualChildren(); n > 0 {
			v.sel.variantIndex = n - 1
		}
	}
}

func (v *consensusView) scrollUp() {
	// Inside a variant list: retreat one row, landing on the main line
	// from variant 0.
	if v.sel.variantIndex >= 0 {
		v.sel.variantIndex--
		return
	}

	if v.sel.lineIndex > 0 {
		v.sel.lineIndex--
		if line := v.currentLine(); !line.identical && line.expanded {
			if n := line.virtualChildren(); n > 0 {
				v.sel.variantIndex = n - 1
			}
		}
	}
}

func (v *consensusView) scrollDown() {
	if line := v.currentLine(); line != nil && !line.identical && line.expanded {
		n := line.virtualChildren()
		if v.sel.variantIndex >= 0 {
			if v.sel.variantIndex+1 < n {
				v.sel.variantIndex++
				return
			}
			// Past the last variant: exit to the next line.
			v.sel.variantIndex = -1
			if v.sel.lineIndex < len(v.lines)-1 {
				v.sel.lineIndex++
			}
			return
		}
		if n > 0 {
			v.sel.variantIndex = 0
			return
		}
	}

	v.sel.variantIndex = -1
	if v.sel.lineIndex < len(v.lines)-1 {
		v.sel.lineIndex++
	}
}

func (v *consensusView) toggleExpand() {
	if line := v.currentLine(); line != nil && !line.identical {
		line.expanded = !line.expanded
		if !line.expanded {
			v.sel.variantIndex = -1
		}
	}
}

// expandSelected is the "enter" gesture: a collapsed diff line expands to
// show its variants; a selected variant with more than one host expands its
// host list from [N] to the full comma list.
func (v *consensusView) expandSelected() {
	line := v.currentLine()
	if line == nil || line.identical {
		return
	}
	if !line.expanded {
		line.expanded = true
		return
	}
	vi := v.sel.variantIndex
	if vi < 0 {
		return
	}
	if vi < len(line.variants) {
		if g := line.variants[vi]; len(g.hosts) > 1 {
			line.expandedHosts[g.content] = true
		}
	} else if vi == len(line.variants) && len(line.missing) > 1 {
		line.expandedHosts[missingKey] = true
	}
}

// collapseSelected is the inverse gesture: an expanded host list collapses
// first; otherwise the cursor retreats toward the main line; on the main
// line the whole diff collapses and variant-level expansion is cleared.
func (v *consensusView) collapseSelected() {
	line := v.currentLine()
	if line == nil || line.identical {
		return
	}
	if vi := v.sel.variantIndex; vi >= 0 {
		key := missingKey
		if vi < len(line.variants) {
			key = line.variants[vi].content
		}
		if line.expandedHosts[key] {
			delete(line.expandedHosts, key)
			return
		}
		v.sel.variantIndex = vi - 1
		return
	}
	if line.expanded {
		line.expanded = false
		clear(line.expandedHosts)
	}
}

func (v *consensusView) expandAll() {
	for i := range v.lines {
		if !v.lines[i].identical {
			v.lines[i].expanded = true
		}
	}
}

func (v *consensusView) collapseAll() {
	for i := range v.lines {
		if !v.lines[i].identical {
			v.lines[i].expanded = false
		}
	}
	v.sel.variantIndex = -1
}

// jumpToNextDiff moves to the next diff line after the cursor, wrapping to
// the start when none follows. No-op when no diff lines exist.
func (v *consensusView) jumpToNextDiff() {
	start := v.sel.lineIndex + 1
	for i := start; i < len(v.lines); i++ {
		if !v.lines[i].identical {
			v.sel = selection{lineIndex: i, variantIndex: -1}
			return
		}
	}
	if start > len(v.lines) {
		start = len(v.lines)
	}
	for i := 0; i < start; i++ {
		if !v.lines[i].identical {
			v.sel = selection{lineIndex: i, variantIndex: -1}
			return
		}
	}
}

// scrollOffset returns the minimal offset that keeps the selected virtual
// row inside a viewport of the given height.
func (v *consensusView) scrollOffset(viewportHeight int) int {
	row := v.selectedDisplayRow()
	if viewportHeight > 0 && row >= viewportHeight {
		return row - viewportHeight + 1
	}
	return 0
}

func (v *consensusView) selectedDisplayRow() int {
	row := 0
	for i := range v.lines {
		if i == v.sel.lineIndex {
			if v.sel.variantIndex >= 0 {
				row += 1 + v.sel.variantIndex
			}
			break
		}
		row += v.lines[i].virtualRows()
	}
	return row
}
