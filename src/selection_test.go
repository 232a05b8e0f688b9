package main

import "testing"

func differsLine(expanded bool, missing []string, variants ...variantGroup) consensusLine {
	return consensusLine{
		variants:      variants,
		missing:       missing,
		content:       variants[0].content,
		expanded:      expanded,
		expandedHosts: map[string]bool{},
	}
}

func identicalLine(content string) consensusLine {
	return consensusLine{identical: true, content: content}
}

func TestScrollPathThroughExpandedDiff(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(true, nil,
			variantGroup{content: "a", hosts: []string{"h1"}},
			variantGroup{content: "b", hosts: []string{"h2"}},
		),
		identicalLine("tail"),
	}, sel: selection{variantIndex: -1}}

	// main -> variant0 -> variant1 -> next line
	steps := []selection{
		{lineIndex: 0, variantIndex: 0},
		{lineIndex: 0, variantIndex: 1},
		{lineIndex: 1, variantIndex: -1},
		{lineIndex: 1, variantIndex: -1}, // bottom: no-op
	}
	for i, want := range steps {
		v.scrollDown()
		if v.sel != want {
			t.Fatalf("down step %d: sel = %+v, want %+v", i, v.sel, want)
		}
	}

	back := []selection{
		{lineIndex: 0, variantIndex: 1},
		{lineIndex: 0, variantIndex: 0},
		{lineIndex: 0, variantIndex: -1},
		{lineIndex: 0, variantIndex: -1}, // top: no-op
	}
	for i, want := range back {
		v.scrollUp()
		if v.sel != want {
			t.Fatalf("up step %d: sel = %+v, want %+v", i, v.sel, want)
		}
	}
}

func TestScrollDownCollapsedDiff(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(false, nil, variantGroup{content: "a", hosts: []string{"h1"}}),
		identicalLine("next"),
	}, sel: selection{variantIndex: -1}}
	v.scrollDown()
	if v.sel.lineIndex != 1 || v.sel.variantIndex != -1 {
		t.Fatalf("sel = %+v", v.sel)
	}
}

func TestScrollUpIntoExpandedDiffSelectsLastVariant(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(true, []string{"h3"},
			variantGroup{content: "a", hosts: []string{"h1"}},
			variantGroup{content: "b", hosts: []string{"h2"}},
		),
		identicalLine("tail"),
	}, sel: selection{lineIndex: 1, variantIndex: -1}}
	v.scrollUp()
	// 2 variants + missing pseudo-variant: last child index is 2.
	if v.sel.lineIndex != 0 || v.sel.variantIndex != 2 {
		t.Fatalf("sel = %+v", v.sel)
	}
}

func TestJumpToNextDiffWraps(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		identicalLine("0"),
		differsLine(false, nil, variantGroup{content: "a", hosts: []string{"h1"}}),
		identicalLine("2"),
		identicalLine("3"),
		differsLine(false, nil, variantGroup{content: "b", hosts: []string{"h1"}}),
	}, sel: selection{lineIndex: 4, variantIndex: -1}}

	v.jumpToNextDiff()
	if v.sel.lineIndex != 1 {
		t.Fatalf("wrap: lineIndex = %d, want 1", v.sel.lineIndex)
	}
	v.jumpToNextDiff()
	if v.sel.lineIndex != 4 {
		t.Fatalf("forward: lineIndex = %d, want 4", v.sel.lineIndex)
	}
}

func TestJumpToNextDiffNoDiffs(t *testing.T) {
	v := &consensusView{lines: []consensusLine{identicalLine("a"), identicalLine("b")},
		sel: selection{variantIndex: -1}}
	v.jumpToNextDiff()
	if v.sel.lineIndex != 0 {
		t.Fatalf("lineIndex = %d, want unchanged 0", v.sel.lineIndex)
	}
}

func TestExpandSelected(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(false, []string{"m1", "m2"},
			variantGroup{content: "a", hosts: []string{"h1", "h2"}},
			variantGroup{content: "b", hosts: []string{"h3"}},
		),
	}, sel: selection{variantIndex: -1}}

	// First expand shows variants without moving the cursor.
	v.expandSelected()
	line := &v.lines[0]
	if !line.expanded || v.sel.variantIndex != -1 {
		t.Fatalf("expanded = %v, sel = %+v", line.expanded, v.sel)
	}

	// On a multi-host variant, expand reveals the host list.
	v.sel.variantIndex = 0
	v.expandSelected()
	if !line.expandedHosts["a"] {
		t.Fatalf("variant a host list not expanded")
	}

	// Single-host variant: no-op.
	v.sel.variantIndex = 1
	v.expandSelected()
	if line.expandedHosts["b"] {
		t.Fatalf("single-host variant should not expand")
	}

	// Missing pseudo-variant with >1 hosts expands too.
	v.sel.variantIndex = 2
	v.expandSelected()
	if !line.expandedHosts[missingKey] {
		t.Fatalf("missing host list not expanded")
	}
}

func TestExpandSelectedIdenticalNoop(t *testing.T) {
	v := &consensusView{lines: []consensusLine{identicalLine("x")}, sel: selection{variantIndex: -1}}
	v.expandSelected()
	if v.lines[0].expanded {
		t.Fatalf("identical line must not expand")
	}
}

func TestCollapseSelectedOrder(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(true, nil,
			variantGroup{content: "a", hosts: []string{"h1", "h2"}},
			variantGroup{content: "b", hosts: []string{"h3"}},
		),
	}, sel: selection{variantIndex: 0}}
	line := &v.lines[0]
	line.expandedHosts["a"] = true

	// An expanded host list collapses first; the cursor stays.
	v.collapseSelected()
	if line.expandedHosts["a"] || v.sel.variantIndex != 0 {
		t.Fatalf("expandedHosts = %v, sel = %+v", line.expandedHosts, v.sel)
	}

	// Next collapse retreats from variant 0 to the main line.
	v.collapseSelected()
	if v.sel.variantIndex != -1 {
		t.Fatalf("sel = %+v", v.sel)
	}

	// On the main line, collapse folds the whole diff and clears
	// variant-level expansion.
	line.expandedHosts["b"] = true
	v.collapseSelected()
	if line.expanded || len(line.expandedHosts) != 0 {
		t.Fatalf("expanded = %v, expandedHosts = %v", line.expanded, line.expandedHosts)
	}
}

func TestCollapseSelectedRetreatsBetweenVariants(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(true, nil,
			variantGroup{content: "a", hosts: []string{"h1"}},
			variantGroup{content: "b", hosts: []string{"h2"}},
		),
	}, sel: selection{variantIndex: 1}}
	v.collapseSelected()
	if v.sel.variantIndex != 0 {
		t.Fatalf("sel = %+v", v.sel)
	}
}

func TestToggleExpand(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		differsLine(false, nil, variantGroup{content: "a", hosts: []string{"h1"}}),
	}, sel: selection{variantIndex: -1}}
	v.toggleExpand()
	if !v.lines[0].expanded {
		t.Fatalf("not expanded after toggle")
	}
	v.sel.variantIndex = 0
	v.toggleExpand()
	if v.lines[0].expanded {
		t.Fatalf("toggle should flip regardless of cursor sub-position")
	}
	if v.sel.variantIndex != -1 {
		t.Fatalf("collapsing must park the cursor on the main line: %+v", v.sel)
	}
}

func TestExpandAllCollapseAll(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		identicalLine("same"),
		differsLine(false, nil, variantGroup{content: "a", hosts: []string{"h1"}}),
		differsLine(false, nil, variantGroup{content: "b", hosts: []string{"h2"}}),
	}, sel: selection{variantIndex: -1}}

	v.expandAll()
	if v.lines[0].identical && v.lines[0].expanded {
		t.Fatalf("identical line must stay unexpanded")
	}
	if !v.lines[1].expanded || !v.lines[2].expanded {
		t.Fatalf("diff lines not expanded")
	}
	v.collapseAll()
	if v.lines[1].expanded || v.lines[2].expanded {
		t.Fatalf("diff lines not collapsed")
	}
}

func TestScrollToEndSelectsLastVirtualRow(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		identicalLine("first"),
		differsLine(true, []string{"h3"},
			variantGroup{content: "a", hosts: []string{"h1"}},
			variantGroup{content: "b", hosts: []string{"h2"}},
		),
	}, sel: selection{variantIndex: -1}}
	v.scrollToEnd()
	if v.sel.lineIndex != 1 || v.sel.variantIndex != 2 {
		t.Fatalf("sel = %+v", v.sel)
	}

	// Last line collapsed: main row selected.
	v.lines[1].expanded = false
	v.scrollToEnd()
	if v.sel.lineIndex != 1 || v.sel.variantIndex != -1 {
		t.Fatalf("sel = %+v", v.sel)
	}
}

func TestClampSelectionAfterShrink(t *testing.T) {
	v := &consensusView{sel: selection{lineIndex: 10, variantIndex: -1}}
	v.updateConsensus([]consensusLine{identicalLine("only")}, true)
	if v.sel.lineIndex != 0 {
		t.Fatalf("lineIndex = %d, want 0", v.sel.lineIndex)
	}
}

func TestScrollOffset(t *testing.T) {
	v := &consensusView{lines: []consensusLine{
		identicalLine("0"),
		identicalLine("1"),
		differsLine(true, nil,
			variantGroup{content: "a", hosts: []string{"h1"}},
			variantGroup{content: "b", hosts: []string{"h2"}},
		),
		identicalLine("3"),
	}, sel: selection{variantIndex: -1}}

	// Selection at the top fits: no scrolling.
	if got := v.scrollOffset(10); got != 0 {
		t.Fatalf("offset = %d, want 0", got)
	}

	// Virtual rows: 0,1, main=2, v0=3, v1=4, line3=5. Selecting the last
	// variant with a 3-row viewport scrolls exactly enough.
	v.sel = selection{lineIndex: 2, variantIndex: 1}
	if got := v.selectedDisplayRow(); got != 4 {
		t.Fatalf("selectedDisplayRow = %d, want 4", got)
	}
	if got := v.scrollOffset(3); got != 2 {
		t.Fatalf("offset = %d, want 2", got)
	}
}
