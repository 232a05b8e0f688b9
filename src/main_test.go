package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func keyEvent(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHandleWatchKeyQuit(t *testing.T) {
	s := newWatchState(t.TempDir())
	quitters := []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlD, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone),
		keyEvent('q'),
		keyEvent('Q'),
	}
	for _, ev := range quitters {
		if !handleWatchKey(s, ev) {
			t.Fatalf("key %v should quit", ev.Key())
		}
	}
	if handleWatchKey(s, keyEvent('x')) {
		t.Fatalf("unbound key should not quit")
	}
}

func TestHandleWatchKeyNavigation(t *testing.T) {
	s := newWatchState(t.TempDir())
	s.view.updateConsensus([]consensusLine{
		identicalLine("a"), identicalLine("b"),
	}, true)
	s.view.sel = selection{variantIndex: -1}

	handleWatchKey(s, keyEvent('j'))
	if s.view.sel.lineIndex != 1 || s.tailMode {
		t.Fatalf("after j: sel = %+v, tail = %v", s.view.sel, s.tailMode)
	}
	handleWatchKey(s, keyEvent('k'))
	if s.view.sel.lineIndex != 0 {
		t.Fatalf("after k: sel = %+v", s.view.sel)
	}
	handleWatchKey(s, keyEvent('t'))
	if !s.tailMode || s.view.sel.lineIndex != 1 {
		t.Fatalf("after t: sel = %+v, tail = %v", s.view.sel, s.tailMode)
	}
}

func TestHandleWatchKeyExpand(t *testing.T) {
	s := newWatchState(t.TempDir())
	s.view.updateConsensus([]consensusLine{
		differsLine(false, nil,
			variantGroup{content: "a", hosts: []string{"h1"}},
			variantGroup{content: "b", hosts: []string{"h2"}},
		),
	}, true)
	s.view.sel = selection{variantIndex: -1}

	handleWatchKey(s, keyEvent('l'))
	if !s.view.lines[0].expanded {
		t.Fatalf("l should expand the selected diff")
	}
	handleWatchKey(s, keyEvent('h'))
	if s.view.lines[0].expanded {
		t.Fatalf("h should collapse the selected diff")
	}
	handleWatchKey(s, keyEvent('e'))
	if !s.view.lines[0].expanded {
		t.Fatalf("e should expand all diffs")
	}
	handleWatchKey(s, keyEvent('c'))
	if s.view.lines[0].expanded {
		t.Fatalf("c should collapse all diffs")
	}
}
