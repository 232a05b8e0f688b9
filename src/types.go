package main

import "time"

type config struct {
	outputDir  string
	keep       bool
	noWatch    bool
	interval   time.Duration
	cmdTimeout time.Duration
}

type hostStatus int

const (
	statusPending hostStatus = iota
	statusRunning
	statusSuccess
	statusFailed
)

func parseHostStatus(s string) hostStatus {
	switch s {
	case "running":
		return statusRunning
	case "success":
		return statusSuccess
	case "failed":
		return statusFailed
	default:
		return statusPending
	}
}

func (s hostStatus) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusSuccess:
		return "success"
	case statusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// variantGroup is one distinct content value at a line position together
// with the hosts that produced it, in host iteration order.
type variantGroup struct {
	content string
	hosts   []string
}

// consensusLine is one position in the merged line-aligned view of all
// hosts' output. identical means every host has this content at this
// position; otherwise content holds the consensus (largest variant group)
// and variants/missing carry the breakdown. expanded and expandedHosts are
// transient view state, carried forward across recomputes by line index.
type consensusLine struct {
	identical     bool
	content       string
	variants      []variantGroup
	missing       []string
	expanded      bool
	expandedHosts map[string]bool
}

// virtualChildren is the number of selectable rows under an expanded diff
// line: one per variant plus one for the missing pseudo-variant if any.
func (l consensusLine) virtualChildren() int {
	if l.identical {
		return 0
	}
	n := len(l.variants)
	if len(l.missing) > 0 {
		n++
	}
	return n
}

func (l consensusLine) virtualRows() int {
	if !l.identical && l.expanded {
		return 1 + l.virtualChildren()
	}
	return 1
}

// selection addresses either a main line (variantIndex == -1) or the
// variantIndex-th child row of an expanded diff line.
type selection struct {
	lineIndex    int
	variantIndex int
}

type consensusView struct {
	lines    []consensusLine
	sel      selection
	hasHosts bool
}

// watchState is the single owner of all watch-mode state. The event loop
// mutates it from one goroutine; background goroutines only signal over
// channels and never touch it.
type watchState struct {
	outputDir       string
	view            consensusView
	hosts           []string
	statuses        map[string]hostStatus
	lastOutputs     map[string]string
	waitingForInput map[string]bool
	keepOutput      bool
	tailMode        bool
	spinnerFrame    int
	spinnerLast     time.Time
	colors          colorScheme
}
