package main

import (
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerInterval = 80 * time.Millisecond

// Substrings that suggest a process is waiting on stdin. Purely advisory:
// false positives only annotate the display, they never affect execution.
var inputPromptPatterns = []string{
	"password:",
	"passphrase",
	"[y/n]",
	"[Y/n]",
	"[n/Y]",
	"[yes/no]",
	"(yes/no)",
	"continue?",
	"proceed?",
	"confirm",
	"enter to continue",
	"press enter",
	"press any key",
	": $",
	"? $",
	"> ",
	"read>",
}

// detectInputPrompt scans the last 500 characters of raw (un-normalized)
// output for prompt-looking text. The raw tail is used because cleaning
// drops incomplete lines, which is exactly where prompts live.
func detectInputPrompt(output string) bool {
	runes := []rune(output)
	if len(runes) > 500 {
		runes = runes[len(runes)-500:]
	}
	tail := strings.ToLower(string(runes))
	for _, pattern := range inputPromptPatterns {
		if strings.Contains(tail, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

func newWatchState(outputDir string) *watchState {
	_, err := os.Stat(filepath.Join(outputDir, ".keep"))
	return &watchState{
		outputDir:       outputDir,
		statuses:        map[string]hostStatus{},
		lastOutputs:     map[string]string{},
		waitingForInput: map[string]bool{},
		keepOutput:      err == nil,
		tailMode:        true,
		spinnerLast:     time.Now(),
		colors:          colorSchemeFromEnv(),
	}
}

// discoverHosts lists host subdirectories of the output directory, skipping
// dot-entries and the tmux socket. A missing or unreadable directory is "no
// hosts yet", never an error.
func discoverHosts(outputDir string) []string {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return nil
	}
	var hosts []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "tmux.sock" {
			continue
		}
		hosts = append(hosts, name)
	}
	sort.Strings(hosts)
	return hosts
}

func readRawOutput(outputDir, host string) string {
	data, err := os.ReadFile(filepath.Join(outputDir, host, "out.log"))
	if err != nil {
		return ""
	}
	return string(data)
}

func readStatus(outputDir, host string) hostStatus {
	data, err := os.ReadFile(filepath.Join(outputDir, host, "status"))
	if err != nil {
		return statusPending
	}
	return parseHostStatus(strings.TrimSpace(string(data)))
}

// refresh re-reads the output directory and rebuilds the consensus, but
// only when some host's normalized output actually changed. Skipping the
// recompute on quiet cycles also avoids the save/restore churn on the
// expansion flags.
func (s *watchState) refresh() {
	s.hosts = discoverHosts(s.outputDir)

	s.statuses = make(map[string]hostStatus, len(s.hosts))
	for _, h := range s.hosts {
		s.statuses[h] = readStatus(s.outputDir, h)
	}

	if len(s.hosts) == 0 {
		s.view.updateConsensus(nil, false)
		s.lastOutputs = map[string]string{}
		return
	}

	s.waitingForInput = make(map[string]bool)
	outputs := make(map[string]string, len(s.hosts))
	for _, h := range s.hosts {
		raw := readRawOutput(s.outputDir, h)
		if s.statuses[h] == statusRunning && detectInputPrompt(raw) {
			s.waitingForInput[h] = true
		}
		outputs[h] = cleanTerminalOutput(raw)
	}

	if maps.Equal(outputs, s.lastOutputs) {
		return
	}

	// Carry expansion forward by line index. This is approximate: if
	// earlier lines appear or vanish, the flag can reattach to a different
	// semantic line. Accepted behavior, not corrected here.
	var expandedIndices []int
	for i := range s.view.lines {
		if !s.view.lines[i].identical && s.view.lines[i].expanded {
			expandedIndices = append(expandedIndices, i)
		}
	}

	lines := computeConsensus(s.hosts, outputs)
	for _, i := range expandedIndices {
		if i < len(lines) && !lines[i].identical {
			lines[i].expanded = true
		}
	}

	s.view.updateConsensus(lines, true)
	s.lastOutputs = outputs
}

func (s *watchState) scrollUp() {
	s.tailMode = false
	s.view.scrollUp()
}

func (s *watchState) scrollDown() {
	s.tailMode = false
	s.view.scrollDown()
}

func (s *watchState) toggleTail() {
	s.tailMode = !s.tailMode
	if s.tailMode {
		s.view.scrollToEnd()
	}
}

// toggleKeep flips the keep-output preference and mirrors it to the .keep
// marker so the orchestrator honors it at cleanup time.
func (s *watchState) toggleKeep() {
	s.keepOutput = !s.keepOutput
	marker := filepath.Join(s.outputDir, ".keep")
	if s.keepOutput {
		_ = os.WriteFile(marker, nil, 0o644)
	} else {
		_ = os.Remove(marker)
	}
}

// spinnerChar returns the current spinner frame, advancing the animation
// when enough time has passed.
func (s *watchState) spinnerChar() rune {
	now := time.Now()
	if now.Sub(s.spinnerLast) >= spinnerInterval {
		s.spinnerFrame = (s.spinnerFrame + 1) % len(spinnerFrames)
		s.spinnerLast = now
	}
	return spinnerFrames[s.spinnerFrame]
}
