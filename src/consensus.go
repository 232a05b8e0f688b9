package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// missingKey is the expandedHosts key for the missing-hosts pseudo-variant.
const missingKey = "<missing>"

// computeConsensus aligns all hosts' output by line position and groups
// hosts by identical content at each position. No sequence alignment is
// attempted: command output across homogeneous hosts is expected to line up
// position by position, and an insertion on one host misaligning the rest
// is an accepted trade-off for determinism and simplicity.
//
// The result is a pure function of (host order, outputs). Variant groups
// preserve host iteration order, so hosts must be passed in sorted order
// for the output to be stable.
func computeConsensus(hosts []string, outputs map[string]string) []consensusLine {
	if len(hosts) == 0 {
		return nil
	}

	hostLines := make([][]string, len(hosts))
	maxLines := 0
	for i, h := range hosts {
		hostLines[i] = splitLines(outputs[h])
		if len(hostLines[i]) > maxLines {
			maxLines = len(hostLines[i])
		}
	}

	consensus := make([]consensusLine, 0, maxLines)
	for pos := 0; pos < maxLines; pos++ {
		var variants []variantGroup
		var missing []string
		for i, h := range hosts {
			if pos >= len(hostLines[i]) {
				missing = append(missing, h)
				continue
			}
			content := hostLines[i][pos]
			grouped := false
			for gi := range variants {
				if variants[gi].content == content {
					variants[gi].hosts = append(variants[gi].hosts, h)
					grouped = true
					break
				}
			}
			if !grouped {
				variants = append(variants, variantGroup{content: content, hosts: []string{h}})
			}
		}

		if len(variants) == 1 && len(missing) == 0 {
			consensus = append(consensus, consensusLine{identical: true, content: variants[0].content})
		} else {
			consensus = append(consensus, makeDiffers(variants, missing))
		}
	}
	return consensus
}

// makeDiffers orders variant groups by descending size. The sort is stable,
// so ties keep discovery order and the first group is the consensus.
func makeDiffers(variants []variantGroup, missing []string) consensusLine {
	sort.SliceStable(variants, func(i, j int) bool {
		return len(variants[i].hosts) > len(variants[j].hosts)
	})
	content := ""
	if len(variants) > 0 {
		content = variants[0].content
	}
	return consensusLine{
		content:       content,
		variants:      variants,
		missing:       missing,
		expandedHosts: make(map[string]bool),
	}
}

// formatGutter renders the host column for a variant group: the bare
// hostname for a single host, the comma-joined list when expanded, or a
// compact [N] otherwise.
func formatGutter(hosts []string, expanded bool) string {
	if len(hosts) == 1 {
		return hosts[0]
	}
	if expanded {
		return strings.Join(hosts, ",")
	}
	return fmt.Sprintf("[%d]", len(hosts))
}

func gutterWidth(hosts []string, expanded bool) int {
	return runewidth.StringWidth(formatGutter(hosts, expanded))
}

// maxGutterWidth computes the shared gutter column width for one expanded
// line so all variant gutters align. Minimum 4.
func maxGutterWidth(variants []variantGroup, missing []string, expandedHosts map[string]bool) int {
	width := 4
	for _, g := range variants {
		if w := gutterWidth(g.hosts, expandedHosts[g.content]); w > width {
			width = w
		}
	}
	if len(missing) > 0 {
		if w := gutterWidth(missing, expandedHosts[missingKey]); w > width {
			width = w
		}
	}
	return width
}

// truncate shortens s to at most maxChars characters (not bytes), replacing
// the tail with "..." when it does not fit.
func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	keep := maxChars - 3
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + "..."
}
