package main

import (
	"strings"
	"unicode"
)

// splitLines splits on \n, strips one trailing \r per line, and does not
// produce a final empty line for text ending in a newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// cleanTerminalOutput normalizes raw captured process output for display
// and comparison: per line, escape sequences and control bytes are stripped
// first, then carriage returns are emulated the way a terminal would render
// them. "hello\rhi" becomes "hillo", "hello\rworld" becomes "world".
// Idempotent: cleaning already-clean text changes nothing.
func cleanTerminalOutput(raw string) string {
	lines := splitLines(raw)
	out := make([]string, len(lines))
	for i, line := range lines {
		stripped := stripAnsiAndControl(line)
		if strings.ContainsRune(stripped, '\r') {
			stripped = applyCarriageReturns(stripped)
		}
		out[i] = stripped
	}
	return strings.Join(out, "\n")
}

// applyCarriageReturns replays \r segments: each non-empty segment
// overwrites the accumulated result from column 0, keeping any tail the
// segment does not reach.
func applyCarriageReturns(line string) string {
	var result []rune
	for _, segment := range strings.Split(line, "\r") {
		if segment == "" {
			continue
		}
		seg := []rune(segment)
		if len(seg) >= len(result) {
			result = seg
			continue
		}
		copy(result, seg)
	}
	return string(result)
}

// stripAnsiAndControl removes CSI, OSC and DCS escape sequences, bare
// partial OSC remnants, and control bytes other than tab and carriage
// return. A sequence truncated at end of input is consumed to the end
// rather than erroring.
func stripAnsiAndControl(s string) string {
	runes := []rune(s)
	var b strings.Builder
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == 0x1b:
			i = skipEscape(runes, i+1)
		case c == 0x9d:
			// 8-bit OSC introducer
			i = skipOSCBody(runes, i+1)
		case c == ']' && i+1 < len(runes) && runes[i+1] >= '0' && runes[i+1] <= '9':
			// Bare ] followed by digits: likely a partial OSC sequence whose
			// introducer was lost mid-capture.
			i = skipBareOSC(runes, i+1)
		case unicode.IsControl(c) && c != '\t' && c != '\r':
			i++
		default:
			b.WriteRune(c)
			i++
		}
	}
	return b.String()
}

func skipEscape(runes []rune, i int) int {
	if i >= len(runes) {
		return i
	}
	switch runes[i] {
	case '[':
		// CSI: consume up to and including the terminating letter
		i++
		for i < len(runes) {
			r := runes[i]
			i++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				break
			}
		}
		return i
	case ']':
		return skipOSCBody(runes, i+1)
	case 'P':
		// DCS: terminated by ST only
		i++
		for i < len(runes) {
			if runes[i] == 0x9c {
				return i + 1
			}
			if runes[i] == 0x1b {
				i++
				if i < len(runes) && runes[i] == '\\' {
					i++
				}
				return i
			}
			i++
		}
		return i
	default:
		return i + 1
	}
}

// skipOSCBody consumes an OSC payload up to BEL, ST, or end of input.
func skipOSCBody(runes []rune, i int) int {
	for i < len(runes) {
		switch runes[i] {
		case 0x07, 0x9c:
			return i + 1
		case 0x1b:
			i++
			if i < len(runes) && runes[i] == '\\' {
				i++
			}
			return i
		default:
			i++
		}
	}
	return i
}

// skipBareOSC consumes until a terminator; space stops the skip but stays
// in the output, since it likely begins ordinary text.
func skipBareOSC(runes []rune, i int) int {
	for i < len(runes) {
		switch runes[i] {
		case 0x07, 0x9c:
			return i + 1
		case ' ':
			return i
		case 0x1b:
			i++
			if i < len(runes) && runes[i] == '\\' {
				i++
			}
			return i
		default:
			i++
		}
	}
	return i
}
