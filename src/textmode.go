package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mattn/go-runewidth"
)

// runTextMode is the fallback when stdout is not a terminal: print a static
// consensus render and reprint it whenever files under the output directory
// change. Quits when stdin reaches EOF (Ctrl-D) or the watcher dies.
func runTextMode(outputDir string, colors colorScheme) error {
	fmt.Printf("Watching: %s\n", outputDir)

	hosts := discoverHosts(outputDir)
	if len(hosts) == 0 {
		fmt.Println("No host directories found yet...")
	} else {
		renderTextConsensus(os.Stdout, outputDir, hosts, colors)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(outputDir); err != nil {
		return err
	}
	// fsnotify is not recursive; track host subdirectories individually.
	watched := map[string]bool{}
	addHostWatches := func(hosts []string) {
		for _, h := range hosts {
			dir := filepath.Join(outputDir, h)
			if !watched[dir] && watcher.Add(dir) == nil {
				watched[dir] = true
			}
		}
	}
	addHostWatches(hosts)

	// The stdin drainer only signals; it never touches render state.
	stdinClosed := make(chan struct{})
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := os.Stdin.Read(buf)
			if n == 0 || err != nil {
				close(stdinClosed)
				return
			}
		}
	}()

	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			drainEvents(watcher.Events)
			clearScreen()
			hosts := discoverHosts(outputDir)
			addHostWatches(hosts)
			if len(hosts) > 0 {
				renderTextConsensus(os.Stdout, outputDir, hosts, colors)
			}
		case <-watcher.Errors:
			// Transient notification failures are not fatal; the next
			// event or manual EOF still works.
		case <-stdinClosed:
			return nil
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// drainEvents debounces a burst of change notifications into one redraw.
func drainEvents(events chan fsnotify.Event) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

func clearScreen() {
	fmt.Print("\x1b[2J\x1b[1;1H")
}

func renderTextConsensus(w io.Writer, outputDir string, hosts []string, colors colorScheme) {
	outputs := make(map[string]string, len(hosts))
	statuses := make([]string, len(hosts))
	for i, h := range hosts {
		outputs[h] = cleanTerminalOutput(readRawOutput(outputDir, h))
		statuses[i] = h + ":" + formatTextStatus(readStatus(outputDir, h), colors)
	}

	fmt.Fprintf(w, "=== Consensus View (%d hosts) ===\n", len(hosts))
	for i, item := range statuses {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprint(w, item)
	}
	fmt.Fprint(w, "\n\n")

	for _, line := range computeConsensus(hosts, outputs) {
		if line.identical {
			fmt.Fprintln(w, line.content)
			continue
		}
		// The marker counts distinct variants, same as the interactive view.
		marker := colors.ansiYellow(fmt.Sprintf("[%d]", len(line.variants)))
		fmt.Fprintf(w, "%s %s\n", marker, line.content)

		// Text mode never expands host lists.
		width := maxGutterWidth(line.variants, line.missing, nil)
		for _, g := range line.variants {
			gutter := colors.ansiCyan(runewidth.FillLeft(formatGutter(g.hosts, false), width))
			fmt.Fprintf(w, "  %s │ %s\n", gutter, g.content)
		}
		if len(line.missing) > 0 {
			gutter := colors.ansiCyan(runewidth.FillLeft(formatGutter(line.missing, false), width))
			fmt.Fprintf(w, "  %s │ %s\n", gutter, colors.ansiGray(missingKey))
		}
	}
}

func formatTextStatus(status hostStatus, colors colorScheme) string {
	s := status.String()
	switch status {
	case statusRunning:
		return colors.ansiYellow(s)
	case statusSuccess:
		return colors.ansiGreen(s)
	case statusFailed:
		return colors.ansiRed(s)
	default:
		return s
	}
}
