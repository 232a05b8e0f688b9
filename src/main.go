package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

func main() {
	cfg := config{}
	var watchDir string
	pflag.StringVar(&watchDir, "watch", "", "watch an output directory instead of running commands")
	pflag.StringVarP(&cfg.outputDir, "output-dir", "o", "", "output directory (default: temp)")
	pflag.BoolVarP(&cfg.keep, "keep", "k", false, "keep output directory on exit")
	pflag.BoolVar(&cfg.noWatch, "no-watch", false, "disable the watch window")
	pflag.DurationVar(&cfg.interval, "interval", 100*time.Millisecond, "watch refresh interval")
	pflag.DurationVar(&cfg.cmdTimeout, "cmd-timeout", 900*time.Millisecond, "timeout for each tmux command")
	pflag.Usage = usage
	pflag.Parse()

	if cfg.interval < 50*time.Millisecond {
		cfg.interval = 50 * time.Millisecond
	}
	if cfg.cmdTimeout < 300*time.Millisecond {
		cfg.cmdTimeout = 300 * time.Millisecond
	}

	if watchDir != "" {
		if pflag.NArg() > 0 {
			fatal("--watch cannot be combined with a command")
		}
		if err := runWatch(watchDir, cfg); err != nil {
			fatal(err.Error())
		}
		return
	}

	hostSource, tagFilter, command, err := splitArgs(pflag.Args(), pflag.CommandLine.ArgsLenAtDash())
	if err != nil {
		fatal(err.Error())
	}

	hosts, err := resolveHosts(hostSource, tagFilter)
	if err != nil {
		fatal(err.Error())
	}

	if err := runCommand(cfg, hosts, command); err != nil {
		fatal(err.Error())
	}
}

// splitArgs separates the positionals before "--" (host source and/or tag
// filter, in either order as long as the filter starts with ':') from the
// command after it.
func splitArgs(args []string, lenAtDash int) (hostSource, tagFilter string, command []string, err error) {
	if lenAtDash < 0 {
		return "", "", nil, fmt.Errorf("no command given: usage is bdsh [hosts] [:tags] -- command")
	}
	positional := args[:lenAtDash]
	command = args[lenAtDash:]
	if len(command) == 0 {
		return "", "", nil, fmt.Errorf("no command given after --")
	}

	for _, arg := range positional {
		switch {
		case strings.HasPrefix(arg, ":"):
			if tagFilter != "" {
				return "", "", nil, fmt.Errorf("multiple tag filters: %q and %q", tagFilter, arg)
			}
			tagFilter = arg
		default:
			if hostSource != "" {
				return "", "", nil, fmt.Errorf("multiple host sources: %q and %q", hostSource, arg)
			}
			hostSource = arg
		}
	}
	return hostSource, tagFilter, command, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `bdsh - run a command on many hosts over SSH with a live consensus view

Usage:
  bdsh [flags] [host-source] [:tagfilter] -- command...
  bdsh --watch DIR

Host sources: inline (h1,h2), @file, @"cmd args", or ~/.config/bdsh/hosts.
Tag filters: :web, :web:prod (AND), :web,:db (OR).

Flags:`)
	pflag.PrintDefaults()
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "bdsh:", msg)
	os.Exit(1)
}

// runWatch drives the interactive consensus view: one goroutine polls
// terminal events into a channel, the main loop alternates input handling,
// refresh, and draw. All state mutation happens on this loop.
func runWatch(outputDir string, cfg config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return runTextMode(outputDir, colorSchemeFromEnv())
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	state := newWatchState(outputDir)
	state.refresh()
	if state.tailMode {
		state.view.scrollToEnd()
	}

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	drawWatch(screen, state, state.spinnerChar())

	ticker := time.NewTicker(cfg.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			state.refresh()
			if state.tailMode {
				state.view.scrollToEnd()
			}
			drawWatch(screen, state, state.spinnerChar())
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch tev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				drawWatch(screen, state, state.spinnerChar())
			case *tcell.EventKey:
				if handleWatchKey(state, tev) {
					return nil
				}
				drawWatch(screen, state, state.spinnerChar())
			}
		}
	}
}

// handleWatchKey applies one key event; returns true to quit.
func handleWatchKey(state *watchState, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyCtrlD, tcell.KeyEsc:
		return true
	case tcell.KeyUp:
		state.scrollUp()
	case tcell.KeyDown:
		state.scrollDown()
	case tcell.KeyRight:
		state.view.expandSelected()
	case tcell.KeyLeft:
		state.view.collapseSelected()
	case tcell.KeyEnter:
		state.view.toggleExpand()
	case tcell.KeyTAB:
		state.view.jumpToNextDiff()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'k':
			state.scrollUp()
		case 'j':
			state.scrollDown()
		case 'l':
			state.view.expandSelected()
		case 'h':
			state.view.collapseSelected()
		case ' ':
			state.view.toggleExpand()
		case 'e':
			state.view.expandAll()
		case 'c':
			state.view.collapseAll()
		case 'K':
			state.toggleKeep()
		case 't':
			state.toggleTail()
		}
	}
	return false
}
