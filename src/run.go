package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// runCommand fans a command out to every host: one tmux window per host on
// a dedicated socket, each running an ssh wrapper that captures output and
// records status, plus window 0 running the consensus watch view.
func runCommand(cfg config, hosts []string, command []string) error {
	outputDir := cfg.outputDir
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "bdsh-"+shortRunID())
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	for _, host := range hosts {
		if err := os.MkdirAll(filepath.Join(outputDir, host), 0o755); err != nil {
			return err
		}
	}
	if cfg.keep {
		if err := os.WriteFile(filepath.Join(outputDir, ".keep"), nil, 0o644); err != nil {
			return err
		}
	}
	fmt.Printf("Output directory: %s\n", outputDir)

	socket := filepath.Join(outputDir, "tmux.sock")
	session := "bdsh-" + shortRunID()
	ctx := context.Background()

	firstWindow := ""
	if !cfg.noWatch {
		exe, err := os.Executable()
		if err != nil {
			return err
		}
		firstWindow = fmt.Sprintf("%s --watch %s", shellQuote(exe), shellQuote(outputDir))
	}
	windowName := "watch"
	if cfg.noWatch {
		windowName = hosts[0]
		firstWindow = hostWindowCommand(outputDir, hosts[0], command)
		hosts = hosts[1:]
	}
	if err := startTmuxSession(ctx, cfg, socket, session, windowName, firstWindow); err != nil {
		return fmt.Errorf("failed to start tmux session: %w", err)
	}

	for _, host := range hosts {
		cmd := hostWindowCommand(outputDir, host, command)
		if err := newTmuxWindow(ctx, cfg, socket, session, host, cmd); err != nil {
			return fmt.Errorf("failed to create window for %s: %w", host, err)
		}
	}

	attachErr := attachTmuxSession(socket, session)
	_ = killTmuxSession(ctx, cfg, socket, session)

	// The operator may have toggled keep from inside the watch view.
	_, keepErr := os.Stat(filepath.Join(outputDir, ".keep"))
	if cfg.keep || keepErr == nil {
		fmt.Printf("Output preserved at %s\n", outputDir)
	} else {
		fmt.Printf("Cleaning up %s\n", outputDir)
		if err := os.RemoveAll(outputDir); err != nil {
			return err
		}
	}
	return attachErr
}

// hostWindowCommand builds the per-host wrapper: mark the host running, run
// the command over ssh capturing interleaved output, then record the final
// status and metadata.
func hostWindowCommand(outputDir, host string, command []string) string {
	hostDir := filepath.Join(outputDir, host)
	statusFile := shellQuote(filepath.Join(hostDir, "status"))
	logFile := shellQuote(filepath.Join(hostDir, "out.log"))
	metaFile := shellQuote(filepath.Join(hostDir, "meta.json"))
	rcFile := shellQuote(filepath.Join(hostDir, ".rc"))
	remote := shellQuote(strings.Join(command, " "))

	// tee keeps the tmux window live while out.log captures everything; the
	// rc file carries ssh's exit code across the pipe.
	script := strings.Join([]string{
		fmt.Sprintf("echo running > %s", statusFile),
		"start=$(date +%s)",
		fmt.Sprintf("{ ssh %s %s 2>&1; echo $? > %s; } | tee %s", shellQuote(host), remote, rcFile, logFile),
		fmt.Sprintf("rc=$(cat %s)", rcFile),
		"end=$(date +%s)",
		fmt.Sprintf(`if [ "$rc" -eq 0 ]; then echo success > %s; else echo failed > %s; fi`, statusFile, statusFile),
		fmt.Sprintf(`printf '{"exit_code": %%s, "start": %%s, "end": %%s}\n' "$rc" "$start" "$end" > %s`, metaFile),
	}, "; ")
	return "sh -c " + shellQuote(script)
}

// shellQuote wraps s in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func shortRunID() string {
	return uuid.NewString()[:8]
}
