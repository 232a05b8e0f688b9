package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var runTmuxFn = runTmux
var runTmuxInteractiveFn = runTmuxInteractive

// runTmux runs a tmux command against the session's dedicated socket and
// returns trimmed stdout.
func runTmux(ctx context.Context, cfg config, socket string, args ...string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, cfg.cmdTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, "tmux", tmuxArgs(socket, args...)...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("tmux %s timed out", strings.Join(args, " "))
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", errors.New(msg)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// runTmuxInteractive attaches the current terminal to tmux. TMUX is dropped
// from the environment so attaching works from inside another session.
func runTmuxInteractive(socket string, args ...string) error {
	cmd := exec.Command("tmux", tmuxArgs(socket, args...)...)
	cmd.Env = envWithoutTMUX(os.Environ())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func tmuxArgs(socket string, args ...string) []string {
	withSocket := make([]string, 0, len(args)+2)
	withSocket = append(withSocket, "-S", socket)
	withSocket = append(withSocket, args...)
	return withSocket
}

func envWithoutTMUX(env []string) []string {
	filtered := make([]string, 0, len(env))
	for _, item := range env {
		if strings.HasPrefix(item, "TMUX=") {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

func startTmuxSession(ctx context.Context, cfg config, socket, session, windowName, command string) error {
	args := []string{"new-session", "-d", "-s", session, "-n", windowName}
	if command != "" {
		args = append(args, command)
	}
	_, err := runTmuxFn(ctx, cfg, socket, args...)
	return err
}

func newTmuxWindow(ctx context.Context, cfg config, socket, session, name, command string) error {
	args := []string{"new-window", "-d", "-t", session + ":", "-n", name}
	if command != "" {
		args = append(args, command)
	}
	_, err := runTmuxFn(ctx, cfg, socket, args...)
	return err
}

func attachTmuxSession(socket, session string) error {
	return runTmuxInteractiveFn(socket, "attach", "-t", session)
}

func killTmuxSession(ctx context.Context, cfg config, socket, session string) error {
	_, err := runTmuxFn(ctx, cfg, socket, "kill-session", "-t", session)
	return err
}
