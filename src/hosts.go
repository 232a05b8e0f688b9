package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type taggedHost struct {
	hostname string
	tags     map[string]bool
}

// Seams for tests: host resolution may shell out.
var (
	runShellCommandFn = runShellCommand
	executeScriptFn   = executeScript
)

// resolveHosts turns a host source and optional tag filter into hostnames.
//
// Sources: "" loads the default inventory (~/.config/bdsh/hosts); "@path"
// reads the file, or executes it when it carries the x-bit; "@cmd args"
// runs a shell command when the path does not exist; anything else is an
// inline comma-separated host list. Inline hosts carry no tags, so the
// filter does not apply to them.
//
// Filters: ":a" requires tag a, ":a:b" requires a AND b, ":a,:b" means a
// OR b; groups combine as OR of AND-groups.
func resolveHosts(source, filter string) ([]string, error) {
	if filter == ":" {
		return nil, errors.New("empty tag filter: use tags like :web or :prod, not ':'")
	}

	var hosts []taggedHost
	switch {
	case source == "":
		loaded, err := loadInventory()
		if err != nil {
			return nil, err
		}
		hosts = loaded
	case strings.HasPrefix(source, "@"):
		pathOrCmd := source[1:]
		content, err := readHostSource(pathOrCmd)
		if err != nil {
			return nil, err
		}
		hosts = parseInventory(content)
	default:
		inline := dedupe(parseInline(source))
		if len(inline) == 0 {
			return nil, fmt.Errorf("no hosts in %q", source)
		}
		return inline, nil
	}

	groups := parseTagFilter(filter)
	var names []string
	for _, h := range hosts {
		if matchesFilter(h, groups) {
			names = append(names, h.hostname)
		}
	}
	names = dedupe(names)
	if len(names) == 0 {
		return nil, errors.New("no hosts match filter")
	}
	return names, nil
}

func dedupe(hosts []string) []string {
	seen := make(map[string]bool, len(hosts))
	out := hosts[:0]
	for _, h := range hosts {
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	return out
}

func readHostSource(pathOrCmd string) (string, error) {
	if info, err := os.Stat(pathOrCmd); err == nil && info.Mode().IsRegular() {
		if info.Mode().Perm()&0o111 != 0 {
			return executeScriptFn(pathOrCmd)
		}
		data, err := os.ReadFile(pathOrCmd)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", pathOrCmd, err)
		}
		return string(data), nil
	}
	return runShellCommandFn(pathOrCmd)
}

func runShellCommand(cmd string) (string, error) {
	out, err := exec.Command("sh", "-c", cmd).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("command failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("failed to run command %q: %w", cmd, err)
	}
	return string(out), nil
}

func executeScript(path string) (string, error) {
	out, err := exec.Command(path).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("script %s failed: %s", path, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("failed to execute %s: %w", path, err)
	}
	return string(out), nil
}

func defaultInventoryPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home := os.Getenv("HOME")
		if home == "" {
			home = "."
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "bdsh", "hosts")
}

func loadInventory() ([]taggedHost, error) {
	path := defaultInventoryPath()
	content, err := readHostSource(path)
	if err != nil {
		return nil, fmt.Errorf("no hosts file found at %s: %w", path, err)
	}
	return parseInventory(content), nil
}

// parseInventory accepts either a YAML inventory (a document with a hosts
// list) or the tagged-lines format.
func parseInventory(content string) []taggedHost {
	if hosts, ok := parseYAMLInventory(content); ok {
		return hosts
	}
	return parseTaggedLines(content)
}

type yamlInventory struct {
	Hosts []struct {
		Name string   `yaml:"name"`
		Tags []string `yaml:"tags"`
	} `yaml:"hosts"`
}

func parseYAMLInventory(content string) ([]taggedHost, bool) {
	var inv yamlInventory
	if err := yaml.Unmarshal([]byte(content), &inv); err != nil || len(inv.Hosts) == 0 {
		return nil, false
	}
	hosts := make([]taggedHost, 0, len(inv.Hosts))
	for _, h := range inv.Hosts {
		if h.Name == "" {
			continue
		}
		tags := make(map[string]bool, len(h.Tags))
		for _, t := range h.Tags {
			tags[t] = true
		}
		hosts = append(hosts, taggedHost{hostname: h.Name, tags: tags})
	}
	return hosts, len(hosts) > 0
}

// parseTaggedLines parses "hostname :tag1 :tag2" lines. Lines starting with
// #, //, or ; are comments.
func parseTaggedLines(content string) []taggedHost {
	var hosts []taggedHost
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}
		parts := strings.Fields(line)
		tags := make(map[string]bool)
		for _, p := range parts[1:] {
			if strings.HasPrefix(p, ":") {
				tags[p[1:]] = true
			}
		}
		hosts = append(hosts, taggedHost{hostname: parts[0], tags: tags})
	}
	return hosts
}

func parseInline(list string) []string {
	var hosts []string
	for _, part := range strings.Split(list, ",") {
		if h := strings.TrimSpace(part); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// parseTagFilter returns OR-groups of AND-tags; nil means match all.
func parseTagFilter(filter string) [][]string {
	filter = strings.TrimPrefix(filter, ":")
	if filter == "" {
		return nil
	}
	var groups [][]string
	for _, group := range strings.Split(filter, ",") {
		var tags []string
		for _, tag := range strings.Split(group, ":") {
			if tag != "" {
				tags = append(tags, tag)
			}
		}
		if len(tags) > 0 {
			groups = append(groups, tags)
		}
	}
	return groups
}

func matchesFilter(host taggedHost, groups [][]string) bool {
	if len(groups) == 0 {
		return true
	}
	for _, group := range groups {
		all := true
		for _, tag := range group {
			if !host.tags[tag] {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}
