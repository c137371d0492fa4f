package prefs

import (
	"fmt"
	"os/exec"
	"strings"
)

// Prefs represents persisted per-repo UI preferences. They live in the
// repository's local git config so each checkout remembers its own view.
type Prefs struct {
	Truncate       bool
	TruncateSet    bool
	ExpandFiles    bool
	ExpandFilesSet bool
	ExpandHunks    bool
	ExpandHunksSet bool
}

const (
	keyTruncate    = "stagium.truncate"
	keyExpandFiles = "stagium.expandFiles"
	keyExpandHunks = "stagium.expandHunks"
)

// Load reads preferences from git local config.
func Load(repoRoot string) Prefs {
	var p Prefs
	if s, ok := get(repoRoot, keyTruncate); ok {
		p.TruncateSet = true
		p.Truncate = parseBool(s)
	}
	if s, ok := get(repoRoot, keyExpandFiles); ok {
		p.ExpandFilesSet = true
		p.ExpandFiles = parseBool(s)
	}
	if s, ok := get(repoRoot, keyExpandHunks); ok {
		p.ExpandHunksSet = true
		p.ExpandHunks = parseBool(s)
	}
	return p
}

// SaveTruncate persists the line-truncation pref.
func SaveTruncate(repoRoot string, v bool) error {
	return set(repoRoot, keyTruncate, boolStr(v))
}

// SaveExpandFiles persists the default file expansion pref.
func SaveExpandFiles(repoRoot string, v bool) error {
	return set(repoRoot, keyExpandFiles, boolStr(v))
}

// SaveExpandHunks persists the default hunk expansion pref.
func SaveExpandHunks(repoRoot string, v bool) error {
	return set(repoRoot, keyExpandHunks, boolStr(v))
}

func get(repoRoot, key string) (string, bool) {
	cmd := exec.Command("git", "-C", repoRoot, "config", "--get", key)
	b, err := cmd.Output()
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(b)), true
}

func set(repoRoot, key, value string) error {
	cmd := exec.Command("git", "-C", repoRoot, "config", "--local", key, value)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git config %s: %w: %s", key, err, string(out))
	}
	return nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func boolStr(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
