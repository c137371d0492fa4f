// Package config loads the YAML configuration file. A missing file means
// defaults; unrecognized keys become warnings, never errors.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Options are the recognized behavior toggles.
type Options struct {
	AutoExpandFiles  bool   `yaml:"auto_expand_files"`
	AutoExpandHunks  bool   `yaml:"auto_expand_hunks"`
	ScrollLookahead  int    `yaml:"scroll_lookahead"`
	TruncateLines    bool   `yaml:"truncate_lines"`
	WsErrorHighlight string `yaml:"ws_error_highlight"`
	SortBranches     string `yaml:"sort_branches"`
}

// Colors is the palette keyed by semantic role. Values are ANSI indices
// ("1", "208") or hex ("#ff5f87"); empty keeps the terminal default.
type Colors struct {
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
	Heading    string `yaml:"heading"`
	HunkHead   string `yaml:"hunk_head"`
	Addition   string `yaml:"addition"`
	Deletion   string `yaml:"deletion"`
	Key        string `yaml:"key"`
	Error      string `yaml:"error"`
}

// Config is the full file contents. Keys maps logical action names to key
// strings, overriding the built-in bindings; action names are validated
// by the keymap, not here.
type Config struct {
	Options Options           `yaml:"options"`
	Colors  Colors            `yaml:"colors"`
	Keys    map[string]string `yaml:"keys"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Options: Options{
			ScrollLookahead: 5,
			TruncateLines:   true,
		},
		Colors: Colors{
			Heading:  "5",
			HunkHead: "6",
			Addition: "2",
			Deletion: "1",
			Key:      "3",
			Error:    "9",
		},
		Keys: map[string]string{},
	}
}

// DefaultPath returns the conventional config location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "stagium", "config.yaml")
}

// Load reads path on top of the defaults. The returned warnings list any
// unrecognized keys; the error is reserved for an unreadable or
// syntactically invalid file, and even then the defaults come back usable.
func Load(path string) (*Config, []string, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil, nil
	}
	if err != nil {
		return cfg, nil, fmt.Errorf("read config: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return cfg, nil, fmt.Errorf("parse config: %w", err)
	}
	warnings := unknownKeys(&root)
	if len(root.Content) > 0 {
		if err := root.Decode(cfg); err != nil {
			return DefaultConfig(), warnings, fmt.Errorf("parse config: %w", err)
		}
	}
	return cfg, warnings, nil
}

var knownSections = map[string][]string{
	"options": {
		"auto_expand_files", "auto_expand_hunks", "scroll_lookahead",
		"truncate_lines", "ws_error_highlight", "sort_branches",
	},
	"colors": {
		"foreground", "background", "heading", "hunk_head",
		"addition", "deletion", "key", "error",
	},
	"keys": nil, // free-form; validated against the keymap later
}

func unknownKeys(root *yaml.Node) []string {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	var warnings []string
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		fields, ok := knownSections[key.Value]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unrecognized config key %q", key.Value))
			continue
		}
		if fields == nil || val.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(val.Content); j += 2 {
			sub := val.Content[j].Value
			if !contains(fields, sub) {
				warnings = append(warnings, fmt.Sprintf("unrecognized config key %q", key.Value+"."+sub))
			}
		}
	}
	return warnings
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
