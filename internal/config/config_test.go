package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Options.AutoExpandFiles)
	assert.False(t, cfg.Options.AutoExpandHunks)
	assert.Equal(t, 5, cfg.Options.ScrollLookahead)
	assert.True(t, cfg.Options.TruncateLines)
	assert.Empty(t, cfg.Options.SortBranches)
	assert.Equal(t, "2", cfg.Colors.Addition)
	assert.Equal(t, "1", cfg.Colors.Deletion)
	assert.NotNil(t, cfg.Keys)
	assert.Empty(t, cfg.Keys)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, warnings, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_OverridesAndKeymap(t *testing.T) {
	path := writeConfig(t, `
options:
  auto_expand_hunks: true
  scroll_lookahead: 2
colors:
  addition: "#00ff00"
  heading: "13"
keys:
  quit: Q
  stage: a
`)
	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.True(t, cfg.Options.AutoExpandHunks)
	assert.False(t, cfg.Options.AutoExpandFiles)
	assert.Equal(t, 2, cfg.Options.ScrollLookahead)
	assert.True(t, cfg.Options.TruncateLines, "untouched options keep defaults")
	assert.Equal(t, "#00ff00", cfg.Colors.Addition)
	assert.Equal(t, "13", cfg.Colors.Heading)
	assert.Equal(t, "1", cfg.Colors.Deletion)
	assert.Equal(t, "Q", cfg.Keys["quit"])
	assert.Equal(t, "a", cfg.Keys["stage"])
}

func TestLoad_UnrecognizedKeysWarn(t *testing.T) {
	path := writeConfig(t, `
options:
  scroll_lookahead: 3
  autoexpand: true
colours:
  addition: "2"
`)
	cfg, warnings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Options.ScrollLookahead, "valid keys still apply")
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], `"options.autoexpand"`)
	assert.Contains(t, warnings[1], `"colours"`)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "options: [broken\n")
	cfg, _, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, DefaultConfig(), cfg, "defaults survive a broken file")
}
