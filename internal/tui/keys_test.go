package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeymapDefaults(t *testing.T) {
	km, warnings := NewKeymap(nil)
	require.Empty(t, warnings)
	assert.Equal(t, ActionStage, km.Lookup("s"))
	assert.Equal(t, ActionQuit, km.Lookup("q"))
	assert.Equal(t, ActionNone, km.Lookup("?"))
}

func TestKeymapRebindDropsDefault(t *testing.T) {
	km, warnings := NewKeymap(map[string]string{"stage": "a"})
	require.Empty(t, warnings)
	assert.Equal(t, ActionStage, km.Lookup("a"))
	assert.Equal(t, ActionNone, km.Lookup("s"))
}

func TestKeymapCtrlCStaysQuit(t *testing.T) {
	km, _ := NewKeymap(map[string]string{"quit": "Q"})
	assert.Equal(t, ActionQuit, km.Lookup("Q"))
	assert.Equal(t, ActionQuit, km.Lookup("ctrl+c"))
	assert.Equal(t, ActionNone, km.Lookup("q"))
}

func TestKeymapUnknownActionWarns(t *testing.T) {
	km, warnings := NewKeymap(map[string]string{"stage_hunk": "a"})
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "stage_hunk")
	assert.Equal(t, ActionNone, km.Lookup("a"))
}
