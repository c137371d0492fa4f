package tui

import "fmt"

// KeyAction represents an action triggered by a key press in status mode.
type KeyAction int

const (
	ActionNone KeyAction = iota
	ActionQuit
	ActionMoveUp
	ActionMoveDown
	ActionGoToTop
	ActionGoToBottom
	ActionToggleExpand
	ActionStage
	ActionStageAll
	ActionUnstage
	ActionUnstageAll
	ActionDiscard
	ActionRefresh
	ActionOpenBranches
	ActionOpenCommitMenu
	ActionOpenPushMenu
	ActionOpenStashMenu
	ActionPull
	ActionGitCommand
	ActionShellCommand
	ActionToggleTruncate
	ActionToggleExpandFiles
	ActionToggleExpandHunks
	ActionToggleHelp
)

// actionNames are the logical names the config keymap can override.
var actionNames = map[string]KeyAction{
	"quit":          ActionQuit,
	"up":            ActionMoveUp,
	"down":          ActionMoveDown,
	"top":           ActionGoToTop,
	"bottom":        ActionGoToBottom,
	"expand":        ActionToggleExpand,
	"stage":         ActionStage,
	"stage_all":     ActionStageAll,
	"unstage":       ActionUnstage,
	"unstage_all":   ActionUnstageAll,
	"discard":       ActionDiscard,
	"refresh":       ActionRefresh,
	"branches":      ActionOpenBranches,
	"commit_menu":   ActionOpenCommitMenu,
	"push_menu":     ActionOpenPushMenu,
	"stash_menu":    ActionOpenStashMenu,
	"pull":          ActionPull,
	"git_command":   ActionGitCommand,
	"shell_command": ActionShellCommand,
	"truncate":      ActionToggleTruncate,
	"expand_files":  ActionToggleExpandFiles,
	"expand_hunks":  ActionToggleExpandHunks,
	"help":          ActionToggleHelp,
}

func defaultBindings() map[string]KeyAction {
	return map[string]KeyAction{
		"q":      ActionQuit,
		"ctrl+c": ActionQuit,
		"k":      ActionMoveUp,
		"up":     ActionMoveUp,
		"j":      ActionMoveDown,
		"down":   ActionMoveDown,
		"g":      ActionGoToTop,
		"G":      ActionGoToBottom,
		"tab":    ActionToggleExpand,
		"enter":  ActionToggleExpand,
		"s":      ActionStage,
		"S":      ActionStageAll,
		"u":      ActionUnstage,
		"U":      ActionUnstageAll,
		"x":      ActionDiscard,
		"r":      ActionRefresh,
		"b":      ActionOpenBranches,
		"c":      ActionOpenCommitMenu,
		"p":      ActionOpenPushMenu,
		"z":      ActionOpenStashMenu,
		"F":      ActionPull,
		":":      ActionGitCommand,
		"!":      ActionShellCommand,
		"w":      ActionToggleTruncate,
		"e":      ActionToggleExpandFiles,
		"E":      ActionToggleExpandHunks,
		"h":      ActionToggleHelp,
	}
}

// Keymap resolves key strings to actions.
type Keymap struct {
	bindings map[string]KeyAction
}

// NewKeymap starts from the default bindings and applies the config
// overrides. Unknown action names come back as warnings; the binding is
// skipped, never fatal.
func NewKeymap(overrides map[string]string) (Keymap, []string) {
	bindings := defaultBindings()
	var warnings []string
	for name, key := range overrides {
		action, ok := actionNames[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unrecognized keymap action %q", name))
			continue
		}
		// Drop the default key for this action before rebinding.
		// ctrl+c stays quit no matter what the keymap says.
		for k, a := range bindings {
			if a == action && k != "ctrl+c" {
				delete(bindings, k)
			}
		}
		bindings[key] = action
	}
	return Keymap{bindings: bindings}, warnings
}

// Lookup returns the action bound to a key string.
func (k Keymap) Lookup(key string) KeyAction {
	return k.bindings[key]
}
