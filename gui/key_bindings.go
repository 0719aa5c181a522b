package gui

import (
	"fmt"
	"sort"
)

// KeyBinding is one shortcut with a description for the help listing.
type KeyBinding struct {
	Key         uint32
	Description string
	Action      func() error
}

// KeyBindings maps key codes to panel actions. It replaces the on-screen controls of a GUI
// toolkit: each key press edits one setting through the Panel, so change callbacks fire exactly
// as they would for a widget.
type KeyBindings interface {
	// Bind registers an action for key, replacing any previous binding.
	//
	// Parameters:
	//   - key: the virtual key code (see common.Key*)
	//   - description: a short help text
	//   - action: the function run on key press
	Bind(key uint32, description string, action func() error)

	// Handle runs the action bound to key.
	//
	// Parameters:
	//   - key: the pressed key
	//
	// Returns:
	//   - bool: true if a binding exists
	//   - error: the action's error
	Handle(key uint32) (bool, error)

	// Bindings returns every binding sorted by key code.
	Bindings() []KeyBinding
}

type keyBindings struct {
	bindings map[uint32]KeyBinding
}

var _ KeyBindings = &keyBindings{}

// NewKeyBindings creates an empty key map.
func NewKeyBindings() KeyBindings {
	return &keyBindings{bindings: make(map[uint32]KeyBinding)}
}

func (k *keyBindings) Bind(key uint32, description string, action func() error) {
	k.bindings[key] = KeyBinding{Key: key, Description: description, Action: action}
}

func (k *keyBindings) Handle(key uint32) (bool, error) {
	b, ok := k.bindings[key]
	if !ok {
		return false, nil
	}
	if err := b.Action(); err != nil {
		return true, fmt.Errorf("key %d (%s): %w", key, b.Description, err)
	}
	return true, nil
}

func (k *keyBindings) Bindings() []KeyBinding {
	out := make([]KeyBinding, 0, len(k.bindings))
	for _, b := range k.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// ToggleAction returns an action that toggles a boolean control.
func ToggleAction(p Panel, field string) func() error {
	return func() error { return p.Toggle(field) }
}

// NudgeAction returns an action that moves a range control by steps increments.
func NudgeAction(p Panel, field string, steps float64) func() error {
	return func() error { return p.Nudge(field, steps) }
}

// CycleAction returns an action that sets a control to the next value in values, wrapping
// around. The cycle starts at values[0] on first use.
func CycleAction(p Panel, field string, values ...any) func() error {
	i := -1
	return func() error {
		if len(values) == 0 {
			return nil
		}
		i = (i + 1) % len(values)
		return p.Set(field, values[i])
	}
}
