package app

import "github.com/Carmen-Shannon/oxy-playground/engine/scene"

// PickBehavior is what happens to an object while it is under the pointer.
type PickBehavior int

const (
	// PickNone leaves the object alone.
	PickNone PickBehavior = iota

	// PickHighlight sets the object's material colour to HighlightColor.
	PickHighlight

	// PickSyncRotation sets the object's X and Y rotation to the frame time in seconds.
	PickSyncRotation
)

// String returns a readable name for the behaviour.
func (b PickBehavior) String() string {
	switch b {
	case PickNone:
		return "none"
	case PickHighlight:
		return "highlight"
	case PickSyncRotation:
		return "sync-rotation"
	default:
		return "unknown"
	}
}

// PickRegistry maps object IDs to pick behaviours. Names are resolved to IDs when registered,
// so per-frame lookups never walk the scene.
type PickRegistry interface {
	// Register sets the behaviour for an object ID.
	//
	// Parameters:
	//   - id: the object ID
	//   - behavior: what to do while the object is hit
	Register(id uint64, behavior PickBehavior)

	// RegisterByName resolves name in sc and registers the match.
	//
	// Parameters:
	//   - sc: the scene to search
	//   - name: the object name
	//   - behavior: what to do while the object is hit
	//
	// Returns:
	//   - bool: false if no object has that name
	RegisterByName(sc scene.Scene, name string, behavior PickBehavior) bool

	// Resolve returns the behaviour for id, PickNone when unregistered.
	Resolve(id uint64) PickBehavior

	// Len returns the number of registered objects.
	Len() int
}

type pickRegistry struct {
	byID map[uint64]PickBehavior
}

var _ PickRegistry = &pickRegistry{}

// NewPickRegistry creates an empty registry.
func NewPickRegistry() PickRegistry {
	return &pickRegistry{byID: make(map[uint64]PickBehavior)}
}

func (r *pickRegistry) Register(id uint64, behavior PickBehavior) {
	if behavior == PickNone {
		delete(r.byID, id)
		return
	}
	r.byID[id] = behavior
}

func (r *pickRegistry) RegisterByName(sc scene.Scene, name string, behavior PickBehavior) bool {
	if sc == nil {
		return false
	}
	obj, ok := sc.GetObjectByName(name)
	if !ok {
		return false
	}
	r.Register(obj.ID(), behavior)
	return true
}

func (r *pickRegistry) Resolve(id uint64) PickBehavior {
	return r.byID[id]
}

func (r *pickRegistry) Len() int {
	return len(r.byID)
}
