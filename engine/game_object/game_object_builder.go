package game_object

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithName sets the node name.
//
// Parameters:
//   - name: the name used by GetObjectByName lookups
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithVisible sets whether the node is drawn.
func WithVisible(visible bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.visible = visible
	}
}

// WithMesh makes the node drawable with the given geometry and material.
//
// Parameters:
//   - g: the geometry
//   - m: the material
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the drawable
func WithMesh(g model.Geometry, m material.Material) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.geometry = g
		obj.material = m
	}
}

// WithLight attaches a light to the node.
func WithLight(l light.Light) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.attachedLight = l
	}
}

// WithPosition sets the initial local position.
//
// Parameters:
//   - x, y, z: the position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the initial Euler rotation in radians.
func WithRotation(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the initial local scale.
func WithScale(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = mgl32.Vec3{x, y, z}
	}
}

// WithShadows sets the cast and receive shadow flags.
//
// Parameters:
//   - cast: true to draw into shadow maps
//   - receive: true to sample shadow maps
//
// Returns:
//   - GameObjectBuilderOption: functional option to set both flags
func WithShadows(cast, receive bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.castShadow = cast
		obj.receiveShadow = receive
	}
}
