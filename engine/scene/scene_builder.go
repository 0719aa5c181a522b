package scene

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithObjects adds initial objects to the scene root.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		s.root.Add(objects...)
	}
}

// WithFog enables exponential-squared fog.
//
// Parameters:
//   - color: the fog colour
//   - density: the fog density
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFog(color common.Color, density float32) SceneBuilderOption {
	return func(s *scene) {
		s.fog = &FogExp2{Color: color, Density: density}
	}
}

// WithClearColor sets the clear colour.
func WithClearColor(c common.Color) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = c
	}
}

// WithBackground sets the cubemap background.
func WithBackground(cube *common.CubeTextureStagingData) SceneBuilderOption {
	return func(s *scene) {
		s.background = cube
		s.bgVersion++
	}
}
