// Package app holds the playground's scene state and drives it once per frame.
package app

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/helper"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

const (
	// BobAmplitude is the peak height of the bouncing sphere.
	BobAmplitude = 10

	// JitterMagnitude scales the random displacement of the jitter plane's vertices.
	JitterMagnitude = 10

	// HighlightColor is applied to a highlighted object under the pointer.
	HighlightColor uint32 = 0xff0000
)

// Names of the objects the frame driver animates.
const (
	NameBouncingSphere = "bouncingSphere"
	NameSpinningBox    = "spinningBox"
	NameTheBox         = "theBox"
	NameJitterPlane    = "jitterPlane"
	NameGround         = "ground"
	NameKeyLight       = "keyLight"
	NameModel          = "model"
)

// SettingsSnapshot is the set of live-tunable parameters edited through the panel.
type SettingsSnapshot struct {
	SphereColor string
	Wireframe   bool
	Speed       float64
	Angle       float64
	Penumbra    float64
	Intensity   float64
}

// DefaultSettings returns the initial panel values.
func DefaultSettings() (SettingsSnapshot, error) {
	return SettingsFromConfig(config.Default().Settings)
}

// SettingsFromConfig copies the initial values from the configuration.
//
// Parameters:
//   - c: the settings section
//
// Returns:
//   - SettingsSnapshot: the snapshot
//   - error: if the fields cannot be copied
func SettingsFromConfig(c config.SettingsConfig) (SettingsSnapshot, error) {
	var s SettingsSnapshot
	if err := copier.Copy(&s, &c); err != nil {
		return SettingsSnapshot{}, fmt.Errorf("settings from config: %w", err)
	}
	return s, nil
}

// Clone returns an independent copy of the snapshot.
func (s SettingsSnapshot) Clone() (SettingsSnapshot, error) {
	var out SettingsSnapshot
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		return SettingsSnapshot{}, fmt.Errorf("clone settings: %w", err)
	}
	return out, nil
}

// PointerNDC is the pointer position in normalized device coordinates, each axis in [-1, 1]
// with +Y up.
type PointerNDC struct {
	X float32
	Y float32
}

// Handles are the scene objects the frame driver reads and writes. They are assigned once during
// Initialize. A nil handle means the object was not configured and its step is skipped.
type Handles struct {
	BouncingSphere game_object.GameObject
	SpinningBox    game_object.GameObject
	TheBox         game_object.GameObject
	JitterPlane    game_object.GameObject

	KeyLightNode   game_object.GameObject
	KeyLight       light.Light
	KeyLightHelper helper.SpotLightHelper
}

// AppState is everything the frame driver and the input callbacks share. It is owned by the
// main thread: window callbacks, panel callbacks, loader completions and ticks all run there.
type AppState struct {
	Scene    scene.Scene
	Camera   camera.Camera
	Renderer renderer.Renderer
	Handles  Handles

	// Phase advances by Settings.Speed every tick and is never wrapped.
	Phase    float64
	Settings SettingsSnapshot
	Pointer  PointerNDC

	// Mixer is nil until a model with the configured clip has loaded.
	Mixer animator.Mixer
	Clock animator.Clock

	Picks  PickRegistry
	Random RandomSource
	Log    *zap.Logger

	width  int
	height int
}

// Resize updates the camera aspect and the renderer size. Repeating a size has no further effect,
// and a zero dimension, as reported for a minimised window, is ignored.
//
// Parameters:
//   - width: the new viewport width in pixels
//   - height: the new viewport height in pixels
func (s *AppState) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	if s.Camera != nil {
		s.Camera.SetAspect(float32(width) / float32(height))
		s.Camera.UpdateProjectionMatrix()
	}
	if s.Renderer != nil {
		s.Renderer.SetSize(width, height)
	}
}

// Viewport returns the size last accepted by Resize.
func (s *AppState) Viewport() (int, int) {
	return s.width, s.height
}

// PointerMove converts a window position in pixels to normalized device coordinates using the
// current viewport. Before the first Resize the pointer stays where it is.
//
// Parameters:
//   - x: pixels from the left edge
//   - y: pixels from the top edge
func (s *AppState) PointerMove(x, y float32) {
	if s.width <= 0 || s.height <= 0 {
		return
	}
	s.Pointer = PointerNDC{
		X: x/float32(s.width)*2 - 1,
		Y: -(y/float32(s.height))*2 + 1,
	}
}

// Object looks up a node by name anywhere in the scene.
//
// Parameters:
//   - name: the node name
//
// Returns:
//   - game_object.GameObject: the first match
//   - bool: false if no node has that name
func (s *AppState) Object(name string) (game_object.GameObject, bool) {
	if s.Scene == nil {
		return nil, false
	}
	return s.Scene.GetObjectByName(name)
}

func (s *AppState) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
