package app

import (
	"math"
	"slices"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/picking"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// FrameState reports whether the driver has ticked yet.
type FrameState int

const (
	// FrameIdle is the state before the first Tick.
	FrameIdle FrameState = iota

	// FrameRunning is the state once Tick has run.
	FrameRunning
)

// FrameDriver advances the scene once per frame and renders it.
type FrameDriver interface {
	// Tick runs one frame. In order it advances the animation mixer, spins the box, bobs the
	// sphere, applies the light settings, picks under the pointer, reacts to the hits, jitters
	// the plane and renders. A render error is logged and the frame is dropped.
	//
	// Parameters:
	//   - t: milliseconds since the loop started
	Tick(t float64)

	// State returns FrameIdle before the first Tick and FrameRunning after.
	State() FrameState

	// Hits returns a copy of the intersections of the last tick, nearest first.
	Hits() []picking.Intersection
}

type frameDriver struct {
	state     *AppState
	raycaster picking.Raycaster
	frame     FrameState
	hits      []picking.Intersection
}

var _ FrameDriver = &frameDriver{}

// NewFrameDriver creates a driver for state.
//
// Parameters:
//   - state: the state to animate and render
//   - options: functional options to configure the driver
//
// Returns:
//   - FrameDriver: the driver
func NewFrameDriver(state *AppState, options ...FrameDriverBuilderOption) FrameDriver {
	d := &frameDriver{state: state}
	for _, opt := range options {
		opt(d)
	}
	if d.raycaster == nil {
		d.raycaster = picking.NewRaycaster()
	}
	if state.Random == nil {
		state.Random = NewRandomSource()
	}
	if state.Picks == nil {
		state.Picks = NewPickRegistry()
	}
	return d
}

func (d *frameDriver) State() FrameState {
	return d.frame
}

func (d *frameDriver) Hits() []picking.Intersection {
	return slices.Clone(d.hits)
}

func (d *frameDriver) Tick(t float64) {
	s := d.state
	d.frame = FrameRunning
	seconds := float32(t / 1000)

	if s.Mixer != nil && s.Clock != nil {
		s.Mixer.Update(s.Clock.Delta())
	}

	if box := s.Handles.SpinningBox; box != nil {
		box.SetRotation(seconds, seconds, box.Rotation().Z())
	}

	s.Phase += s.Settings.Speed
	if sphere := s.Handles.BouncingSphere; sphere != nil {
		p := sphere.Position()
		sphere.SetPosition(p.X(), float32(BobAmplitude*math.Abs(math.Sin(s.Phase))), p.Z())
	}

	if l := s.Handles.KeyLight; l != nil {
		l.SetAngle(float32(s.Settings.Angle))
		l.SetPenumbra(float32(s.Settings.Penumbra))
		l.SetIntensity(float32(s.Settings.Intensity))
	}
	if h := s.Handles.KeyLightHelper; h != nil {
		h.Update()
	}

	d.pick(seconds)
	d.jitter()

	if s.Renderer == nil || s.Scene == nil || s.Camera == nil {
		return
	}
	if err := s.Renderer.Render(s.Scene, s.Camera); err != nil {
		s.logger().Warn("frame skipped", zap.Float64("t", t), zap.Error(err))
	}
}

func (d *frameDriver) pick(seconds float32) {
	s := d.state
	d.hits = d.hits[:0]
	if s.Scene == nil || s.Camera == nil {
		return
	}

	d.raycaster.SetFromCamera(mgl32.Vec2{s.Pointer.X, s.Pointer.Y}, s.Camera)
	d.hits = append(d.hits, d.raycaster.IntersectObjects(s.Scene.Children(), true)...)

	for _, hit := range d.hits {
		obj := hit.Object
		switch s.Picks.Resolve(obj.ID()) {
		case PickHighlight:
			if m := obj.Material(); m != nil {
				m.SetColor(common.ColorFromHex(HighlightColor))
			}
		case PickSyncRotation:
			obj.SetRotation(seconds, seconds, obj.Rotation().Z())
		}
	}
}

// jitter displaces the first vertex and the last position component of the jitter plane.
func (d *frameDriver) jitter() {
	s := d.state
	plane := s.Handles.JitterPlane
	if plane == nil || plane.Geometry() == nil {
		return
	}
	g := plane.Geometry()
	positions := g.Positions()
	if len(positions) < 3 {
		return
	}
	positions[0] = float32(JitterMagnitude * s.Random.Float64())
	positions[1] = float32(JitterMagnitude * s.Random.Float64())
	positions[2] = float32(JitterMagnitude * s.Random.Float64())
	positions[len(positions)-1] = float32(JitterMagnitude * s.Random.Float64())
	g.SetNeedsUpdate(true)
}
