package app

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/loader"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"github.com/Carmen-Shannon/oxy-playground/gui"
	"go.uber.org/zap"
)

// Controller connects window input, the settings panel and background completions to an
// AppState and its FrameDriver.
type Controller interface {
	// State returns the controlled state.
	State() *AppState

	// Driver returns the frame driver.
	Driver() FrameDriver

	// Panel returns the settings panel bound to State().Settings.
	Panel() gui.Panel

	// Keys returns the keyboard shortcuts.
	Keys() gui.KeyBindings

	// Attach registers the controller's handlers on w.
	Attach(w window.Window)

	// PreFrame delivers finished model loads and settings file changes. Run it every frame
	// before Frame.
	PreFrame()

	// Frame ticks the driver.
	//
	// Parameters:
	//   - t: milliseconds since the loop started
	Frame(t float64)

	Resize(width, height int)
	PointerMove(x, y float32)
	MouseButton(button window.MouseButton, pressed bool, x, y float32)
	Scroll(delta float32)
	KeyDown(key uint32)

	// Close stops the settings watcher.
	//
	// Returns:
	//   - error: from the watcher
	Close() error
}

// ProfilerControl switches frame statistics on and off. engine.Engine implements it.
type ProfilerControl interface {
	EnableProfiler()
	DisableProfiler()
	ProfilerEnabled() bool
}

type controller struct {
	state  *AppState
	driver FrameDriver
	panel  gui.Panel
	keys   gui.KeyBindings
	subs   []gui.Subscription

	loader       loader.Loader
	settingsFile string
	watcher      gui.Watcher
	palette      []any
	profiler     ProfilerControl

	dragging bool
	lastX    float32
	lastY    float32
}

var _ Controller = &controller{}

// NewController binds the panel controls and key shortcuts for state and starts watching the
// settings file when one is configured.
//
// Parameters:
//   - state: the state built by Initialize
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the controller
//   - error: if the settings file cannot be watched
func NewController(state *AppState, options ...ControllerBuilderOption) (Controller, error) {
	c := &controller{
		state:   state,
		palette: []any{"#ffea00", "#ff00ff", "#00ffff", "#0000ff"},
	}
	for _, opt := range options {
		opt(c)
	}
	if c.driver == nil {
		c.driver = NewFrameDriver(state)
	}

	c.panel = gui.NewPanel("playground", gui.WithLogger(state.logger()))
	c.bindPanel()
	c.keys = gui.NewKeyBindings()
	c.bindKeys()

	if c.settingsFile != "" {
		w, err := gui.NewWatcher(c.settingsFile, c.panel, gui.WithWatcherLogger(state.logger()))
		if err != nil {
			return nil, err
		}
		c.watcher = w
	}
	return c, nil
}

func (c *controller) bindPanel() {
	s := c.state
	c.subs = append(c.subs,
		c.panel.BindColor(&s.Settings, "SphereColor", func(v string) {
			if sphere := s.Handles.BouncingSphere; sphere != nil && sphere.Material() != nil {
				sphere.Material().SetColor(config.Color(v))
			}
		}),
		c.panel.BindBoolean(&s.Settings, "Wireframe", func(v bool) {
			if sphere := s.Handles.BouncingSphere; sphere != nil && sphere.Material() != nil {
				sphere.Material().SetWireframe(v)
			}
		}),
		c.panel.BindRange(&s.Settings, "Speed", 0, 0.1, 0.001, nil),
		c.panel.BindRange(&s.Settings, "Angle", 0, 1, 0.01, nil),
		c.panel.BindRange(&s.Settings, "Penumbra", 0, 1, 0.01, nil),
		c.panel.BindRange(&s.Settings, "Intensity", 0, 1, 0.01, nil),
	)
}

func (c *controller) bindKeys() {
	p := c.panel
	c.keys.Bind(common.KeySpace, "toggle sphere wireframe", gui.ToggleAction(p, "Wireframe"))
	c.keys.Bind(common.KeyC, "cycle sphere colour", gui.CycleAction(p, "SphereColor", c.palette...))
	c.keys.Bind(common.KeyEqual, "faster bounce", gui.NudgeAction(p, "Speed", 1))
	c.keys.Bind(common.KeyMinus, "slower bounce", gui.NudgeAction(p, "Speed", -1))
	c.keys.Bind(common.KeyU, "widen spot angle", gui.NudgeAction(p, "Angle", 1))
	c.keys.Bind(common.KeyJ, "narrow spot angle", gui.NudgeAction(p, "Angle", -1))
	c.keys.Bind(common.KeyI, "soften spot edge", gui.NudgeAction(p, "Penumbra", 5))
	c.keys.Bind(common.KeyK, "harden spot edge", gui.NudgeAction(p, "Penumbra", -5))
	c.keys.Bind(common.KeyY, "brighter spot", gui.NudgeAction(p, "Intensity", 5))
	c.keys.Bind(common.KeyH, "dimmer spot", gui.NudgeAction(p, "Intensity", -5))

	c.keys.Bind(common.KeyW, "pan forward", c.pan(0, 0, 1))
	c.keys.Bind(common.KeyS, "pan back", c.pan(0, 0, -1))
	c.keys.Bind(common.KeyA, "pan left", c.pan(-1, 0, 0))
	c.keys.Bind(common.KeyD, "pan right", c.pan(1, 0, 0))
	c.keys.Bind(common.KeyE, "pan up", c.pan(0, 1, 0))
	c.keys.Bind(common.KeyQ, "pan down", c.pan(0, -1, 0))

	c.keys.Bind(common.KeyLeft, "orbit left", c.orbit(camera.CameraController.OrbitLeft))
	c.keys.Bind(common.KeyRight, "orbit right", c.orbit(camera.CameraController.OrbitRight))
	c.keys.Bind(common.KeyUp, "orbit up", c.orbit(camera.CameraController.OrbitUp))
	c.keys.Bind(common.KeyDown, "orbit down", c.orbit(camera.CameraController.OrbitDown))

	if c.profiler != nil {
		c.keys.Bind(common.KeyP, "toggle profiler", func() error {
			if c.profiler.ProfilerEnabled() {
				c.profiler.DisableProfiler()
			} else {
				c.profiler.EnableProfiler()
			}
			return nil
		})
	}
}

func (c *controller) orbit(step func(camera.CameraController)) func() error {
	return func() error {
		cam := c.state.Camera
		if cam == nil || cam.Controller() == nil {
			return nil
		}
		step(cam.Controller())
		cam.Update()
		return nil
	}
}

func (c *controller) pan(right, up, forward float32) func() error {
	return func() error {
		cam := c.state.Camera
		if cam == nil || cam.Controller() == nil {
			return nil
		}
		cam.Controller().Pan(right, up, forward)
		cam.Update()
		return nil
	}
}

func (c *controller) State() *AppState {
	return c.state
}

func (c *controller) Driver() FrameDriver {
	return c.driver
}

func (c *controller) Panel() gui.Panel {
	return c.panel
}

func (c *controller) Keys() gui.KeyBindings {
	return c.keys
}

func (c *controller) Attach(w window.Window) {
	w.SetResizeCallback(c.Resize)
	w.SetMouseMoveCallback(c.PointerMove)
	w.SetMouseButtonCallback(c.MouseButton)
	w.SetScrollCallback(c.Scroll)
	w.SetKeyDownCallback(c.KeyDown)
	c.Resize(w.Width(), w.Height())
}

func (c *controller) PreFrame() {
	if c.loader != nil {
		c.loader.Dispatch()
	}
	if c.watcher != nil {
		c.watcher.Drain()
	}
}

func (c *controller) Frame(t float64) {
	c.driver.Tick(t)
}

func (c *controller) Resize(width, height int) {
	c.state.Resize(width, height)
}

func (c *controller) PointerMove(x, y float32) {
	if c.dragging {
		if cam := c.state.Camera; cam != nil && cam.Controller() != nil {
			cam.Controller().Rotate(x-c.lastX, y-c.lastY)
			cam.Update()
		}
	}
	c.lastX, c.lastY = x, y
	c.state.PointerMove(x, y)
}

func (c *controller) MouseButton(button window.MouseButton, pressed bool, x, y float32) {
	if button != window.MouseButtonLeft {
		return
	}
	c.dragging = pressed
	c.lastX, c.lastY = x, y
}

func (c *controller) Scroll(delta float32) {
	cam := c.state.Camera
	if cam == nil || cam.Controller() == nil {
		return
	}
	cam.Controller().Zoom(delta)
	cam.Update()
}

func (c *controller) KeyDown(key uint32) {
	if _, err := c.keys.Handle(key); err != nil {
		c.state.logger().Warn("key binding failed", zap.Uint32("key", key), zap.Error(err))
	}
}

func (c *controller) Close() error {
	var err error
	for _, sub := range c.subs {
		sub.Unbind()
	}
	if c.watcher != nil {
		err = errors.Join(err, c.watcher.Close())
	}
	return err
}
