package engine

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/profiler"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"go.uber.org/zap"
)

// engine implements the Engine interface.
type engine struct {
	window window.Window
	log    *zap.Logger
	now    func() time.Time
	sleep  func(time.Duration)

	profiler         *profiler.Profiler
	profilingEnabled bool

	preFrameHooks []func()
	frameCallback func(t float64)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	quit bool
}

// Engine drives the per-frame loop on the calling thread. Each frame it polls window events,
// runs the pre-frame hooks (which apply work completed by background goroutines), then calls the
// frame callback with the time since Run started.
//
// Everything the callbacks touch is therefore only ever mutated on one thread. The window
// system requires that thread to be the one that created the window.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables frame-rate and memory statistics in the log.
	EnableProfiler()

	// DisableProfiler disables profiling output.
	DisableProfiler()

	// ProfilerEnabled reports whether profiling output is on.
	ProfilerEnabled() bool

	// AddPreFrameHook registers a function run every frame after events are polled and before the
	// frame callback. Hooks run in registration order.
	//
	// Parameters:
	//   - hook: the function to run
	AddPreFrameHook(hook func())

	// SetFrameCallback registers the function called once per frame.
	//
	// Parameters:
	//   - callback: receives the milliseconds elapsed since Run started
	SetFrameCallback(callback func(t float64))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the loop and blocks until the window closes or Quit is called.
	//
	// Returns:
	//   - error: if a frame panicked; the loop stops after logging it
	Run() error

	// Quit stops the loop after the current frame. Safe to call from callbacks and more than once.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, profiling, frame limit, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		log:   logger.Log,
		now:   time.Now,
		sleep: time.Sleep,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.log))
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) ProfilerEnabled() bool {
	return e.profilingEnabled
}

func (e *engine) AddPreFrameHook(hook func()) {
	e.preFrameHooks = append(e.preFrameHooks, hook)
}

func (e *engine) SetFrameCallback(callback func(t float64)) {
	e.frameCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Quit() {
	e.quit = true
}

func (e *engine) Run() (err error) {
	if e.window == nil {
		return fmt.Errorf("engine: no window")
	}

	// A panic in a frame stops the loop instead of leaving the window hung.
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("frame panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("frame panicked: %v", r)
		}
	}()

	start := e.now()
	for !e.quit && e.window.PollEvents() {
		frameStart := e.now()

		for _, hook := range e.preFrameHooks {
			hook()
		}
		if e.frameCallback != nil {
			e.frameCallback(float64(frameStart.Sub(start)) / float64(time.Millisecond))
		}

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
				e.sleep(remaining)
			}
		}
	}
	return nil
}
