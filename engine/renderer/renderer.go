package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// Surface is the window the renderer presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu sync.Mutex

	backend RendererBackend
	log     *zap.Logger

	width, height int
	shadows       bool
	lastDropped   int

	// construction-time settings collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// Renderer draws a scene graph from a camera into a window surface.
type Renderer interface {
	// SetSize resizes the drawing surface. A zero or negative dimension is ignored, which is
	// what a minimised window reports.
	//
	// Parameters:
	//   - width: the surface width in pixels
	//   - height: the surface height in pixels
	SetSize(width, height int)

	// Size returns the current surface size in pixels.
	Size() (int, int)

	// SetShadowMapEnabled toggles the directional shadow pass.
	SetShadowMapEnabled(enabled bool)

	// ShadowMapEnabled reports whether the shadow pass is enabled.
	ShadowMapEnabled() bool

	// SetPresentMode changes the present mode and reconfigures the surface.
	SetPresentMode(mode PresentMode)

	// Render draws one frame.
	//
	// Parameters:
	//   - sc: the scene to draw
	//   - cam: the viewing camera
	//
	// Returns:
	//   - error: if the backend failed to draw; the frame is skipped
	Render(sc scene.Scene, cam camera.Camera) error

	// Release frees the GPU resources.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer presenting to surface. Unless WithBackend is given a WebGPU
// backend is created, which panics if no adapter or device is available.
//
// Parameters:
//   - surface: the window to draw into
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the renderer, already configured for the surface's current size
func NewRenderer(surface Surface, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		log:         logger.Log,
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
	}
	for _, opt := range options {
		opt(r)
	}

	if r.backend == nil {
		r.backend = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.log)
	}
	r.backend.SetPresentMode(r.presentMode)
	r.SetSize(surface.Width(), surface.Height())
	return r
}

func (r *renderer) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetShadowMapEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shadows = enabled
}

func (r *renderer) ShadowMapEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shadows
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
	if r.width > 0 && r.height > 0 {
		r.backend.ConfigureSurface(r.width, r.height)
	}
}

func (r *renderer) Render(sc scene.Scene, cam camera.Camera) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.width == 0 || r.height == 0 {
		return nil
	}

	plan := BuildFramePlan(sc, cam, r.shadows)
	if plan.DroppedLights != r.lastDropped {
		r.lastDropped = plan.DroppedLights
		if plan.DroppedLights > 0 {
			r.log.Warn("light block full, lights dropped",
				zap.Int("dropped", plan.DroppedLights),
				zap.String("scene", sc.Name()))
		}
	}

	if err := r.backend.Execute(plan); err != nil {
		return fmt.Errorf("render %q: %w", sc.Name(), err)
	}
	return nil
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}
