package renderer

import "go.uber.org/zap"

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. The default is MSAA4x.
//
// Parameters:
//   - count: MSAAOff or MSAA4x
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithForceSoftwareRenderer requests a CPU fallback adapter instead of hardware acceleration.
// A software Vulkan ICD such as lavapipe must be installed.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - RendererBuilderOption: a function that applies the option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithShadowMap enables the directional shadow pass from the start.
func WithShadowMap(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.shadows = enabled
	}
}

// WithBackend supplies the backend instead of creating a WebGPU one. The surface descriptor is
// then never requested.
//
// Parameters:
//   - backend: the backend to drive
//
// Returns:
//   - RendererBuilderOption: a function that applies the backend to a renderer
func WithBackend(backend RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = backend
	}
}

// WithLogger sets the logger used for skipped frames and dropped lights.
func WithLogger(l *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		r.log = l
	}
}
