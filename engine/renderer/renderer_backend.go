package renderer

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May tear but gives the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount is the number of samples per pixel in the main pass. WebGPU guarantees 1 and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend executes frame plans on a GPU API. The renderer owns one backend and calls it
// from the main thread only.
type RendererBackend interface {
	// ConfigureSurface (re)creates the swap chain and size-dependent attachments.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode changes the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// Execute uploads what changed since the previous frame, records the shadow, skybox and
	// mesh passes and presents the result.
	//
	// Parameters:
	//   - plan: the frame to draw
	//
	// Returns:
	//   - error: if the surface texture could not be acquired or a resource failed to build
	Execute(plan *FramePlan) error

	// Release frees every GPU resource held by the backend.
	Release()
}
