package app

import "github.com/Carmen-Shannon/oxy-playground/engine/picking"

// FrameDriverBuilderOption is a functional option applied to a driver by NewFrameDriver.
type FrameDriverBuilderOption func(*frameDriver)

// WithRaycaster replaces the default raycaster.
//
// Parameters:
//   - r: the raycaster used for pointer picks
//
// Returns:
//   - FrameDriverBuilderOption: the option
func WithRaycaster(r picking.Raycaster) FrameDriverBuilderOption {
	return func(d *frameDriver) {
		d.raycaster = r
	}
}
