package picking

// RaycasterBuilderOption is a functional option for configuring a Raycaster during construction.
type RaycasterBuilderOption func(*raycasterImpl)

// WithRange limits hits to world distances in [near, far].
//
// Parameters:
//   - near: the minimum hit distance
//   - far: the maximum hit distance
//
// Returns:
//   - RaycasterBuilderOption: functional option to set the range
func WithRange(near, far float32) RaycasterBuilderOption {
	return func(r *raycasterImpl) {
		r.near = near
		r.far = far
	}
}

// WithLineThreshold sets how close in world units the ray must pass to a line segment to hit it.
func WithLineThreshold(threshold float32) RaycasterBuilderOption {
	return func(r *raycasterImpl) {
		r.lineThreshold = threshold
	}
}
