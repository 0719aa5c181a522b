package animator

// MixerBuilderOption is a functional option for configuring a Mixer during construction.
type MixerBuilderOption func(*mixerImpl)

// WithTimeScale sets the initial mixer time scale.
//
// Parameters:
//   - scale: the multiplier applied to every Update delta
//
// Returns:
//   - MixerBuilderOption: a function that applies the time scale to a mixer
func WithTimeScale(scale float64) MixerBuilderOption {
	return func(m *mixerImpl) {
		m.timeScale = scale
	}
}
