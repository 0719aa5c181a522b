package light

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a functional option for configuring a Light during construction.
type LightBuilderOption func(*lightImpl)

// WithType sets the light type.
//
// Parameters:
//   - t: the light type
//
// Returns:
//   - LightBuilderOption: functional option to set the type
func WithType(t LightType) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightType = t
	}
}

// WithColor sets the light color.
//
// Parameters:
//   - c: the light color
//
// Returns:
//   - LightBuilderOption: functional option to set the color
func WithColor(c common.Color) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = c
	}
}

// WithHexColor sets the light color from a 0xRRGGBB value.
func WithHexColor(hex uint32) LightBuilderOption {
	return WithColor(common.ColorFromHex(hex))
}

// WithIntensity sets the brightness multiplier.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithAngle sets the spot cone half-angle in radians.
func WithAngle(angle float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.angle = common.Clamp(angle, 0, mgl32.DegToRad(90))
	}
}

// WithPenumbra sets the spot penumbra in [0, 1].
func WithPenumbra(penumbra float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.penumbra = common.Clamp(penumbra, 0, 1)
	}
}

// WithDistance sets the spot light range. Zero disables the range cutoff.
func WithDistance(distance float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.distance = distance
	}
}

// WithDecay sets the spot light falloff exponent.
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.decay = decay
	}
}

// WithTarget sets the world-space point the light aims at.
//
// Parameters:
//   - target: the target point
//
// Returns:
//   - LightBuilderOption: functional option to set the target
func WithTarget(target mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.target = target
	}
}

// WithCastShadow enables shadow casting.
func WithCastShadow(cast bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.castShadow = cast
	}
}

// WithShadow sets the shadow camera configuration.
//
// Parameters:
//   - cfg: the shadow parameters
//
// Returns:
//   - LightBuilderOption: functional option to set the shadow configuration
func WithShadow(cfg ShadowConfig) LightBuilderOption {
	return func(l *lightImpl) {
		l.shadow = cfg
	}
}
