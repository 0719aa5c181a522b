package light

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeAmbient lights every fragment uniformly with no direction.
	LightTypeAmbient LightType = iota

	// LightTypeDirectional shines along the direction from the owning node toward its target.
	// It has no attenuation and is the only type that renders a shadow map.
	LightTypeDirectional

	// LightTypeSpot emits a cone from the owning node toward its target. The cone's half-angle
	// is Angle and Penumbra softens its edge.
	LightTypeSpot
)

// String returns a readable name for the light type.
func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	case LightTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

type lightImpl struct {
	mu         sync.RWMutex
	lightType  LightType
	color      common.Color
	intensity  float32
	angle      float32
	penumbra   float32
	distance   float32
	decay      float32
	target     mgl32.Vec3
	castShadow bool
	shadow     ShadowConfig
}

// Light defines the interface for a light source.
//
// A Light carries no position of its own: it is attached to a scene node and takes that node's
// world position when the renderer packs it. Type-specific properties return their stored
// values for every type and are ignored where they do not apply.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type
	Type() LightType

	// Color returns the light color.
	//
	// Returns:
	//   - common.Color: the RGB color
	Color() common.Color

	// SetColor sets the light color.
	//
	// Parameters:
	//   - c: the new color
	SetColor(c common.Color)

	// Intensity returns the scalar brightness multiplier.
	//
	// Returns:
	//   - float32: the intensity
	Intensity() float32

	// SetIntensity sets the scalar brightness multiplier.
	//
	// Parameters:
	//   - intensity: the new intensity
	SetIntensity(intensity float32)

	// Angle returns the spot cone half-angle in radians.
	//
	// Returns:
	//   - float32: the angle
	Angle() float32

	// SetAngle sets the spot cone half-angle in radians, clamped to [0, π/2].
	//
	// Parameters:
	//   - angle: the new angle
	SetAngle(angle float32)

	// Penumbra returns the fraction of the cone that is attenuated, in [0, 1].
	//
	// Returns:
	//   - float32: the penumbra
	Penumbra() float32

	// SetPenumbra sets the penumbra, clamped to [0, 1].
	//
	// Parameters:
	//   - penumbra: the new penumbra
	SetPenumbra(penumbra float32)

	// Distance returns the maximum range of a spot light; 0 means unlimited.
	//
	// Returns:
	//   - float32: the range
	Distance() float32

	// Decay returns the distance falloff exponent of a spot light.
	//
	// Returns:
	//   - float32: the decay
	Decay() float32

	// Target returns the world-space point the light aims at.
	//
	// Returns:
	//   - mgl32.Vec3: the target point
	Target() mgl32.Vec3

	// SetTarget sets the world-space point the light aims at.
	//
	// Parameters:
	//   - target: the new target point
	SetTarget(target mgl32.Vec3)

	// CastShadow reports whether the light renders a shadow map.
	//
	// Returns:
	//   - bool: true if shadows are enabled for this light
	CastShadow() bool

	// SetCastShadow enables or disables shadow casting.
	//
	// Parameters:
	//   - cast: true to cast shadows
	SetCastShadow(cast bool)

	// Shadow returns the shadow camera configuration.
	//
	// Returns:
	//   - ShadowConfig: the shadow parameters
	Shadow() ShadowConfig

	// SetShadow replaces the shadow camera configuration.
	//
	// Parameters:
	//   - cfg: the new shadow parameters
	SetShadow(cfg ShadowConfig)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light from the given options. Defaults to a white directional light
// of intensity 1 aimed at the origin.
//
// Parameters:
//   - options: functional options to configure the light
//
// Returns:
//   - Light: the new light
func NewLight(options ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType: LightTypeDirectional,
		color:     common.Color{R: 1, G: 1, B: 1},
		intensity: 1,
		angle:     mgl32.DegToRad(60),
		decay:     2,
		shadow:    DefaultShadowConfig(),
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Color() common.Color {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.color
}

func (l *lightImpl) SetColor(c common.Color) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = c
}

func (l *lightImpl) Intensity() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.intensity
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.intensity = intensity
}

func (l *lightImpl) Angle() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.angle
}

func (l *lightImpl) SetAngle(angle float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.angle = common.Clamp(angle, 0, mgl32.DegToRad(90))
}

func (l *lightImpl) Penumbra() float32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.penumbra
}

func (l *lightImpl) SetPenumbra(penumbra float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.penumbra = common.Clamp(penumbra, 0, 1)
}

func (l *lightImpl) Distance() float32 {
	return l.distance
}

func (l *lightImpl) Decay() float32 {
	return l.decay
}

func (l *lightImpl) Target() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.target
}

func (l *lightImpl) SetTarget(target mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = target
}

func (l *lightImpl) CastShadow() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.castShadow
}

func (l *lightImpl) SetCastShadow(cast bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.castShadow = cast
}

func (l *lightImpl) Shadow() ShadowConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.shadow
}

func (l *lightImpl) SetShadow(cfg ShadowConfig) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shadow = cfg
}
