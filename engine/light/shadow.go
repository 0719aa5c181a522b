package light

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultShadowMapSize is the default width and height in texels of a shadow depth texture.
const DefaultShadowMapSize = 512

// DefaultShadowHalfExtent is the default orthographic half-extent in world units of a
// directional light's shadow frustum.
const DefaultShadowHalfExtent float32 = 40

// ShadowConfig holds the parameters of a light's shadow camera.
type ShadowConfig struct {
	// MapSize is the width and height of the depth texture in texels.
	MapSize int

	// Near and Far bound the shadow camera depth range.
	Near float32
	Far  float32

	// HalfExtent is the half-size of the orthographic frustum in world units.
	HalfExtent float32

	// Bias is a constant depth offset added during comparison.
	Bias float32

	// NormalBiasScale multiplies the world size of one shadow texel to get the normal-offset
	// distance applied before lookup.
	NormalBiasScale float32
}

// DefaultShadowConfig returns the shadow parameters used when none are configured.
func DefaultShadowConfig() ShadowConfig {
	return ShadowConfig{
		MapSize:         DefaultShadowMapSize,
		Near:            0.5,
		Far:             500,
		HalfExtent:      DefaultShadowHalfExtent,
		Bias:            0.001,
		NormalBiasScale: 3,
	}
}

// DirectionalViewProjection builds the orthographic view-projection of a directional light
// looking from position toward target.
//
// Parameters:
//   - position: the light's world position
//   - target: the point the light aims at
//   - cfg: the shadow parameters
//
// Returns:
//   - mgl32.Mat4: the light view-projection matrix with WebGPU [0, 1] depth
func DirectionalViewProjection(position, target mgl32.Vec3, cfg ShadowConfig) mgl32.Mat4 {
	dir := target.Sub(position)
	if dir.Len() < 1e-6 {
		dir = mgl32.Vec3{0, -1, 0}
	}
	dir = dir.Normalize()

	up := mgl32.Vec3{0, 1, 0}
	if math32.Abs(dir[1]) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}

	view := mgl32.LookAtV(position, position.Add(dir), up)
	h := cfg.HalfExtent
	proj := common.OrthoZO(-h, h, -h, h, cfg.Near, cfg.Far)
	return proj.Mul4(view)
}

// NormalBias returns the world-space normal offset for the configuration.
func (c ShadowConfig) NormalBias() float32 {
	if c.MapSize <= 0 {
		return 0
	}
	return 2 * c.HalfExtent / float32(c.MapSize) * c.NormalBiasScale
}
