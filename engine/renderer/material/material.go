package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
)

// Kind selects the shading model used by the renderer.
type Kind int

const (
	// KindStandard is lit by ambient, directional and spot lights and receives fog and shadows.
	KindStandard Kind = iota

	// KindBasic ignores lights and is drawn with its flat colour (fog still applies).
	KindBasic

	// KindLine is an unlit material for line geometry such as helpers and grids.
	KindLine
)

// Side selects which triangle faces are rendered.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// material is the implementation of the Material interface.
type material struct {
	mu sync.RWMutex

	name       string
	kind       Kind
	color      common.Color
	wireframe  bool
	side       Side
	shadowSide Side
	shadowBias float32
	metallic   float32
	roughness  float32
	version    uint64
}

// Material defines the interface for a surface material. All setters are safe to call from
// settings callbacks while the renderer reads the material on the same thread; every change
// bumps Version so the renderer can skip re-uploading unchanged uniforms.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Kind returns the shading model.
	//
	// Returns:
	//   - Kind: KindStandard, KindBasic or KindLine
	Kind() Kind

	// Color returns the current base colour.
	//
	// Returns:
	//   - common.Color: the base colour
	Color() common.Color

	// SetColor replaces the base colour.
	//
	// Parameters:
	//   - c: the new colour
	SetColor(c common.Color)

	// Wireframe reports whether triangle meshes are drawn as edge lines.
	//
	// Returns:
	//   - bool: true if wireframe
	Wireframe() bool

	// SetWireframe toggles wireframe rendering.
	//
	// Parameters:
	//   - wireframe: true to draw edges only
	SetWireframe(wireframe bool)

	// Side returns which faces are rendered in the colour pass.
	//
	// Returns:
	//   - Side: FrontSide, BackSide or DoubleSide
	Side() Side

	// ShadowSide returns which faces are rendered into shadow maps.
	//
	// Returns:
	//   - Side: the shadow side
	ShadowSide() Side

	// SetShadowSide sets which faces are rendered into shadow maps.
	//
	// Parameters:
	//   - side: the shadow side
	SetShadowSide(side Side)

	// ShadowBias returns the per-material depth offset applied when sampling the shadow map.
	//
	// Returns:
	//   - float32: the bias (usually small and negative)
	ShadowBias() float32

	// SetShadowBias sets the per-material shadow bias.
	//
	// Parameters:
	//   - bias: the bias
	SetShadowBias(bias float32)

	// Metallic returns the metallic factor in [0, 1].
	Metallic() float32

	// Roughness returns the roughness factor in [0, 1].
	Roughness() float32

	// Version returns a counter incremented on every mutation.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64
}

var _ Material = &material{}

// NewMaterial creates a new Material. Defaults to a white standard material, front side,
// roughness 1.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the configured material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		kind:       KindStandard,
		color:      common.Color{R: 1, G: 1, B: 1},
		side:       FrontSide,
		shadowSide: FrontSide,
		roughness:  1,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Kind() Kind {
	return m.kind
}

func (m *material) Color() common.Color {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.color
}

func (m *material) SetColor(c common.Color) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.color = c
	m.version++
}

func (m *material) Wireframe() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.wireframe
}

func (m *material) SetWireframe(wireframe bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wireframe = wireframe
	m.version++
}

func (m *material) Side() Side {
	return m.side
}

func (m *material) ShadowSide() Side {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shadowSide
}

func (m *material) SetShadowSide(side Side) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shadowSide = side
	m.version++
}

func (m *material) ShadowBias() float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.shadowBias
}

func (m *material) SetShadowBias(bias float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shadowBias = bias
	m.version++
}

func (m *material) Metallic() float32 {
	return m.metallic
}

func (m *material) Roughness() float32 {
	return m.roughness
}

func (m *material) Version() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// FromImported builds a standard material from properties read out of a model file.
//
// Parameters:
//   - imported: the imported material properties
//
// Returns:
//   - Material: the converted material
func FromImported(imported common.ImportedMaterial) Material {
	side := FrontSide
	if imported.DoubleSided {
		side = DoubleSide
	}
	return NewMaterial(
		WithName(imported.Name),
		WithColor(common.Color{R: imported.BaseColor[0], G: imported.BaseColor[1], B: imported.BaseColor[2]}),
		WithMetallic(imported.Metallic),
		WithRoughness(imported.Roughness),
		WithSide(side),
	)
}
