package material

import "github.com/Carmen-Shannon/oxy-playground/common"

// MaterialBuilderOption is a functional option for configuring a Material during construction.
type MaterialBuilderOption func(*material)

// WithName sets the material identifier.
//
// Parameters:
//   - name: the material name
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithKind sets the shading model.
//
// Parameters:
//   - kind: KindStandard, KindBasic or KindLine
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithKind(kind Kind) MaterialBuilderOption {
	return func(m *material) {
		m.kind = kind
	}
}

// WithColor sets the base colour.
//
// Parameters:
//   - c: the colour
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithColor(c common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.color = c
	}
}

// WithHexColor sets the base colour from a packed 0xRRGGBB value.
//
// Parameters:
//   - hex: the packed colour
//
// Returns:
//   - MaterialBuilderOption: option function to apply
func WithHexColor(hex uint32) MaterialBuilderOption {
	return func(m *material) {
		m.color = common.ColorFromHex(hex)
	}
}

// WithWireframe sets whether the mesh is drawn as edge lines.
func WithWireframe(wireframe bool) MaterialBuilderOption {
	return func(m *material) {
		m.wireframe = wireframe
	}
}

// WithSide sets which faces are rendered.
func WithSide(side Side) MaterialBuilderOption {
	return func(m *material) {
		m.side = side
	}
}

// WithShadowSide sets which faces are rendered into shadow maps.
func WithShadowSide(side Side) MaterialBuilderOption {
	return func(m *material) {
		m.shadowSide = side
	}
}

// WithShadowBias sets the shadow sampling bias.
func WithShadowBias(bias float32) MaterialBuilderOption {
	return func(m *material) {
		m.shadowBias = bias
	}
}

// WithMetallic sets the metallic factor.
func WithMetallic(metallic float32) MaterialBuilderOption {
	return func(m *material) {
		m.metallic = metallic
	}
}

// WithRoughness sets the roughness factor.
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = roughness
	}
}
