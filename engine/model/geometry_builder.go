package model

// GeometryBuilderOption is a functional option for configuring a Geometry during construction.
type GeometryBuilderOption func(*geometry)

// WithName sets the debug label of the geometry.
//
// Parameters:
//   - name: the label
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithName(name string) GeometryBuilderOption {
	return func(g *geometry) {
		g.name = name
	}
}

// WithPositions sets the position buffer (3 floats per vertex). The slice is retained, not copied.
//
// Parameters:
//   - positions: the position buffer
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithPositions(positions []float32) GeometryBuilderOption {
	return func(g *geometry) {
		g.positions = positions
	}
}

// WithNormals sets the normal buffer (3 floats per vertex).
//
// Parameters:
//   - normals: the normal buffer
//
// Returns:
//   - GeometryBuilderOption: option function to apply
func WithNormals(normals []float32) GeometryBuilderOption {
	return func(g *geometry) {
		g.normals = normals
	}
}

// WithUVs sets the texture coordinate buffer (2 floats per vertex).
func WithUVs(uvs []float32) GeometryBuilderOption {
	return func(g *geometry) {
		g.uvs = uvs
	}
}

// WithIndices sets the index buffer.
func WithIndices(indices []uint32) GeometryBuilderOption {
	return func(g *geometry) {
		g.indices = indices
	}
}

// WithDrawMode sets how indices are assembled into primitives.
func WithDrawMode(mode DrawMode) GeometryBuilderOption {
	return func(g *geometry) {
		g.drawMode = mode
	}
}
