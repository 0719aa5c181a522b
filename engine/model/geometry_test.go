package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereGeometryCounts(t *testing.T) {
	g := NewSphereGeometry(4, 50, 50)

	assert.Equal(t, 51*51, g.VertexCount())
	// two pole rows emit one triangle per quad, all others two
	assert.Len(t, g.Indices(), (50*50*2-2*50)*3)

	center, radius := g.BoundingSphere()
	assert.InDelta(t, 0, center.Len(), 1e-4)
	assert.InDelta(t, 4, radius, 1e-4)
}

func TestBoxGeometryFacesPointOutward(t *testing.T) {
	g := NewBoxGeometry(1, 2, 3)
	require.Equal(t, 24, g.VertexCount())

	idx := g.Indices()
	normals := g.Normals()
	for tri := 0; tri < len(idx); tri += 3 {
		p0, p1, p2 := g.Vertex(idx[tri]), g.Vertex(idx[tri+1]), g.Vertex(idx[tri+2])
		faceN := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		o := idx[tri] * 3
		stored := mgl32.Vec3{normals[o], normals[o+1], normals[o+2]}
		assert.InDelta(t, 1, faceN.Dot(stored), 1e-5, "triangle %d winds inward", tri/3)
	}

	_, radius := g.BoundingSphere()
	assert.InDelta(t, mgl32.Vec3{0.5, 1, 1.5}.Len(), radius, 1e-5)
}

func TestPlaneGeometryLayout(t *testing.T) {
	g := NewPlaneGeometry(10, 10, 10, 10)
	pos := g.Positions()

	assert.Equal(t, 121, g.VertexCount())
	assert.Equal(t, []float32{-5, 5, 0}, pos[:3])
	assert.Equal(t, []float32{5, -5, 0}, pos[len(pos)-3:])
	assert.Len(t, g.Indices(), 10*10*6)
}

func TestSetNeedsUpdateInvalidatesBounds(t *testing.T) {
	g := NewPlaneGeometry(2, 2, 1, 1)
	_, r0 := g.BoundingSphere()
	v0 := g.Version()

	g.Positions()[0] = -100
	g.SetNeedsUpdate(true)

	_, r1 := g.BoundingSphere()
	assert.True(t, g.NeedsUpdate())
	assert.Greater(t, r1, r0)
	assert.Equal(t, v0+1, g.Version())

	g.SetNeedsUpdate(false)
	assert.False(t, g.NeedsUpdate())
	assert.Equal(t, v0+1, g.Version())
}

func TestEdgeIndicesAreUnique(t *testing.T) {
	g := NewPlaneGeometry(1, 1, 1, 1)
	// two triangles sharing a diagonal: 5 unique edges
	assert.Len(t, g.EdgeIndices(), 10)

	grid := NewGridGeometry(30, 30)
	assert.Equal(t, DrawModeLines, grid.DrawMode())
	assert.Equal(t, grid.Indices(), grid.EdgeIndices())
	assert.Equal(t, 31*4, grid.VertexCount())
}

func TestComputeVertexNormalsFlatQuad(t *testing.T) {
	g := NewGeometry(
		WithPositions([]float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}),
		WithIndices([]uint32{0, 1, 2, 0, 2, 3}),
	)
	g.ComputeVertexNormals()
	n := g.Normals()
	for i := 0; i < len(n); i += 3 {
		assert.InDelta(t, 1, n[i+2], 1e-6)
	}
}
