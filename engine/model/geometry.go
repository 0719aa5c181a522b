package model

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// DrawMode selects how index data is assembled into primitives.
type DrawMode int

const (
	// DrawModeTriangles treats every three indices as a triangle.
	DrawModeTriangles DrawMode = iota

	// DrawModeLines treats every two indices as a line segment.
	DrawModeLines
)

// geometry is the implementation of the Geometry interface.
type geometry struct {
	mu sync.RWMutex

	name      string
	positions []float32
	normals   []float32
	uvs       []float32
	indices   []uint32
	drawMode  DrawMode

	needsUpdate bool
	version     uint64

	boundsValid bool
	center      mgl32.Vec3
	radius      float32

	edges []uint32
}

// Geometry defines the interface for CPU-side vertex data. Position, normal and uv data are
// stored as flat float32 buffers (3, 3 and 2 components per vertex). The position buffer
// returned by Positions is the live buffer: callers may write into it and must then call
// SetNeedsUpdate(true) so the renderer re-uploads it on the next frame.
type Geometry interface {
	// Name returns a debug label.
	Name() string

	// Positions returns the live position buffer (x, y, z per vertex).
	//
	// Returns:
	//   - []float32: the position buffer
	Positions() []float32

	// Normals returns the normal buffer (x, y, z per vertex), or nil.
	//
	// Returns:
	//   - []float32: the normal buffer
	Normals() []float32

	// UVs returns the texture coordinate buffer (u, v per vertex), or nil.
	//
	// Returns:
	//   - []float32: the uv buffer
	UVs() []float32

	// Indices returns the index buffer. Non-indexed geometry returns a sequential index list.
	//
	// Returns:
	//   - []uint32: the index buffer
	Indices() []uint32

	// VertexCount returns the number of vertices.
	//
	// Returns:
	//   - int: len(Positions()) / 3
	VertexCount() int

	// Vertex returns the position of vertex i.
	//
	// Parameters:
	//   - i: the vertex index
	//
	// Returns:
	//   - mgl32.Vec3: the vertex position
	Vertex(i uint32) mgl32.Vec3

	// DrawMode returns how indices form primitives.
	//
	// Returns:
	//   - DrawMode: DrawModeTriangles or DrawModeLines
	DrawMode() DrawMode

	// NeedsUpdate reports whether the position buffer changed since the last upload.
	//
	// Returns:
	//   - bool: true if dirty
	NeedsUpdate() bool

	// SetNeedsUpdate marks or clears the dirty flag. Marking dirty also bumps Version and
	// invalidates the cached bounding sphere.
	//
	// Parameters:
	//   - needsUpdate: true after writing into Positions, false once uploaded
	SetNeedsUpdate(needsUpdate bool)

	// Version returns a counter incremented every time the geometry is marked dirty.
	//
	// Returns:
	//   - uint64: the version
	Version() uint64

	// BoundingSphere returns the bounding sphere in local space, computing it lazily.
	//
	// Returns:
	//   - mgl32.Vec3: the sphere center
	//   - float32: the sphere radius
	BoundingSphere() (mgl32.Vec3, float32)

	// EdgeIndices returns a line-list index buffer with every unique triangle edge, used for
	// wireframe rendering. Line geometry returns its own indices.
	//
	// Returns:
	//   - []uint32: pairs of vertex indices
	EdgeIndices() []uint32

	// ComputeVertexNormals regenerates smooth normals from the triangles.
	ComputeVertexNormals()
}

var _ Geometry = &geometry{}

// NewGeometry creates a new Geometry from the given options. When no index data is supplied a
// sequential index list is generated.
//
// Parameters:
//   - options: functional options to configure the geometry
//
// Returns:
//   - Geometry: the configured geometry
func NewGeometry(options ...GeometryBuilderOption) Geometry {
	g := &geometry{drawMode: DrawModeTriangles}
	for _, option := range options {
		option(g)
	}
	if g.indices == nil {
		count := len(g.positions) / 3
		g.indices = make([]uint32, count)
		for i := range g.indices {
			g.indices[i] = uint32(i)
		}
	}
	return g
}

func (g *geometry) Name() string {
	return g.name
}

func (g *geometry) Positions() []float32 {
	return g.positions
}

func (g *geometry) Normals() []float32 {
	return g.normals
}

func (g *geometry) UVs() []float32 {
	return g.uvs
}

func (g *geometry) Indices() []uint32 {
	return g.indices
}

func (g *geometry) VertexCount() int {
	return len(g.positions) / 3
}

func (g *geometry) Vertex(i uint32) mgl32.Vec3 {
	o := int(i) * 3
	return mgl32.Vec3{g.positions[o], g.positions[o+1], g.positions[o+2]}
}

func (g *geometry) DrawMode() DrawMode {
	return g.drawMode
}

func (g *geometry) NeedsUpdate() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.needsUpdate
}

func (g *geometry) SetNeedsUpdate(needsUpdate bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.needsUpdate = needsUpdate
	if needsUpdate {
		g.version++
		g.boundsValid = false
	}
}

func (g *geometry) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

func (g *geometry) BoundingSphere() (mgl32.Vec3, float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.boundsValid {
		g.center, g.radius = computeBoundingSphere(g.positions)
		g.boundsValid = true
	}
	return g.center, g.radius
}

func (g *geometry) EdgeIndices() []uint32 {
	if g.drawMode == DrawModeLines {
		return g.indices
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.edges == nil {
		g.edges = buildEdges(g.indices)
	}
	return g.edges
}

func (g *geometry) ComputeVertexNormals() {
	g.normals = generateNormals(g.positions, g.indices)
}

// computeBoundingSphere centers the sphere on the axis-aligned bounds and takes the largest
// vertex distance as the radius.
func computeBoundingSphere(positions []float32) (mgl32.Vec3, float32) {
	if len(positions) < 3 {
		return mgl32.Vec3{}, 0
	}
	minV := mgl32.Vec3{positions[0], positions[1], positions[2]}
	maxV := minV
	for i := 3; i+2 < len(positions); i += 3 {
		for c := 0; c < 3; c++ {
			minV[c] = min(minV[c], positions[i+c])
			maxV[c] = max(maxV[c], positions[i+c])
		}
	}
	center := minV.Add(maxV).Mul(0.5)

	var maxSq float32
	for i := 0; i+2 < len(positions); i += 3 {
		d := mgl32.Vec3{positions[i], positions[i+1], positions[i+2]}.Sub(center)
		maxSq = max(maxSq, d.Dot(d))
	}
	return center, math32.Sqrt(maxSq)
}

// buildEdges returns each undirected triangle edge once.
func buildEdges(indices []uint32) []uint32 {
	type edge struct{ a, b uint32 }
	seen := make(map[edge]struct{}, len(indices))
	out := make([]uint32, 0, len(indices)*2)
	for t := 0; t+2 < len(indices); t += 3 {
		tri := [3]uint32{indices[t], indices[t+1], indices[t+2]}
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			e := edge{a, b}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, a, b)
		}
	}
	return out
}

// generateNormals accumulates area-weighted face normals per vertex and normalizes them.
func generateNormals(positions []float32, indices []uint32) []float32 {
	normals := make([]float32, len(positions))
	vertex := func(i uint32) mgl32.Vec3 {
		o := i * 3
		return mgl32.Vec3{positions[o], positions[o+1], positions[o+2]}
	}
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0, p1, p2 := vertex(i0), vertex(i1), vertex(i2)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, i := range [3]uint32{i0, i1, i2} {
			normals[i*3] += n[0]
			normals[i*3+1] += n[1]
			normals[i*3+2] += n[2]
		}
	}
	for i := 0; i+2 < len(normals); i += 3 {
		n := mgl32.Vec3{normals[i], normals[i+1], normals[i+2]}
		if l := n.Len(); l > 1e-8 {
			n = n.Mul(1 / l)
		} else {
			n = mgl32.Vec3{0, 1, 0}
		}
		normals[i], normals[i+1], normals[i+2] = n[0], n[1], n[2]
	}
	return normals
}
