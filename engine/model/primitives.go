package model

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NewSphereGeometry builds a UV sphere centered on the origin. Vertices are laid out in
// (heightSegments+1) rows of (widthSegments+1) columns; the pole rows emit a single
// triangle per quad.
//
// Parameters:
//   - radius: sphere radius
//   - widthSegments: horizontal segments (minimum 3)
//   - heightSegments: vertical segments (minimum 2)
//
// Returns:
//   - Geometry: the sphere geometry
func NewSphereGeometry(radius float32, widthSegments, heightSegments int) Geometry {
	widthSegments = max(3, widthSegments)
	heightSegments = max(2, heightSegments)

	count := (widthSegments + 1) * (heightSegments + 1)
	positions := make([]float32, 0, count*3)
	normals := make([]float32, 0, count*3)
	uvs := make([]float32, 0, count*2)

	for iy := 0; iy <= heightSegments; iy++ {
		v := float32(iy) / float32(heightSegments)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)

			x := -radius * math32.Cos(u*2*math32.Pi) * math32.Sin(v*math32.Pi)
			y := radius * math32.Cos(v*math32.Pi)
			z := radius * math32.Sin(u*2*math32.Pi) * math32.Sin(v*math32.Pi)
			positions = append(positions, x, y, z)

			n := mgl32.Vec3{x, y, z}
			if l := n.Len(); l > 0 {
				n = n.Mul(1 / l)
			}
			normals = append(normals, n[0], n[1], n[2])
			uvs = append(uvs, u, 1-v)
		}
	}

	row := widthSegments + 1
	indices := make([]uint32, 0, widthSegments*heightSegments*6)
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint32(iy*row + ix + 1)
			b := uint32(iy*row + ix)
			c := uint32((iy+1)*row + ix)
			d := uint32((iy+1)*row + ix + 1)
			if iy != 0 {
				indices = append(indices, a, b, d)
			}
			if iy != heightSegments-1 {
				indices = append(indices, b, c, d)
			}
		}
	}

	return NewGeometry(
		WithName("sphere"),
		WithPositions(positions),
		WithNormals(normals),
		WithUVs(uvs),
		WithIndices(indices),
	)
}

// boxFace describes one face of a box by its outward normal and in-plane axes with u × v = n.
type boxFace struct {
	n, u, v mgl32.Vec3
}

var boxFaces = [6]boxFace{
	{n: mgl32.Vec3{1, 0, 0}, u: mgl32.Vec3{0, 0, -1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{-1, 0, 0}, u: mgl32.Vec3{0, 0, 1}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, -1}},
	{n: mgl32.Vec3{0, -1, 0}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 0, 1}},
	{n: mgl32.Vec3{0, 0, 1}, u: mgl32.Vec3{1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
	{n: mgl32.Vec3{0, 0, -1}, u: mgl32.Vec3{-1, 0, 0}, v: mgl32.Vec3{0, 1, 0}},
}

// NewBoxGeometry builds an axis-aligned box centered on the origin with four vertices per
// face so each face has flat normals.
//
// Parameters:
//   - width, height, depth: box extents along X, Y and Z
//
// Returns:
//   - Geometry: the box geometry
func NewBoxGeometry(width, height, depth float32) Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	extent := func(axis mgl32.Vec3) float32 {
		return math32.Abs(axis[0])*half[0] + math32.Abs(axis[1])*half[1] + math32.Abs(axis[2])*half[2]
	}

	positions := make([]float32, 0, 24*3)
	normals := make([]float32, 0, 24*3)
	uvs := make([]float32, 0, 24*2)
	indices := make([]uint32, 0, 36)

	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for f, face := range boxFaces {
		hn, hu, hv := extent(face.n), extent(face.u), extent(face.v)
		for _, c := range corners {
			p := face.n.Mul(hn).Add(face.u.Mul(c[0] * hu)).Add(face.v.Mul(c[1] * hv))
			positions = append(positions, p[0], p[1], p[2])
			normals = append(normals, face.n[0], face.n[1], face.n[2])
			uvs = append(uvs, (c[0]+1)/2, 1-(c[1]+1)/2)
		}
		base := uint32(f * 4)
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return NewGeometry(
		WithName("box"),
		WithPositions(positions),
		WithNormals(normals),
		WithUVs(uvs),
		WithIndices(indices),
	)
}

// NewPlaneGeometry builds a plane in the XY plane facing +Z. The first vertex is the top-left
// corner (-width/2, height/2, 0) and rows run downward.
//
// Parameters:
//   - width, height: plane extents
//   - widthSegments, heightSegments: subdivisions (minimum 1)
//
// Returns:
//   - Geometry: the plane geometry
func NewPlaneGeometry(width, height float32, widthSegments, heightSegments int) Geometry {
	gridX := max(1, widthSegments)
	gridY := max(1, heightSegments)
	segW := width / float32(gridX)
	segH := height / float32(gridY)

	count := (gridX + 1) * (gridY + 1)
	positions := make([]float32, 0, count*3)
	normals := make([]float32, 0, count*3)
	uvs := make([]float32, 0, count*2)

	for iy := 0; iy <= gridY; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix <= gridX; ix++ {
			x := float32(ix)*segW - width/2
			positions = append(positions, x, -y, 0)
			normals = append(normals, 0, 0, 1)
			uvs = append(uvs, float32(ix)/float32(gridX), 1-float32(iy)/float32(gridY))
		}
	}

	row := uint32(gridX + 1)
	indices := make([]uint32, 0, gridX*gridY*6)
	for iy := uint32(0); iy < uint32(gridY); iy++ {
		for ix := uint32(0); ix < uint32(gridX); ix++ {
			a := ix + row*iy
			b := ix + row*(iy+1)
			c := ix + 1 + row*(iy+1)
			d := ix + 1 + row*iy
			indices = append(indices, a, b, d, b, c, d)
		}
	}

	return NewGeometry(
		WithName("plane"),
		WithPositions(positions),
		WithNormals(normals),
		WithUVs(uvs),
		WithIndices(indices),
	)
}

// NewGridGeometry builds a square line grid on the XZ plane.
//
// Parameters:
//   - size: total side length
//   - divisions: number of cells per side
//
// Returns:
//   - Geometry: a DrawModeLines geometry
func NewGridGeometry(size float32, divisions int) Geometry {
	divisions = max(1, divisions)
	step := size / float32(divisions)
	half := size / 2

	positions := make([]float32, 0, (divisions+1)*12)
	for i := 0; i <= divisions; i++ {
		k := -half + float32(i)*step
		positions = append(positions,
			-half, 0, k, half, 0, k,
			k, 0, -half, k, 0, half,
		)
	}

	return NewGeometry(
		WithName("grid"),
		WithPositions(positions),
		WithDrawMode(DrawModeLines),
	)
}

// NewLineGeometry builds a line-list geometry with room for the given number of segments.
// Positions start zeroed and are expected to be rewritten by the owner.
//
// Parameters:
//   - segments: the number of line segments
//
// Returns:
//   - Geometry: a DrawModeLines geometry
func NewLineGeometry(segments int) Geometry {
	return NewGeometry(
		WithName("lines"),
		WithPositions(make([]float32, segments*6)),
		WithDrawMode(DrawModeLines),
	)
}
