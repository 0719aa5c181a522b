package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane represents a plane in 3D space using the equation: n·p + d = 0.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// Frustum represents the six planes of a view frustum for culling.
// Planes are oriented so that the positive half-space is inside the frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// FrustumFromMatrix extracts frustum planes from a combined projection * view matrix using
// the Gribb/Hartmann method. The near plane uses the WebGPU [0, 1] depth convention (row 2
// alone) rather than the OpenGL row3+row2 form.
//
// Parameters:
//   - viewProj: the combined view-projection matrix
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func FrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromVec4(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromVec4(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromVec4(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromVec4(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromVec4(r2)
	f.Planes[FrustumFar] = planeFromVec4(r3.Sub(r2))
	return f
}

// IntersectsSphere reports whether a bounding sphere is at least partially inside the frustum.
//
// Parameters:
//   - center: sphere center in world space
//   - radius: sphere radius
//
// Returns:
//   - bool: false only if the sphere is entirely outside one of the planes
func (f Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.Normal.Dot(center)+p.Distance < -radius {
			return false
		}
	}
	return true
}

func planeFromVec4(v mgl32.Vec4) Plane {
	p := Plane{Normal: v.Vec3(), Distance: v[3]}
	if l := p.Normal.Len(); l > 0 {
		p.Normal = p.Normal.Mul(1 / l)
		p.Distance /= l
	}
	return p
}
