package picking

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line with a unit Direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Transform returns the ray transformed by m. The direction is renormalized, so distances
// along the result are measured in the target space.
func (r Ray) Transform(m mgl32.Mat4) Ray {
	o := m.Mul4x1(r.Origin.Vec4(1)).Vec3()
	d := m.Mul4x1(r.Direction.Vec4(0)).Vec3()
	if l := d.Len(); l > 0 {
		d = d.Mul(1 / l)
	}
	return Ray{Origin: o, Direction: d}
}

// IntersectsSphere reports whether the ray passes within radius of center in front of the origin.
func (r Ray) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	oc := center.Sub(r.Origin)
	tca := oc.Dot(r.Direction)
	d2 := oc.Dot(oc) - tca*tca
	if d2 > radius*radius {
		return false
	}
	thc := math32.Sqrt(radius*radius - d2)
	return tca+thc >= 0
}

// triangleHit is the result of intersecting a ray with one triangle.
type triangleHit struct {
	t        float32
	backFace bool
	hit      bool
}

// intersectTriangle is the Möller–Trumbore test. It reports hits on both faces and marks which
// one was struck; counter-clockwise winding is the front face.
func (r Ray) intersectTriangle(a, b, c mgl32.Vec3) triangleHit {
	const eps = 1e-7
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if math32.Abs(det) < eps {
		return triangleHit{}
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return triangleHit{}
	}
	q := s.Cross(e1)
	v := r.Direction.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return triangleHit{}
	}
	t := e2.Dot(q) * inv
	if t < 0 {
		return triangleHit{}
	}
	return triangleHit{t: t, backFace: det < 0, hit: true}
}

// distanceSqToSegment returns the squared distance between the ray and segment [v0, v1], the
// ray parameter and the closest point on the segment.
func (r Ray) distanceSqToSegment(v0, v1 mgl32.Vec3) (float32, float32, mgl32.Vec3) {
	segCenter := v0.Add(v1).Mul(0.5)
	segDir := v1.Sub(v0)
	segExtent := segDir.Len() / 2
	if segExtent < 1e-9 {
		t := math32.Max(0, v0.Sub(r.Origin).Dot(r.Direction))
		return r.At(t).Sub(v0).LenSqr(), t, v0
	}
	segDir = segDir.Normalize()
	diff := r.Origin.Sub(segCenter)

	a01 := -r.Direction.Dot(segDir)
	b0 := diff.Dot(r.Direction)
	b1 := -diff.Dot(segDir)
	det := math32.Abs(1 - a01*a01)
	clampSeg := func(v float32) float32 { return common.Clamp(v, -segExtent, segExtent) }

	var s0, s1 float32
	if det > 1e-9 {
		s0 = a01*b1 - b0
		s1 = a01*b0 - b1
		extDet := segExtent * det
		switch {
		case s0 >= 0 && s1 >= -extDet && s1 <= extDet:
			s0 /= det
			s1 /= det
		case s0 >= 0 && s1 > extDet:
			s1 = segExtent
			s0 = math32.Max(0, -(a01*s1 + b0))
		case s0 >= 0:
			s1 = -segExtent
			s0 = math32.Max(0, -(a01*s1 + b0))
		case s1 <= -extDet:
			s0 = math32.Max(0, -(-a01*segExtent + b0))
			if s0 > 0 {
				s1 = -segExtent
			} else {
				s1 = clampSeg(-b1)
			}
		case s1 <= extDet:
			s0 = 0
			s1 = clampSeg(-b1)
		default:
			s0 = math32.Max(0, -(a01*segExtent + b0))
			if s0 > 0 {
				s1 = segExtent
			} else {
				s1 = clampSeg(-b1)
			}
		}
	} else {
		s1 = segExtent
		if a01 > 0 {
			s1 = -segExtent
		}
		s0 = math32.Max(0, -(a01*s1 + b0))
	}

	onSeg := segCenter.Add(segDir.Mul(s1))
	return r.At(s0).Sub(onSeg).LenSqr(), s0, onSeg
}
