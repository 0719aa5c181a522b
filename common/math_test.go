package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveZODepthRange(t *testing.T) {
	p := PerspectiveZO(mgl32.DegToRad(45), 1.5, 0.1, 1000)

	near := p.Mul4x1(mgl32.Vec4{0, 0, -0.1, 1})
	far := p.Mul4x1(mgl32.Vec4{0, 0, -1000, 1})

	assert.InDelta(t, 0.0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1.0, far[2]/far[3], 1e-4)
}

func TestOrthoZODepthRange(t *testing.T) {
	o := OrthoZO(-10, 10, -10, 10, 0.5, 500)

	near := o.Mul4x1(mgl32.Vec4{0, 0, -0.5, 1})
	far := o.Mul4x1(mgl32.Vec4{0, 0, -500, 1})

	assert.InDelta(t, 0.0, near[2], 1e-5)
	assert.InDelta(t, 1.0, far[2], 1e-5)
}

func TestQuatToEulerXYZInvertsEulerXYZ(t *testing.T) {
	rot := mgl32.Vec3{0.3, -0.7, 1.1}
	q := mgl32.Mat4ToQuat(EulerXYZ(rot))

	got := QuatToEulerXYZ(q)
	for i := range rot {
		assert.InDelta(t, rot[i], got[i], 1e-4)
	}
}

func TestComposeMatrixTranslatesAfterRotating(t *testing.T) {
	m := ComposeMatrix(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, mgl32.DegToRad(90), 0}, mgl32.Vec3{2, 2, 2})
	p := TransformPoint(m, mgl32.Vec3{1, 0, 0})

	assert.InDelta(t, 1.0, p[0], 1e-5)
	assert.InDelta(t, 2.0, p[1], 1e-5)
	assert.InDelta(t, 1.0, p[2], 1e-5)
	assert.InDelta(t, 2.0, MaxScale(m), 1e-5)
}

func TestFrustumIntersectsSphere(t *testing.T) {
	proj := PerspectiveZO(mgl32.DegToRad(45), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	f := FrustumFromMatrix(proj.Mul4(view))

	assert.True(t, f.IntersectsSphere(mgl32.Vec3{0, 0, 0}, 1))
	assert.False(t, f.IntersectsSphere(mgl32.Vec3{0, 0, 20}, 1), "behind the camera")
	assert.False(t, f.IntersectsSphere(mgl32.Vec3{500, 0, 0}, 1), "far to the side")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.1, Clamp(0.5, 0.0, 0.1))
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, "b", Clamp("b", "a", "c"))
}
