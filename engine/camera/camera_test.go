package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectionAppliedOnUpdate(t *testing.T) {
	c := NewCamera(WithFov(45), WithAspect(1), WithClipPlanes(0.1, 1000))
	before := c.ProjectionMatrix()

	c.SetAspect(2)
	assert.Equal(t, before, c.ProjectionMatrix())

	c.UpdateProjectionMatrix()
	after := c.ProjectionMatrix()
	assert.InDelta(t, before.At(0, 0)/2, after.At(0, 0), 1e-6)

	c.UpdateProjectionMatrix()
	assert.Equal(t, after, c.ProjectionMatrix())
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewCamera(WithPosition(-10, 30, 30), WithTarget(0, 0, 0))
	clip := c.ViewProjectionMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	require.Greater(t, clip.W(), float32(0))

	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-5)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-5)
	depth := clip.Z() / clip.W()
	assert.True(t, depth > 0 && depth < 1)
}

func TestControllerSeededFromCamera(t *testing.T) {
	c := NewCamera(WithPosition(-10, 30, 30), WithTarget(0, 0, 0))
	cc := NewCameraController()
	c.SetController(cc)
	c.Update()

	assert.True(t, c.Position().ApproxEqualThreshold(mgl32.Vec3{-10, 30, 30}, 1e-4))
	assert.InDelta(t, mgl32.Vec3{-10, 30, 30}.Len(), cc.Radius(), 1e-4)
}

func TestControllerZoomClamps(t *testing.T) {
	cc := NewCameraController(WithRadius(10), WithRadiusLimits(5, 20), WithZoomSpeed(1))
	cc.Zoom(100)
	assert.Equal(t, float32(5), cc.Radius())
	cc.Zoom(-100)
	assert.Equal(t, float32(20), cc.Radius())
}

func TestControllerRotateKeepsRadius(t *testing.T) {
	cc := NewCameraController(WithRadius(30))
	cc.Rotate(120, -40)
	assert.InDelta(t, 30, cc.Position().Sub(cc.Target()).Len(), 1e-4)

	cc.Rotate(0, 1e6)
	assert.Less(t, cc.Elevation(), float32(1.5708))
}

func TestControllerPanMovesTargetAndPosition(t *testing.T) {
	cc := NewCameraController(WithRadius(10), WithElevation(0), WithPanSpeed(1))
	before := cc.Position().Sub(cc.Target())
	cc.Pan(1, 0, 0)

	assert.True(t, cc.Position().Sub(cc.Target()).ApproxEqualThreshold(before, 1e-5))
	assert.InDelta(t, 1, cc.Target().Len(), 1e-5)
}
