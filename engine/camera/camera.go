package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu sync.Mutex

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	projection mgl32.Mat4

	controller CameraController
}

// Camera defines the interface for a perspective camera.
//
// Projection parameters are applied only when UpdateProjectionMatrix is called, so a caller can
// change several of them and pay for one rebuild. The view matrix is derived from position and
// target on every read. If a CameraController is attached, Update copies its position and target
// into the camera.
type Camera interface {
	// Fov returns the vertical field of view in degrees.
	//
	// Returns:
	//   - float32: field of view in degrees
	Fov() float32

	// SetFov sets the vertical field of view in degrees.
	//
	// Parameters:
	//   - fov: field of view in degrees
	SetFov(fov float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the new aspect ratio
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// SetPosition sets the camera's world-space position.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at point
	Target() mgl32.Vec3

	// LookAt aims the camera at a world-space point.
	//
	// Parameters:
	//   - x, y, z: the look-at point
	LookAt(x, y, z float32)

	// Up returns the camera's up vector.
	Up() mgl32.Vec3

	// UpdateProjectionMatrix rebuilds the projection from fov, aspect, near and far.
	UpdateProjectionMatrix()

	// ViewMatrix returns the world-to-view transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the projection built by the last UpdateProjectionMatrix call.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix with WebGPU [0, 1] depth
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// Controller returns the attached CameraController, or nil.
	Controller() CameraController

	// SetController attaches a controller. The controller is re-seeded from the camera's current
	// position and target.
	//
	// Parameters:
	//   - cc: the controller, or nil to detach
	SetController(cc CameraController)

	// Update copies position and target from the attached controller. It does nothing without one.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera. Defaults: fov 45°, aspect 1, near 0.1, far 1000, at the
// origin looking down -Z.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		up:     mgl32.Vec3{0, 1, 0},
		target: mgl32.Vec3{0, 0, -1},
		fov:    45,
		aspect: 1,
		near:   0.1,
		far:    1000,
	}
	for _, opt := range options {
		opt(c)
	}
	c.UpdateProjectionMatrix()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) SetFov(fov float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fov = fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = mgl32.Vec3{x, y, z}
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) LookAt(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = mgl32.Vec3{x, y, z}
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) UpdateProjectionMatrix() {
	c.mu.Lock()
	defer c.mu.Unlock()
	aspect := c.aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = common.PerspectiveZO(mgl32.DegToRad(c.fov), aspect, c.near, c.far)
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *cameraImpl) viewLocked() mgl32.Mat4 {
	if c.position.Sub(c.target).Len() < 1e-8 {
		return mgl32.Translate3D(-c.position[0], -c.position[1], -c.position[2])
	}
	return mgl32.LookAtV(c.position, c.target, c.up)
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection.Mul4(c.viewLocked())
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) SetController(cc CameraController) {
	c.mu.Lock()
	c.controller = cc
	pos, target := c.position, c.target
	c.mu.Unlock()

	if cc != nil {
		cc.SetTarget(target[0], target[1], target[2])
		cc.SetPosition(pos[0], pos[1], pos[2])
	}
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	cc := c.controller
	c.mu.Unlock()
	if cc == nil {
		return
	}

	pos := cc.Position()
	target := cc.Target()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
	c.target = target
}
