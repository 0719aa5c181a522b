package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraController defines an orbit controller. It keeps the camera on a sphere around a target
// using spherical coordinates (radius, azimuth, elevation) and moves both together when panning.
// The Camera reads Position and Target from it in Update.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl32.Vec3: the position
	Position() mgl32.Vec3

	// Target returns the orbit pivot.
	//
	// Returns:
	//   - mgl32.Vec3: the pivot
	Target() mgl32.Vec3

	// SetTarget moves the pivot and keeps the current spherical offset.
	//
	// Parameters:
	//   - x, y, z: the new pivot
	SetTarget(x, y, z float32)

	// SetPosition places the camera and derives radius, azimuth and elevation from its offset to
	// the target. The result is clamped to the controller's limits.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Rotate orbits by a pointer drag delta in pixels, scaled by the mouse sensitivity.
	//
	// Parameters:
	//   - dx: horizontal drag
	//   - dy: vertical drag
	Rotate(dx, dy float32)

	// Zoom changes the radius. Positive delta moves closer to the target.
	//
	// Parameters:
	//   - delta: zoom amount scaled by the zoom speed
	Zoom(delta float32)

	// Pan translates camera and target together along the camera's right, up and forward axes.
	//
	// Parameters:
	//   - right, up, forward: distances scaled by the pan speed
	Pan(right, up, forward float32)

	// OrbitLeft rotates the camera left around the target by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the camera right around the target by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the camera upward by one orbit speed step.
	OrbitUp()

	// OrbitDown tilts the camera downward by one orbit speed step.
	OrbitDown()

	// Radius returns the distance from the target.
	Radius() float32

	// Azimuth returns the horizontal angle around Y in radians, 0 on the +Z axis.
	Azimuth() float32

	// Elevation returns the angle above the XZ plane in radians.
	Elevation() float32
}
