package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*size)
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// PerspectiveZO builds a right-handed perspective projection that maps view depth into the
// WebGPU clip range [0, 1]. mgl32.Perspective targets the OpenGL range [-1, 1] and cannot be
// used directly with a WebGPU depth buffer.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovY/2)
	nf := 1 / (near - far)
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * nf, -1,
		0, 0, near * far * nf, 0,
	}
}

// OrthoZO builds an orthographic projection with WebGPU [0, 1] depth, used for directional
// light shadow cameras.
//
// Parameters:
//   - left, right, bottom, top: the view volume extents
//   - near, far: the depth extents
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func OrthoZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rl := 1 / (right - left)
	tb := 1 / (top - bottom)
	fn := 1 / (near - far)
	return mgl32.Mat4{
		2 * rl, 0, 0, 0,
		0, 2 * tb, 0, 0,
		0, 0, fn, 0,
		-(right + left) * rl, -(top + bottom) * tb, near * fn, 1,
	}
}

// EulerXYZ returns the rotation matrix for Euler angles applied in X, Y, Z order
// (intrinsic), i.e. Rx * Ry * Rz.
//
// Parameters:
//   - rot: rotation angles in radians around X, Y and Z
//
// Returns:
//   - mgl32.Mat4: the rotation matrix
func EulerXYZ(rot mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(rot[0]).
		Mul4(mgl32.HomogRotate3DY(rot[1])).
		Mul4(mgl32.HomogRotate3DZ(rot[2]))
}

// ComposeMatrix constructs a model matrix T * R * S from a position, Euler rotation (XYZ order)
// and scale.
//
// Parameters:
//   - pos: translation
//   - rot: Euler rotation in radians
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the model matrix
func ComposeMatrix(pos, rot, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(EulerXYZ(rot)).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// ComposeMatrixQuat is ComposeMatrix with a quaternion rotation.
//
// Parameters:
//   - pos: translation
//   - rot: unit quaternion rotation
//   - scale: per-axis scale
//
// Returns:
//   - mgl32.Mat4: the model matrix
func ComposeMatrixQuat(pos mgl32.Vec3, rot mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(rot.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// QuatToEulerXYZ converts a unit quaternion to XYZ-order Euler angles, the inverse of EulerXYZ.
//
// Parameters:
//   - q: the quaternion to convert
//
// Returns:
//   - mgl32.Vec3: rotation angles in radians
func QuatToEulerXYZ(q mgl32.Quat) mgl32.Vec3 {
	m := q.Normalize().Mat4()
	// m is column-major: m.At(row, col)
	m13 := Clamp(m.At(0, 2), -1, 1)
	y := math32.Asin(m13)
	var x, z float32
	if math32.Abs(m13) < 0.9999999 {
		x = math32.Atan2(-m.At(1, 2), m.At(2, 2))
		z = math32.Atan2(-m.At(0, 1), m.At(0, 0))
	} else {
		x = math32.Atan2(m.At(2, 1), m.At(1, 1))
		z = 0
	}
	return mgl32.Vec3{x, y, z}
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of m, padded into a Mat4 so it
// satisfies WGSL uniform alignment.
//
// Parameters:
//   - m: the model matrix
//
// Returns:
//   - mgl32.Mat4: the normal matrix
func NormalMatrix(m mgl32.Mat4) mgl32.Mat4 {
	n := m.Mat3().Inv().Transpose()
	return n.Mat4()
}

// TransformPoint multiplies a point (w = 1) by m and returns the xyz result.
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection multiplies a direction (w = 0) by m and returns the xyz result.
func TransformDirection(m mgl32.Mat4, d mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// MaxScale returns the largest absolute axis scale encoded in m.
func MaxScale(m mgl32.Mat4) float32 {
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	return math32.Max(sx, math32.Max(sy, sz))
}
