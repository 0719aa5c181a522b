package camera

import (
	"encoding/binary"
	"math"
)

// GPUCameraUniformSize is the byte size of a packed GPUCameraUniform.
const GPUCameraUniformSize = 80

// GPUCameraUniform is the packed camera block.
//
// Layout:
//
//	mat4x4<f32> view_proj (offset  0)
//	vec3<f32>   position  (offset 64)
//	f32         _pad      (offset 76)
type GPUCameraUniform struct {
	ViewProj       [16]float32
	CameraPosition [3]float32
}

// NewGPUCameraUniform captures the camera's current view-projection and position.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - GPUCameraUniform: the packed-ready uniform
func NewGPUCameraUniform(c Camera) GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj:       c.ViewProjectionMatrix(),
		CameraPosition: c.Position(),
	}
}

// Marshal serializes the uniform into an 80-byte little-endian buffer.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, GPUCameraUniformSize)
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.CameraPosition[i]))
	}
	return buf
}
