package renderer

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUFrameUniformSize is the byte size of a packed GPUFrameUniform.
const GPUFrameUniformSize = 96

// GPUObjectUniformSize is the byte size of a packed GPUObjectUniform.
const GPUObjectUniformSize = 160

// GPUMatrixUniformSize is the byte size of a lone mat4x4<f32> uniform, used by the skybox and
// the shadow pass.
const GPUMatrixUniformSize = 64

// vertexStride is the byte stride of one interleaved position, normal, uv vertex.
const vertexStride = 32

// GPUFrameUniform is the per-frame block shared by every mesh draw. The camera block's padding
// word carries the fog density.
//
// Layout:
//
//	mat4x4<f32> view_proj       (offset  0)
//	vec3<f32>   camera_position (offset 64)
//	f32         fog_density     (offset 76)
//	vec3<f32>   fog_color       (offset 80)
//	u32         fog_enabled     (offset 92)
type GPUFrameUniform struct {
	Camera     camera.GPUCameraUniform
	FogDensity float32
	FogColor   [3]float32
	FogEnabled uint32
}

// Marshal serializes the frame uniform into a 96-byte little-endian buffer.
func (f *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, GPUFrameUniformSize)
	copy(buf, f.Camera.Marshal())
	putF32(buf[76:], f.FogDensity)
	for i, v := range f.FogColor {
		putF32(buf[80+i*4:], v)
	}
	binary.LittleEndian.PutUint32(buf[92:], f.FogEnabled)
	return buf
}

// GPUObjectUniform is the per-object block bound at group 1 by both the main and shadow passes.
//
// Layout:
//
//	mat4x4<f32> model          (offset   0)
//	mat4x4<f32> normal_matrix  (offset  64)
//	vec4<f32>   color          (offset 128)
//	f32         metallic       (offset 144)
//	f32         roughness      (offset 148)
//	u32         receive_shadow (offset 152)
//	f32         shadow_bias    (offset 156)
type GPUObjectUniform struct {
	Model         mgl32.Mat4
	NormalMatrix  mgl32.Mat4
	Color         [4]float32
	Metallic      float32
	Roughness     float32
	ReceiveShadow uint32
	ShadowBias    float32
}

// Marshal serializes the object uniform into a 160-byte little-endian buffer.
func (o *GPUObjectUniform) Marshal() []byte {
	buf := make([]byte, GPUObjectUniformSize)
	putMat4(buf[0:], o.Model)
	putMat4(buf[64:], o.NormalMatrix)
	for i, v := range o.Color {
		putF32(buf[128+i*4:], v)
	}
	putF32(buf[144:], o.Metallic)
	putF32(buf[148:], o.Roughness)
	binary.LittleEndian.PutUint32(buf[152:], o.ReceiveShadow)
	putF32(buf[156:], o.ShadowBias)
	return buf
}

// marshalMat4 packs a lone matrix uniform.
func marshalMat4(m mgl32.Mat4) []byte {
	buf := make([]byte, GPUMatrixUniformSize)
	putMat4(buf, m)
	return buf
}

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(v))
}

func putMat4(b []byte, m mgl32.Mat4) {
	for i, v := range m {
		putF32(b[i*4:], v)
	}
}
