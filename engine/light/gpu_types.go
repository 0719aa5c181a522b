package light

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxGPULights is the number of light slots in the uniform light block. Ambient lights are folded
// into the header and do not take a slot.
const MaxGPULights = 8

// GPULightSize is the byte size of one packed GPULight.
const GPULightSize = 64

// GPULightHeaderSize is the byte size of the packed GPULightHeader.
const GPULightHeaderSize = 16

// GPULightBlockSize is the byte size of the whole light uniform block.
const GPULightBlockSize = GPULightHeaderSize + MaxGPULights*GPULightSize

// GPUShadowDataSize is the byte size of the packed GPUShadowData.
const GPUShadowDataSize = 80

// GPULight is the packed form of one directional or spot light. Matches the WGSL Light struct.
//
// Layout:
//
//	vec3<f32> position   (offset  0)
//	u32       light_type (offset 12)
//	vec3<f32> color      (offset 16)
//	f32       intensity  (offset 28)
//	vec3<f32> direction  (offset 32)
//	f32       range      (offset 44)
//	f32       inner_cos  (offset 48)
//	f32       outer_cos  (offset 52)
//	f32       decay      (offset 56)
//	u32       shadowed   (offset 60)
type GPULight struct {
	Position  [3]float32
	LightType uint32
	Color     [3]float32
	Intensity float32
	Direction [3]float32
	Range     float32
	InnerCos  float32
	OuterCos  float32
	Decay     float32
	Shadowed  uint32
}

// Marshal serializes the light into a 64-byte little-endian buffer.
//
// Returns:
//   - []byte: buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, GPULightSize)
	putVec3(buf[0:], g.Position)
	binary.LittleEndian.PutUint32(buf[12:16], g.LightType)
	putVec3(buf[16:], g.Color)
	putF32(buf[28:], g.Intensity)
	putVec3(buf[32:], g.Direction)
	putF32(buf[44:], g.Range)
	putF32(buf[48:], g.InnerCos)
	putF32(buf[52:], g.OuterCos)
	putF32(buf[56:], g.Decay)
	binary.LittleEndian.PutUint32(buf[60:64], g.Shadowed)
	return buf
}

// GPULightHeader precedes the light array in the light block.
type GPULightHeader struct {
	AmbientColor [3]float32
	LightCount   uint32
}

// Marshal serializes the header into a 16-byte little-endian buffer.
func (h *GPULightHeader) Marshal() []byte {
	buf := make([]byte, GPULightHeaderSize)
	putVec3(buf[0:], h.AmbientColor)
	binary.LittleEndian.PutUint32(buf[12:16], h.LightCount)
	return buf
}

// GPUShadowData is the packed directional shadow uniform.
//
// Layout:
//
//	mat4x4<f32> light_vp    (offset  0)
//	vec2<f32>   texel_size  (offset 64)
//	f32         bias        (offset 72)
//	f32         normal_bias (offset 76)
type GPUShadowData struct {
	LightVP    mgl32.Mat4
	TexelSize  [2]float32
	Bias       float32
	NormalBias float32
}

// Marshal serializes the shadow data into an 80-byte little-endian buffer.
func (s *GPUShadowData) Marshal() []byte {
	buf := make([]byte, GPUShadowDataSize)
	for i, v := range s.LightVP {
		putF32(buf[i*4:], v)
	}
	putF32(buf[64:], s.TexelSize[0])
	putF32(buf[68:], s.TexelSize[1])
	putF32(buf[72:], s.Bias)
	putF32(buf[76:], s.NormalBias)
	return buf
}

// Placed pairs a Light with the world position of the node that carries it.
type Placed struct {
	Light    Light
	Position mgl32.Vec3
}

// PackBlock builds the light uniform block from the scene's placed lights. Ambient lights are
// summed into the header; the rest fill slots in order until MaxGPULights is reached.
//
// Parameters:
//   - lights: the lights to pack
//   - shadowCaster: the light whose shadow map is bound, or nil
//
// Returns:
//   - []byte: a GPULightBlockSize buffer
//   - int: the number of directional and spot lights dropped for lack of slots
func PackBlock(lights []Placed, shadowCaster Light) ([]byte, int) {
	buf := make([]byte, GPULightBlockSize)
	var header GPULightHeader
	dropped := 0

	for _, p := range lights {
		l := p.Light
		if l == nil {
			continue
		}
		c := l.Color()
		i := l.Intensity()
		if l.Type() == LightTypeAmbient {
			header.AmbientColor[0] += c.R * i
			header.AmbientColor[1] += c.G * i
			header.AmbientColor[2] += c.B * i
			continue
		}
		if header.LightCount >= MaxGPULights {
			dropped++
			continue
		}

		g := ToGPU(p)
		if shadowCaster != nil && l == shadowCaster {
			g.Shadowed = 1
		}
		off := GPULightHeaderSize + int(header.LightCount)*GPULightSize
		copy(buf[off:], g.Marshal())
		header.LightCount++
	}

	copy(buf, header.Marshal())
	return buf, dropped
}

// ToGPU converts a placed directional or spot light into its packed form.
//
// Parameters:
//   - p: the light and its world position
//
// Returns:
//   - GPULight: the packed light
func ToGPU(p Placed) GPULight {
	l := p.Light
	c := l.Color()
	dir := l.Target().Sub(p.Position)
	if dir.Len() > 1e-6 {
		dir = dir.Normalize()
	} else {
		dir = mgl32.Vec3{0, -1, 0}
	}

	g := GPULight{
		Position:  p.Position,
		LightType: uint32(l.Type()),
		Color:     [3]float32{c.R, c.G, c.B},
		Intensity: l.Intensity(),
		Direction: dir,
		Range:     l.Distance(),
		Decay:     l.Decay(),
	}
	if l.Type() == LightTypeSpot {
		outer := math32.Cos(l.Angle())
		inner := math32.Cos(l.Angle() * (1 - l.Penumbra()))
		g.OuterCos = outer
		g.InnerCos = inner
	}
	return g
}

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(v))
}

func putVec3(b []byte, v [3]float32) {
	putF32(b[0:], v[0])
	putF32(b[4:], v[1])
	putF32(b[8:], v[2])
}
