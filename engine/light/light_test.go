package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}

func TestSettersClamp(t *testing.T) {
	l := NewLight(WithType(LightTypeSpot))
	l.SetAngle(5)
	l.SetPenumbra(-1)

	assert.InDelta(t, math.Pi/2, l.Angle(), 1e-6)
	assert.Equal(t, float32(0), l.Penumbra())
}

func TestPackBlockFoldsAmbient(t *testing.T) {
	ambient := NewLight(WithType(LightTypeAmbient), WithHexColor(0x333333))
	spot := NewLight(WithType(LightTypeSpot), WithAngle(0.2), WithPenumbra(0.5))
	sun := NewLight(WithType(LightTypeDirectional), WithCastShadow(true))

	buf, dropped := PackBlock([]Placed{
		{Light: ambient},
		{Light: spot, Position: mgl32.Vec3{-100, 100, 0}},
		{Light: sun, Position: mgl32.Vec3{0, 10, 0}},
	}, sun)

	require.Len(t, buf, GPULightBlockSize)
	assert.Zero(t, dropped)
	assert.InDelta(t, common.ColorFromHex(0x333333).R, f32At(buf, 0), 1e-6)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(buf[12:16]))

	first := buf[GPULightHeaderSize:]
	assert.Equal(t, uint32(LightTypeSpot), binary.LittleEndian.Uint32(first[12:16]))
	assert.InDelta(t, math.Cos(0.2), f32At(first, 52), 1e-6)
	assert.InDelta(t, math.Cos(0.1), f32At(first, 48), 1e-6)
	assert.Zero(t, binary.LittleEndian.Uint32(first[60:64]))

	second := buf[GPULightHeaderSize+GPULightSize:]
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(second[60:64]))
	assert.InDelta(t, -1, f32At(second, 36), 1e-6)
}

func TestPackBlockDropsOverflow(t *testing.T) {
	placed := make([]Placed, MaxGPULights+3)
	for i := range placed {
		placed[i] = Placed{Light: NewLight()}
	}
	_, dropped := PackBlock(placed, nil)
	assert.Equal(t, 3, dropped)
}

func TestDirectionalViewProjectionContainsTarget(t *testing.T) {
	cfg := DefaultShadowConfig()
	vp := DirectionalViewProjection(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, cfg)

	clip := vp.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, 0, clip.X(), 1e-5)
	assert.InDelta(t, 0, clip.Y(), 1e-5)
	assert.Greater(t, clip.Z(), float32(0))
	assert.Less(t, clip.Z(), float32(1))
	assert.Greater(t, cfg.NormalBias(), float32(0))
}
