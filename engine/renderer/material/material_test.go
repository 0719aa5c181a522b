package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/stretchr/testify/assert"
)

func TestNewMaterialDefaults(t *testing.T) {
	m := NewMaterial()
	assert.Equal(t, KindStandard, m.Kind())
	assert.Equal(t, uint32(0xffffff), m.Color().Hex())
	assert.Equal(t, FrontSide, m.Side())
	assert.False(t, m.Wireframe())
}

func TestSettersBumpVersion(t *testing.T) {
	m := NewMaterial(WithHexColor(0x0000ff))
	v := m.Version()

	m.SetColor(common.ColorFromHex(0xff0000))
	m.SetWireframe(true)
	m.SetShadowBias(-0.002)

	assert.Equal(t, v+3, m.Version())
	assert.Equal(t, uint32(0xff0000), m.Color().Hex())
	assert.True(t, m.Wireframe())
	assert.InDelta(t, -0.002, m.ShadowBias(), 1e-9)
}

func TestFromImportedDoubleSided(t *testing.T) {
	m := FromImported(common.ImportedMaterial{
		Name:        "roof",
		BaseColor:   [4]float32{0.5, 0.25, 0, 1},
		DoubleSided: true,
	})
	assert.Equal(t, "roof", m.Name())
	assert.Equal(t, DoubleSide, m.Side())
	assert.InDelta(t, 0.25, m.Color().G, 1e-6)
}
