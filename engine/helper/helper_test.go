package helper

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpotLightHelperFollowsAngle(t *testing.T) {
	spot := light.NewLight(light.WithType(light.LightTypeSpot), light.WithAngle(0.2))
	node := game_object.NewGameObject(game_object.WithPosition(-100, 100, 0), game_object.WithLight(spot))
	h := NewSpotLightHelper(node)

	geo := h.Object().Geometry()
	require.NotNil(t, geo)
	assert.Equal(t, model.DrawModeLines, geo.DrawMode())

	apex := geo.Vertex(0)
	center := geo.Vertex(1)
	rim := geo.Vertex(3)
	assert.True(t, apex.ApproxEqualThreshold(mgl32.Vec3{-100, 100, 0}, 1e-4))
	assert.InDelta(t, 0, center.Len(), 1e-3)

	length := apex.Len()
	assert.InDelta(t, length*math32.Tan(0.2), rim.Sub(center).Len(), 1e-2)

	v := geo.Version()
	spot.SetAngle(0.4)
	h.Update()
	assert.Greater(t, geo.Version(), v)
	assert.InDelta(t, length*math32.Tan(0.4), geo.Vertex(3).Sub(center).Len(), 1e-2)
}

func TestSpotLightHelperWithoutLightIsInert(t *testing.T) {
	h := NewSpotLightHelper(game_object.NewGameObject())
	assert.Zero(t, h.Object().Geometry().Version())
}

func TestGridHelper(t *testing.T) {
	g := NewGridHelper(30, 30, common.ColorFromHex(0x888888))
	assert.Equal(t, "grid-helper", g.Name())
	assert.Equal(t, 31*4, g.Geometry().VertexCount())
}
