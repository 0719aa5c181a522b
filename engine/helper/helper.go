// Package helper builds line-drawn debug visuals for scene objects.
package helper

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// spotConeSegments is the number of segments in the cone's base circle.
const spotConeSegments = 32

// spotConeRays is the number of lines drawn from the apex to the base circle.
const spotConeRays = 5

type spotLightHelperImpl struct {
	light    game_object.GameObject
	node     game_object.GameObject
	geometry model.Geometry
	material material.Material
}

// SpotLightHelper draws a spot light's cone as lines. The cone follows the light only when
// Update is called.
type SpotLightHelper interface {
	// Object returns the node holding the cone lines. Add it to the scene to draw the helper.
	//
	// Returns:
	//   - game_object.GameObject: the helper node
	Object() game_object.GameObject

	// Update rebuilds the cone from the light's current position, target, angle and color.
	Update()
}

var _ SpotLightHelper = &spotLightHelperImpl{}

// NewSpotLightHelper creates a helper for the light attached to lightNode. The cone is built
// immediately.
//
// Parameters:
//   - lightNode: the node carrying a spot light.Light
//
// Returns:
//   - SpotLightHelper: the helper
func NewSpotLightHelper(lightNode game_object.GameObject) SpotLightHelper {
	geo := model.NewLineGeometry(spotConeSegments + spotConeRays)
	mat := material.NewMaterial(material.WithName("spot-light-helper"), material.WithKind(material.KindLine))
	h := &spotLightHelperImpl{
		light:    lightNode,
		geometry: geo,
		material: mat,
		node:     game_object.NewGameObject(game_object.WithName("spot-light-helper"), game_object.WithMesh(geo, mat)),
	}
	h.Update()
	return h
}

func (h *spotLightHelperImpl) Object() game_object.GameObject {
	return h.node
}

func (h *spotLightHelperImpl) Update() {
	l := h.light.Light()
	if l == nil {
		return
	}

	apex := h.light.WorldPosition()
	axis := l.Target().Sub(apex)
	length := axis.Len()
	if d := l.Distance(); d > 0 {
		length = d
	}
	if length < 1e-6 {
		return
	}
	axis = axis.Normalize()

	// orthonormal basis around the axis
	ref := mgl32.Vec3{0, 1, 0}
	if math32.Abs(axis.Dot(ref)) > 0.99 {
		ref = mgl32.Vec3{1, 0, 0}
	}
	u := axis.Cross(ref).Normalize()
	v := axis.Cross(u)

	radius := length * math32.Tan(l.Angle())
	center := apex.Add(axis.Mul(length))
	rim := func(theta float32) mgl32.Vec3 {
		return center.Add(u.Mul(radius * math32.Cos(theta))).Add(v.Mul(radius * math32.Sin(theta)))
	}

	pos := h.geometry.Positions()
	i := 0
	put := func(p mgl32.Vec3) {
		pos[i], pos[i+1], pos[i+2] = p[0], p[1], p[2]
		i += 3
	}

	for r := 0; r < spotConeRays; r++ {
		put(apex)
		if r == 0 {
			put(center)
			continue
		}
		put(rim(float32(r-1) * math32.Pi / 2))
	}
	step := 2 * math32.Pi / spotConeSegments
	for s := 0; s < spotConeSegments; s++ {
		put(rim(float32(s) * step))
		put(rim(float32(s+1) * step))
	}

	h.material.SetColor(l.Color())
	h.geometry.SetNeedsUpdate(true)
}

// NewGridHelper creates a square line grid on the XZ plane centered at the origin.
//
// Parameters:
//   - size: total side length
//   - divisions: cells per side
//   - color: line color
//
// Returns:
//   - game_object.GameObject: the grid node
func NewGridHelper(size float32, divisions int, color common.Color) game_object.GameObject {
	mat := material.NewMaterial(
		material.WithName("grid-helper"),
		material.WithKind(material.KindLine),
		material.WithColor(color),
	)
	return game_object.NewGameObject(
		game_object.WithName("grid-helper"),
		game_object.WithMesh(model.NewGridGeometry(size, divisions), mat),
	)
}
