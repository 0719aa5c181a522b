package renderer

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// Pipeline keys produced by the frame plan.
const (
	PipelineLine   = "line"
	PipelineSkybox = "skybox"
)

// DrawItem is one indexed draw in the main pass.
type DrawItem struct {
	ObjectID uint64
	Geometry model.Geometry
	Pipeline string

	// Edges draws the geometry's edge index list instead of its triangle indices.
	Edges bool
}

// ShadowItem is one indexed draw in the shadow depth pass.
type ShadowItem struct {
	ObjectID uint64
	Geometry model.Geometry
	Pipeline string
}

// ShadowPass describes the depth-only pass rendered from the shadow-casting light.
type ShadowPass struct {
	MapSize int
	LightVP []byte
	Items   []ShadowItem
}

// SkyboxPass describes the cube-map background drawn before any mesh.
type SkyboxPass struct {
	Cube    *common.CubeTextureStagingData
	Version uint64
	Uniform []byte
}

// FramePlan is everything a backend needs to draw one frame, computed from the scene graph
// without touching the GPU.
type FramePlan struct {
	ClearColor common.Color

	Frame      []byte
	Lights     []byte
	ShadowData []byte

	// DroppedLights counts directional and spot lights that did not fit the light block.
	DroppedLights int

	// Uniforms holds the packed GPUObjectUniform of every object referenced by Items or Shadow.
	Uniforms map[uint64][]byte

	Items  []DrawItem
	Shadow *ShadowPass
	Skybox *SkyboxPass
}

// BuildFramePlan captures the scene as seen from cam.
//
// Parameters:
//   - sc: the scene to draw
//   - cam: the viewing camera
//   - shadows: whether the shadow pass is enabled
//
// Returns:
//   - *FramePlan: the plan for this frame
func BuildFramePlan(sc scene.Scene, cam camera.Camera, shadows bool) *FramePlan {
	plan := &FramePlan{
		ClearColor: sc.ClearColor(),
		Uniforms:   make(map[uint64][]byte),
		ShadowData: make([]byte, light.GPUShadowDataSize),
	}

	frame := GPUFrameUniform{Camera: camera.NewGPUCameraUniform(cam)}
	if fog, ok := sc.Fog(); ok {
		frame.FogEnabled = 1
		frame.FogDensity = fog.Density
		frame.FogColor = [3]float32{fog.Color.R, fog.Color.G, fog.Color.B}
	}
	plan.Frame = frame.Marshal()

	caster, hasCaster := sc.ShadowCaster()
	hasCaster = hasCaster && shadows
	var shadowLight light.Light
	if hasCaster {
		shadowLight = caster.Light
	}
	plan.Lights, plan.DroppedLights = light.PackBlock(sc.Lights(), shadowLight)

	frustum := common.FrustumFromMatrix(cam.ViewProjectionMatrix())
	for _, d := range sc.Collect(&frustum) {
		item := drawItemFor(d)
		plan.Items = append(plan.Items, item)
		plan.Uniforms[item.ObjectID] = objectUniform(d)
	}

	if hasCaster {
		plan.Shadow, plan.ShadowData = shadowPassFor(sc, caster, plan.Uniforms)
	}

	if cube := sc.Background(); cube != nil {
		plan.Skybox = &SkyboxPass{
			Cube:    cube,
			Version: sc.BackgroundVersion(),
			Uniform: marshalMat4(skyboxInverse(cam)),
		}
	}
	return plan
}

func drawItemFor(d scene.Drawable) DrawItem {
	g := d.Object.Geometry()
	mat := d.Object.Material()
	item := DrawItem{ObjectID: d.Object.ID(), Geometry: g}

	switch {
	case g.DrawMode() == model.DrawModeLines:
		item.Pipeline = PipelineLine
	case mat.Wireframe():
		item.Pipeline = meshPipelineKey(mat.Kind(), mat.Side(), true)
		item.Edges = true
	default:
		item.Pipeline = meshPipelineKey(mat.Kind(), mat.Side(), false)
	}
	return item
}

func objectUniform(d scene.Drawable) []byte {
	mat := d.Object.Material()
	c := mat.Color()
	u := GPUObjectUniform{
		Model:        d.World,
		NormalMatrix: common.NormalMatrix(d.World),
		Color:        [4]float32{c.R, c.G, c.B, 1},
		Metallic:     mat.Metallic(),
		Roughness:    mat.Roughness(),
		ShadowBias:   mat.ShadowBias(),
	}
	if d.Object.ReceiveShadow() && mat.Kind() == material.KindStandard {
		u.ReceiveShadow = 1
	}
	return u.Marshal()
}

// shadowPassFor collects casters regardless of the camera frustum, since an occluder outside the
// view can still shade what is inside it.
func shadowPassFor(sc scene.Scene, caster light.Placed, uniforms map[uint64][]byte) (*ShadowPass, []byte) {
	cfg := caster.Light.Shadow()
	vp := light.DirectionalViewProjection(caster.Position, caster.Light.Target(), cfg)

	pass := &ShadowPass{
		MapSize: max(cfg.MapSize, 1),
		LightVP: marshalMat4(vp),
	}
	for _, d := range sc.Collect(nil) {
		g := d.Object.Geometry()
		if !d.Object.CastShadow() || g.DrawMode() != model.DrawModeTriangles {
			continue
		}
		id := d.Object.ID()
		if _, ok := uniforms[id]; !ok {
			uniforms[id] = objectUniform(d)
		}
		pass.Items = append(pass.Items, ShadowItem{
			ObjectID: id,
			Geometry: g,
			Pipeline: shadowPipelineKey(d.Object.Material().ShadowSide()),
		})
	}

	texel := 1 / float32(pass.MapSize)
	data := light.GPUShadowData{
		LightVP:    vp,
		TexelSize:  [2]float32{texel, texel},
		Bias:       cfg.Bias,
		NormalBias: cfg.NormalBias(),
	}
	return pass, data.Marshal()
}

// skyboxInverse inverts the camera's view-projection with the translation removed, mapping
// clip-space positions on the far plane back to world directions.
func skyboxInverse(cam camera.Camera) mgl32.Mat4 {
	view := cam.ViewMatrix()
	view[12], view[13], view[14] = 0, 0, 0
	return cam.ProjectionMatrix().Mul4(view).Inv()
}

// interleaveVertices packs position, normal and uv per vertex. Missing normals or uvs are
// written as zero.
func interleaveVertices(g model.Geometry) []byte {
	pos, nrm, uv := g.Positions(), g.Normals(), g.UVs()
	n := len(pos) / 3
	buf := make([]byte, n*vertexStride)
	for i := range n {
		off := i * vertexStride
		for k := range 3 {
			putF32(buf[off+k*4:], pos[i*3+k])
			if len(nrm) >= (i+1)*3 {
				putF32(buf[off+12+k*4:], nrm[i*3+k])
			}
		}
		if len(uv) >= (i+1)*2 {
			putF32(buf[off+24:], uv[i*2])
			putF32(buf[off+28:], uv[i*2+1])
		}
	}
	return buf
}
