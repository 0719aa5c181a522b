package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	configured [][2]int
	present    []PresentMode
	plans      []*FramePlan
	err        error
	released   bool
}

func (f *fakeBackend) ConfigureSurface(width, height int) {
	f.configured = append(f.configured, [2]int{width, height})
}

func (f *fakeBackend) SetPresentMode(mode PresentMode) { f.present = append(f.present, mode) }

func (f *fakeBackend) Execute(plan *FramePlan) error {
	f.plans = append(f.plans, plan)
	return f.err
}

func (f *fakeBackend) Release() { f.released = true }

type fakeSurface struct{ w, h int }

func (s fakeSurface) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (s fakeSurface) Width() int                                 { return s.w }
func (s fakeSurface) Height() int                                { return s.h }

func readF32(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off:]))
}

func lookingAtOrigin() camera.Camera {
	return camera.NewCamera(camera.WithPosition(0, 0, 10), camera.WithTarget(0, 0, 0))
}

func meshObject(name string, g model.Geometry, opts ...material.MaterialBuilderOption) game_object.GameObject {
	return game_object.NewGameObject(
		game_object.WithName(name),
		game_object.WithMesh(g, material.NewMaterial(opts...)),
	)
}

func TestBuildFramePlan_PipelineKeys(t *testing.T) {
	lit := meshObject("lit", model.NewBoxGeometry(1, 1, 1))
	basic := meshObject("basic", model.NewBoxGeometry(1, 1, 1),
		material.WithKind(material.KindBasic), material.WithSide(material.DoubleSide))
	wire := meshObject("wire", model.NewPlaneGeometry(1, 1, 2, 2), material.WithWireframe(true))
	lines := meshObject("lines", model.NewLineGeometry(4), material.WithKind(material.KindLine))

	sc := scene.NewScene("keys", scene.WithObjects(lit, basic, wire, lines))
	plan := BuildFramePlan(sc, lookingAtOrigin(), false)

	require.Len(t, plan.Items, 4)
	byID := map[uint64]DrawItem{}
	for _, it := range plan.Items {
		byID[it.ObjectID] = it
	}
	assert.Equal(t, "lit/front", byID[lit.ID()].Pipeline)
	assert.Equal(t, "basic/double", byID[basic.ID()].Pipeline)
	assert.Equal(t, "lit/wire", byID[wire.ID()].Pipeline)
	assert.True(t, byID[wire.ID()].Edges)
	assert.Equal(t, PipelineLine, byID[lines.ID()].Pipeline)
	assert.False(t, byID[lines.ID()].Edges)

	for id := range byID {
		assert.Len(t, plan.Uniforms[id], GPUObjectUniformSize)
	}
	assert.Len(t, plan.Frame, GPUFrameUniformSize)
	assert.Len(t, plan.Lights, light.GPULightBlockSize)
	assert.Len(t, plan.ShadowData, light.GPUShadowDataSize)
	assert.Nil(t, plan.Shadow)
	assert.Nil(t, plan.Skybox)
}

func TestBuildFramePlan_Fog(t *testing.T) {
	sc := scene.NewScene("fog")
	plan := BuildFramePlan(sc, lookingAtOrigin(), false)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(plan.Frame[92:]))

	sc.SetFog(&scene.FogExp2{Color: common.Color{R: 0.5, G: 0.25, B: 1}, Density: 0.02})
	plan = BuildFramePlan(sc, lookingAtOrigin(), false)
	assert.InDelta(t, 0.02, readF32(plan.Frame, 76), 1e-6)
	assert.InDelta(t, 0.5, readF32(plan.Frame, 80), 1e-6)
	assert.InDelta(t, 0.25, readF32(plan.Frame, 84), 1e-6)
	assert.InDelta(t, 1, readF32(plan.Frame, 88), 1e-6)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(plan.Frame[92:]))
}

func TestBuildFramePlan_ShadowPass(t *testing.T) {
	caster := meshObject("caster", model.NewBoxGeometry(1, 1, 1))
	caster.SetCastShadow(true)
	receiver := meshObject("receiver", model.NewPlaneGeometry(10, 10, 1, 1))
	receiver.SetReceiveShadow(true)
	behind := meshObject("behind", model.NewBoxGeometry(1, 1, 1))
	behind.SetPosition(0, 0, 50)
	behind.SetCastShadow(true)
	sun := game_object.NewGameObject(
		game_object.WithLight(light.NewLight(light.WithType(light.LightTypeDirectional), light.WithCastShadow(true))),
		game_object.WithPosition(0, 20, 0),
	)

	sc := scene.NewScene("shadow", scene.WithObjects(caster, receiver, behind, sun))

	plan := BuildFramePlan(sc, lookingAtOrigin(), false)
	assert.Nil(t, plan.Shadow)

	plan = BuildFramePlan(sc, lookingAtOrigin(), true)
	require.NotNil(t, plan.Shadow)
	assert.Equal(t, light.DefaultShadowMapSize, plan.Shadow.MapSize)
	assert.Len(t, plan.Shadow.LightVP, GPUMatrixUniformSize)

	var ids []uint64
	for _, it := range plan.Shadow.Items {
		ids = append(ids, it.ObjectID)
		assert.Equal(t, "shadow/front", it.Pipeline)
	}
	// the caster behind the camera is still rendered into the shadow map
	assert.ElementsMatch(t, []uint64{caster.ID(), behind.ID()}, ids)
	assert.Contains(t, plan.Uniforms, behind.ID())

	texel := readF32(plan.ShadowData, 64)
	assert.InDelta(t, 1/float32(light.DefaultShadowMapSize), texel, 1e-9)

	// receive flag on standard material only
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(plan.Uniforms[receiver.ID()][152:]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(plan.Uniforms[caster.ID()][152:]))
}

func TestBuildFramePlan_Skybox(t *testing.T) {
	cube := &common.CubeTextureStagingData{Size: 1}
	sc := scene.NewScene("sky", scene.WithBackground(cube))
	plan := BuildFramePlan(sc, lookingAtOrigin(), false)
	require.NotNil(t, plan.Skybox)
	assert.Same(t, cube, plan.Skybox.Cube)
	assert.Equal(t, sc.BackgroundVersion(), plan.Skybox.Version)
	assert.Len(t, plan.Skybox.Uniform, GPUMatrixUniformSize)
}

func TestInterleaveVertices(t *testing.T) {
	g := model.NewGeometry(
		model.WithPositions([]float32{1, 2, 3, 4, 5, 6}),
		model.WithNormals([]float32{0, 1, 0, 0, 0, 1}),
		model.WithUVs([]float32{0.5, 0.25}),
	)
	buf := interleaveVertices(g)
	require.Len(t, buf, 2*vertexStride)

	assert.Equal(t, float32(1), readF32(buf, 0))
	assert.Equal(t, float32(3), readF32(buf, 8))
	assert.Equal(t, float32(1), readF32(buf, 16))
	assert.Equal(t, float32(0.5), readF32(buf, 24))
	assert.Equal(t, float32(4), readF32(buf, vertexStride))
	assert.Equal(t, float32(1), readF32(buf, vertexStride+20))
	// second vertex has no uv
	assert.Equal(t, float32(0), readF32(buf, vertexStride+24))
}

func TestStandardPipelines_CoverEveryKey(t *testing.T) {
	lib, err := shader.LoadLibrary()
	require.NoError(t, err)

	keys := map[string]bool{}
	for _, p := range standardPipelines(lib) {
		assert.False(t, keys[p.Key()], "duplicate pipeline %s", p.Key())
		keys[p.Key()] = true
	}

	for _, kind := range []material.Kind{material.KindStandard, material.KindBasic, material.KindLine} {
		for _, side := range []material.Side{material.FrontSide, material.BackSide, material.DoubleSide} {
			assert.True(t, keys[meshPipelineKey(kind, side, false)])
			assert.True(t, keys[meshPipelineKey(kind, side, true)])
			assert.True(t, keys[shadowPipelineKey(side)])
		}
	}
	assert.True(t, keys[PipelineLine])
	assert.True(t, keys[PipelineSkybox])
}

func TestRenderer_SetSize(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRenderer(fakeSurface{w: 800, h: 600}, WithBackend(fb))

	require.Equal(t, [][2]int{{800, 600}}, fb.configured)
	assert.Equal(t, []PresentMode{PresentModeVSync}, fb.present)

	r.SetSize(800, 600)
	r.SetSize(0, 600)
	r.SetSize(800, -1)
	assert.Len(t, fb.configured, 1)

	r.SetSize(1024, 768)
	w, h := r.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
	assert.Len(t, fb.configured, 2)
}

func TestRenderer_MinimisedStartSkipsFrames(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRenderer(fakeSurface{}, WithBackend(fb))
	assert.Empty(t, fb.configured)

	require.NoError(t, r.Render(scene.NewScene("empty"), lookingAtOrigin()))
	assert.Empty(t, fb.plans)
}

func TestRenderer_RenderWrapsBackendError(t *testing.T) {
	boom := errors.New("lost surface")
	fb := &fakeBackend{err: boom}
	r := NewRenderer(fakeSurface{w: 4, h: 4}, WithBackend(fb), WithShadowMap(true))
	assert.True(t, r.ShadowMapEnabled())

	err := r.Render(scene.NewScene("broken"), lookingAtOrigin())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"broken"`)
	assert.Len(t, fb.plans, 1)

	r.Release()
	assert.True(t, fb.released)
}

func TestRenderer_SetPresentModeReconfigures(t *testing.T) {
	fb := &fakeBackend{}
	r := NewRenderer(fakeSurface{w: 4, h: 4}, WithBackend(fb), WithPresentMode(PresentModeUncapped))
	r.SetPresentMode(PresentModeVSync)

	assert.Equal(t, []PresentMode{PresentModeUncapped, PresentModeVSync}, fb.present)
	assert.Len(t, fb.configured, 2)
}
