package app

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/loader"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFrameDriver_EndToEnd(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	s := f.state
	d := NewFrameDriver(s)
	assert.Equal(t, FrameIdle, d.State())

	positions := s.Handles.JitterPlane.Geometry().Positions()
	version := s.Handles.JitterPlane.Geometry().Version()

	d.Tick(1000)
	assert.Equal(t, FrameRunning, d.State())
	rot := s.Handles.SpinningBox.Rotation()
	assert.InDelta(t, 1, rot.X(), 1e-6)
	assert.InDelta(t, 1, rot.Y(), 1e-6)
	assert.InDelta(t, 0.01, s.Phase, 1e-12)
	assert.InDelta(t, 10*math.Abs(math.Sin(0.01)), s.Handles.BouncingSphere.Position().Y(), 1e-5)
	assert.InDelta(t, 0.2, s.Handles.KeyLight.Angle(), 1e-6)
	assert.InDelta(t, 1, s.Handles.KeyLight.Intensity(), 1e-6)

	for _, i := range []int{0, 1, 2, len(positions) - 1} {
		assert.Equal(t, float32(5), positions[i], "component %d", i)
	}
	assert.True(t, s.Handles.JitterPlane.Geometry().NeedsUpdate())
	assert.Greater(t, s.Handles.JitterPlane.Geometry().Version(), version)
	assert.Equal(t, 1, f.renderer.renders)

	d.Tick(2000)
	rot = s.Handles.SpinningBox.Rotation()
	assert.InDelta(t, 2, rot.X(), 1e-6)
	assert.InDelta(t, 2, rot.Y(), 1e-6)
	assert.InDelta(t, 0.02, s.Phase, 1e-12)
	assert.InDelta(t, 10*math.Abs(math.Sin(0.02)), s.Handles.BouncingSphere.Position().Y(), 1e-5)
	assert.Equal(t, 2, f.renderer.renders)
}

func TestFrameDriver_BobStaysInRange(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	f.state.Settings.Speed = 0.1
	d := NewFrameDriver(f.state)

	x, z := f.state.Handles.BouncingSphere.Position().X(), f.state.Handles.BouncingSphere.Position().Z()
	for i := 0; i < 500; i++ {
		d.Tick(float64(i) * 16)
		p := f.state.Handles.BouncingSphere.Position()
		require.GreaterOrEqual(t, p.Y(), float32(0))
		require.LessOrEqual(t, p.Y(), float32(BobAmplitude))
		require.Equal(t, x, p.X())
		require.Equal(t, z, p.Z())
	}
}

func TestFrameDriver_RotationDependsOnlyOnT(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	d := NewFrameDriver(f.state)

	d.Tick(3000)
	d.Tick(3000)
	assert.InDelta(t, 3, f.state.Handles.SpinningBox.Rotation().X(), 1e-6)

	d.Tick(500)
	assert.InDelta(t, 0.5, f.state.Handles.SpinningBox.Rotation().Y(), 1e-6)
}

func TestFrameDriver_SpeedZeroFreezesPhase(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	f.state.Settings.Speed = 0
	d := NewFrameDriver(f.state)

	d.Tick(16)
	d.Tick(32)
	assert.Equal(t, 0.0, f.state.Phase)
	assert.Equal(t, float32(0), f.state.Handles.BouncingSphere.Position().Y())
}

func TestFrameDriver_PicksNearestFirstAndHighlightsAnyHit(t *testing.T) {
	front := game_object.NewGameObject(
		game_object.WithName("front"),
		game_object.WithMesh(model.NewBoxGeometry(1, 1, 1), material.NewMaterial(material.WithHexColor(0x00ff00))),
		game_object.WithPosition(0, 0, 3),
	)
	sphere := game_object.NewGameObject(
		game_object.WithName(NameBouncingSphere),
		game_object.WithMesh(model.NewSphereGeometry(1, 16, 16), material.NewMaterial(material.WithHexColor(0x0000ff))),
		game_object.WithPosition(0, 0, -3),
	)
	theBox := game_object.NewGameObject(
		game_object.WithName(NameTheBox),
		game_object.WithMesh(model.NewBoxGeometry(4, 4, 4), material.NewMaterial()),
		game_object.WithPosition(0, 0, -10),
	)
	sc := scene.NewScene("pick", scene.WithObjects(front, sphere, theBox))

	cam := camera.NewCamera(
		camera.WithFov(45),
		camera.WithAspect(1),
		camera.WithClipPlanes(0.1, 100),
		camera.WithPosition(0, 0, 10),
		camera.WithTarget(0, 0, 0),
	)
	cam.UpdateProjectionMatrix()

	picks := NewPickRegistry()
	picks.Register(sphere.ID(), PickHighlight)
	require.True(t, picks.RegisterByName(sc, NameTheBox, PickSyncRotation))

	s := &AppState{Scene: sc, Camera: cam, Picks: picks, Random: constRandom(0)}
	d := NewFrameDriver(s)
	d.Tick(1500)

	hits := d.Hits()
	require.GreaterOrEqual(t, len(hits), 3)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
	assert.Equal(t, front.ID(), hits[0].Object.ID())

	assert.Equal(t, common.ColorFromHex(HighlightColor), sphere.Material().Color())
	assert.Equal(t, common.ColorFromHex(0x00ff00), front.Material().Color())
	assert.InDelta(t, 1.5, theBox.Rotation().X(), 1e-6)
	assert.InDelta(t, 1.5, theBox.Rotation().Y(), 1e-6)
}

func TestFrameDriver_HitsSurviveNextTick(t *testing.T) {
	first := game_object.NewGameObject(
		game_object.WithName("first"),
		game_object.WithMesh(model.NewBoxGeometry(1, 1, 1), material.NewMaterial()),
	)
	second := game_object.NewGameObject(
		game_object.WithName("second"),
		game_object.WithMesh(model.NewBoxGeometry(1, 1, 1), material.NewMaterial()),
		game_object.WithPosition(50, 0, 0),
	)
	cam := camera.NewCamera(
		camera.WithFov(45),
		camera.WithAspect(1),
		camera.WithClipPlanes(0.1, 100),
		camera.WithPosition(0, 0, 10),
		camera.WithTarget(0, 0, 0),
	)
	cam.UpdateProjectionMatrix()
	s := &AppState{
		Scene:  scene.NewScene("pick", scene.WithObjects(first, second)),
		Camera: cam,
		Picks:  NewPickRegistry(),
		Random: constRandom(0),
	}
	d := NewFrameDriver(s)

	d.Tick(16)
	before := d.Hits()
	require.NotEmpty(t, before)
	before[0].Distance = -1
	assert.NotEqual(t, float32(-1), d.Hits()[0].Distance)

	first.SetPosition(-50, 0, 0)
	second.SetPosition(0, 0, 0)
	d.Tick(32)

	after := d.Hits()
	require.NotEmpty(t, after)
	assert.Same(t, second, after[0].Object)
	for _, h := range before {
		assert.Same(t, first, h.Object)
	}
}

func TestFrameDriver_EmptyPickIsNoOp(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	s := f.state
	s.Pointer = PointerNDC{X: 1, Y: 1}
	color := s.Handles.BouncingSphere.Material().Color()
	NewFrameDriver(s).Tick(16)
	assert.Equal(t, color, s.Handles.BouncingSphere.Material().Color())
}

func TestFrameDriver_AssetFailureKeepsRendering(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f, err := newFixture(zap.New(core))
	require.NoError(t, err)
	require.Len(t, f.loader.loads, 1)
	assert.Equal(t, "assets/house.glb", f.loader.loads[0].location)

	f.loader.loads[0].onError(errors.New("404"))
	entries := logs.FilterMessage("model load failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	d := NewFrameDriver(f.state)
	d.Tick(16)
	d.Tick(32)
	assert.Equal(t, 2, f.renderer.renders)
	assert.Nil(t, f.state.Mixer)
	_, ok := f.state.Object(NameModel)
	assert.False(t, ok)
}

func TestFrameDriver_RenderErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f, err := newFixture(zap.New(core))
	require.NoError(t, err)
	f.renderer.err = errors.New("surface lost")

	NewFrameDriver(f.state).Tick(16)
	assert.Equal(t, 1, logs.FilterMessage("frame skipped").Len())
}

func TestModelLoaded(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name      string
		clips     []*model.AnimationClip
		wantMixer bool
	}{
		{"no clips", nil, false},
		{"missing clip", []*model.AnimationClip{{Name: "walk", Duration: 1}}, false},
		{"named clip", []*model.AnimationClip{{Name: "walk", Duration: 1}, {Name: "myAnimation", Duration: 2}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newFixture(nil)
			require.NoError(t, err)
			s := f.state

			mesh := game_object.NewGameObject(game_object.WithMesh(model.NewBoxGeometry(1, 1, 1), material.NewMaterial()))
			root := game_object.NewGameObject()
			root.Add(mesh)
			f.loader.loads[0].onLoad(&loader.Result{Root: root, Animations: tt.clips})

			placed, ok := s.Object(NameModel)
			require.True(t, ok)
			assert.Equal(t, cfg.Model.Offset[0], placed.Position().X())
			assert.Equal(t, cfg.Model.Offset[2], placed.Position().Z())
			assert.True(t, mesh.CastShadow())
			assert.True(t, mesh.ReceiveShadow())
			assert.Equal(t, material.FrontSide, mesh.Material().ShadowSide())
			assert.InDelta(t, -0.002, mesh.Material().ShadowBias(), 1e-9)

			caster, ok := s.Scene.ShadowCaster()
			require.True(t, ok)
			assert.Equal(t, 1024, caster.Light.Shadow().MapSize)

			NewFrameDriver(s).Tick(16)
			if !tt.wantMixer {
				assert.Nil(t, s.Mixer)
				assert.Zero(t, f.clock.calls)
				return
			}
			require.NotNil(t, s.Mixer)
			assert.Equal(t, 1, f.clock.calls)
			assert.InDelta(t, 0.25, s.Mixer.Time(), 1e-12)
		})
	}
}
