package app

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize_BuildsScene(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	s := f.state

	for _, name := range []string{NameBouncingSphere, NameSpinningBox, NameTheBox, NameJitterPlane, NameGround, NameKeyLight} {
		_, ok := s.Object(name)
		assert.True(t, ok, name)
	}
	assert.True(t, f.renderer.ShadowMapEnabled())
	assert.Equal(t, [][2]int{{800, 600}}, f.renderer.sizes)
	assert.InDelta(t, 800.0/600.0, s.Camera.Aspect(), 1e-6)

	fog, ok := s.Scene.Fog()
	require.True(t, ok)
	assert.InDelta(t, 0.01, fog.Density, 1e-9)

	assert.Equal(t, PickHighlight, s.Picks.Resolve(s.Handles.BouncingSphere.ID()))
	assert.Equal(t, PickSyncRotation, s.Picks.Resolve(s.Handles.TheBox.ID()))
	assert.Equal(t, PickNone, s.Picks.Resolve(s.Handles.SpinningBox.ID()))
	want, err := DefaultSettings()
	require.NoError(t, err)
	assert.Equal(t, want, s.Settings)
}

func TestInitialize_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Settings.Speed = 1
	_, err := Initialize(cfg, Deps{Renderer: &fakeRenderer{}})
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = Initialize(config.Default(), Deps{})
	assert.Error(t, err)
}

func TestInitialize_OptionalJitterPlane(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.JitterPlane.Enabled = false
	cfg.Model.URL = ""
	l := &fakeLoader{}
	s, err := Initialize(cfg, Deps{Renderer: &fakeRenderer{}, Loader: l})
	require.NoError(t, err)
	assert.Nil(t, s.Handles.JitterPlane)
	assert.Empty(t, l.loads)

	NewFrameDriver(s).Tick(16)
}

func TestResize(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	s := f.state

	s.Resize(1024, 512)
	s.Resize(1024, 512)
	assert.InDelta(t, 2, s.Camera.Aspect(), 1e-6)
	w, h := f.renderer.Size()
	assert.Equal(t, []int{1024, 512}, []int{w, h})
	proj := s.Camera.ProjectionMatrix()

	s.Resize(1024, 0)
	s.Resize(0, 512)
	assert.InDelta(t, 2, s.Camera.Aspect(), 1e-6)
	assert.Equal(t, proj, s.Camera.ProjectionMatrix())
	w, h = s.Viewport()
	assert.Equal(t, []int{1024, 512}, []int{w, h})
}

func TestPointerMove(t *testing.T) {
	s := &AppState{}
	s.PointerMove(10, 10)
	assert.Equal(t, PointerNDC{}, s.Pointer)

	s.Resize(800, 600)
	tests := []struct {
		x, y float32
		want PointerNDC
	}{
		{400, 300, PointerNDC{0, 0}},
		{0, 0, PointerNDC{-1, 1}},
		{800, 600, PointerNDC{1, -1}},
		{200, 450, PointerNDC{-0.5, -0.5}},
	}
	for _, tt := range tests {
		s.PointerMove(tt.x, tt.y)
		assert.InDelta(t, tt.want.X, s.Pointer.X, 1e-6)
		assert.InDelta(t, tt.want.Y, s.Pointer.Y, 1e-6)
	}
}

func TestSettingsSnapshot_Clone(t *testing.T) {
	s, err := DefaultSettings()
	require.NoError(t, err)
	assert.Equal(t, "#ffea00", s.SphereColor)
	assert.InDelta(t, 0.01, s.Speed, 1e-12)
	assert.InDelta(t, 0.2, s.Angle, 1e-12)

	c, err := s.Clone()
	require.NoError(t, err)
	assert.Equal(t, s, c)
	c.Speed = 0.09
	c.SphereColor = "#000000"
	assert.InDelta(t, 0.01, s.Speed, 1e-12)
	assert.Equal(t, "#ffea00", s.SphereColor)
}

func TestSettingsFromConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.SettingsConfig
		want SettingsSnapshot
	}{
		{
			name: "defaults",
			in:   config.Default().Settings,
			want: SettingsSnapshot{SphereColor: "#ffea00", Speed: 0.01, Angle: 0.2, Penumbra: 0, Intensity: 1},
		},
		{
			name: "wireframe and tuned light",
			in:   config.SettingsConfig{SphereColor: "#00ffff", Wireframe: true, Speed: 0.05, Angle: 0.6, Penumbra: 0.3, Intensity: 0.4, File: "live.toml"},
			want: SettingsSnapshot{SphereColor: "#00ffff", Wireframe: true, Speed: 0.05, Angle: 0.6, Penumbra: 0.3, Intensity: 0.4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SettingsFromConfig(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPickRegistry(t *testing.T) {
	obj := game_object.NewGameObject(game_object.WithName("target"))
	sc := scene.NewScene("s", scene.WithObjects(obj))
	r := NewPickRegistry()

	assert.False(t, r.RegisterByName(sc, "missing", PickHighlight))
	assert.False(t, r.RegisterByName(nil, "target", PickHighlight))
	assert.True(t, r.RegisterByName(sc, "target", PickHighlight))
	assert.Equal(t, PickHighlight, r.Resolve(obj.ID()))
	assert.Equal(t, PickNone, r.Resolve(obj.ID()+1000))

	r.Register(obj.ID(), PickNone)
	assert.Zero(t, r.Len())
	assert.Equal(t, "sync-rotation", PickSyncRotation.String())
}

func TestSeededRandomSource(t *testing.T) {
	a, b := NewSeededRandomSource(7), NewSeededRandomSource(7)
	for i := 0; i < 10; i++ {
		v := a.Float64()
		require.Equal(t, v, b.Float64())
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
