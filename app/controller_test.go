package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_PanelDrivesScene(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	c, err := NewController(f.state, WithLoader(f.loader))
	require.NoError(t, err)
	defer c.Close()
	s := f.state

	assert.Equal(t, []string{"SphereColor", "Wireframe", "Speed", "Angle", "Penumbra", "Intensity"}, c.Panel().Fields())

	require.NoError(t, c.Panel().Set("SphereColor", "#ff00ff"))
	assert.Equal(t, "#ff00ff", s.Settings.SphereColor)
	assert.Equal(t, common.ColorFromHex(0xff00ff), s.Handles.BouncingSphere.Material().Color())

	require.NoError(t, c.Panel().Set("Wireframe", true))
	assert.True(t, s.Handles.BouncingSphere.Material().Wireframe())

	require.NoError(t, c.Panel().Set("Speed", 3.0))
	assert.InDelta(t, 0.1, s.Settings.Speed, 1e-12)

	require.NoError(t, c.Panel().Set("Angle", 0.5))
	c.Frame(16)
	assert.InDelta(t, 0.5, s.Handles.KeyLight.Angle(), 1e-6)
}

func TestController_Keys(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	c, err := NewController(f.state, WithColorPalette("#00ffff", "#ff0000"))
	require.NoError(t, err)
	s := f.state

	c.KeyDown(common.KeySpace)
	assert.True(t, s.Settings.Wireframe)

	c.KeyDown(common.KeyEqual)
	assert.InDelta(t, 0.011, s.Settings.Speed, 1e-9)

	c.KeyDown(common.KeyC)
	assert.Equal(t, "#00ffff", s.Settings.SphereColor)

	target := s.Camera.Target()
	c.KeyDown(common.KeyD)
	assert.NotEqual(t, target, s.Camera.Target())

	c.KeyDown(common.KeyN)
}

func TestController_MouseOrbitAndZoom(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	c, err := NewController(f.state)
	require.NoError(t, err)
	s := f.state

	radius := s.Camera.Controller().Radius()
	c.Scroll(2)
	assert.Less(t, s.Camera.Controller().Radius(), radius)

	azimuth := s.Camera.Controller().Azimuth()
	c.PointerMove(100, 100)
	assert.Equal(t, azimuth, s.Camera.Controller().Azimuth())

	c.MouseButton(window.MouseButtonLeft, true, 100, 100)
	c.PointerMove(150, 100)
	assert.NotEqual(t, azimuth, s.Camera.Controller().Azimuth())

	c.MouseButton(window.MouseButtonLeft, false, 150, 100)
	azimuth = s.Camera.Controller().Azimuth()
	c.PointerMove(300, 100)
	assert.Equal(t, azimuth, s.Camera.Controller().Azimuth())

	c.Resize(600, 300)
	c.PointerMove(300, 150)
	assert.Equal(t, PointerNDC{}, s.Pointer)
}

func TestController_PreFrameDispatchesAndDrains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sphere_color: \"#00ff00\"\nspeed: 0.05\n"), 0o644))

	f, err := newFixture(nil)
	require.NoError(t, err)
	c, err := NewController(f.state, WithLoader(f.loader), WithSettingsFile(path))
	require.NoError(t, err)
	defer c.Close()

	c.PreFrame()
	assert.Equal(t, 1, f.loader.dispatches)
	assert.Equal(t, "#00ff00", f.state.Settings.SphereColor)
	assert.InDelta(t, 0.05, f.state.Settings.Speed, 1e-12)

	require.NoError(t, os.WriteFile(path, []byte("wireframe: true\n"), 0o644))
	require.Eventually(t, func() bool {
		c.PreFrame()
		return f.state.Settings.Wireframe
	}, 5*time.Second, 20*time.Millisecond)
}

func TestController_BadSettingsFile(t *testing.T) {
	f, err := newFixture(nil)
	require.NoError(t, err)
	_, err = NewController(f.state, WithSettingsFile(filepath.Join(t.TempDir(), "settings.json")))
	assert.Error(t, err)
}

type fakeProfilerControl struct {
	enabled bool
	toggles int
}

func (p *fakeProfilerControl) EnableProfiler()       { p.enabled = true; p.toggles++ }
func (p *fakeProfilerControl) DisableProfiler()      { p.enabled = false; p.toggles++ }
func (p *fakeProfilerControl) ProfilerEnabled() bool { return p.enabled }

func TestController_ArrowKeysOrbit(t *testing.T) {
	tests := []struct {
		name      string
		key       uint32
		azimuth   float32
		elevation float32
	}{
		{"left", common.KeyLeft, -0.05, 0},
		{"right", common.KeyRight, 0.05, 0},
		{"up", common.KeyUp, 0, 0.05},
		{"down", common.KeyDown, 0, -0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newFixture(nil)
			require.NoError(t, err)
			c, err := NewController(f.state)
			require.NoError(t, err)
			cc := f.state.Camera.Controller()
			azimuth, elevation := cc.Azimuth(), cc.Elevation()
			position := f.state.Camera.Position()

			c.KeyDown(tt.key)

			assert.InDelta(t, azimuth+tt.azimuth, cc.Azimuth(), 1e-5)
			assert.InDelta(t, elevation+tt.elevation, cc.Elevation(), 1e-5)
			assert.NotEqual(t, position, f.state.Camera.Position())
		})
	}
}

func TestController_ProfilerKey(t *testing.T) {
	tests := []struct {
		name    string
		control *fakeProfilerControl
		presses int
		enabled bool
	}{
		{"one press enables", &fakeProfilerControl{}, 1, true},
		{"two presses disable", &fakeProfilerControl{}, 2, false},
		{"press disables when on", &fakeProfilerControl{enabled: true}, 1, false},
		{"unbound without control", nil, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := newFixture(nil)
			require.NoError(t, err)
			var opts []ControllerBuilderOption
			if tt.control != nil {
				opts = append(opts, WithProfilerControl(tt.control))
			}
			c, err := NewController(f.state, opts...)
			require.NoError(t, err)

			for i := 0; i < tt.presses; i++ {
				c.KeyDown(common.KeyP)
			}
			if tt.control == nil {
				for _, b := range c.Keys().Bindings() {
					assert.NotEqual(t, uint32(common.KeyP), b.Key)
				}
				return
			}
			assert.Equal(t, tt.enabled, tt.control.enabled)
			assert.Equal(t, tt.presses, tt.control.toggles)
		})
	}
}
