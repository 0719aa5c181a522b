package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "myAnimation", cfg.Model.Clip)
	assert.Equal(t, [3]float32{-12, 4, 10}, cfg.Model.Offset)
	assert.Equal(t, 0.01, cfg.Settings.Speed)
	assert.Equal(t, "#ffea00", cfg.Settings.SphereColor)
}

func TestLoad_OverridesOnlyGivenKeys(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "toml",
			file: "playground.toml",
			body: "[window]\nwidth = 800\n\n[settings]\nspeed = 0.05\n\n[scene.sphere]\ncolor = \"#ff00ff\"\n",
		},
		{
			name: "yaml",
			file: "playground.yaml",
			body: "window:\n  width: 800\nsettings:\n  speed: 0.05\nscene:\n  sphere:\n    color: \"#ff00ff\"\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.body))
			require.NoError(t, err)
			assert.Equal(t, 800, cfg.Window.Width)
			assert.Equal(t, 720, cfg.Window.Height)
			assert.Equal(t, 0.05, cfg.Settings.Speed)
			assert.Equal(t, "#ff00ff", cfg.Scene.Sphere.Color)
			assert.Equal(t, float32(4), cfg.Scene.Sphere.Radius)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "playground.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "fast.toml", "[settings]\nspeed = 0.5\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeFile(t, "color.yml", "lights:\n  ambient: teal\n"))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load(writeFile(t, "typo.toml", "[window]\nwdth = 3\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_EmptyYAML(t *testing.T) {
	cfg := Default()
	require.NoError(t, Decode("empty.yaml", nil, &cfg))
	assert.Equal(t, Default(), cfg)
}
