// Package config loads the playground configuration from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for configuration files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the complete playground configuration.
type Config struct {
	Window   WindowConfig   `toml:"window" yaml:"window"`
	Renderer RendererConfig `toml:"renderer" yaml:"renderer"`
	Camera   CameraConfig   `toml:"camera" yaml:"camera"`
	Scene    SceneConfig    `toml:"scene" yaml:"scene"`
	Lights   LightsConfig   `toml:"lights" yaml:"lights"`
	Model    ModelConfig    `toml:"model" yaml:"model"`
	Settings SettingsConfig `toml:"settings" yaml:"settings"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

type RendererConfig struct {
	VSync          bool    `toml:"vsync" yaml:"vsync"`
	MSAA           bool    `toml:"msaa" yaml:"msaa"`
	Software       bool    `toml:"software" yaml:"software"`
	FrameLimit     float64 `toml:"frame_limit" yaml:"frame_limit"`
	ShadowsEnabled bool    `toml:"shadows" yaml:"shadows"`
}

type CameraConfig struct {
	Fov      float32    `toml:"fov" yaml:"fov"`
	Near     float32    `toml:"near" yaml:"near"`
	Far      float32    `toml:"far" yaml:"far"`
	Position [3]float32 `toml:"position" yaml:"position"`
	Target   [3]float32 `toml:"target" yaml:"target"`

	// OrbitSpeed is the angle in radians the arrow keys orbit per press.
	OrbitSpeed float32 `toml:"orbit_speed" yaml:"orbit_speed"`
}

// SceneConfig describes the static scene content.
type SceneConfig struct {
	ClearColor string `toml:"clear_color" yaml:"clear_color"`

	// AssetDir is the base for relative background face paths.
	AssetDir   string    `toml:"asset_dir" yaml:"asset_dir"`
	Background [6]string `toml:"background" yaml:"background"`

	Fog    FogConfig    `toml:"fog" yaml:"fog"`
	Sphere SphereConfig `toml:"sphere" yaml:"sphere"`
	Box    BoxConfig    `toml:"box" yaml:"box"`
	Plane  PlaneConfig  `toml:"plane" yaml:"plane"`
	Grid   GridConfig   `toml:"grid" yaml:"grid"`

	// JitterPlane is the wireframe plane whose vertices are displaced every frame.
	JitterPlane JitterPlaneConfig `toml:"jitter_plane" yaml:"jitter_plane"`

	// TheBox is the named box whose rotation is synced while the pointer is over it.
	TheBox BoxConfig `toml:"the_box" yaml:"the_box"`
}

type FogConfig struct {
	Enabled bool    `toml:"enabled" yaml:"enabled"`
	Color   string  `toml:"color" yaml:"color"`
	Density float32 `toml:"density" yaml:"density"`
}

type SphereConfig struct {
	Radius   float32    `toml:"radius" yaml:"radius"`
	Segments int        `toml:"segments" yaml:"segments"`
	Color    string     `toml:"color" yaml:"color"`
	Position [3]float32 `toml:"position" yaml:"position"`
}

type BoxConfig struct {
	Size     float32    `toml:"size" yaml:"size"`
	Color    string     `toml:"color" yaml:"color"`
	Position [3]float32 `toml:"position" yaml:"position"`
}

type PlaneConfig struct {
	Size  float32 `toml:"size" yaml:"size"`
	Color string  `toml:"color" yaml:"color"`
}

type GridConfig struct {
	Size      float32 `toml:"size" yaml:"size"`
	Divisions int     `toml:"divisions" yaml:"divisions"`
	Color     string  `toml:"color" yaml:"color"`
}

type JitterPlaneConfig struct {
	Enabled  bool       `toml:"enabled" yaml:"enabled"`
	Size     float32    `toml:"size" yaml:"size"`
	Segments int        `toml:"segments" yaml:"segments"`
	Color    string     `toml:"color" yaml:"color"`
	Position [3]float32 `toml:"position" yaml:"position"`
}

type LightsConfig struct {
	Ambient     string                 `toml:"ambient" yaml:"ambient"`
	Spot        SpotLightConfig        `toml:"spot" yaml:"spot"`
	Directional DirectionalLightConfig `toml:"directional" yaml:"directional"`
}

type SpotLightConfig struct {
	Color      string     `toml:"color" yaml:"color"`
	Position   [3]float32 `toml:"position" yaml:"position"`
	CastShadow bool       `toml:"cast_shadow" yaml:"cast_shadow"`
}

// DirectionalLightConfig is the light added once the model has loaded.
type DirectionalLightConfig struct {
	Color     string     `toml:"color" yaml:"color"`
	Intensity float32    `toml:"intensity" yaml:"intensity"`
	Position  [3]float32 `toml:"position" yaml:"position"`
	MapSize   int        `toml:"map_size" yaml:"map_size"`
	Near      float32    `toml:"near" yaml:"near"`
	Far       float32    `toml:"far" yaml:"far"`
}

type ModelConfig struct {
	// URL is a file path or http(s) URL of a .gltf or .glb file. Empty skips the load.
	URL        string     `toml:"url" yaml:"url"`
	Offset     [3]float32 `toml:"offset" yaml:"offset"`
	Clip       string     `toml:"clip" yaml:"clip"`
	ShadowBias float32    `toml:"shadow_bias" yaml:"shadow_bias"`
}

// SettingsConfig is the initial value of every live-tunable setting.
type SettingsConfig struct {
	SphereColor string  `toml:"sphere_color" yaml:"sphere_color"`
	Wireframe   bool    `toml:"wireframe" yaml:"wireframe"`
	Speed       float64 `toml:"speed" yaml:"speed"`
	Angle       float64 `toml:"angle" yaml:"angle"`
	Penumbra    float64 `toml:"penumbra" yaml:"penumbra"`
	Intensity   float64 `toml:"intensity" yaml:"intensity"`

	// File is a TOML or YAML file watched for live setting changes. Empty disables watching.
	File string `toml:"file" yaml:"file"`
}

type LogConfig struct {
	Level       string `toml:"level" yaml:"level"`
	Development bool   `toml:"development" yaml:"development"`
}

// Default returns the configuration of the reference playground scene.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{Title: "oxy playground", Width: 1280, Height: 720},
		Renderer: RendererConfig{
			VSync:          true,
			MSAA:           true,
			ShadowsEnabled: true,
		},
		Camera: CameraConfig{
			Fov:        45,
			Near:       0.1,
			Far:        1000,
			Position:   [3]float32{-10, 30, 30},
			OrbitSpeed: 0.05,
		},
		Scene: SceneConfig{
			ClearColor: "#ffea00",
			AssetDir:   "assets",
			Background: [6]string{"nebula.jpg", "nebula.jpg", "stars.jpg", "stars.jpg", "stars.jpg", "stars.jpg"},
			Fog:        FogConfig{Enabled: true, Color: "#ffffff", Density: 0.01},
			Sphere:     SphereConfig{Radius: 4, Segments: 50, Color: "#0000ff", Position: [3]float32{-10, 10, 0}},
			Box:        BoxConfig{Size: 1, Color: "#00ff00"},
			Plane:      PlaneConfig{Size: 30, Color: "#ffffff"},
			Grid:       GridConfig{Size: 30, Divisions: 10, Color: "#888888"},
			JitterPlane: JitterPlaneConfig{
				Enabled:  true,
				Size:     10,
				Segments: 10,
				Color:    "#ffffff",
				Position: [3]float32{10, 10, 15},
			},
			TheBox: BoxConfig{Size: 4, Color: "#ffffff", Position: [3]float32{0, 15, 10}},
		},
		Lights: LightsConfig{
			Ambient: "#333333",
			Spot:    SpotLightConfig{Color: "#ffffff", Position: [3]float32{-100, 100, 0}, CastShadow: true},
			Directional: DirectionalLightConfig{
				Color:     "#ffffff",
				Intensity: 1,
				Position:  [3]float32{0, 10, 0},
				MapSize:   1024,
				Near:      0.5,
				Far:       500,
			},
		},
		Model: ModelConfig{
			URL:        "assets/house.glb",
			Offset:     [3]float32{-12, 4, 10},
			Clip:       "myAnimation",
			ShadowBias: -0.002,
		},
		Settings: SettingsConfig{
			SphereColor: "#ffea00",
			Speed:       0.01,
			Angle:       0.2,
			Penumbra:    0,
			Intensity:   1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes. The format is
// chosen by extension: .toml, .yaml or .yml.
//
// Parameters:
//   - path: the configuration file
//
// Returns:
//   - Config: the merged configuration
//   - error: if the file cannot be read, parsed or fails validation
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := Decode(path, data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals data into v using the format implied by name's extension.
//
// Parameters:
//   - name: a file name whose extension selects TOML or YAML
//   - data: the encoded document
//   - v: a pointer to decode into
//
// Returns:
//   - error: ErrUnsupportedFormat for other extensions, or the decoder's error
func Decode(name string, data []byte, v any) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		return toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("%q: %w", filepath.Ext(name), ErrUnsupportedFormat)
	}
}

// Validate checks ranges and colour strings.
//
// Returns:
//   - error: wrapping ErrInvalid on the first problem found
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		return fmt.Errorf("%w: camera clip planes %v..%v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	}
	if c.Settings.Speed < 0 || c.Settings.Speed > 0.1 {
		return fmt.Errorf("%w: settings.speed %v outside [0, 0.1]", ErrInvalid, c.Settings.Speed)
	}

	colors := map[string]string{
		"scene.clear_color":        c.Scene.ClearColor,
		"scene.fog.color":          c.Scene.Fog.Color,
		"scene.sphere.color":       c.Scene.Sphere.Color,
		"scene.box.color":          c.Scene.Box.Color,
		"scene.plane.color":        c.Scene.Plane.Color,
		"scene.grid.color":         c.Scene.Grid.Color,
		"scene.jitter_plane.color": c.Scene.JitterPlane.Color,
		"scene.the_box.color":      c.Scene.TheBox.Color,
		"lights.ambient":           c.Lights.Ambient,
		"lights.spot.color":        c.Lights.Spot.Color,
		"lights.directional.color": c.Lights.Directional.Color,
		"settings.sphere_color":    c.Settings.SphereColor,
	}
	for key, value := range colors {
		if _, err := common.ParseColor(value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
	}
	return nil
}

// Color parses a colour string already checked by Validate, falling back to black.
//
// Parameters:
//   - s: a "#rrggbb", "0xrrggbb" or "rrggbb" string
//
// Returns:
//   - common.Color: the colour
func Color(s string) common.Color {
	c, _ := common.ParseColor(s)
	return c
}
