package app

import (
	"context"
	"fmt"

	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/helper"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/loader"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/animator"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Deps are the collaborators Initialize wires into the state. Only Renderer is required.
type Deps struct {
	Renderer renderer.Renderer

	// Loader loads the model asynchronously. Nil skips the model.
	Loader loader.Loader

	// Background loads the cubemap faces. Nil skips the background.
	Background loader.CubeTextureLoader

	// Clock drives the animation mixer. Defaults to the wall clock.
	Clock animator.Clock

	// Random drives the plane jitter. Defaults to the runtime generator.
	Random RandomSource

	Log *zap.Logger

	// Width and Height are the initial viewport. Zero falls back to the configured window size.
	Width  int
	Height int
}

// Initialize builds the scene described by cfg, enables shadow mapping and starts the model load.
// The model arrives later through the loader's Dispatch; a failed load is logged and the scene
// renders without it.
//
// Parameters:
//   - cfg: the configuration
//   - deps: the renderer and optional loaders
//
// Returns:
//   - *AppState: the populated state
//   - error: if cfg is invalid or no renderer is given
func Initialize(cfg config.Config, deps Deps) (*AppState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("initialize: renderer is required")
	}

	settings, err := SettingsFromConfig(cfg.Settings)
	if err != nil {
		return nil, err
	}

	s := &AppState{
		Renderer: deps.Renderer,
		Settings: settings,
		Clock:    deps.Clock,
		Random:   deps.Random,
		Log:      deps.Log,
		Picks:    NewPickRegistry(),
	}
	if s.Clock == nil {
		s.Clock = animator.NewClock()
	}
	if s.Random == nil {
		s.Random = NewRandomSource()
	}

	width, height := deps.Width, deps.Height
	if width <= 0 || height <= 0 {
		width, height = cfg.Window.Width, cfg.Window.Height
	}

	s.Camera = newCamera(cfg.Camera, float32(width)/float32(height))
	s.Scene = scene.NewScene("playground", scene.WithClearColor(config.Color(cfg.Scene.ClearColor)))
	if fog := cfg.Scene.Fog; fog.Enabled {
		s.Scene.SetFog(&scene.FogExp2{Color: config.Color(fog.Color), Density: fog.Density})
	}

	s.buildPrimitives(cfg.Scene)
	s.buildLights(cfg.Lights, cfg.Settings)
	s.loadBackground(cfg.Scene, deps.Background)

	s.Picks.Register(s.Handles.BouncingSphere.ID(), PickHighlight)
	s.Picks.RegisterByName(s.Scene, NameTheBox, PickSyncRotation)

	s.Renderer.SetShadowMapEnabled(cfg.Renderer.ShadowsEnabled)
	s.Resize(width, height)

	if deps.Loader != nil && cfg.Model.URL != "" {
		s.logger().Info("loading model", zap.String("url", cfg.Model.URL))
		deps.Loader.LoadAsync(cfg.Model.URL,
			func(res *loader.Result) { s.modelLoaded(res, cfg) },
			func(err error) {
				s.logger().Error("model load failed", zap.String("url", cfg.Model.URL), zap.Error(err))
			})
	}
	return s, nil
}

func newCamera(c config.CameraConfig, aspect float32) camera.Camera {
	cam := camera.NewCamera(
		camera.WithFov(c.Fov),
		camera.WithAspect(aspect),
		camera.WithClipPlanes(c.Near, c.Far),
		camera.WithPosition(c.Position[0], c.Position[1], c.Position[2]),
		camera.WithTarget(c.Target[0], c.Target[1], c.Target[2]),
	)

	offset := mgl32.Vec3(c.Position).Sub(mgl32.Vec3(c.Target))
	radius := offset.Len()
	opts := []camera.CameraControllerOption{
		camera.WithRadius(radius),
		camera.WithAzimuth(math32.Atan2(offset.X(), offset.Z())),
		camera.WithElevation(math32.Asin(offset.Y() / math32.Max(radius, 1e-6))),
	}
	if c.OrbitSpeed > 0 {
		opts = append(opts, camera.WithOrbitSpeed(c.OrbitSpeed))
	}
	cc := camera.NewCameraController(opts...)
	cc.SetTarget(c.Target[0], c.Target[1], c.Target[2])
	cam.SetController(cc)
	return cam
}

func (s *AppState) buildPrimitives(c config.SceneConfig) {
	sphere := game_object.NewGameObject(
		game_object.WithName(NameBouncingSphere),
		game_object.WithMesh(
			model.NewSphereGeometry(c.Sphere.Radius, c.Sphere.Segments, c.Sphere.Segments),
			material.NewMaterial(material.WithColor(config.Color(c.Sphere.Color))),
		),
		game_object.WithPosition(c.Sphere.Position[0], c.Sphere.Position[1], c.Sphere.Position[2]),
		game_object.WithShadows(true, false),
	)

	box := game_object.NewGameObject(
		game_object.WithName(NameSpinningBox),
		game_object.WithMesh(
			model.NewBoxGeometry(c.Box.Size, c.Box.Size, c.Box.Size),
			material.NewMaterial(material.WithKind(material.KindBasic), material.WithColor(config.Color(c.Box.Color))),
		),
		game_object.WithPosition(c.Box.Position[0], c.Box.Position[1], c.Box.Position[2]),
	)

	ground := game_object.NewGameObject(
		game_object.WithName(NameGround),
		game_object.WithMesh(
			model.NewPlaneGeometry(c.Plane.Size, c.Plane.Size, 1, 1),
			material.NewMaterial(material.WithColor(config.Color(c.Plane.Color)), material.WithSide(material.DoubleSide)),
		),
		game_object.WithRotation(-math32.Pi/2, 0, 0),
		game_object.WithShadows(false, true),
	)

	grid := helper.NewGridHelper(c.Grid.Size, c.Grid.Divisions, config.Color(c.Grid.Color))

	theBox := game_object.NewGameObject(
		game_object.WithName(NameTheBox),
		game_object.WithMesh(
			model.NewBoxGeometry(c.TheBox.Size, c.TheBox.Size, c.TheBox.Size),
			material.NewMaterial(material.WithColor(config.Color(c.TheBox.Color))),
		),
		game_object.WithPosition(c.TheBox.Position[0], c.TheBox.Position[1], c.TheBox.Position[2]),
		game_object.WithShadows(true, true),
	)

	s.Scene.Add(sphere, box, ground, grid, theBox)
	s.Handles.BouncingSphere = sphere
	s.Handles.SpinningBox = box
	s.Handles.TheBox = theBox

	if jp := c.JitterPlane; jp.Enabled {
		plane := game_object.NewGameObject(
			game_object.WithName(NameJitterPlane),
			game_object.WithMesh(
				model.NewPlaneGeometry(jp.Size, jp.Size, jp.Segments, jp.Segments),
				material.NewMaterial(
					material.WithColor(config.Color(jp.Color)),
					material.WithWireframe(true),
					material.WithSide(material.DoubleSide),
				),
			),
			game_object.WithPosition(jp.Position[0], jp.Position[1], jp.Position[2]),
		)
		s.Scene.Add(plane)
		s.Handles.JitterPlane = plane
	}
}

func (s *AppState) buildLights(c config.LightsConfig, settings config.SettingsConfig) {
	ambient := game_object.NewGameObject(
		game_object.WithName("ambient"),
		game_object.WithLight(light.NewLight(
			light.WithType(light.LightTypeAmbient),
			light.WithColor(config.Color(c.Ambient)),
		)),
	)

	spot := light.NewLight(
		light.WithType(light.LightTypeSpot),
		light.WithColor(config.Color(c.Spot.Color)),
		light.WithIntensity(float32(settings.Intensity)),
		light.WithAngle(float32(settings.Angle)),
		light.WithPenumbra(float32(settings.Penumbra)),
		light.WithTarget(mgl32.Vec3{}),
		light.WithCastShadow(c.Spot.CastShadow),
	)
	spotNode := game_object.NewGameObject(
		game_object.WithName(NameKeyLight),
		game_object.WithLight(spot),
		game_object.WithPosition(c.Spot.Position[0], c.Spot.Position[1], c.Spot.Position[2]),
	)
	spotHelper := helper.NewSpotLightHelper(spotNode)

	s.Scene.Add(ambient, spotNode, spotHelper.Object())
	s.Handles.KeyLightNode = spotNode
	s.Handles.KeyLight = spot
	s.Handles.KeyLightHelper = spotHelper
}

func (s *AppState) loadBackground(c config.SceneConfig, cubes loader.CubeTextureLoader) {
	if cubes == nil {
		return
	}
	faces := c.Background[:]
	for _, f := range faces {
		if f == "" {
			return
		}
	}
	cube, err := cubes.Load(context.Background(), faces)
	if err != nil {
		s.logger().Warn("background not loaded", zap.Strings("faces", faces), zap.Error(err))
		return
	}
	s.Scene.SetBackground(cube)
}

// modelLoaded places the model, configures its shadows, adds the sun and starts the named clip.
// It runs on the main thread through the loader's Dispatch.
func (s *AppState) modelLoaded(res *loader.Result, cfg config.Config) {
	root := res.Root
	root.SetName(NameModel)
	root.SetPosition(cfg.Model.Offset[0], cfg.Model.Offset[1], cfg.Model.Offset[2])
	root.Traverse(func(obj game_object.GameObject) {
		if obj.Geometry() == nil {
			return
		}
		obj.SetCastShadow(true)
		obj.SetReceiveShadow(true)
		if m := obj.Material(); m != nil {
			m.SetShadowSide(material.FrontSide)
			m.SetShadowBias(cfg.Model.ShadowBias)
		}
	})
	s.Scene.Add(root)

	d := cfg.Lights.Directional
	shadow := light.DefaultShadowConfig()
	shadow.MapSize = d.MapSize
	shadow.Near = d.Near
	shadow.Far = d.Far
	sun := game_object.NewGameObject(
		game_object.WithName("sun"),
		game_object.WithLight(light.NewLight(
			light.WithType(light.LightTypeDirectional),
			light.WithColor(config.Color(d.Color)),
			light.WithIntensity(d.Intensity),
			light.WithTarget(mgl32.Vec3{}),
			light.WithCastShadow(true),
			light.WithShadow(shadow),
		)),
		game_object.WithPosition(d.Position[0], d.Position[1], d.Position[2]),
	)
	s.Scene.Add(sun)

	s.logger().Info("model placed",
		zap.String("url", cfg.Model.URL),
		zap.Int("clips", len(res.Animations)))

	if len(res.Animations) == 0 {
		return
	}
	clip, ok := animator.FindClip(res.Animations, cfg.Model.Clip)
	if !ok {
		return
	}
	mixer := animator.NewMixer(root)
	mixer.ClipAction(clip).Play()
	s.Mixer = mixer
}
