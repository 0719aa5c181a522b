// Command oxy-playground opens a window with the interactive playground scene.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/Carmen-Shannon/oxy-playground/app"
	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine"
	"github.com/Carmen-Shannon/oxy-playground/engine/loader"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/window"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	// GLFW and the surface must stay on the main thread.
	runtime.LockOSThread()
}

type options struct {
	configPath   string
	settingsPath string
	width        int
	height       int
	logLevel     string
	profile      bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "oxy-playground",
		Short:         "Interactive 3D playground: picking, procedural animation and a live settings panel",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cfg, opts.profile)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML or YAML configuration file")
	flags.StringVarP(&opts.settingsPath, "settings", "s", "", "TOML or YAML settings file watched for live changes")
	flags.IntVar(&opts.width, "width", 0, "window width in pixels")
	flags.IntVar(&opts.height, "height", 0, "window height in pixels")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&opts.profile, "profile", false, "log frame rate and memory statistics")
	return cmd
}

// loadConfig applies the flags that were set on top of the file or the defaults.
func loadConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Window.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Window.Height = opts.height
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flags.Changed("settings") {
		cfg.Settings.File = opts.settingsPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(cfg config.Config, profile bool) error {
	log, err := logger.Init(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer logger.Sync()

	eng := engine.NewEngine(
		engine.WithLogger(log),
		engine.WithProfiling(profile),
		engine.WithRenderFrameLimit(cfg.Renderer.FrameLimit),
		engine.WithWindow(window.NewWindow(
			window.WithTitle(cfg.Window.Title),
			window.WithSize(cfg.Window.Width, cfg.Window.Height),
		)),
	)

	presentMode := renderer.PresentModeVSync
	if !cfg.Renderer.VSync {
		presentMode = renderer.PresentModeUncapped
	}
	msaa := renderer.MSAA4x
	if !cfg.Renderer.MSAA {
		msaa = renderer.MSAAOff
	}
	r := renderer.NewRenderer(eng.Window(),
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(msaa),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.Software),
		renderer.WithLogger(log),
	)
	defer r.Release()

	l := loader.NewLoader()
	defer l.Release()

	state, err := app.Initialize(cfg, app.Deps{
		Renderer:   r,
		Loader:     l,
		Background: loader.NewCubeTextureLoader(cfg.Scene.AssetDir),
		Log:        log,
		Width:      eng.Window().Width(),
		Height:     eng.Window().Height(),
	})
	if err != nil {
		return err
	}

	settingsFile := cfg.Settings.File
	if settingsFile != "" && !filepath.IsAbs(settingsFile) {
		if abs, err := filepath.Abs(settingsFile); err == nil {
			settingsFile = abs
		}
	}
	ctrl, err := app.NewController(state,
		app.WithLoader(l),
		app.WithSettingsFile(settingsFile),
		app.WithProfilerControl(eng),
	)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	defer ctrl.Close()

	ctrl.Attach(eng.Window())
	eng.AddPreFrameHook(ctrl.PreFrame)
	eng.SetFrameCallback(ctrl.Frame)

	for _, b := range ctrl.Keys().Bindings() {
		log.Debug("key binding", zap.Uint32("key", b.Key), zap.String("action", b.Description))
	}
	log.Info("playground started",
		zap.Int("width", cfg.Window.Width),
		zap.Int("height", cfg.Window.Height),
		zap.String("model", cfg.Model.URL))

	return eng.Run()
}
