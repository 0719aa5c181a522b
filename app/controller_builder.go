package app

import "github.com/Carmen-Shannon/oxy-playground/engine/loader"

// ControllerBuilderOption is a functional option applied to a controller by NewController.
type ControllerBuilderOption func(*controller)

// WithLoader sets the loader whose completions PreFrame dispatches.
func WithLoader(l loader.Loader) ControllerBuilderOption {
	return func(c *controller) {
		c.loader = l
	}
}

// WithSettingsFile watches a TOML or YAML file and applies its values to the panel.
//
// Parameters:
//   - path: the settings file; empty disables watching
//
// Returns:
//   - ControllerBuilderOption: the option
func WithSettingsFile(path string) ControllerBuilderOption {
	return func(c *controller) {
		c.settingsFile = path
	}
}

// WithProfilerControl binds the profiler toggle key to p.
func WithProfilerControl(p ProfilerControl) ControllerBuilderOption {
	return func(c *controller) {
		c.profiler = p
	}
}

// WithFrameDriver replaces the default frame driver.
func WithFrameDriver(d FrameDriver) ControllerBuilderOption {
	return func(c *controller) {
		c.driver = d
	}
}

// WithColorPalette sets the colours cycled by the colour key.
//
// Parameters:
//   - colors: colour strings such as "#ff00ff"
//
// Returns:
//   - ControllerBuilderOption: the option
func WithColorPalette(colors ...string) ControllerBuilderOption {
	return func(c *controller) {
		c.palette = c.palette[:0]
		for _, col := range colors {
			c.palette = append(c.palette, col)
		}
	}
}
