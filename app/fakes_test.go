package app

import (
	"context"
	"errors"

	"github.com/Carmen-Shannon/oxy-playground/config"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/loader"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer"
	"github.com/Carmen-Shannon/oxy-playground/engine/scene"
	"go.uber.org/zap"
)

type fakeRenderer struct {
	sizes   [][2]int
	shadows bool
	renders int
	err     error
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) SetSize(width, height int) { r.sizes = append(r.sizes, [2]int{width, height}) }

func (r *fakeRenderer) Size() (int, int) {
	if len(r.sizes) == 0 {
		return 0, 0
	}
	last := r.sizes[len(r.sizes)-1]
	return last[0], last[1]
}

func (r *fakeRenderer) SetShadowMapEnabled(enabled bool)    { r.shadows = enabled }
func (r *fakeRenderer) ShadowMapEnabled() bool              { return r.shadows }
func (r *fakeRenderer) SetPresentMode(renderer.PresentMode) {}
func (r *fakeRenderer) Release()                            {}
func (r *fakeRenderer) Render(scene.Scene, camera.Camera) error {
	r.renders++
	return r.err
}

type asyncLoad struct {
	location string
	onLoad   func(*loader.Result)
	onError  func(error)
}

type fakeLoader struct {
	loads      []asyncLoad
	dispatches int
}

var _ loader.Loader = &fakeLoader{}

func (l *fakeLoader) Load(context.Context, string) (*loader.Result, error) {
	return nil, errors.New("not supported")
}

func (l *fakeLoader) LoadAsync(location string, onLoad func(*loader.Result), onError func(error)) {
	l.loads = append(l.loads, asyncLoad{location: location, onLoad: onLoad, onError: onError})
}

func (l *fakeLoader) Dispatch() int {
	l.dispatches++
	return 0
}

func (l *fakeLoader) Pending() int                            { return len(l.loads) }
func (l *fakeLoader) Wait()                                   {}
func (l *fakeLoader) Get(string) (*model.ImportedModel, bool) { return nil, false }
func (l *fakeLoader) Release()                                {}

type fakeClock struct {
	delta float64
	calls int
}

func (c *fakeClock) Delta() float64 {
	c.calls++
	return c.delta
}

func (c *fakeClock) Elapsed() float64 { return c.delta * float64(c.calls) }

// constRandom returns the same value forever.
type constRandom float64

func (r constRandom) Float64() float64 { return float64(r) }

type fixture struct {
	state    *AppState
	renderer *fakeRenderer
	loader   *fakeLoader
	clock    *fakeClock
}

func newFixture(log *zap.Logger) (*fixture, error) {
	f := &fixture{
		renderer: &fakeRenderer{},
		loader:   &fakeLoader{},
		clock:    &fakeClock{delta: 0.25},
	}
	state, err := Initialize(config.Default(), Deps{
		Renderer: f.renderer,
		Loader:   f.loader,
		Clock:    f.clock,
		Random:   constRandom(0.5),
		Log:      log,
		Width:    800,
		Height:   600,
	})
	f.state = state
	return f, err
}
