package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// FogExp2 is exponential-squared distance fog: factor = 1 - exp(-(density*depth)^2).
type FogExp2 struct {
	Color   common.Color
	Density float32
}

// Scene is the root of a renderable scene graph plus the scene-wide environment: fog, cubemap
// background and clear colour. Lights are ordinary nodes carrying a light.Light.
// Thread-safe for concurrent access to the environment; the graph itself is mutated on the
// main thread only.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Root returns the root node. It is never drawn itself.
	Root() game_object.GameObject

	// Add attaches objects to the root.
	//
	// Parameters:
	//   - objects: the objects to add
	Add(objects ...game_object.GameObject)

	// Remove detaches objects from the root.
	Remove(objects ...game_object.GameObject)

	// Children returns a snapshot of the root's direct children.
	Children() []game_object.GameObject

	// Traverse visits every node below the root, depth-first.
	Traverse(fn func(game_object.GameObject))

	// GetObjectByName returns the first node with the given name.
	GetObjectByName(name string) (game_object.GameObject, bool)

	// GetObjectByID returns the node with the given ID.
	GetObjectByID(id uint64) (game_object.GameObject, bool)

	// Lights returns every light carried by a visible node, with the node's world position.
	// Lights below an invisible node are skipped.
	//
	// Returns:
	//   - []light.Placed: the placed lights in traversal order
	Lights() []light.Placed

	// ShadowCaster returns the first directional light with CastShadow set.
	//
	// Returns:
	//   - light.Placed: the caster and its position
	//   - bool: false when no light casts a shadow
	ShadowCaster() (light.Placed, bool)

	// Fog returns the fog settings, if fog is enabled.
	Fog() (FogExp2, bool)

	// SetFog enables fog, or disables it when fog is nil.
	SetFog(fog *FogExp2)

	// Background returns the cubemap background, or nil.
	Background() *common.CubeTextureStagingData

	// SetBackground replaces the cubemap background and bumps BackgroundVersion.
	SetBackground(cube *common.CubeTextureStagingData)

	// BackgroundVersion increments on every SetBackground so renderers know to re-upload.
	BackgroundVersion() uint64

	// ClearColor returns the colour the frame is cleared to when no background is set.
	ClearColor() common.Color

	// SetClearColor sets the clear colour.
	SetClearColor(c common.Color)

	// Collect walks the graph and returns the visible drawables, culled against frustum when
	// one is given. Line-mode geometry is never culled.
	//
	// Parameters:
	//   - frustum: the camera frustum, or nil to disable culling
	//
	// Returns:
	//   - []Drawable: the drawables in traversal order
	Collect(frustum *common.Frustum) []Drawable
}

// Drawable is one node selected for drawing along with its world matrix for this frame.
type Drawable struct {
	Object game_object.GameObject
	World  mgl32.Mat4
}

type scene struct {
	mu sync.RWMutex

	name string
	root game_object.GameObject

	fog        *FogExp2
	background *common.CubeTextureStagingData
	bgVersion  uint64
	clearColor common.Color
}

var _ Scene = &scene{}

// NewScene creates an empty scene with a black clear colour and no fog.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		name: name,
		root: game_object.NewGameObject(game_object.WithName(name)),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Root() game_object.GameObject {
	return s.root
}

func (s *scene) Add(objects ...game_object.GameObject) {
	s.root.Add(objects...)
}

func (s *scene) Remove(objects ...game_object.GameObject) {
	s.root.Remove(objects...)
}

func (s *scene) Children() []game_object.GameObject {
	return s.root.Children()
}

func (s *scene) Traverse(fn func(game_object.GameObject)) {
	for _, c := range s.root.Children() {
		c.Traverse(fn)
	}
}

func (s *scene) GetObjectByName(name string) (game_object.GameObject, bool) {
	for _, c := range s.root.Children() {
		if o, ok := c.GetObjectByName(name); ok {
			return o, true
		}
	}
	return nil, false
}

func (s *scene) GetObjectByID(id uint64) (game_object.GameObject, bool) {
	return s.root.GetObjectByID(id)
}

// visit walks the graph skipping invisible subtrees.
func visit(o game_object.GameObject, fn func(game_object.GameObject)) {
	if !o.Visible() {
		return
	}
	fn(o)
	for _, c := range o.Children() {
		visit(c, fn)
	}
}

func (s *scene) Lights() []light.Placed {
	var out []light.Placed
	for _, c := range s.root.Children() {
		visit(c, func(o game_object.GameObject) {
			if l := o.Light(); l != nil {
				out = append(out, light.Placed{Light: l, Position: o.WorldPosition()})
			}
		})
	}
	return out
}

func (s *scene) ShadowCaster() (light.Placed, bool) {
	for _, p := range s.Lights() {
		if p.Light.Type() == light.LightTypeDirectional && p.Light.CastShadow() {
			return p, true
		}
	}
	return light.Placed{}, false
}

func (s *scene) Fog() (FogExp2, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fog == nil {
		return FogExp2{}, false
	}
	return *s.fog, true
}

func (s *scene) SetFog(fog *FogExp2) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fog == nil {
		s.fog = nil
		return
	}
	f := *fog
	s.fog = &f
}

func (s *scene) Background() *common.CubeTextureStagingData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *scene) SetBackground(cube *common.CubeTextureStagingData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.background = cube
	s.bgVersion++
}

func (s *scene) BackgroundVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bgVersion
}

func (s *scene) ClearColor() common.Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clearColor
}

func (s *scene) SetClearColor(c common.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearColor = c
}

func (s *scene) Collect(frustum *common.Frustum) []Drawable {
	var out []Drawable
	for _, c := range s.root.Children() {
		visit(c, func(o game_object.GameObject) {
			g := o.Geometry()
			if g == nil || o.Material() == nil || len(g.Indices()) == 0 {
				return
			}
			world := o.WorldMatrix()
			if frustum != nil && g.DrawMode() == model.DrawModeTriangles {
				center, radius := g.BoundingSphere()
				wc := common.TransformPoint(world, center)
				if !frustum.IntersectsSphere(wc, radius*common.MaxScale(world)) {
					return
				}
			}
			out = append(out, Drawable{Object: o, World: world})
		})
	}
	return out
}
