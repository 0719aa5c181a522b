package loader

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Result is a freshly built scene graph for a loaded model together with its animation clips.
// Each Load builds a new graph, so results can be mutated independently.
type Result struct {
	// Root is the top-level node; the file's root nodes are its children.
	Root game_object.GameObject

	Animations []*model.AnimationClip
}

// completion is a finished async load waiting to be delivered on the caller's thread.
type completion struct {
	result  *Result
	err     error
	onLoad  func(*Result)
	onError func(error)
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	fetch    fetchFunc
	client   *http.Client
	importer gltfImporter

	// modelCache holds imported models keyed by location.
	modelCache map[string]*model.ImportedModel

	pool       worker.DynamicWorkerPool
	workers    int
	queueSize  int
	timeout    time.Duration
	nextTaskID atomic.Int64
	pending    sync.WaitGroup
	inFlight   atomic.Int64

	doneMu sync.Mutex
	done   []completion

	ctx    context.Context
	cancel context.CancelFunc
}

// Loader loads glTF and GLB models from file paths or http(s) URLs into scene graphs.
// Imported models are cached by location.
type Loader interface {
	// Load imports the model at location synchronously and builds a new scene graph for it.
	//
	// Parameters:
	//   - ctx: context for the fetch
	//   - location: a file path or http(s) URL ending in .gltf or .glb
	//
	// Returns:
	//   - *Result: the scene graph and animations
	//   - error: error if fetching or importing fails
	Load(ctx context.Context, location string) (*Result, error)

	// LoadAsync imports the model on a background worker. Exactly one of onLoad or onError is
	// invoked, and only from a later call to Dispatch. A nil callback is skipped.
	//
	// Parameters:
	//   - location: a file path or http(s) URL
	//   - onLoad: called with the result on success
	//   - onError: called with the error on failure
	LoadAsync(location string, onLoad func(*Result), onError func(error))

	// Dispatch runs the callbacks of every async load that has finished since the last call,
	// on the calling goroutine.
	//
	// Returns:
	//   - int: the number of completions delivered
	Dispatch() int

	// Pending returns the number of async loads not yet delivered by Dispatch.
	Pending() int

	// Wait blocks until every submitted async load has finished. Completions still need
	// Dispatch to be delivered.
	Wait()

	// Get returns a cached imported model by location.
	Get(location string) (*model.ImportedModel, bool)

	// Release cancels in-flight fetches and stops the worker pool. Undelivered completions are
	// dropped.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the given options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: the configured loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]*model.ImportedModel),
		workers:    2,
		queueSize:  32,
	}
	for _, option := range options {
		option(l)
	}

	if l.fetch == nil {
		l.fetch = newFetcher(l.client)
	}
	l.importer = newGLTFImporter(l.fetch)
	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.pool = worker.NewDynamicWorkerPool(l.workers, l.queueSize, time.Second)
	return l
}

func (l *loader) Load(ctx context.Context, location string) (*Result, error) {
	imported, err := l.importModel(ctx, location)
	if err != nil {
		return nil, err
	}
	return &Result{Root: BuildScene(imported), Animations: imported.Animations}, nil
}

func (l *loader) importModel(ctx context.Context, location string) (*model.ImportedModel, error) {
	if cached, ok := l.Get(location); ok {
		return cached, nil
	}

	ext := strings.ToLower(path.Ext(strings.SplitN(location, "?", 2)[0]))
	if ext != ".gltf" && ext != ".glb" {
		return nil, fmt.Errorf("%s: %w", location, ErrUnsupportedFormat)
	}

	data, err := l.fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	imported, err := l.importer.Import(ctx, data, location)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("model imported",
		zap.String("location", location),
		zap.Int("nodes", len(imported.Nodes)),
		zap.Int("meshes", len(imported.Meshes)),
		zap.Int("animations", len(imported.Animations)))

	l.mu.Lock()
	l.modelCache[location] = imported
	l.mu.Unlock()
	return imported, nil
}

func (l *loader) LoadAsync(location string, onLoad func(*Result), onError func(error)) {
	l.inFlight.Add(1)
	l.pending.Add(1)
	id := int(l.nextTaskID.Add(1))
	l.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: location,
		Do: func() (any, error) {
			defer l.pending.Done()
			ctx := l.ctx
			if l.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(l.ctx, l.timeout)
				defer cancel()
			}

			res, err := l.Load(ctx, location)
			if err != nil {
				logger.Log.Warn("async model load failed", zap.String("location", location), zap.Error(err))
			}
			if l.ctx.Err() != nil {
				l.inFlight.Add(-1)
				return res, err
			}
			l.doneMu.Lock()
			l.done = append(l.done, completion{result: res, err: err, onLoad: onLoad, onError: onError})
			l.doneMu.Unlock()
			return res, err
		},
	})
}

func (l *loader) Dispatch() int {
	l.doneMu.Lock()
	batch := l.done
	l.done = nil
	l.doneMu.Unlock()

	for _, c := range batch {
		l.inFlight.Add(-1)
		if c.err != nil {
			if c.onError != nil {
				c.onError(c.err)
			}
			continue
		}
		if c.onLoad != nil {
			c.onLoad(c.result)
		}
	}
	return len(batch)
}

func (l *loader) Pending() int {
	return int(l.inFlight.Load())
}

func (l *loader) Wait() {
	l.pending.Wait()
}

func (l *loader) Get(location string) (*model.ImportedModel, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	m, ok := l.modelCache[location]
	return m, ok
}

func (l *loader) Release() {
	l.cancel()
	l.pool.Stop()

	l.doneMu.Lock()
	l.inFlight.Add(-int64(len(l.done)))
	l.done = nil
	l.doneMu.Unlock()
}

// BuildScene turns an imported model into a new scene graph. Every node becomes a GameObject
// named after the source node; a node drawing one primitive carries it directly, a node drawing
// several gets one child per primitive.
//
// Parameters:
//   - imported: the imported model
//
// Returns:
//   - game_object.GameObject: the root node, named after the model
func BuildScene(imported *model.ImportedModel) game_object.GameObject {
	root := game_object.NewGameObject(game_object.WithName(imported.Name))

	materials := make([]material.Material, len(imported.Materials))
	for i, m := range imported.Materials {
		materials[i] = material.FromImported(m)
	}
	var fallback material.Material
	materialFor := func(index int) material.Material {
		if index >= 0 && index < len(materials) {
			return materials[index]
		}
		if fallback == nil {
			fallback = material.NewMaterial(material.WithName("default"))
		}
		return fallback
	}

	built := make([]bool, len(imported.Nodes))
	var build func(index int) game_object.GameObject
	build = func(index int) game_object.GameObject {
		built[index] = true
		src := &imported.Nodes[index]
		obj := game_object.NewGameObject(game_object.WithName(src.Name))
		t := src.Local
		obj.SetPosition(t.Translation[0], t.Translation[1], t.Translation[2])
		obj.SetQuaternion(mgl32.Quat{W: t.Rotation[3], V: mgl32.Vec3{t.Rotation[0], t.Rotation[1], t.Rotation[2]}})
		obj.SetScale(t.Scale[0], t.Scale[1], t.Scale[2])

		switch len(src.Meshes) {
		case 0:
		case 1:
			m := &imported.Meshes[src.Meshes[0]]
			obj.SetGeometry(geometryFromImported(m))
			obj.SetMaterial(materialFor(m.MaterialIndex))
		default:
			for _, mi := range src.Meshes {
				m := &imported.Meshes[mi]
				obj.Add(game_object.NewGameObject(
					game_object.WithName(m.Name),
					game_object.WithMesh(geometryFromImported(m), materialFor(m.MaterialIndex)),
				))
			}
		}

		for _, c := range src.Children {
			// a node referenced twice is only instantiated once
			if c >= 0 && c < len(built) && !built[c] {
				obj.Add(build(c))
			}
		}
		return obj
	}

	for _, r := range imported.RootNodes {
		if r >= 0 && r < len(built) && !built[r] {
			root.Add(build(r))
		}
	}
	return root
}

// geometryFromImported copies the mesh buffers so scene graphs built from one cached import do
// not share mutable vertex data.
func geometryFromImported(m *model.ImportedMesh) model.Geometry {
	opts := []model.GeometryBuilderOption{
		model.WithName(m.Name),
		model.WithPositions(append([]float32(nil), m.Positions...)),
		model.WithIndices(append([]uint32(nil), m.Indices...)),
	}
	if len(m.Normals) > 0 {
		opts = append(opts, model.WithNormals(append([]float32(nil), m.Normals...)))
	}
	if len(m.UVs) > 0 {
		opts = append(opts, model.WithUVs(append([]float32(nil), m.UVs...)))
	}
	g := model.NewGeometry(opts...)
	if len(m.Normals) == 0 {
		g.ComputeVertexNormals()
	}
	return g
}
