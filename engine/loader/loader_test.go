package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/animator"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureBin packs a single triangle, its indices, and a two-key translation track.
func fixtureBin() []byte {
	var buf bytes.Buffer
	f := func(vs ...float32) {
		for _, v := range vs {
			_ = binary.Write(&buf, binary.LittleEndian, math.Float32bits(v))
		}
	}
	f(0, 0, 0, 1, 0, 0, 0, 1, 0) // positions: 36 bytes
	for _, i := range []uint16{0, 1, 2, 0} {
		_ = binary.Write(&buf, binary.LittleEndian, i) // indices + pad: 8 bytes
	}
	f(0, 1)             // times: 8 bytes
	f(0, 0, 0, 5, 0, 0) // translations: 24 bytes
	return buf.Bytes()
}

const fixtureJSON = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [
    {"name": "House", "children": [1], "translation": [1, 2, 3]},
    {"mesh": 0}
  ],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}],
  "materials": [{"name": "red", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "metallicFactor": 0}}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"},
    {"bufferView": 2, "componentType": 5126, "count": 2, "type": "SCALAR"},
    {"bufferView": 3, "componentType": 5126, "count": 2, "type": "VEC3"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6},
    {"buffer": 0, "byteOffset": 44, "byteLength": 8},
    {"buffer": 0, "byteOffset": 52, "byteLength": 24}
  ],
  "buffers": [{%s"byteLength": 76}],
  "animations": [{
    "name": "myAnimation",
    "channels": [{"sampler": 0, "target": {"node": 0, "path": "translation"}}],
    "samplers": [{"input": 2, "output": 3}]
  }]
}`

func gltfWithURI(uri string) []byte {
	return []byte(fmt.Sprintf(fixtureJSON, fmt.Sprintf(`"uri": %q, `, uri)))
}

func dataURIGLTF() []byte {
	return gltfWithURI("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(fixtureBin()))
}

func glb(jsonChunk, bin []byte, version uint32) []byte {
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	for len(bin)%4 != 0 {
		bin = append(bin, 0)
	}
	var buf bytes.Buffer
	w := func(v uint32) { _ = binary.Write(&buf, binary.LittleEndian, v) }
	w(gltfGLBMagic)
	w(version)
	w(uint32(gltfGLBHeaderSize + 8 + len(jsonChunk) + 8 + len(bin)))
	w(uint32(len(jsonChunk)))
	w(gltfGLBChunkJSON)
	buf.Write(jsonChunk)
	w(uint32(len(bin)))
	w(gltfGLBChunkBIN)
	buf.Write(bin)
	return buf.Bytes()
}

func memoryFetcher(files map[string][]byte) func(context.Context, string) ([]byte, error) {
	return func(_ context.Context, location string) ([]byte, error) {
		data, ok := files[filepath.ToSlash(location)]
		if !ok {
			return nil, fmt.Errorf("%s: %w", location, os.ErrNotExist)
		}
		return data, nil
	}
}

func newTestLoader(t *testing.T, files map[string][]byte) Loader {
	t.Helper()
	l := NewLoader(WithFetcher(memoryFetcher(files)), WithWorkers(2, 8))
	t.Cleanup(l.Release)
	return l
}

func TestLoad_DataURIGLTF(t *testing.T) {
	l := newTestLoader(t, map[string][]byte{"scene.gltf": dataURIGLTF()})

	res, err := l.Load(context.Background(), "scene.gltf")
	require.NoError(t, err)

	house, ok := res.Root.GetObjectByName("House")
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, house.Position())

	children := house.Children()
	require.Len(t, children, 1)
	assert.Equal(t, "node_1", children[0].Name())
	g := children[0].Geometry()
	require.NotNil(t, g)
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2}, g.Indices())
	assert.Len(t, g.Normals(), 9, "missing normals are generated")

	m := children[0].Material()
	require.NotNil(t, m)
	assert.Equal(t, "red", m.Name())

	clip, ok := animator.FindClip(res.Animations, "myAnimation")
	require.True(t, ok)
	assert.InDelta(t, 1.0, clip.Duration, 1e-6)
	require.Len(t, clip.Tracks, 1)
	assert.Equal(t, "House", clip.Tracks[0].NodeName)
	assert.Equal(t, model.TrackTranslation, clip.Tracks[0].Path)
}

func TestLoad_GLB(t *testing.T) {
	jsonChunk := []byte(fmt.Sprintf(fixtureJSON, ""))
	l := newTestLoader(t, map[string][]byte{"scene.glb": glb(jsonChunk, fixtureBin(), gltfGLBVersion)})

	res, err := l.Load(context.Background(), "scene.glb")
	require.NoError(t, err)
	_, ok := res.Root.GetObjectByName("House")
	assert.True(t, ok)
}

func TestLoad_ExternalBufferResolvedRelative(t *testing.T) {
	l := newTestLoader(t, map[string][]byte{
		"models/scene.gltf":     gltfWithURI("scene%20data.bin"),
		"models/scene data.bin": fixtureBin(),
	})

	res, err := l.Load(context.Background(), "models/scene.gltf")
	require.NoError(t, err)
	assert.Len(t, res.Animations, 1)
}

func TestLoad_Errors(t *testing.T) {
	jsonChunk := []byte(fmt.Sprintf(fixtureJSON, ""))
	files := map[string][]byte{
		"bad.glb":     glb(jsonChunk, fixtureBin(), 1),
		"v1.gltf":     []byte(`{"asset": {"version": "1.0"}}`),
		"ext.gltf":    []byte(`{"asset": {"version": "2.0"}, "extensionsRequired": ["KHR_draco_mesh_compression"]}`),
		"short.gltf":  gltfWithURI("data:application/octet-stream;base64,AAAA"),
		"broken.gltf": []byte(`{`),
	}
	l := newTestLoader(t, files)

	tests := []struct {
		location string
		want     error
	}{
		{"model.obj", ErrUnsupportedFormat},
		{"bad.glb", ErrInvalidGLBVersion},
		{"v1.gltf", ErrInvalidGLTFVersion},
		{"ext.gltf", ErrUnsupportedExtension},
		{"short.gltf", ErrBufferSizeMismatch},
		{"missing.gltf", os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			_, err := l.Load(context.Background(), tt.location)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := l.Load(context.Background(), "broken.gltf")
	assert.Error(t, err)
}

func TestLoad_CachesImportAndBuildsFreshGraphs(t *testing.T) {
	l := newTestLoader(t, map[string][]byte{"scene.gltf": dataURIGLTF()})

	a, err := l.Load(context.Background(), "scene.gltf")
	require.NoError(t, err)
	b, err := l.Load(context.Background(), "scene.gltf")
	require.NoError(t, err)

	_, ok := l.Get("scene.gltf")
	assert.True(t, ok)
	assert.NotEqual(t, a.Root.ID(), b.Root.ID())

	firstGeometry := func(root game_object.GameObject) model.Geometry {
		var found model.Geometry
		root.Traverse(func(o game_object.GameObject) {
			if found == nil && o.Geometry() != nil {
				found = o.Geometry()
			}
		})
		return found
	}
	ga, gb := firstGeometry(a.Root), firstGeometry(b.Root)
	require.NotNil(t, ga)
	require.NotNil(t, gb)
	ga.Positions()[0] = 42
	assert.Equal(t, float32(0), gb.Positions()[0], "graphs must not share vertex buffers")
}

func TestLoadAsync_DeliversOnDispatch(t *testing.T) {
	l := newTestLoader(t, map[string][]byte{"scene.gltf": dataURIGLTF()})

	var loaded *Result
	var failed error
	l.LoadAsync("scene.gltf", func(r *Result) { loaded = r }, func(err error) { t.Fatalf("unexpected error: %v", err) })
	l.LoadAsync("missing.gltf", func(*Result) { t.Fatal("unexpected load") }, func(err error) { failed = err })

	l.Wait()
	assert.Nil(t, loaded, "callbacks only run from Dispatch")
	assert.Equal(t, 2, l.Pending())

	assert.Equal(t, 2, l.Dispatch())
	require.NotNil(t, loaded)
	assert.ErrorIs(t, failed, os.ErrNotExist)
	assert.Equal(t, 0, l.Pending())
	assert.Equal(t, 0, l.Dispatch())
}

func TestDecomposeMatrix(t *testing.T) {
	q := mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})
	m := mgl32.Translate3D(1, 2, 3).Mul4(q.Mat4()).Mul4(mgl32.Scale3D(2, 3, 4))

	tr := decomposeMatrix(m)
	assert.InDeltaSlice(t, []float32{1, 2, 3}, tr.Translation[:], 1e-5)
	assert.InDeltaSlice(t, []float32{2, 3, 4}, tr.Scale[:], 1e-5)

	got := mgl32.Quat{W: tr.Rotation[3], V: mgl32.Vec3{tr.Rotation[0], tr.Rotation[1], tr.Rotation[2]}}
	assert.True(t, got.ApproxEqualThreshold(q, 1e-4) || got.ApproxEqualThreshold(q.Scale(-1), 1e-4))
}

func TestResolveReference(t *testing.T) {
	tests := []struct{ base, ref, want string }{
		{"models/a.gltf", "a.bin", filepath.Join("models", "a.bin")},
		{"a.gltf", "b%20c.bin", "b c.bin"},
		{"https://host/m/a.gltf", "a.bin", "https://host/m/a.bin"},
		{"https://host/m/a.gltf", "../t/x.png", "https://host/t/x.png"},
		{"models/a.gltf", "https://cdn/x.bin", "https://cdn/x.bin"},
		{"", "x.png", "x.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveReference(tt.base, tt.ref), "%s + %s", tt.base, tt.ref)
	}
}

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCubeTextureLoader(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "nebula.png"), 8, 8, color.RGBA{R: 255, A: 255})
	writePNG(t, filepath.Join(dir, "stars.png"), 16, 4, color.RGBA{B: 255, A: 255})

	cl := NewCubeTextureLoader(dir)
	cube, err := cl.Load(context.Background(), []string{"nebula.png", "nebula.png", "stars.png", "stars.png", "stars.png", "stars.png"})
	require.NoError(t, err)

	assert.Equal(t, uint32(4), cube.Size)
	for i, face := range cube.Faces {
		assert.Equal(t, uint32(4), face.Width, "face %d", i)
		assert.Len(t, face.Pixels, 4*4*4, "face %d", i)
	}
	assert.Equal(t, []byte{255, 0, 0, 255}, cube.Faces[0].Pixels[:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, cube.Faces[5].Pixels[:4])

	_, err = cl.Load(context.Background(), []string{"nebula.png"})
	assert.ErrorIs(t, err, ErrCubeFaceCount)

	_, err = cl.Load(context.Background(), []string{"a", "b", "c", "d", "e", "f"})
	assert.Error(t, err)
}

func TestLoadAsync_FetchDeadline(t *testing.T) {
	tests := []struct {
		name         string
		options      []LoaderBuilderOption
		wantDeadline bool
	}{
		{"unbounded by default", nil, false},
		{"explicit timeout", []LoaderBuilderOption{WithTimeout(time.Minute)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hasDeadline atomic.Bool
			fetch := func(ctx context.Context, location string) ([]byte, error) {
				_, ok := ctx.Deadline()
				hasDeadline.Store(ok)
				return nil, fmt.Errorf("%s: %w", location, os.ErrNotExist)
			}
			l := NewLoader(append([]LoaderBuilderOption{WithFetcher(fetch)}, tt.options...)...)
			t.Cleanup(l.Release)

			var failed error
			l.LoadAsync("scene.gltf", nil, func(err error) { failed = err })
			l.Wait()
			require.Equal(t, 1, l.Dispatch())
			assert.ErrorIs(t, failed, os.ErrNotExist)
			assert.Equal(t, tt.wantDeadline, hasDeadline.Load())
		})
	}
}
