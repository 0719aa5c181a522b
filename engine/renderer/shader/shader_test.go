package shader

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLibrary(t *testing.T) {
	lib, err := LoadLibrary()
	require.NoError(t, err)
	require.Len(t, lib, len(libraryEntries))

	vs := lib[KeyMeshVertex]
	assert.Equal(t, "vs_main", vs.EntryPoint())
	require.Len(t, vs.VertexLayouts(), 1)
	layout := vs.VertexLayouts()[0]
	assert.Equal(t, uint64(32), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)

	frame := vs.BindGroupLayoutDescriptor(0)
	require.Len(t, frame.Entries, 5)
	assert.Equal(t, uint64(camera.GPUCameraUniformSize+16), frame.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, uint64(light.GPULightBlockSize), frame.Entries[1].Buffer.MinBindingSize)
	assert.Equal(t, uint64(light.GPUShadowDataSize), frame.Entries[2].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, frame.Entries[3].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, frame.Entries[4].Sampler.Type)

	object := vs.BindGroupLayoutDescriptor(1)
	require.Len(t, object.Entries, 1)
	assert.Equal(t, uint64(160), object.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, "obj", vs.BindGroupVarName(1, 0))
}

func TestLibraryLayoutsAreShared(t *testing.T) {
	lib, err := LoadLibrary()
	require.NoError(t, err)

	assert.Equal(t, lib[KeyMeshVertex].BindGroupLayoutDescriptor(1), lib[KeyShadowVertex].BindGroupLayoutDescriptor(1))
	assert.Equal(t, lib[KeyMeshVertex].BindGroupLayoutDescriptors(), lib[KeyLitFragment].BindGroupLayoutDescriptors())
	assert.Equal(t, lib[KeyShadowVertex].VertexLayouts(), lib[KeyMeshVertex].VertexLayouts())
}

func TestSkyboxReflection(t *testing.T) {
	lib, err := LoadLibrary()
	require.NoError(t, err)

	vs := lib[KeySkyboxVertex]
	assert.Nil(t, vs.VertexLayouts())

	sky := vs.BindGroupLayoutDescriptor(0)
	require.Len(t, sky.Entries, 3)
	assert.Equal(t, uint64(64), sky.Entries[0].Buffer.MinBindingSize)
	assert.Equal(t, wgpu.TextureViewDimensionCube, sky.Entries[1].Texture.ViewDimension)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, sky.Entries[1].Texture.SampleType)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, sky.Entries[2].Sampler.Type)
}

func TestNewShader_EntryPoints(t *testing.T) {
	src := `
@vertex
fn first() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }
@fragment
fn paint() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }
`
	vs, err := NewShader("v", ShaderTypeVertex, src)
	require.NoError(t, err)
	assert.Equal(t, "first", vs.EntryPoint())

	_, err = NewShader("f", ShaderTypeFragment, src, WithEntryPoint("missing"))
	assert.ErrorIs(t, err, ErrNoEntryPoint)

	_, err = NewShader("f", ShaderTypeFragment, src, WithEntryPoint("first"))
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

func TestPreProcessor(t *testing.T) {
	pp := NewPreProcessor(map[string]string{
		"a": "struct A { x: f32, }",
		"b": "//@oxy:include a\nstruct B { a: A, }",
	})

	out, err := pp.Process("//@oxy:include a\n//@oxy:include b\nfn main() {}")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "struct A"))
	assert.Contains(t, out, "struct B")

	_, err = pp.Process("//@oxy:include nope")
	assert.ErrorIs(t, err, ErrUnknownInclude)

	_, err = pp.Process("// @oxy:group 0 0")
	assert.ErrorIs(t, err, ErrUnknownAnnotation)
}

func TestStructLayout(t *testing.T) {
	structs := parseStructBlocks(stripComments(`
struct Inner { v: vec3<f32>, /* padded */ s: f32, }
struct Outer { a: f32, items: array<Inner, 3>, }
`))
	sizes := computeStructSizes(structs)
	assert.Equal(t, wgslTypeLayout{size: 16, align: 16}, sizes["Inner"])
	assert.Equal(t, wgslTypeLayout{size: 64, align: 16}, sizes["Outer"])
}
