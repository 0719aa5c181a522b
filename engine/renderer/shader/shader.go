package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies the pipeline stage a shader is compiled for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage of a render pipeline.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment stage of a render pipeline.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	if t == ShaderTypeFragment {
		return "fragment"
	}
	return "vertex"
}

// ErrNoEntryPoint is returned when the source has no entry point for the requested stage.
var ErrNoEntryPoint = errors.New("shader: entry point not found")

// shader is the implementation of the Shader interface.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []wgpu.VertexBufferLayout
	module                     *wgpu.ShaderModuleDescriptor
}

// Shader is one stage of a WGSL module together with the resource layout reflected from its
// source: bind group layouts keyed by group index and, for vertex shaders, the vertex buffer
// layout of the entry point's input struct.
type Shader interface {
	// Key returns the unique identifier of the shader.
	Key() string

	// Source returns the expanded WGSL source.
	Source() string

	// ShaderType returns the stage this shader targets.
	ShaderType() ShaderType

	// EntryPoint returns the WGSL function used as the stage entry point.
	EntryPoint() string

	// BindGroupLayoutDescriptor returns the reflected layout of one bind group.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor, empty if the group is not declared
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected bind group layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the WGSL variable bound at group and binding, or "".
	BindGroupVarName(group, binding int) string

	// VertexLayouts returns the vertex buffer layouts of a vertex shader. Fragment shaders and
	// vertex shaders that only read builtins return nil.
	VertexLayouts() []wgpu.VertexBufferLayout

	// Module returns the shader module descriptor used to compile the source.
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// NewShader reflects a shader from already expanded WGSL source. Unless WithEntryPoint is given
// the first entry point of the requested stage is used.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage to compile
//   - source: the WGSL source
//   - options: functional options such as WithEntryPoint
//
// Returns:
//   - Shader: the reflected shader
//   - error: ErrNoEntryPoint if the stage has no usable entry point
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:        key,
		source:     source,
		shaderType: shaderType,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.entryPoint == "" {
		s.entryPoint = parseEntryPoint(source, shaderType)
	}
	if s.entryPoint == "" || !hasEntryPoint(source, shaderType, s.entryPoint) {
		return nil, fmt.Errorf("%s %s %q: %w", key, shaderType, s.entryPoint, ErrNoEntryPoint)
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = parseBindGroupLayouts(source)
	if shaderType == ShaderTypeVertex {
		s.vertexLayouts = parseVertexLayouts(source, s.entryPoint)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
