package pipeline

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	blendEnabled        bool
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
	blendState          *wgpu.BlendState
}

// Pipeline describes a render pipeline: its shaders plus the fixed-function state the backend
// needs to create it. A pipeline without a fragment shader is depth-only and is used for the
// shadow pass. The backend stores the compiled GPU object back on the pipeline.
type Pipeline interface {
	// Key returns the unique key used to cache and look up this pipeline.
	Key() string

	// Shader returns the shader of the given stage, or nil if it is not set.
	//
	// Parameters:
	//   - shaderType: the stage to look up
	//
	// Returns:
	//   - shader.Shader: the shader, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// DepthOnly reports whether the pipeline has no fragment stage.
	DepthOnly() bool

	// RenderPipeline returns the compiled GPU pipeline, or nil before the backend has built it.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the compiled GPU pipeline.
	//
	// Parameters:
	//   - rp: the WebGPU render pipeline
	SetRenderPipeline(rp *wgpu.RenderPipeline)

	// DepthTestEnabled reports whether fragments are depth tested. When false the compare
	// function is Always.
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write depth.
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias.
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias.
	DepthBiasSlopeScale() float32

	// BlendEnabled reports whether BlendState is applied to the colour target.
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the winding order of front faces.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the colour write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state used when blending is enabled.
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Defaults: depth test and write on,
// no culling, triangle lists, counter-clockwise front faces and alpha blending off.
//
// Parameters:
//   - key: the unique key for this pipeline
//   - opts: functional options to configure the pipeline
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(key string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key:               key,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Key() string {
	return p.key
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) DepthOnly() bool {
	return p.fragmentShader == nil
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}
