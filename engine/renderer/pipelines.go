package renderer

import (
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

var sideNames = map[material.Side]string{
	material.FrontSide:  "front",
	material.BackSide:   "back",
	material.DoubleSide: "double",
}

var sideCull = map[material.Side]wgpu.CullMode{
	material.FrontSide:  wgpu.CullModeBack,
	material.BackSide:   wgpu.CullModeFront,
	material.DoubleSide: wgpu.CullModeNone,
}

func meshPipelineKey(kind material.Kind, side material.Side, wireframe bool) string {
	prefix := "lit/"
	if kind != material.KindStandard {
		prefix = "basic/"
	}
	if wireframe {
		return prefix + "wire"
	}
	return prefix + sideNames[side]
}

func shadowPipelineKey(side material.Side) string {
	return "shadow/" + sideNames[side]
}

// standardPipelines describes every pipeline a frame plan can reference.
//
// Parameters:
//   - lib: the shader library from shader.LoadLibrary
//
// Returns:
//   - []pipeline.Pipeline: the pipeline descriptions, not yet compiled
func standardPipelines(lib map[string]shader.Shader) []pipeline.Pipeline {
	vs := pipeline.WithVertexShader(lib[shader.KeyMeshVertex])
	fragments := map[material.Kind]shader.Shader{
		material.KindStandard: lib[shader.KeyLitFragment],
		material.KindBasic:    lib[shader.KeyBasicFragment],
	}

	var out []pipeline.Pipeline
	for kind, fs := range fragments {
		for side := range sideNames {
			out = append(out, pipeline.NewPipeline(meshPipelineKey(kind, side, false),
				vs, pipeline.WithFragmentShader(fs), pipeline.WithCullMode(sideCull[side])))
		}
		out = append(out, pipeline.NewPipeline(meshPipelineKey(kind, material.FrontSide, true),
			vs, pipeline.WithFragmentShader(fs), pipeline.WithTopology(wgpu.PrimitiveTopologyLineList)))
	}

	out = append(out,
		pipeline.NewPipeline(PipelineLine,
			vs,
			pipeline.WithFragmentShader(lib[shader.KeyBasicFragment]),
			pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		),
		pipeline.NewPipeline(PipelineSkybox,
			pipeline.WithVertexShader(lib[shader.KeySkyboxVertex]),
			pipeline.WithFragmentShader(lib[shader.KeySkyboxFragment]),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		),
	)

	for side := range sideNames {
		out = append(out, pipeline.NewPipeline(shadowPipelineKey(side),
			pipeline.WithVertexShader(lib[shader.KeyShadowVertex]),
			pipeline.WithCullMode(sideCull[side]),
			pipeline.WithDepthBias(2, 2),
		))
	}
	return out
}
