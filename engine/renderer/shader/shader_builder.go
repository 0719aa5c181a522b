package shader

// ShaderBuilderOption is a functional option for NewShader.
type ShaderBuilderOption func(*shader)

// WithEntryPoint selects the entry point by name, for modules that declare several entry
// points of the same stage.
//
// Parameters:
//   - name: the WGSL function name
//
// Returns:
//   - ShaderBuilderOption: a function that applies the entry point to a shader
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}
