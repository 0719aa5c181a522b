package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed wgsl
var wgslFS embed.FS

// Keys of the shaders built into the library.
const (
	KeyMeshVertex     = "mesh/vertex"
	KeyLitFragment    = "mesh/lit"
	KeyBasicFragment  = "mesh/basic"
	KeySkyboxVertex   = "skybox/vertex"
	KeySkyboxFragment = "skybox/fragment"
	KeyShadowVertex   = "shadow/vertex"
	includeDir        = "wgsl/include"
	librarySourceDir  = "wgsl"
	librarySourceExt  = ".wgsl"
)

type libraryEntry struct {
	key        string
	file       string
	shaderType ShaderType
	entryPoint string
}

var libraryEntries = []libraryEntry{
	{KeyMeshVertex, "mesh", ShaderTypeVertex, "vs_main"},
	{KeyLitFragment, "mesh", ShaderTypeFragment, "fs_lit"},
	{KeyBasicFragment, "mesh", ShaderTypeFragment, "fs_basic"},
	{KeySkyboxVertex, "skybox", ShaderTypeVertex, "vs_sky"},
	{KeySkyboxFragment, "skybox", ShaderTypeFragment, "fs_sky"},
	{KeyShadowVertex, "shadow", ShaderTypeVertex, "vs_shadow"},
}

// LoadLibrary expands and reflects every built-in shader.
//
// Returns:
//   - map[string]Shader: the shaders keyed by the Key constants
//   - error: if a source fails to expand or has no matching entry point
func LoadLibrary() (map[string]Shader, error) {
	chunks, err := readChunks()
	if err != nil {
		return nil, err
	}
	pp := NewPreProcessor(chunks)

	expanded := make(map[string]string)
	library := make(map[string]Shader, len(libraryEntries))
	for _, e := range libraryEntries {
		src, ok := expanded[e.file]
		if !ok {
			raw, err := wgslFS.ReadFile(path.Join(librarySourceDir, e.file+librarySourceExt))
			if err != nil {
				return nil, fmt.Errorf("shader: read %s: %w", e.file, err)
			}
			if src, err = pp.Process(string(raw)); err != nil {
				return nil, fmt.Errorf("shader: %s: %w", e.file, err)
			}
			expanded[e.file] = src
		}

		s, err := NewShader(e.key, e.shaderType, src, WithEntryPoint(e.entryPoint))
		if err != nil {
			return nil, err
		}
		library[e.key] = s
	}
	return library, nil
}

func readChunks() (map[string]string, error) {
	entries, err := fs.ReadDir(wgslFS, includeDir)
	if err != nil {
		return nil, err
	}
	chunks := make(map[string]string, len(entries))
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), librarySourceExt)
		if !ok || e.IsDir() {
			continue
		}
		data, err := wgslFS.ReadFile(path.Join(includeDir, e.Name()))
		if err != nil {
			return nil, err
		}
		chunks[name] = string(data)
	}
	return chunks, nil
}
