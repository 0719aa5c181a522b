package loader

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-playground/engine/logger"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"

	"go.uber.org/zap"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF meshes into ImportedMesh values, one per triangle primitive.
type gltfMeshExtractor interface {
	// ExtractMesh extracts every triangle primitive of one mesh. Primitives in other modes are
	// skipped with a warning.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per supported primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.ImportedMesh, 0, len(mesh.Primitives))
	for primIdx := range mesh.Primitives {
		prim := &mesh.Primitives[primIdx]
		if prim.Mode != nil && *prim.Mode != gltfModeTriangles {
			logger.Log.Warn("skipping non-triangle primitive",
				zap.Int("mesh", meshIndex), zap.Int("primitive", primIdx), zap.Int("mode", *prim.Mode))
			continue
		}
		imported, err := e.extractPrimitive(prim, meshName(mesh.Name, meshIndex, primIdx))
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		result = append(result, imported)
	}
	return result, nil
}

func meshName(name string, meshIndex, primIndex int) string {
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	if primIndex > 0 {
		return fmt.Sprintf("%s_%d", name, primIndex)
	}
	return name
}

func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, name string) (model.ImportedMesh, error) {
	out := model.ImportedMesh{Name: name, MaterialIndex: -1}
	if prim.Material != nil {
		out.MaterialIndex = *prim.Material
	}

	posAccessor, ok := prim.Attributes[gltfAttrPosition]
	if !ok {
		return out, fmt.Errorf("primitive has no %s attribute", gltfAttrPosition)
	}
	positions, comps, err := e.parser.ReadFloats(posAccessor)
	if err != nil {
		return out, fmt.Errorf("failed to read positions: %w", err)
	}
	if comps != 3 {
		return out, fmt.Errorf("positions have %d components, want 3", comps)
	}
	out.Positions = positions
	vertexCount := len(positions) / 3

	if idx, ok := prim.Attributes[gltfAttrNormal]; ok {
		normals, comps, err := e.parser.ReadFloats(idx)
		if err != nil {
			return out, fmt.Errorf("failed to read normals: %w", err)
		}
		if comps == 3 && len(normals) == len(positions) {
			out.Normals = normals
		}
	}

	if idx, ok := prim.Attributes[gltfAttrTexCoord]; ok {
		uvs, comps, err := e.parser.ReadFloats(idx)
		if err != nil {
			return out, fmt.Errorf("failed to read texcoords: %w", err)
		}
		if comps == 2 && len(uvs) == vertexCount*2 {
			out.UVs = uvs
		}
	}

	if prim.Indices != nil {
		indices, err := e.parser.ReadIndices(*prim.Indices)
		if err != nil {
			return out, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, ix := range indices {
			if int(ix) >= vertexCount {
				return out, fmt.Errorf("index %d exceeds vertex count %d: %w", ix, vertexCount, ErrAccessorOutOfRange)
			}
		}
		out.Indices = indices
	} else {
		out.Indices = make([]uint32, vertexCount)
		for i := range out.Indices {
			out.Indices[i] = uint32(i)
		}
	}

	out.BoundingMin, out.BoundingMax = positionBounds(positions)
	return out, nil
}

// positionBounds returns the axis-aligned bounds of a packed xyz slice, zero for an empty slice.
func positionBounds(positions []float32) ([3]float32, [3]float32) {
	if len(positions) < 3 {
		return [3]float32{}, [3]float32{}
	}
	lo := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	hi := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}
	for i := 0; i+2 < len(positions); i += 3 {
		for c := 0; c < 3; c++ {
			lo[c] = min(lo[c], positions[i+c])
			hi[c] = max(hi[c], positions[i+c])
		}
	}
	return lo, hi
}
