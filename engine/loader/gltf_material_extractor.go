package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-playground/common"
)

// gltfMaterialExtractorImpl is the implementation of the gltfMaterialExtractor interface.
type gltfMaterialExtractorImpl struct {
	parser gltfParser
}

// gltfMaterialExtractor reads the metallic-roughness factors of glTF materials. Textures are
// not imported.
type gltfMaterialExtractor interface {
	// ExtractMaterials returns one ImportedMaterial per document material, in document order.
	//
	// Returns:
	//   - []common.ImportedMaterial: the materials
	//   - error: error if no document is loaded
	ExtractMaterials() ([]common.ImportedMaterial, error)
}

var _ gltfMaterialExtractor = &gltfMaterialExtractorImpl{}

func newGLTFMaterialExtractor(parser gltfParser) gltfMaterialExtractor {
	return &gltfMaterialExtractorImpl{parser: parser}
}

func (e *gltfMaterialExtractorImpl) ExtractMaterials() ([]common.ImportedMaterial, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	out := make([]common.ImportedMaterial, len(doc.Materials))
	for i, m := range doc.Materials {
		// glTF defaults: white, fully metallic, fully rough
		imported := common.ImportedMaterial{
			Name:        m.Name,
			BaseColor:   [4]float32{1, 1, 1, 1},
			Metallic:    1,
			Roughness:   1,
			DoubleSided: m.DoubleSided,
		}
		if imported.Name == "" {
			imported.Name = fmt.Sprintf("material_%d", i)
		}
		if pbr := m.PbrMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				imported.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				imported.Metallic = common.Clamp(*pbr.MetallicFactor, 0, 1)
			}
			if pbr.RoughnessFactor != nil {
				imported.Roughness = common.Clamp(*pbr.RoughnessFactor, 0, 1)
			}
		}
		out[i] = imported
	}
	return out, nil
}
