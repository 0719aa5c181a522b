package loader

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/Carmen-Shannon/oxy-playground/engine/model"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnsupportedExtension is returned when a file lists a required extension the importer
// does not implement.
var ErrUnsupportedExtension = errors.New("unsupported required glTF extension")

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	fetch fetchFunc
}

// gltfImporter combines the parser and extractors to produce a complete ImportedModel.
type gltfImporter interface {
	// Import decodes glTF JSON or GLB data and extracts its node hierarchy, meshes, materials
	// and animations.
	//
	// Parameters:
	//   - ctx: context for fetching external buffers
	//   - data: the raw file contents
	//   - location: the file path or URL the data came from, used to resolve relative buffer
	//     URIs and as the fallback model name
	//
	// Returns:
	//   - *model.ImportedModel: the imported model
	//   - error: error if import fails
	Import(ctx context.Context, data []byte, location string) (*model.ImportedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter(fetch fetchFunc) gltfImporter {
	return &gltfImporterImpl{fetch: fetch}
}

func (imp *gltfImporterImpl) Import(ctx context.Context, data []byte, location string) (*model.ImportedModel, error) {
	parser := newGLTFParser(ctx, location, imp.fetch)
	if err := parser.Parse(data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	doc := parser.Document()
	if len(doc.ExtensionsRequired) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(doc.ExtensionsRequired, ", "), ErrUnsupportedExtension)
	}

	out := &model.ImportedModel{Name: gltfModelName(doc, location)}

	materials, err := newGLTFMaterialExtractor(parser).ExtractMaterials()
	if err != nil {
		return nil, fmt.Errorf("material extraction failed: %w", err)
	}
	out.Materials = materials

	// primitives of mesh i live at meshSlots[i]
	meshExtractor := newGLTFMeshExtractor(parser)
	meshSlots := make([][]int, len(doc.Meshes))
	for i := range doc.Meshes {
		meshes, err := meshExtractor.ExtractMesh(i)
		if err != nil {
			return nil, fmt.Errorf("mesh extraction failed: %w", err)
		}
		for _, m := range meshes {
			if m.MaterialIndex >= len(out.Materials) {
				m.MaterialIndex = -1
			}
			meshSlots[i] = append(meshSlots[i], len(out.Meshes))
			out.Meshes = append(out.Meshes, m)
		}
	}

	out.Nodes = make([]model.ImportedNode, len(doc.Nodes))
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		node := model.ImportedNode{
			Name:  nodeName(doc, i),
			Local: nodeTransform(n),
		}
		for _, c := range n.Children {
			if c < 0 || c >= len(doc.Nodes) || c == i {
				return nil, fmt.Errorf("node %d: invalid child %d", i, c)
			}
			node.Children = append(node.Children, c)
		}
		if n.Mesh != nil {
			if *n.Mesh < 0 || *n.Mesh >= len(doc.Meshes) {
				return nil, fmt.Errorf("node %d: mesh %d out of range", i, *n.Mesh)
			}
			node.Meshes = meshSlots[*n.Mesh]
		}
		out.Nodes[i] = node
	}
	out.RootNodes = gltfRootNodes(doc)

	anims, err := newGLTFAnimationExtractor(parser).ExtractAllAnimations()
	if err != nil {
		return nil, fmt.Errorf("animation extraction failed: %w", err)
	}
	out.Animations = anims

	return out, nil
}

// nodeTransform returns the node's local TRS, decomposing Matrix when present.
func nodeTransform(n *gltfNode) model.Transform {
	t := model.IdentityTransform()
	if n.Matrix != nil {
		return decomposeMatrix(mgl32.Mat4(*n.Matrix))
	}
	if n.Translation != nil {
		t.Translation = *n.Translation
	}
	if n.Rotation != nil {
		t.Rotation = *n.Rotation
	}
	if n.Scale != nil {
		t.Scale = *n.Scale
	}
	return t
}

// decomposeMatrix splits a column-major affine matrix into TRS. A negative determinant is
// folded into the x scale.
func decomposeMatrix(m mgl32.Mat4) model.Transform {
	t := model.Transform{Translation: [3]float32{m[12], m[13], m[14]}}
	sx := m.Col(0).Vec3().Len()
	sy := m.Col(1).Vec3().Len()
	sz := m.Col(2).Vec3().Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}
	t.Scale = [3]float32{sx, sy, sz}

	var r mgl32.Mat4
	for c, s := range []float32{sx, sy, sz} {
		if s == 0 {
			s = 1
		}
		col := m.Col(c).Vec3().Mul(1 / s)
		r.SetCol(c, col.Vec4(0))
	}
	r[15] = 1
	q := mgl32.Mat4ToQuat(r).Normalize()
	t.Rotation = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	return t
}

// gltfRootNodes returns the default scene's nodes, falling back to the first scene and then to
// every node that is nobody's child.
func gltfRootNodes(doc *gltfDocument) []int {
	scene := -1
	switch {
	case doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes):
		scene = *doc.Scene
	case len(doc.Scenes) > 0:
		scene = 0
	}
	if scene >= 0 {
		roots := make([]int, 0, len(doc.Scenes[scene].Nodes))
		for _, n := range doc.Scenes[scene].Nodes {
			if n >= 0 && n < len(doc.Nodes) {
				roots = append(roots, n)
			}
		}
		return roots
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfModelName prefers the scene name, then the file stem of location.
func gltfModelName(doc *gltfDocument, location string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}
	if location != "" {
		base := path.Base(strings.ReplaceAll(location, "\\", "/"))
		if i := strings.IndexAny(base, "?#"); i >= 0 {
			base = base[:i]
		}
		if stem := strings.TrimSuffix(base, path.Ext(base)); stem != "" && stem != "." && stem != "/" {
			return stem
		}
	}
	return "unnamed_model"
}
