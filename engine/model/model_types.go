package model

import (
	"github.com/Carmen-Shannon/oxy-playground/common"
)

// Transform is a decomposed TRS transform. Rotation is a unit quaternion in glTF order
// (x, y, z, w).
type Transform struct {
	Translation [3]float32

	Rotation [4]float32

	Scale [3]float32
}

// IdentityTransform returns the identity TRS transform.
func IdentityTransform() Transform {
	return Transform{Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}}
}

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	// InterpolationCubicSpline keyframes store (in-tangent, value, out-tangent) triples.
	InterpolationCubicSpline
)

// TrackPath identifies the node property animated by a track.
type TrackPath int

const (
	TrackTranslation TrackPath = iota
	TrackRotation
	TrackScale
)

// AnimationTrack animates one property of one node. Values holds 3 floats per key for
// translation and scale and 4 floats per key for rotation (x, y, z, w); cubic-spline tracks
// store three such elements per key.
type AnimationTrack struct {
	// NodeName is the name of the animated node, used to bind the track to a scene graph.
	NodeName string

	// NodeIndex is the source node index in the imported file, or -1.
	NodeIndex int

	Path TrackPath

	Interpolation Interpolation

	Times []float32

	Values []float32
}

// Components returns the number of floats per value element (3 or 4).
func (t AnimationTrack) Components() int {
	if t.Path == TrackRotation {
		return 4
	}
	return 3
}

// AnimationClip is a named set of tracks. Duration is in seconds.
type AnimationClip struct {
	Name string

	Duration float32

	Tracks []AnimationTrack
}

// ImportedModel is the format-independent result of importing a model file, before it is
// turned into a scene graph.
type ImportedModel struct {
	Name string

	// Nodes is the flat node list; Children reference it by index.
	Nodes []ImportedNode

	// RootNodes are the indices of the nodes in the default scene.
	RootNodes []int

	Meshes []ImportedMesh

	Materials []common.ImportedMaterial

	Animations []*AnimationClip
}

// ImportedNode is one node of the imported hierarchy.
type ImportedNode struct {
	Name string

	Local Transform

	Children []int

	// Meshes are the indices into ImportedModel.Meshes drawn by this node (one per primitive).
	Meshes []int
}

// ImportedMesh is a single drawable primitive.
type ImportedMesh struct {
	Name string

	Positions []float32

	Normals []float32

	UVs []float32

	Indices []uint32

	// MaterialIndex indexes ImportedModel.Materials, or -1 for the default material.
	MaterialIndex int

	BoundingMin [3]float32

	BoundingMax [3]float32
}
