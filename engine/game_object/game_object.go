package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/light"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

var nextID atomic.Uint64

type gameObject struct {
	mu sync.RWMutex

	id      uint64
	name    string
	visible bool

	position mgl32.Vec3
	rotation mgl32.Vec3
	scale    mgl32.Vec3

	parent   *gameObject
	children []*gameObject

	geometry      model.Geometry
	material      material.Material
	attachedLight light.Light

	castShadow    bool
	receiveShadow bool
}

// GameObject is a node of the scene graph. It owns a local transform, an optional drawable
// (geometry plus material), an optional attached Light, and an ordered list of children.
//
// Rotation is stored as XYZ-order Euler angles in radians and is the canonical representation;
// SetQuaternion converts into it. World matrices are computed on demand from the parent chain.
type GameObject interface {
	// ID returns the object's process-unique identifier, assigned at construction.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Name returns the object's name.
	//
	// Returns:
	//   - string: the name, possibly empty
	Name() string

	// SetName sets the object's name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Visible reports whether the object and its subtree are drawn.
	//
	// Returns:
	//   - bool: true if visible
	Visible() bool

	// SetVisible shows or hides the object and its subtree.
	//
	// Parameters:
	//   - visible: true to draw
	SetVisible(visible bool)

	// Position returns the local translation.
	//
	// Returns:
	//   - mgl32.Vec3: the position relative to the parent
	Position() mgl32.Vec3

	// SetPosition sets the local translation.
	//
	// Parameters:
	//   - x, y, z: the new position
	SetPosition(x, y, z float32)

	// Rotation returns the local Euler rotation in radians (XYZ order).
	//
	// Returns:
	//   - mgl32.Vec3: the rotation
	Rotation() mgl32.Vec3

	// SetRotation sets the local Euler rotation in radians (XYZ order).
	//
	// Parameters:
	//   - x, y, z: the new rotation
	SetRotation(x, y, z float32)

	// SetQuaternion sets the local rotation from a quaternion.
	//
	// Parameters:
	//   - q: the rotation
	SetQuaternion(q mgl32.Quat)

	// Quaternion returns the local rotation as a quaternion.
	//
	// Returns:
	//   - mgl32.Quat: the rotation
	Quaternion() mgl32.Quat

	// Scale returns the local scale.
	//
	// Returns:
	//   - mgl32.Vec3: the scale
	Scale() mgl32.Vec3

	// SetScale sets the local scale.
	//
	// Parameters:
	//   - x, y, z: the new scale
	SetScale(x, y, z float32)

	// LocalMatrix returns T * R * S for the local transform.
	//
	// Returns:
	//   - mgl32.Mat4: the local matrix
	LocalMatrix() mgl32.Mat4

	// WorldMatrix returns the product of the local matrices from the root down to this node.
	//
	// Returns:
	//   - mgl32.Mat4: the world matrix
	WorldMatrix() mgl32.Mat4

	// WorldPosition returns the translation column of WorldMatrix.
	//
	// Returns:
	//   - mgl32.Vec3: the world-space position
	WorldPosition() mgl32.Vec3

	// Parent returns the parent node, or nil for a root.
	//
	// Returns:
	//   - GameObject: the parent
	Parent() GameObject

	// Children returns a snapshot of the direct children in insertion order.
	//
	// Returns:
	//   - []GameObject: the children
	Children() []GameObject

	// Add appends children, detaching each from its previous parent first. Adding a node to
	// itself or to one of its descendants is ignored.
	//
	// Parameters:
	//   - children: the nodes to add
	Add(children ...GameObject)

	// Remove detaches the given direct children. Nodes that are not children are ignored.
	//
	// Parameters:
	//   - children: the nodes to remove
	Remove(children ...GameObject)

	// Traverse calls fn for this node and every descendant, depth-first in child order.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(GameObject))

	// GetObjectByName finds the first node in this subtree with the given name.
	//
	// Parameters:
	//   - name: the name to search for
	//
	// Returns:
	//   - GameObject: the match, or nil
	//   - bool: true if found
	GetObjectByName(name string) (GameObject, bool)

	// GetObjectByID finds the node in this subtree with the given ID.
	//
	// Parameters:
	//   - id: the ID to search for
	//
	// Returns:
	//   - GameObject: the match, or nil
	//   - bool: true if found
	GetObjectByID(id uint64) (GameObject, bool)

	// Geometry returns the drawable geometry, or nil for a group node.
	//
	// Returns:
	//   - model.Geometry: the geometry
	Geometry() model.Geometry

	// SetGeometry replaces the drawable geometry.
	//
	// Parameters:
	//   - g: the geometry, or nil
	SetGeometry(g model.Geometry)

	// Material returns the drawable material, or nil.
	//
	// Returns:
	//   - material.Material: the material
	Material() material.Material

	// SetMaterial replaces the drawable material.
	//
	// Parameters:
	//   - m: the material, or nil
	SetMaterial(m material.Material)

	// Light returns the light attached to this node, or nil.
	//
	// Returns:
	//   - light.Light: the attached light
	Light() light.Light

	// SetLight attaches a light to this node. The light takes the node's world position.
	//
	// Parameters:
	//   - l: the light, or nil to detach
	SetLight(l light.Light)

	// CastShadow reports whether the node is drawn into shadow maps.
	//
	// Returns:
	//   - bool: true if it casts shadows
	CastShadow() bool

	// SetCastShadow sets whether the node is drawn into shadow maps.
	//
	// Parameters:
	//   - cast: true to cast shadows
	SetCastShadow(cast bool)

	// ReceiveShadow reports whether the node samples shadow maps when lit.
	//
	// Returns:
	//   - bool: true if it receives shadows
	ReceiveShadow() bool

	// SetReceiveShadow sets whether the node samples shadow maps when lit.
	//
	// Parameters:
	//   - receive: true to receive shadows
	SetReceiveShadow(receive bool)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a visible node with identity transform and a fresh ID.
//
// Parameters:
//   - options: functional options to configure the node
//
// Returns:
//   - GameObject: the new node
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		id:      nextID.Add(1),
		visible: true,
		scale:   mgl32.Vec3{1, 1, 1},
	}
	for _, opt := range options {
		opt(obj)
	}
	return obj
}

func (o *gameObject) ID() uint64 {
	return o.id
}

func (o *gameObject) Name() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.name
}

func (o *gameObject) SetName(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.name = name
}

func (o *gameObject) Visible() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.visible
}

func (o *gameObject) SetVisible(visible bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.visible = visible
}

func (o *gameObject) Position() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.position
}

func (o *gameObject) SetPosition(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.position = mgl32.Vec3{x, y, z}
}

func (o *gameObject) Rotation() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.rotation
}

func (o *gameObject) SetRotation(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = mgl32.Vec3{x, y, z}
}

func (o *gameObject) SetQuaternion(q mgl32.Quat) {
	rot := common.QuatToEulerXYZ(q)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rotation = rot
}

func (o *gameObject) Quaternion() mgl32.Quat {
	o.mu.RLock()
	rot := o.rotation
	o.mu.RUnlock()
	return mgl32.Mat4ToQuat(common.EulerXYZ(rot))
}

func (o *gameObject) Scale() mgl32.Vec3 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scale
}

func (o *gameObject) SetScale(x, y, z float32) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scale = mgl32.Vec3{x, y, z}
}

func (o *gameObject) LocalMatrix() mgl32.Mat4 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return common.ComposeMatrix(o.position, o.rotation, o.scale)
}

func (o *gameObject) WorldMatrix() mgl32.Mat4 {
	m := o.LocalMatrix()
	for p := o.parentNode(); p != nil; p = p.parentNode() {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

func (o *gameObject) WorldPosition() mgl32.Vec3 {
	return o.WorldMatrix().Col(3).Vec3()
}

func (o *gameObject) parentNode() *gameObject {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.parent
}

func (o *gameObject) Parent() GameObject {
	if p := o.parentNode(); p != nil {
		return p
	}
	return nil
}

func (o *gameObject) Children() []GameObject {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]GameObject, len(o.children))
	for i, c := range o.children {
		out[i] = c
	}
	return out
}

func (o *gameObject) Add(children ...GameObject) {
	for _, c := range children {
		child, ok := c.(*gameObject)
		if !ok || child == nil || child.isAncestorOf(o) {
			continue
		}
		if prev := child.parentNode(); prev != nil {
			prev.Remove(child)
		}

		child.mu.Lock()
		child.parent = o
		child.mu.Unlock()

		o.mu.Lock()
		o.children = append(o.children, child)
		o.mu.Unlock()
	}
}

// isAncestorOf reports whether o is n or one of n's ancestors.
func (o *gameObject) isAncestorOf(n *gameObject) bool {
	for p := n; p != nil; p = p.parentNode() {
		if p == o {
			return true
		}
	}
	return false
}

func (o *gameObject) Remove(children ...GameObject) {
	for _, c := range children {
		child, ok := c.(*gameObject)
		if !ok || child == nil {
			continue
		}

		o.mu.Lock()
		idx := -1
		for i, existing := range o.children {
			if existing == child {
				idx = i
				break
			}
		}
		if idx >= 0 {
			o.children = append(o.children[:idx], o.children[idx+1:]...)
		}
		o.mu.Unlock()

		if idx >= 0 {
			child.mu.Lock()
			child.parent = nil
			child.mu.Unlock()
		}
	}
}

func (o *gameObject) Traverse(fn func(GameObject)) {
	fn(o)
	for _, c := range o.Children() {
		c.Traverse(fn)
	}
}

func (o *gameObject) GetObjectByName(name string) (GameObject, bool) {
	if o.Name() == name {
		return o, true
	}
	for _, c := range o.Children() {
		if found, ok := c.GetObjectByName(name); ok {
			return found, true
		}
	}
	return nil, false
}

func (o *gameObject) GetObjectByID(id uint64) (GameObject, bool) {
	if o.id == id {
		return o, true
	}
	for _, c := range o.Children() {
		if found, ok := c.GetObjectByID(id); ok {
			return found, true
		}
	}
	return nil, false
}

func (o *gameObject) Geometry() model.Geometry {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.geometry
}

func (o *gameObject) SetGeometry(g model.Geometry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.geometry = g
}

func (o *gameObject) Material() material.Material {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.material
}

func (o *gameObject) SetMaterial(m material.Material) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.material = m
}

func (o *gameObject) Light() light.Light {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.attachedLight
}

func (o *gameObject) SetLight(l light.Light) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attachedLight = l
}

func (o *gameObject) CastShadow() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.castShadow
}

func (o *gameObject) SetCastShadow(cast bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.castShadow = cast
}

func (o *gameObject) ReceiveShadow() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.receiveShadow
}

func (o *gameObject) SetReceiveShadow(receive bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.receiveShadow = receive
}
