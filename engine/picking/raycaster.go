package picking

import (
	"cmp"
	"slices"

	"github.com/Carmen-Shannon/oxy-playground/common"
	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// sameHitEpsilon is the distance within which two hits on one object are the same crossing.
const sameHitEpsilon = 1e-4

// Intersection is one ray hit.
type Intersection struct {
	// Distance is the world-space distance from the ray origin.
	Distance float32

	// Point is the world-space hit position.
	Point mgl32.Vec3

	// Object is the drawable node that was hit.
	Object game_object.GameObject

	// Index is the triangle index for meshes or the segment index for lines.
	Index int
}

type raycasterImpl struct {
	ray           Ray
	near          float32
	far           float32
	lineThreshold float32
}

// Raycaster picks scene nodes along a ray.
type Raycaster interface {
	// SetFromCamera aims the ray from the camera through a point in normalized device
	// coordinates, where (-1, -1) is the bottom-left of the viewport and (1, 1) the top-right.
	//
	// Parameters:
	//   - ndc: the pointer in normalized device coordinates
	//   - cam: the camera to shoot from
	SetFromCamera(ndc mgl32.Vec2, cam camera.Camera)

	// Ray returns the current ray.
	Ray() Ray

	// SetRay replaces the current ray. The direction is normalized.
	//
	// Parameters:
	//   - r: the new ray
	SetRay(r Ray)

	// IntersectObject tests one node and optionally its descendants.
	//
	// Parameters:
	//   - obj: the node to test
	//   - recursive: true to include descendants
	//
	// Returns:
	//   - []Intersection: the hits, nearest first
	IntersectObject(obj game_object.GameObject, recursive bool) []Intersection

	// IntersectObjects tests several nodes and optionally their descendants. A node that is
	// hit by more than one triangle appears once per triangle.
	//
	// Parameters:
	//   - objects: the nodes to test
	//   - recursive: true to include descendants
	//
	// Returns:
	//   - []Intersection: the hits, nearest first; empty when nothing is hit
	IntersectObjects(objects []game_object.GameObject, recursive bool) []Intersection
}

var _ Raycaster = &raycasterImpl{}

// NewRaycaster creates a raycaster. The default ray starts at the origin and points down -Z.
//
// Parameters:
//   - options: functional options to configure the raycaster
//
// Returns:
//   - Raycaster: the new raycaster
func NewRaycaster(options ...RaycasterBuilderOption) Raycaster {
	r := &raycasterImpl{
		ray:           Ray{Direction: mgl32.Vec3{0, 0, -1}},
		far:           float32(1e30),
		lineThreshold: 1,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *raycasterImpl) SetFromCamera(ndc mgl32.Vec2, cam camera.Camera) {
	origin := cam.Position()
	inv := cam.ViewProjectionMatrix().Inv()
	p := inv.Mul4x1(mgl32.Vec4{ndc[0], ndc[1], 0.5, 1})
	if p[3] == 0 {
		return
	}
	point := p.Vec3().Mul(1 / p[3])
	dir := point.Sub(origin)
	if dir.Len() < 1e-9 {
		return
	}
	r.ray = Ray{Origin: origin, Direction: dir.Normalize()}
}

func (r *raycasterImpl) Ray() Ray {
	return r.ray
}

func (r *raycasterImpl) SetRay(ray Ray) {
	if ray.Direction.Len() > 0 {
		ray.Direction = ray.Direction.Normalize()
	}
	r.ray = ray
}

func (r *raycasterImpl) IntersectObject(obj game_object.GameObject, recursive bool) []Intersection {
	return r.IntersectObjects([]game_object.GameObject{obj}, recursive)
}

func (r *raycasterImpl) IntersectObjects(objects []game_object.GameObject, recursive bool) []Intersection {
	hits := make([]Intersection, 0)
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if recursive {
			obj.Traverse(func(o game_object.GameObject) {
				hits = r.intersectNode(o, hits)
			})
		} else {
			hits = r.intersectNode(obj, hits)
		}
	}
	slices.SortStableFunc(hits, func(a, b Intersection) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return hits
}

func (r *raycasterImpl) intersectNode(obj game_object.GameObject, hits []Intersection) []Intersection {
	geo := obj.Geometry()
	if geo == nil || geo.VertexCount() == 0 {
		return hits
	}

	world := obj.WorldMatrix()
	center, radius := geo.BoundingSphere()
	worldCenter := common.TransformPoint(world, center)
	worldRadius := radius * common.MaxScale(world)
	if geo.DrawMode() == model.DrawModeLines {
		worldRadius += r.lineThreshold
	}
	if !r.ray.IntersectsSphere(worldCenter, worldRadius) {
		return hits
	}

	if world.Det() == 0 {
		return hits
	}
	local := r.ray.Transform(world.Inv())

	if geo.DrawMode() == model.DrawModeLines {
		return r.intersectLines(obj, geo, world, local, hits)
	}
	return r.intersectTriangles(obj, geo, world, local, hits)
}

func (r *raycasterImpl) intersectTriangles(obj game_object.GameObject, geo model.Geometry, world mgl32.Mat4, local Ray, hits []Intersection) []Intersection {
	side := material.FrontSide
	if m := obj.Material(); m != nil {
		side = m.Side()
	}

	idx := geo.Indices()
	for i := 0; i+2 < len(idx); i += 3 {
		h := local.intersectTriangle(geo.Vertex(idx[i]), geo.Vertex(idx[i+1]), geo.Vertex(idx[i+2]))
		if !h.hit {
			continue
		}
		if (side == material.FrontSide && h.backFace) || (side == material.BackSide && !h.backFace) {
			continue
		}
		hits = r.appendHit(hits, obj, world, local.At(h.t), i/3)
	}
	return hits
}

func (r *raycasterImpl) intersectLines(obj game_object.GameObject, geo model.Geometry, world mgl32.Mat4, local Ray, hits []Intersection) []Intersection {
	scale := common.MaxScale(world)
	if scale == 0 {
		return hits
	}
	threshold := r.lineThreshold / scale
	thresholdSq := threshold * threshold

	idx := geo.Indices()
	for i := 0; i+1 < len(idx); i += 2 {
		distSq, _, onSeg := local.distanceSqToSegment(geo.Vertex(idx[i]), geo.Vertex(idx[i+1]))
		if distSq > thresholdSq {
			continue
		}
		hits = r.appendHit(hits, obj, world, onSeg, i/2)
	}
	return hits
}

func (r *raycasterImpl) appendHit(hits []Intersection, obj game_object.GameObject, world mgl32.Mat4, localPoint mgl32.Vec3, index int) []Intersection {
	point := common.TransformPoint(world, localPoint)
	dist := point.Sub(r.ray.Origin).Len()
	if dist < r.near || dist > r.far {
		return hits
	}
	// A ray through a shared edge or vertex strikes each adjacent primitive at the same point;
	// an object reports that surface crossing once. Hits of one object are contiguous at the tail.
	for i := len(hits) - 1; i >= 0 && hits[i].Object == obj; i-- {
		if math32.Abs(hits[i].Distance-dist) <= sameHitEpsilon {
			return hits
		}
	}
	return append(hits, Intersection{Distance: dist, Point: point, Object: obj, Index: index})
}
