package picking

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-playground/engine/camera"
	"github.com/Carmen-Shannon/oxy-playground/engine/game_object"
	"github.com/Carmen-Shannon/oxy-playground/engine/model"
	"github.com/Carmen-Shannon/oxy-playground/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxAt(x, y, z, size float32) game_object.GameObject {
	return game_object.NewGameObject(
		game_object.WithPosition(x, y, z),
		game_object.WithMesh(model.NewBoxGeometry(size, size, size), material.NewMaterial()),
	)
}

func TestSetFromCameraCenter(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(0, 0, 10), camera.WithTarget(0, 0, 0))
	rc := NewRaycaster()
	rc.SetFromCamera(mgl32.Vec2{0, 0}, cam)

	ray := rc.Ray()
	assert.True(t, ray.Origin.ApproxEqualThreshold(mgl32.Vec3{0, 0, 10}, 1e-5))
	assert.True(t, ray.Direction.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-4))
}

func TestSetFromCameraCorner(t *testing.T) {
	cam := camera.NewCamera(camera.WithPosition(0, 0, 10), camera.WithTarget(0, 0, 0))
	rc := NewRaycaster()
	rc.SetFromCamera(mgl32.Vec2{1, 1}, cam)

	d := rc.Ray().Direction
	assert.Greater(t, d.X(), float32(0))
	assert.Greater(t, d.Y(), float32(0))
	assert.Less(t, d.Z(), float32(0))
}

func TestIntersectObjectsNearestFirst(t *testing.T) {
	far := boxAt(0, 0, -20, 2)
	near := boxAt(0, 0, -5, 2)
	rc := NewRaycaster()

	hits := rc.IntersectObjects([]game_object.GameObject{far, near}, false)
	require.Len(t, hits, 2)
	assert.Same(t, near, hits[0].Object)
	assert.InDelta(t, 4, hits[0].Distance, 1e-4)
	assert.Same(t, far, hits[1].Object)
	assert.InDelta(t, 19, hits[1].Distance, 1e-4)
}

func TestIntersectObjectsRecursive(t *testing.T) {
	group := game_object.NewGameObject(game_object.WithPosition(0, 0, -10))
	child := boxAt(0, 0, 0, 2)
	group.Add(child)
	rc := NewRaycaster()

	assert.Empty(t, rc.IntersectObjects([]game_object.GameObject{group}, false))
	hits := rc.IntersectObjects([]game_object.GameObject{group}, true)
	require.Len(t, hits, 1)
	assert.Same(t, child, hits[0].Object)
	assert.InDelta(t, 9, hits[0].Distance, 1e-4)
}

func TestIntersectObjectsMiss(t *testing.T) {
	rc := NewRaycaster()
	hits := rc.IntersectObjects([]game_object.GameObject{boxAt(10, 0, -5, 1)}, true)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestPlaneSideFiltering(t *testing.T) {
	front := game_object.NewGameObject(
		game_object.WithPosition(0, 0, -5),
		game_object.WithRotation(0, mgl32.DegToRad(180), 0),
		game_object.WithMesh(model.NewPlaneGeometry(4, 4, 1, 1), material.NewMaterial()),
	)
	double := game_object.NewGameObject(
		game_object.WithPosition(0, 0, -6),
		game_object.WithRotation(0, mgl32.DegToRad(180), 0),
		game_object.WithMesh(model.NewPlaneGeometry(4, 4, 1, 1), material.NewMaterial(material.WithSide(material.DoubleSide))),
	)
	rc := NewRaycaster()

	hits := rc.IntersectObjects([]game_object.GameObject{front, double}, false)
	require.Len(t, hits, 1)
	assert.Same(t, double, hits[0].Object)
}

func TestLineThreshold(t *testing.T) {
	grid := game_object.NewGameObject(
		game_object.WithPosition(0, -0.5, -10),
		game_object.WithMesh(model.NewGridGeometry(10, 10), material.NewMaterial(material.WithKind(material.KindLine))),
	)

	assert.NotEmpty(t, NewRaycaster().IntersectObject(grid, false))
	assert.Empty(t, NewRaycaster(WithLineThreshold(0.1)).IntersectObject(grid, false))
}

func TestRangeFiltersHits(t *testing.T) {
	rc := NewRaycaster(WithRange(0, 3))
	assert.Empty(t, rc.IntersectObject(boxAt(0, 0, -5, 2), false))
}

func TestSharedEdgeHitReportedOnce(t *testing.T) {
	tests := []struct {
		name string
		obj  game_object.GameObject
		want []float32
	}{
		{
			name: "plane diagonal",
			obj: game_object.NewGameObject(
				game_object.WithPosition(0, 0, -5),
				game_object.WithMesh(model.NewPlaneGeometry(4, 4, 1, 1), material.NewMaterial()),
			),
			want: []float32{5},
		},
		{
			name: "box face centre",
			obj:  boxAt(0, 0, -5, 2),
			want: []float32{4},
		},
		{
			name: "double sided box keeps both crossings",
			obj: game_object.NewGameObject(
				game_object.WithPosition(0, 0, -5),
				game_object.WithMesh(model.NewBoxGeometry(2, 2, 2), material.NewMaterial(material.WithSide(material.DoubleSide))),
			),
			want: []float32{4, 6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits := NewRaycaster().IntersectObjects([]game_object.GameObject{tt.obj}, false)
			require.Len(t, hits, len(tt.want))
			for i, d := range tt.want {
				assert.InDelta(t, d, hits[i].Distance, 1e-4)
				assert.Same(t, tt.obj, hits[i].Object)
			}
		})
	}
}
