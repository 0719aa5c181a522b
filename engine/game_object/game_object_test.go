package game_object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDsAreUnique(t *testing.T) {
	a, b := NewGameObject(), NewGameObject()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotZero(t, a.ID())
}

func TestWorldMatrixComposesParents(t *testing.T) {
	root := NewGameObject(WithPosition(-12, 4, 10))
	child := NewGameObject(WithPosition(1, 0, 0), WithScale(2, 2, 2))
	root.Add(child)

	p := child.WorldPosition()
	assert.InDelta(t, -11, p.X(), 1e-5)
	assert.InDelta(t, 4, p.Y(), 1e-5)
	assert.InDelta(t, 10, p.Z(), 1e-5)
	assert.Same(t, root, child.Parent())
}

func TestAddReparents(t *testing.T) {
	a, b := NewGameObject(), NewGameObject()
	c := NewGameObject()
	a.Add(c)
	b.Add(c)

	assert.Empty(t, a.Children())
	require.Len(t, b.Children(), 1)
	assert.Same(t, b, c.Parent())
}

func TestAddRejectsCycles(t *testing.T) {
	a := NewGameObject()
	b := NewGameObject()
	a.Add(b)
	b.Add(a)
	a.Add(a)

	assert.Nil(t, a.Parent())
	assert.Len(t, a.Children(), 1)
	assert.Empty(t, b.Children())
}

func TestRemoveDetaches(t *testing.T) {
	a, b := NewGameObject(), NewGameObject()
	a.Add(b)
	a.Remove(b, NewGameObject())

	assert.Empty(t, a.Children())
	assert.Nil(t, b.Parent())
}

func TestLookupAndTraverse(t *testing.T) {
	root := NewGameObject(WithName("root"))
	house := NewGameObject(WithName("house"))
	door := NewGameObject(WithName("door"))
	root.Add(house)
	house.Add(door)

	found, ok := root.GetObjectByName("door")
	require.True(t, ok)
	assert.Same(t, door, found)

	_, ok = root.GetObjectByName("window")
	assert.False(t, ok)

	byID, ok := root.GetObjectByID(house.ID())
	require.True(t, ok)
	assert.Same(t, house, byID)

	var names []string
	root.Traverse(func(o GameObject) { names = append(names, o.Name()) })
	assert.Equal(t, []string{"root", "house", "door"}, names)
}

func TestQuaternionRoundTrip(t *testing.T) {
	o := NewGameObject()
	o.SetRotation(0.3, -0.4, 0.5)
	q := o.Quaternion()

	other := NewGameObject()
	other.SetQuaternion(q)
	assert.True(t, o.Rotation().ApproxEqualThreshold(other.Rotation(), 1e-4))
	assert.True(t, other.LocalMatrix().ApproxEqualThreshold(o.LocalMatrix(), 1e-4))
}
