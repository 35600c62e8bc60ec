package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPrimitiveUpsert(t *testing.T) {
	changes := 0
	s := New(func() { changes++ }, nil)

	err := s.SetPrimitive(Primitive{Name: "P", Kind: Point, FrameID: "ee", Params: Params{Coords: [3]float64{1, 2, 3}}})
	require.NoError(t, err)
	assert.Equal(t, 1, changes)

	err = s.SetPrimitive(Primitive{Name: "P", Kind: Point, FrameID: "ee", Params: Params{Coords: [3]float64{4, 5, 6}}})
	require.NoError(t, err)
	assert.Equal(t, 2, changes)

	p, ok := s.GetPrimitive("P", Point)
	require.True(t, ok)
	assert.Equal(t, [3]float64{4, 5, 6}, p.Params.Coords)
	assert.Equal(t, []string{"P"}, s.ListNames())
}

func TestSetPrimitiveTypeMismatchFails(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.SetPrimitive(Primitive{Name: "P", Kind: Point, FrameID: "ee"}))

	err := s.SetPrimitive(Primitive{Name: "P", Kind: Sphere, FrameID: "ee"})
	assert.Error(t, err)

	p, ok := s.GetPrimitive("P", Point)
	assert.True(t, ok)
	assert.Equal(t, Point, p.Kind)
}

func TestGetPrimitiveUnknownOrWrongType(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.SetPrimitive(Primitive{Name: "P", Kind: Point, FrameID: "ee"}))

	_, ok := s.GetPrimitive("nope", Point)
	assert.False(t, ok)

	_, ok = s.GetPrimitive("P", Sphere)
	assert.False(t, ok)
}

func TestDependencyTrackingAndRemoval(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.SetPrimitive(Primitive{Name: "P", Kind: Point, FrameID: "ee"}))

	s.AddDependency("P", "taskA")
	s.AddDependency("P", "taskB")
	assert.ElementsMatch(t, []string{"taskA", "taskB"}, s.DependentsOf("P"))

	s.RemoveDependency("taskA")
	assert.Equal(t, []string{"taskB"}, s.DependentsOf("P"))

	s.RemovePrimitive("P")
	assert.Empty(t, s.DependentsOf("P"))
	_, ok := s.GetPrimitive("P", Point)
	assert.False(t, ok)
}

func TestRemoveAllPrimitivesNotifiesEachName(t *testing.T) {
	var removed []string
	s := New(nil, func(name string) { removed = append(removed, name) })
	require.NoError(t, s.SetPrimitive(Primitive{Name: "A", Kind: Point}))
	require.NoError(t, s.SetPrimitive(Primitive{Name: "B", Kind: Sphere}))

	s.RemoveAllPrimitives()
	assert.ElementsMatch(t, []string{"A", "B"}, removed)
	assert.Empty(t, s.ListNames())
}

type collectVisitor struct{ names []string }

func (c *collectVisitor) Visit(p Primitive) { c.names = append(c.names, p.Name) }

func TestAcceptVisitorAllAndByName(t *testing.T) {
	s := New(nil, nil)
	require.NoError(t, s.SetPrimitive(Primitive{Name: "B", Kind: Point}))
	require.NoError(t, s.SetPrimitive(Primitive{Name: "A", Kind: Point}))

	var all collectVisitor
	s.AcceptVisitor(&all)
	assert.Equal(t, []string{"A", "B"}, all.names)

	var one collectVisitor
	s.AcceptVisitor(&one, "B")
	assert.Equal(t, []string{"B"}, one.names)
}
