package taskfn

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

func twoLinkPlanarChain(t *testing.T) *kinchain.Chain {
	t.Helper()
	offsetOrigin := kinchain.Identity()
	offsetOrigin.Pos = [3]float64{1, 0, 0}
	c, err := kinchain.NewChain([]kinchain.JointSpec{
		{Name: "base", Type: kinchain.Fixed, Origin: kinchain.Identity()},
		{
			Name: "link1", Parent: "base", Type: kinchain.Revolute,
			Axis: [3]float64{0, 0, 1}, JointName: "j1", Origin: kinchain.Identity(),
		},
		{
			Name: "ee", Parent: "link1", Type: kinchain.Revolute,
			Axis: [3]float64{0, 0, 1}, JointName: "j2", Origin: offsetOrigin,
		},
	})
	require.NoError(t, err)
	return c
}

func robotAt(tree kinchain.Tree, q ...float64) state.Robot {
	return state.New(time.Now(), tree, q, nil)
}

func TestFullPoseZeroAtTarget(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	f := &FullPose{}
	require.NoError(t, f.Init([]string{"0.5", "-0.3"}, tree, nil, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0.5, -0.3)))
	for i, v := range f.E() {
		assert.InDelta(t, 0, v, 1e-9, "row %d", i)
	}
}

func TestFullPoseNonZeroOffTarget(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	f := &FullPose{}
	require.NoError(t, f.Init([]string{"0.5", "-0.3"}, tree, nil, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.InDelta(t, -0.5, f.E()[0], 1e-9)
	assert.InDelta(t, 0.3, f.E()[1], 1e-9)
}

func TestFullPoseWrongParamCountFails(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	f := &FullPose{}
	err := f.Init([]string{"0.5"}, tree, nil, "t1", 2)
	assert.Error(t, err)
}

func TestJointConfiguration(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	f := &JointConfiguration{}
	require.NoError(t, f.Init([]string{"j1", "0.5", "j2", "-0.3"}, tree, nil, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.InDelta(t, -0.5, f.E()[0], 1e-9)
	assert.InDelta(t, 0.3, f.E()[1], 1e-9)
}

func TestJointConfigurationUnknownJoint(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	f := &JointConfiguration{}
	err := f.Init([]string{"nope", "0"}, tree, nil, "t1", 2)
	assert.Error(t, err)
}

func TestJointLimitsRows(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	f := &JointLimits{}
	require.NoError(t, f.Init([]string{"j1", "-1", "1"}, tree, nil, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0.5, 0)))
	assert.InDelta(t, 0.5, f.E()[2], 1e-9)
	assert.InDelta(t, 1.5, f.E()[3], 1e-9)
}

func TestGeometricProjectionPointPoint(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "A", Kind: primitives.Point, FrameID: "base", Params: primitives.Params{Coords: [3]float64{0, 0, 0}},
	}))
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "B", Kind: primitives.Point, FrameID: "ee", Params: primitives.Params{Coords: [3]float64{0, 0, 0}},
	}))

	f := &GeometricProjection{}
	require.NoError(t, f.Init([]string{"A", "B"}, tree, store, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.InDelta(t, 1.0, f.E()[0], 1e-9) // ee sits at (1,0,0) at q=0
	assert.ElementsMatch(t, []string{"t1"}, store.DependentsOf("A"))
}

func TestGeometricProjectionPointPlane(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "pt", Kind: primitives.Point, FrameID: "ee", Params: primitives.Params{Coords: [3]float64{0, 0, 1}},
	}))
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "floor", Kind: primitives.Plane, FrameID: "base",
		Params: primitives.Params{Dir: [3]float64{0, 0, 1}, Offset: 0},
	}))

	f := &GeometricProjection{}
	require.NoError(t, f.Init([]string{"pt", "floor"}, tree, store, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.InDelta(t, 1.0, f.E()[0], 1e-9)
}

func TestGeometricProjectionUnsupportedPair(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{Name: "L1", Kind: primitives.Line, FrameID: "base"}))
	require.NoError(t, store.SetPrimitive(primitives.Primitive{Name: "L2", Kind: primitives.Line, FrameID: "base"}))
	f := &GeometricProjection{}
	assert.Error(t, f.Init([]string{"L1", "L2"}, tree, store, "t1", 2))
}

func TestGeometricAlignmentParallelLines(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "axis", Kind: primitives.Line, FrameID: "ee", Params: primitives.Params{Dir: [3]float64{1, 0, 0}},
	}))
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "rail", Kind: primitives.Line, FrameID: "base", Params: primitives.Params{Dir: [3]float64{1, 0, 0}},
	}))

	f := &GeometricAlignment{}
	require.NoError(t, f.Init([]string{"axis", "rail"}, tree, store, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.InDelta(t, 0, f.E()[0], 1e-9)

	require.NoError(t, f.Update(robotAt(tree, 1.5707963267948966, 0))) // rotate ee axis 90deg
	assert.Greater(t, f.E()[0], 0.9)
}

func TestAvoidCollisionsSDFValidGradient(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "tip", Kind: primitives.Point, FrameID: "ee", Params: primitives.Params{Coords: [3]float64{0, 0, 0}},
	}))

	f := NewAvoidCollisionsSDF(oracle.Fixed{Gradient: oracle.Gradient{Distance: 0.5, Direction: [3]float64{1, 0, 0}}})
	require.NoError(t, f.Init([]string{"tip", "0.1"}, tree, store, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.InDelta(t, 0.4, f.E()[0], 1e-9)
}

func TestAvoidCollisionsSDFDropsRowOnFailure(t *testing.T) {
	tree := twoLinkPlanarChain(t)
	store := primitives.New(nil, nil)
	require.NoError(t, store.SetPrimitive(primitives.Primitive{
		Name: "tip", Kind: primitives.Point, FrameID: "ee",
	}))

	f := NewAvoidCollisionsSDF(oracle.Fixed{Err: errors.New("sdf unavailable")})
	require.NoError(t, f.Init([]string{"tip", "0.1"}, tree, store, "t1", 2))
	require.NoError(t, f.Update(robotAt(tree, 0, 0)))
	assert.Equal(t, 0.0, f.E()[0])
	for _, v := range f.J().RawRowView(0) {
		assert.Equal(t, 0.0, v)
	}
}
