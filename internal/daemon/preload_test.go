package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskstack/hqpik/internal/config"
	"github.com/taskstack/hqpik/internal/manager"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/solver"
	"github.com/taskstack/hqpik/internal/testutil"
)

func newTestManager(t *testing.T) (*manager.Manager, *LiveState) {
	t.Helper()
	tree := testutil.OneJointChain(t)
	live := NewLiveState(tree)
	slv := solver.NewDefaultAdapter(0.01)
	mgr := manager.New(tree, tree.DOF(), slv, oracle.Fixed{}, func() {}, func(string) {})
	return mgr, live
}

func TestApplyPreloadsCreatesJointLimitPrimitiveAndTask(t *testing.T) {
	mgr, live := newTestManager(t)

	r := config.Resolved{
		PreloadJointLimits: []config.JointLimitPreload{
			{JointName: "j1", Priority: 0, QMin: -1, QMax: 1, DQMax: 2, Gain: 0.5},
		},
		PreloadGeometricPrimitives: []config.PrimitivePreload{
			{Name: "A", Type: "Point", FrameID: "ee", Params: []string{"0", "0", "0"}},
		},
		PreloadTasks: []config.TaskPreload{
			{Name: "hold", Type: "JointConfiguration", DynType: "FirstOrder", Priority: 1, Active: true,
				DefParams: []string{"j1", "0.5"}, DynParams: []string{"1.0"}},
		},
	}

	err := applyPreloads(mgr, r, live.Snapshot())
	require.NoError(t, err)

	names := map[string]bool{}
	for _, info := range mgr.ListAllTasks() {
		names[info.Name] = true
	}
	assert.True(t, names["j1_limit"])
	assert.True(t, names["hold"])
}

func TestApplyPreloadsRejectsUnknownPrimitiveType(t *testing.T) {
	mgr, live := newTestManager(t)

	r := config.Resolved{
		PreloadGeometricPrimitives: []config.PrimitivePreload{
			{Name: "A", Type: "Torus", Params: []string{"0"}},
		},
	}

	err := applyPreloads(mgr, r, live.Snapshot())
	assert.Error(t, err)
}
