package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taskstack/hqpik/internal/testutil"
)

func TestLiveStateIntegrateAdvancesPosition(t *testing.T) {
	tree := testutil.OneJointChain(t)
	live := NewLiveState(tree)

	start := live.Snapshot().T
	next := start.Add(100 * time.Millisecond)
	st := live.Integrate([]float64{2.0}, next)

	assert.InDelta(t, 0.2, st.Q[0], 1e-9)
	assert.InDelta(t, 2.0, st.QDot[0], 1e-9)
	assert.Equal(t, next, live.CurrentState().T)
}

func TestLiveStateIntegrateIgnoresNonPositiveDt(t *testing.T) {
	tree := testutil.OneJointChain(t)
	live := NewLiveState(tree)

	past := live.Snapshot().T.Add(-time.Second)
	st := live.Integrate([]float64{5.0}, past)

	assert.InDelta(t, 0.0, st.Q[0], 1e-9)
}
