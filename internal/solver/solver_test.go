package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/taskstack/hqpik/internal/taskfn"
	"gonum.org/v1/gonum/mat"
)

func TestSolveSingleFeasibleStage(t *testing.T) {
	s := NewDefaultAdapter(0.01)
	s.AppendStage(1, []float64{0}, []float64{3},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, u[0], 1e-6)
}

func TestSolveInfeasibleTopPriorityYieldsZero(t *testing.T) {
	s := NewDefaultAdapter(0.01)
	// J=0 means no direction can ever reduce the eDotStar=5 residual:
	// the top priority itself is infeasible.
	s.AppendStage(1, []float64{0}, []float64{5},
		mat.NewDense(1, 1, []float64{0}), []taskfn.RowType{taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 0.0, u[0], 1e-6)
}

func TestSolveInfeasibleAsymmetricTopPriorityYieldsZero(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	// Two equality rows on the same column with non-symmetric targets
	// (+1 and +5): least squares lands on their average, 3, leaving a
	// residual of ±2 on each row — infeasible, not just non-zero.
	s.AppendStage(1, []float64{0, 0}, []float64{1, 5},
		mat.NewDense(2, 1, []float64{1, 1}), []taskfn.RowType{taskfn.Equality, taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 0.0, u[0], 1e-9)
}

func TestSolveLowerPriorityYieldsToHigher(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	s.AppendStage(1, []float64{0}, []float64{2},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})
	s.AppendStage(2, []float64{0}, []float64{10},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 2.0, u[0], 1e-6) // priority 2 has no null space left to act in
}

func TestInequalityRowDroppedWhenSatisfied(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	// e=1 (satisfied margin) should be dropped, leaving this stage empty.
	s.AppendStage(1, []float64{1}, []float64{99},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.LowerBound})
	s.AppendStage(2, []float64{0}, []float64{4},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 4.0, u[0], 1e-6)
}

func TestEpsilonWidensActivationMargin(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	s.Epsilon = 0.5
	// e=0.3 is satisfied under the strict e<0 rule but violated once
	// the margin widens to 0.5, so this stage should stay active.
	s.AppendStage(1, []float64{0.3}, []float64{99},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.LowerBound})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 99.0, u[0], 1e-6)
}

func TestUpperBoundRowDroppedWhenSatisfied(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	// UpperBound enforces e<=0; e=-1 is well clear of the boundary and
	// should be dropped, leaving this stage empty.
	s.AppendStage(1, []float64{-1}, []float64{99},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.UpperBound})
	s.AppendStage(2, []float64{0}, []float64{4},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 4.0, u[0], 1e-6)
}

func TestUpperBoundRowActivatesNearBoundary(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	s.Epsilon = 0.5
	// e=-0.3 satisfies e<=0 under the strict rule but is within 0.5 of
	// the boundary, so UpperBound should activate and take the column.
	s.AppendStage(1, []float64{-0.3}, []float64{7},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.UpperBound})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 7.0, u[0], 1e-6)
}

func TestVelocityBoundClampsFinalCommand(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	// A VelocityBound pair caps column 0 to [-0.2, 0.2] regardless of
	// its own e, which a lower-priority stage then overshoots.
	s.AppendStage(1, []float64{0, 0}, []float64{-0.2, 0.2},
		mat.NewDense(2, 1, []float64{1, 1}), []taskfn.RowType{taskfn.VelocityBound, taskfn.VelocityBound})
	s.AppendStage(2, []float64{0}, []float64{5},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})

	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.2, u[0], 1e-6)
}

func TestVelocityBoundNeverJoinsLeastSquaresSolve(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	// VelocityBound rows must not consume the stage's null space: a
	// contradictory pair on the same column would otherwise cancel to
	// ~0 in a least-squares solve and mask the lower-priority stage.
	s.AppendStage(1, []float64{0, 0}, []float64{-0.2, 0.2},
		mat.NewDense(2, 2, []float64{1, 0, 1, 0}), []taskfn.RowType{taskfn.VelocityBound, taskfn.VelocityBound})
	s.AppendStage(2, []float64{0, 0}, []float64{0.1, 3},
		mat.NewDense(2, 2, []float64{1, 0, 0, 1}), []taskfn.RowType{taskfn.Equality, taskfn.Equality})

	u, ok, err := s.Solve(2)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 0.1, u[0], 1e-6) // within the cap, unaffected
	assert.InDelta(t, 3.0, u[1], 1e-6) // untouched column, unaffected
}

func TestClearStagesResetsState(t *testing.T) {
	s := NewDefaultAdapter(0.0)
	s.AppendStage(1, []float64{0}, []float64{99},
		mat.NewDense(1, 1, []float64{1}), []taskfn.RowType{taskfn.Equality})
	s.ClearStages()

	// No stages at all means no tasks to satisfy: zero command, not ok.
	u, ok, err := s.Solve(1)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.InDelta(t, 0.0, u[0], 1e-6)
}
