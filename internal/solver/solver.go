// Package solver implements the hierarchical QP solve: priority stages
// are resolved in ascending priority order, each confined to the
// null space of every higher-priority stage's active rows, using a
// damped-least-squares pseudo-inverse at each level.
package solver

import (
	"log"
	"math"
	"sort"

	"github.com/taskstack/hqpik/internal/numerics"
	"github.com/taskstack/hqpik/internal/taskfn"
	"gonum.org/v1/gonum/mat"
)

// Solver is the contract the manager drives once per tick.
type Solver interface {
	ClearStages()
	AppendStage(priority int, e, eDotStar []float64, j *mat.Dense, rowTypes []taskfn.RowType)
	Solve(nControls int) (u []float64, ok bool, err error)
}

// row is one task-function row queued into its priority's stage.
type row struct {
	e, eDotStar float64
	j           []float64
	rowType     taskfn.RowType
}

// DefaultAdapter is the reference Solver: recursive null-space
// projection with a fixed damping factor, grounded on hiqp_core's
// pseudo-inverse task-priority solve.
type DefaultAdapter struct {
	Eta float64 // DLS damping; 0 uses the plain Moore-Penrose pseudo-inverse

	// Epsilon is the margin within which a LowerBound or UpperBound
	// row is considered violated (and so contributes to its stage)
	// rather than satisfied (and so dropped from it). Zero value
	// matches the reference implementation's strict boundary-crossing
	// activation rule. VelocityBound rows ignore Epsilon entirely —
	// they're always enforced, as a clamp on the final command.
	Epsilon float64

	// Tolerance bounds the top-priority stage's residual norm
	// ‖ė*_top − J_top·u‖ after its own least-squares solve. A
	// residual above Tolerance means the top priority itself has no
	// feasible direction (e.g. two contradictory equality rows), and
	// Solve reports ok=false with an all-zero command rather than
	// handing a partially-satisfied top priority to lower ones.
	Tolerance float64

	stages map[int][]row
}

// NewDefaultAdapter builds an adapter with the given damping factor.
func NewDefaultAdapter(eta float64) *DefaultAdapter {
	return &DefaultAdapter{Eta: eta, Tolerance: 1e-6, stages: make(map[int][]row)}
}

func (s *DefaultAdapter) ClearStages() {
	s.stages = make(map[int][]row)
}

func (s *DefaultAdapter) AppendStage(priority int, e, eDotStar []float64, j *mat.Dense, rowTypes []taskfn.RowType) {
	rows, n := j.Dims()
	for r := 0; r < rows; r++ {
		jr := make([]float64, n)
		mat.Row(jr, r, j)
		s.stages[priority] = append(s.stages[priority], row{
			e:       e[r],
			eDotStar: eDotStar[r],
			j:       jr,
			rowType: rowTypes[r],
		})
	}
}

// Solve runs the recursive null-space projection across priority
// levels in ascending order (lower number = higher priority). It
// reports ok=false, with an all-zero command, when there are no
// stages to solve or the top priority itself is infeasible.
func (s *DefaultAdapter) Solve(nControls int) ([]float64, bool, error) {
	priorities := make([]int, 0, len(s.stages))
	for p := range s.stages {
		priorities = append(priorities, p)
	}
	sort.Ints(priorities)

	zero := make([]float64, nControls)
	if len(priorities) == 0 {
		return zero, false, nil
	}

	bounds := newBoxBounds(nControls)
	for _, p := range priorities {
		bounds.collect(s.stages[p])
	}

	u := mat.NewVecDense(nControls, nil)
	n := identity(nControls)
	feasible := true

	for i, p := range priorities {
		active := activeRows(s.stages[p], s.Epsilon)
		if len(active) == 0 {
			continue
		}
		jActive := mat.NewDense(len(active), nControls, nil)
		eDot := mat.NewVecDense(len(active), nil)
		for r, row := range active {
			jActive.SetRow(r, row.j)
			eDot.SetVec(r, row.eDotStar)
		}

		var jProj mat.Dense
		jProj.Mul(jActive, n)

		pinv := numerics.DLS(&jProj, s.Eta)

		var ju mat.VecDense
		ju.MulVec(jActive, u)

		var residual mat.VecDense
		residual.SubVec(eDot, &ju)

		var du mat.VecDense
		du.MulVec(pinv, &residual)

		u.AddVec(u, &du)

		if i == 0 {
			var juAfter mat.VecDense
			juAfter.MulVec(jActive, u)
			var residualAfter mat.VecDense
			residualAfter.SubVec(eDot, &juAfter)
			if mat.Norm(&residualAfter, 2) > s.Tolerance {
				feasible = false
			}
		}

		proj := numerics.NullSpaceProjector(&jProj)
		var nNext mat.Dense
		nNext.Mul(n, proj)
		n = &nNext
	}

	if !feasible {
		log.Printf("[solver] top priority infeasible, zeroing command")
		return zero, false, nil
	}

	out := make([]float64, nControls)
	for i := range out {
		out[i] = u.AtVec(i)
	}
	bounds.clamp(out)
	return out, true, nil
}

// activeRows filters a stage to the rows that should join its
// least-squares solve: every Equality row, plus each LowerBound/
// UpperBound row that is violated or within epsilon of its boundary.
// VelocityBound rows never join a stage's solve — they're gathered
// separately by boxBounds and applied as a clamp on the final command.
func activeRows(rows []row, epsilon float64) []row {
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		switch r.rowType {
		case taskfn.Equality:
			out = append(out, r)
		case taskfn.LowerBound:
			if r.e < epsilon {
				out = append(out, r)
			}
		case taskfn.UpperBound:
			if r.e > -epsilon {
				out = append(out, r)
			}
		}
	}
	return out
}

// boxBounds accumulates, per control column, the tightest hard
// velocity cap carried by any VelocityBound row across every stage. A
// VelocityBound row's Jacobian has exactly one nonzero entry, marking
// the column it bounds; the sign of its ė* says which side of the box
// it sets (negative tightens the lower face, positive the upper).
type boxBounds struct {
	lo, hi []float64
}

func newBoxBounds(n int) *boxBounds {
	b := &boxBounds{lo: make([]float64, n), hi: make([]float64, n)}
	for i := range b.lo {
		b.lo[i] = math.Inf(-1)
		b.hi[i] = math.Inf(1)
	}
	return b
}

func (b *boxBounds) collect(rows []row) {
	for _, r := range rows {
		if r.rowType != taskfn.VelocityBound {
			continue
		}
		col := boundColumn(r.j)
		if col < 0 {
			continue
		}
		switch {
		case r.eDotStar < 0 && r.eDotStar > b.lo[col]:
			b.lo[col] = r.eDotStar
		case r.eDotStar > 0 && r.eDotStar < b.hi[col]:
			b.hi[col] = r.eDotStar
		}
	}
}

func (b *boxBounds) clamp(u []float64) {
	for i := range u {
		if u[i] < b.lo[i] {
			u[i] = b.lo[i]
		}
		if u[i] > b.hi[i] {
			u[i] = b.hi[i]
		}
	}
}

func boundColumn(j []float64) int {
	for i, v := range j {
		if v != 0 {
			return i
		}
	}
	return -1
}

func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
