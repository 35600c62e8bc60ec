package taskfn

import (
	"fmt"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/paramutil"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// JointLimits pairs with taskdyn.JntLimits. def_params are
// joint_name, q_min, q_max. Rows 0-1 carry the dynamics' hard velocity
// caps as VelocityBound rows: the solver reads the cap values
// straight off ė* and clamps the final command into them rather than
// folding them into a stage's least-squares solve, so e on these two
// rows is never consulted. Rows 2-3 are the position margins to the
// upper and lower limit, enforced as ordinary bound rows once the
// joint swings within epsilon of the boundary.
type JointLimits struct {
	base
	qnr        int
	qMin, qMax float64
}

func (f *JointLimits) Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error {
	if len(defParams) != 3 {
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("JointLimits requires 3 parameters, got %d", len(defParams)))
	}
	qnr, ok := tree.QNr(defParams[0])
	if !ok {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown joint %q", defParams[0]))
	}
	qMin, err := paramutil.ParseFloat(defParams[1])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, taskName, err)
	}
	qMax, err := paramutil.ParseFloat(defParams[2])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, taskName, err)
	}
	f.qnr, f.qMin, f.qMax = qnr, qMin, qMax
	f.base.init(4, []RowType{VelocityBound, VelocityBound, LowerBound, LowerBound}, nControls)
	return nil
}

func (f *JointLimits) Update(st state.Robot) error {
	if len(st.Q) != f.nControls {
		return hqperr.New(hqperr.DimensionError, "JointLimits", "state DOF mismatch")
	}
	row := make([]float64, f.nControls)
	row[f.qnr] = 1
	f.setRow(0, 0, row) // lower velocity cap: bound value lives in ė*[0]
	f.setRow(1, 0, row) // upper velocity cap: bound value lives in ė*[1]

	q := st.Q[f.qnr]

	upperRow := make([]float64, f.nControls)
	upperRow[f.qnr] = -1
	f.setRow(2, f.qMax-q, upperRow)

	lowerRow := make([]float64, f.nControls)
	lowerRow[f.qnr] = 1
	f.setRow(3, q-f.qMin, lowerRow)
	return nil
}
