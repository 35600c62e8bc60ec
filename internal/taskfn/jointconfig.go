package taskfn

import (
	"fmt"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/paramutil"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// JointConfiguration drives a subset of joints to fixed target values.
// def_params alternate joint_name, desired_value pairs: q1, v1, q2, v2, ...
type JointConfiguration struct {
	base
	qnr     []int
	desired []float64
}

func (f *JointConfiguration) Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error {
	if len(defParams) == 0 || len(defParams)%2 != 0 {
		return hqperr.New(hqperr.ConfigError, taskName, "JointConfiguration requires joint_name,value pairs")
	}
	rows := len(defParams) / 2
	f.qnr = make([]int, rows)
	f.desired = make([]float64, rows)
	for i := 0; i < rows; i++ {
		name := defParams[2*i]
		qnr, ok := tree.QNr(name)
		if !ok {
			return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown joint %q", name))
		}
		v, err := paramutil.ParseFloat(defParams[2*i+1])
		if err != nil {
			return hqperr.Wrap(hqperr.ConfigError, taskName, err)
		}
		f.qnr[i] = qnr
		f.desired[i] = v
	}
	rowTypes := make([]RowType, rows)
	f.base.init(rows, rowTypes, nControls)
	return nil
}

func (f *JointConfiguration) Update(st state.Robot) error {
	if len(st.Q) != f.nControls {
		return hqperr.New(hqperr.DimensionError, "JointConfiguration", "state DOF mismatch")
	}
	row := make([]float64, f.nControls)
	for i, qnr := range f.qnr {
		e := st.Q[qnr] - f.desired[i]
		for c := range row {
			row[c] = 0
		}
		row[qnr] = 1
		f.setRow(i, e, row)
	}
	return nil
}
