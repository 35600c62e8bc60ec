package taskfn

import (
	"fmt"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/paramutil"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// FullPose drives every controllable joint to a fixed target
// configuration in one stroke: e = q - q_desired, J = I, all rows
// Equality. def_params are the desired value of each joint in tree
// order; their count must equal the tree's DOF, or init fails. A
// partial version of this over a named joint subset is
// JointConfiguration.
type FullPose struct {
	base
	desired []float64
}

func (f *FullPose) Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error {
	if len(defParams) != nControls {
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("FullPose requires %d parameters (one per DOF), got %d", nControls, len(defParams)))
	}
	desired, err := paramutil.ParseFloats(defParams)
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, taskName, err)
	}
	f.desired = desired
	f.base.init(nControls, make([]RowType, nControls), nControls)
	return nil
}

func (f *FullPose) Update(st state.Robot) error {
	if len(st.Q) != f.nControls {
		return hqperr.New(hqperr.DimensionError, "FullPose", "state DOF mismatch")
	}
	row := make([]float64, f.nControls)
	for i := range st.Q {
		e := st.Q[i] - f.desired[i]
		for c := range row {
			row[c] = 0
		}
		row[i] = 1
		f.setRow(i, e, row)
	}
	return nil
}
