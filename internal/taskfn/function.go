// Package taskfn implements the task function catalogue: each Function
// maps the robot's current state to a task error e, its Jacobian J
// (rows x DOF), and a row_type tag per row (equality, one of the two
// signed inequality directions, or a velocity bound). A Task pairs a
// Function with a taskdyn.Dynamics to get a desired ė*.
package taskfn

import (
	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
	"gonum.org/v1/gonum/mat"
)

// New dispatches on the catalogue's type-name strings. o is only used
// by "AvoidCollisionsSDF"; every other kind ignores it.
func New(typeName string, o oracle.Oracle) (Function, error) {
	switch typeName {
	case "FullPose":
		return &FullPose{}, nil
	case "JointConfiguration":
		return &JointConfiguration{}, nil
	case "JointLimits":
		return &JointLimits{}, nil
	case "GeometricProjection":
		return &GeometricProjection{}, nil
	case "GeometricAlignment":
		return &GeometricAlignment{}, nil
	case "AvoidCollisionsSDF":
		if o == nil {
			return nil, hqperr.New(hqperr.ConfigError, typeName, "no Oracle configured")
		}
		return NewAvoidCollisionsSDF(o), nil
	default:
		return nil, hqperr.New(hqperr.ConfigError, typeName, "unknown task function type")
	}
}

// RowType tags one row of e/J. The solver's activation rule depends on
// which of these a row carries:
//
//   - Equality rows should converge e to the dynamics' ė*, and are
//     always part of the active set.
//   - LowerBound rows enforce e >= 0: active once e falls within
//     epsilon of the boundary (e < epsilon).
//   - UpperBound rows enforce e <= 0: active once e rises within
//     epsilon of the boundary (e > -epsilon).
//   - VelocityBound rows carry a hard cap on one control output
//     column directly (its ė* is the bound value, its own e is
//     unused); the solver never folds them into a stage's
//     least-squares solve, and instead clamps the final command.
type RowType int

const (
	Equality      RowType = 0
	LowerBound    RowType = 1
	UpperBound    RowType = -1
	VelocityBound RowType = 2
)

// Function is the contract every task function kind satisfies.
type Function interface {
	// Init parses def_params and binds to the kinematic tree (and, for
	// geometry-binding kinds, the primitive store), pre-sizing the
	// function's row count. nControls is the solver's DOF count; Init
	// fails if the function would produce a Jacobian of the wrong width.
	Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error

	// Update recomputes e and J at st's configuration.
	Update(st state.Robot) error

	// FinalState reports the target e the function should reach once
	// its dynamics have converged — zero for every catalogue entry here,
	// since e is always defined as the deviation from target.
	FinalState() []float64

	E() []float64
	J() *mat.Dense
	RowTypes() []RowType
	Rows() int
}

// base holds the bookkeeping common to every Function: the last
// computed e/J and the row count fixed at Init time.
type base struct {
	rows      int
	rowTypes  []RowType
	e         []float64
	j         *mat.Dense
	nControls int
}

func (b *base) init(rows int, rowTypes []RowType, nControls int) {
	b.rows = rows
	b.rowTypes = rowTypes
	b.nControls = nControls
	b.e = make([]float64, rows)
	b.j = mat.NewDense(rows, nControls, nil)
}

func (b *base) setRow(i int, e float64, jRow []float64) {
	b.e[i] = e
	for c, v := range jRow {
		b.j.Set(i, c, v)
	}
}

func (b *base) E() []float64         { return b.e }
func (b *base) J() *mat.Dense        { return b.j }
func (b *base) RowTypes() []RowType  { return b.rowTypes }
func (b *base) Rows() int            { return b.rows }
func (b *base) FinalState() []float64 { return make([]float64, b.rows) }
