// Package task implements the Task composite: a named pairing of a
// taskfn.Function with a taskdyn.Dynamics, tracked through an
// activation/monitoring lifecycle and contributing one priority
// stage's (e, J, row_types, ė*) to the solver.
package task

import (
	"time"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
	"github.com/taskstack/hqpik/internal/taskdyn"
	"github.com/taskstack/hqpik/internal/taskfn"
	"gonum.org/v1/gonum/mat"
)

// InitStatus enumerates the init() failure points, matching the
// catalogue's build order: function build, function init, dynamics
// build, dynamics init, dimension check.
type InitStatus int

const (
	StatusOK InitStatus = iota
	StatusFunctionBuild
	StatusFunctionInit
	StatusDynamicsBuild
	StatusDynamicsInit
	StatusDimensionMismatch
)

// Task is one entry in a priority stage.
type Task struct {
	Name     string
	Priority int
	Active   bool
	Monitored bool

	fn   taskfn.Function
	dyn  taskdyn.Dynamics
	last []float64 // last ė* sampled by Update, for EDotStar()
}

// Config is everything New needs to build a Task's function and
// dynamics from the command surface's string parameters.
type Config struct {
	Name       string
	Priority   int
	FnFactory  func() (taskfn.Function, error) // e.g. wraps taskfn catalogue dispatch, or returns a pre-built AvoidCollisionsSDF
	FnParams   []string
	DynType    string
	DynParams  []string
	Active     bool
	Monitored  bool
}

// New builds and fully initializes a Task: function build+init,
// dynamics build+init, sampling e_initial/e_final in between.
func New(cfg Config, tree kinchain.Tree, store *primitives.Store, nControls int, st state.Robot) (*Task, InitStatus, error) {
	fn, err := cfg.FnFactory()
	if err != nil {
		return nil, StatusFunctionBuild, hqperr.Wrap(hqperr.ConfigError, cfg.Name, err)
	}
	if err := fn.Init(cfg.FnParams, tree, store, cfg.Name, nControls); err != nil {
		return nil, StatusFunctionInit, hqperr.Wrap(hqperr.ConfigError, cfg.Name, err)
	}

	dyn, err := taskdyn.New(cfg.DynType)
	if err != nil {
		return nil, StatusDynamicsBuild, hqperr.Wrap(hqperr.ConfigError, cfg.Name, err)
	}
	if err := dyn.Build(cfg.DynParams); err != nil {
		return nil, StatusDynamicsBuild, hqperr.Wrap(hqperr.ConfigError, cfg.Name, err)
	}

	if err := fn.Update(st); err != nil {
		return nil, StatusFunctionInit, hqperr.Wrap(hqperr.OracleError, cfg.Name, err)
	}
	eInitial := append([]float64{}, fn.E()...)
	eFinal := fn.FinalState()
	if len(eInitial) != len(eFinal) {
		return nil, StatusDimensionMismatch, hqperr.New(hqperr.DimensionError, cfg.Name, "function/dynamics row count mismatch")
	}
	if err := dyn.Init(eInitial, eFinal); err != nil {
		return nil, StatusDynamicsInit, hqperr.Wrap(hqperr.ConfigError, cfg.Name, err)
	}

	return &Task{
		Name:      cfg.Name,
		Priority:  cfg.Priority,
		Active:    cfg.Active,
		Monitored: cfg.Monitored,
		fn:        fn,
		dyn:       dyn,
	}, StatusOK, nil
}

// Update refreshes the function at st and samples ė* from the
// dynamics. It does not consult Active — the manager decides whether
// an inactive-but-monitored task still gets updated for introspection,
// and whether an active task's result is folded into the solve.
func (t *Task) Update(st state.Robot, now time.Time) error {
	if err := t.fn.Update(st); err != nil {
		return hqperr.Wrap(hqperr.OracleError, t.Name, err)
	}
	edot, err := t.dyn.Update(t.fn.E(), now)
	if err != nil {
		return hqperr.Wrap(hqperr.InternalError, t.Name, err)
	}
	t.last = edot
	return nil
}

// E, J, RowTypes expose the function's last computed contribution.
func (t *Task) E() []float64              { return t.fn.E() }
func (t *Task) J() *mat.Dense             { return t.fn.J() }
func (t *Task) RowTypes() []taskfn.RowType { return t.fn.RowTypes() }
func (t *Task) Rows() int                 { return t.fn.Rows() }

// EDotStar returns the dynamics' most recently sampled ė*.
func (t *Task) EDotStar() []float64 { return t.last }

// Monitor reports the task's diagnostic vector: current e and the
// dynamics' own monitor values, concatenated.
func (t *Task) Monitor() []float64 {
	out := append([]float64{}, t.fn.E()...)
	return append(out, t.dyn.Monitor()...)
}

// DynMonitor returns just the dynamics' own performance measures,
// without the leading e values Monitor concatenates.
func (t *Task) DynMonitor() []float64 { return t.dyn.Monitor() }
