package taskfn

import (
	"context"
	"fmt"
	"log"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/paramutil"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// AvoidCollisionsSDF keeps a bound point or sphere surface at least
// safety_margin away from the nearest obstacle, per the environment's
// signed-distance Oracle. def_params are primitive_name, safety_margin.
//
// If the Oracle's query fails, or returns a degenerate gradient, this
// tick's row is zeroed rather than populated with a fabricated
// direction — a stale or invented avoidance gradient is worse than no
// avoidance at all for one tick.
type AvoidCollisionsSDF struct {
	base
	tree   kinchain.Tree
	store  *primitives.Store
	oracle oracle.Oracle
	prim   string
	margin float64
	radius float64
}

// NewAvoidCollisionsSDF constructs the function bound to the given
// Oracle. The Oracle is a collaborator, not a def_param: the
// catalogue's string dispatch (New) passes through the Oracle its
// caller supplies, which for the manager is the deployment's own.
func NewAvoidCollisionsSDF(o oracle.Oracle) *AvoidCollisionsSDF {
	return &AvoidCollisionsSDF{oracle: o}
}

func (f *AvoidCollisionsSDF) Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error {
	if len(defParams) != 2 {
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("AvoidCollisionsSDF requires 2 parameters, got %d", len(defParams)))
	}
	p, ok := store.Lookup(defParams[0])
	if !ok {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown primitive %q", defParams[0]))
	}
	if p.Kind != primitives.Point && p.Kind != primitives.Sphere {
		return hqperr.New(hqperr.BindingError, taskName, "AvoidCollisionsSDF requires a Point or Sphere primitive")
	}
	if !tree.HasSegment(p.FrameID) {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("primitive %q frame %q not in tree", p.Name, p.FrameID))
	}
	margin, err := paramutil.ParseFloat(defParams[1])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, taskName, err)
	}
	f.tree, f.store, f.prim, f.margin = tree, store, p.Name, margin
	if p.Kind == primitives.Sphere {
		f.radius = p.Params.Radius
	}
	store.AddDependency(p.Name, taskName)
	f.base.init(1, []RowType{LowerBound}, nControls)
	return nil
}

func (f *AvoidCollisionsSDF) Update(st state.Robot) error {
	p, ok := f.store.Lookup(f.prim)
	if !ok {
		return hqperr.New(hqperr.BindingError, f.prim, "primitive removed while task is active")
	}
	kin, err := kinematicsAt(f.tree, st.Q, p.FrameID, p.Params.Coords)
	if err != nil {
		return err
	}

	grads, err := f.oracle.QueryGradients(context.Background(), [][3]float64{kin.pos}, "world")
	if err != nil || len(grads) != 1 || !oracle.IsValid(grads[0]) {
		log.Printf("[avoidcollisionssdf] %s: oracle query failed, dropping row: %v", f.prim, err)
		f.setRow(0, 0, make([]float64, f.nControls))
		return nil
	}

	g := grads[0]
	e := g.Distance - f.radius - f.margin
	dir := vec3{g.Direction[0], g.Direction[1], g.Direction[2]}
	f.setRow(0, e, kin.linJac.dotRow(dir))
	return nil
}
