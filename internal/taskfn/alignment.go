package taskfn

import (
	"fmt"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// GeometricAlignment drives two bound directions toward parallel:
// e = ||dirA x dirB||, zero when aligned. Supported pairs:
// line<->{line,plane,cylinder,sphere}. For line-plane, dirB is the
// plane normal (alignment means the line runs along the normal, i.e.
// perpendicular to the plane). For
// line-sphere, dirB is the direction from the line's origin to the
// sphere's center (alignment means the sphere lies on the line).
type GeometricAlignment struct {
	base
	tree  kinchain.Tree
	store *primitives.Store
	primA string
	primB string
}

func (f *GeometricAlignment) Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error {
	if len(defParams) != 2 {
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("GeometricAlignment requires 2 parameters, got %d", len(defParams)))
	}
	a, ok := store.Lookup(defParams[0])
	if !ok {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown primitive %q", defParams[0]))
	}
	b, ok := store.Lookup(defParams[1])
	if !ok {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown primitive %q", defParams[1]))
	}
	if a.Kind != primitives.Line {
		return hqperr.New(hqperr.ConfigError, taskName, "GeometricAlignment requires primitive_a to be a line")
	}
	switch b.Kind {
	case primitives.Line, primitives.Plane, primitives.Cylinder, primitives.Sphere:
	default:
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("unsupported alignment pair line/%s", b.Kind))
	}
	f.tree, f.store, f.primA, f.primB = tree, store, a.Name, b.Name
	store.AddDependency(a.Name, taskName)
	store.AddDependency(b.Name, taskName)
	f.base.init(1, []RowType{Equality}, nControls)
	return nil
}

func (f *GeometricAlignment) Update(st state.Robot) error {
	a, ok := f.store.Lookup(f.primA)
	if !ok {
		return hqperr.New(hqperr.BindingError, f.primA, "primitive removed while task is active")
	}
	b, ok := f.store.Lookup(f.primB)
	if !ok {
		return hqperr.New(hqperr.BindingError, f.primB, "primitive removed while task is active")
	}

	dirA, jacA, err := directionAt(f.tree, st.Q, a.FrameID, a.Params.Dir)
	if err != nil {
		return err
	}

	var dirB vec3
	var jacB colJac
	switch b.Kind {
	case primitives.Line, primitives.Cylinder:
		dirB, jacB, err = directionAt(f.tree, st.Q, b.FrameID, b.Params.Dir)
	case primitives.Plane:
		dirB, jacB, err = directionAt(f.tree, st.Q, b.FrameID, b.Params.Dir)
	case primitives.Sphere:
		var ko, kc pointKin
		ko, err = kinematicsAt(f.tree, st.Q, a.FrameID, a.Params.Coords)
		if err == nil {
			kc, err = kinematicsAt(f.tree, st.Q, b.FrameID, b.Params.Coords)
		}
		if err == nil {
			w := vSub(kc.pos, ko.pos)
			wJac := kc.linJac.sub(ko.linJac)
			dirB, jacB = normalizeJac(w, wJac)
		}
	}
	if err != nil {
		return err
	}

	e, row := alignmentError(dirA, jacA, dirB, jacB)
	f.setRow(0, e, row)
	return nil
}

func alignmentError(dirA vec3, jacA colJac, dirB vec3, jacB colJac) (float64, []float64) {
	c := vCross(dirA, dirB)
	mag := vNorm(c)
	row := make([]float64, len(jacA))
	if mag < 1e-9 {
		return 0, row
	}
	u := vScale(c, 1/mag)
	for i := range jacA {
		dc := vAdd(vCross(jacA[i], dirB), vCross(dirA, jacB[i]))
		row[i] = vDot(u, dc)
	}
	return mag, row
}

// normalizeJac differentiates w/||w|| with respect to each DOF given
// w's own per-DOF derivative wJac.
func normalizeJac(w vec3, wJac colJac) (vec3, colJac) {
	n := vNorm(w)
	if n < 1e-9 {
		return w, wJac
	}
	dir := vScale(w, 1/n)
	out := make(colJac, len(wJac))
	for i, dw := range wJac {
		out[i] = vScale(vSub(dw, vScale(dir, vDot(dir, dw))), 1/n)
	}
	return dir, out
}
