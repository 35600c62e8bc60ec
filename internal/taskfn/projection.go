package taskfn

import (
	"fmt"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

// GeometricProjection drives the scalar separation between two bound
// primitives to zero. Supported pairs: point<->{point,line,plane,
// sphere,cylinder,box} and sphere<->{plane,sphere}. def_params are
// primitive_a_name, primitive_b_name; both must already be registered
// in the primitive store.
type GeometricProjection struct {
	base
	tree       kinchain.Tree
	store      *primitives.Store
	primA      string
	primB      string
}

func (f *GeometricProjection) Init(defParams []string, tree kinchain.Tree, store *primitives.Store, taskName string, nControls int) error {
	if len(defParams) != 2 {
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("GeometricProjection requires 2 parameters, got %d", len(defParams)))
	}
	a, ok := store.Lookup(defParams[0])
	if !ok {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown primitive %q", defParams[0]))
	}
	b, ok := store.Lookup(defParams[1])
	if !ok {
		return hqperr.New(hqperr.BindingError, taskName, fmt.Sprintf("unknown primitive %q", defParams[1]))
	}
	if !projectionPairSupported(a.Kind, b.Kind) {
		return hqperr.New(hqperr.ConfigError, taskName, fmt.Sprintf("unsupported projection pair %s/%s", a.Kind, b.Kind))
	}
	f.tree, f.store, f.primA, f.primB = tree, store, a.Name, b.Name
	store.AddDependency(a.Name, taskName)
	store.AddDependency(b.Name, taskName)
	f.base.init(1, []RowType{Equality}, nControls)
	return nil
}

func projectionPairSupported(a, b primitives.Kind) bool {
	x, y := a, b
	if x == primitives.Sphere || y == primitives.Point {
		x, y = y, x
	}
	switch {
	case x == primitives.Point:
		switch y {
		case primitives.Point, primitives.Line, primitives.Plane, primitives.Sphere, primitives.Cylinder, primitives.Box:
			return true
		}
	case x == primitives.Sphere && y == primitives.Sphere:
		return true
	case y == primitives.Sphere && (x == primitives.Plane):
		return true
	}
	return false
}

func (f *GeometricProjection) Update(st state.Robot) error {
	a, ok := f.store.Lookup(f.primA)
	if !ok {
		return hqperr.New(hqperr.BindingError, f.primA, "primitive removed while task is active")
	}
	b, ok := f.store.Lookup(f.primB)
	if !ok {
		return hqperr.New(hqperr.BindingError, f.primB, "primitive removed while task is active")
	}

	e, row, err := separation(f.tree, st.Q, a, b, f.nControls)
	if err != nil {
		return err
	}
	f.setRow(0, e, row)
	return nil
}

// separation computes the signed scalar distance between two
// primitives and its Jacobian row, dispatching on the supported
// (kind_a, kind_b) combinations, in either order.
func separation(tree kinchain.Tree, q []float64, a, b primitives.Primitive, n int) (float64, []float64, error) {
	switch {
	case a.Kind == primitives.Point && b.Kind == primitives.Point:
		return pointPoint(tree, q, a, b)
	case a.Kind == primitives.Point && b.Kind == primitives.Line:
		return pointLine(tree, q, a, b)
	case a.Kind == primitives.Line && b.Kind == primitives.Point:
		return pointLine(tree, q, b, a)
	case a.Kind == primitives.Point && b.Kind == primitives.Plane:
		return pointPlane(tree, q, a, b)
	case a.Kind == primitives.Plane && b.Kind == primitives.Point:
		return pointPlane(tree, q, b, a)
	case a.Kind == primitives.Point && b.Kind == primitives.Sphere:
		return pointSphere(tree, q, a, b)
	case a.Kind == primitives.Sphere && b.Kind == primitives.Point:
		return pointSphere(tree, q, b, a)
	case a.Kind == primitives.Point && b.Kind == primitives.Cylinder:
		return pointCylinder(tree, q, a, b)
	case a.Kind == primitives.Cylinder && b.Kind == primitives.Point:
		return pointCylinder(tree, q, b, a)
	case a.Kind == primitives.Point && b.Kind == primitives.Box:
		return pointBox(tree, q, a, b)
	case a.Kind == primitives.Box && b.Kind == primitives.Point:
		return pointBox(tree, q, b, a)
	case a.Kind == primitives.Sphere && b.Kind == primitives.Sphere:
		return sphereSphere(tree, q, a, b)
	case a.Kind == primitives.Sphere && b.Kind == primitives.Plane:
		return spherePlane(tree, q, a, b)
	case a.Kind == primitives.Plane && b.Kind == primitives.Sphere:
		return spherePlane(tree, q, b, a)
	default:
		return 0, nil, fmt.Errorf("unsupported projection pair %s/%s", a.Kind, b.Kind)
	}
}

func pointPoint(tree kinchain.Tree, q []float64, a, b primitives.Primitive) (float64, []float64, error) {
	ka, err := kinematicsAt(tree, q, a.FrameID, a.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	kb, err := kinematicsAt(tree, q, b.FrameID, b.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	d := vSub(ka.pos, kb.pos)
	dist := vNorm(d)
	if dist < 1e-9 {
		return 0, make([]float64, len(ka.linJac)), nil
	}
	u := vScale(d, 1/dist)
	jac := ka.linJac.sub(kb.linJac)
	return dist, jac.dotRow(u), nil
}

func pointLine(tree kinchain.Tree, q []float64, pt, line primitives.Primitive) (float64, []float64, error) {
	kp, err := kinematicsAt(tree, q, pt.FrameID, pt.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	ko, err := kinematicsAt(tree, q, line.FrameID, line.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	dHat, _, err := directionAt(tree, q, line.FrameID, line.Params.Dir)
	if err != nil {
		return 0, nil, err
	}
	v := vSub(kp.pos, ko.pos)
	s := vDot(v, dHat)
	perp := vSub(v, vScale(dHat, s))
	dist := vNorm(perp)
	vJac := kp.linJac.sub(ko.linJac)
	if dist < 1e-9 {
		return 0, make([]float64, len(vJac)), nil
	}
	u := vScale(perp, 1/dist)
	// Approximate the line direction as locally rigid: d(perp)/dq ≈ dv/dq - dHat*(dHat·dv/dq).
	perpJac := make(colJac, len(vJac))
	for i, dv := range vJac {
		perpJac[i] = vSub(dv, vScale(dHat, vDot(dHat, dv)))
	}
	return dist, perpJac.dotRow(u), nil
}

func pointPlane(tree kinchain.Tree, q []float64, pt, plane primitives.Primitive) (float64, []float64, error) {
	kp, err := kinematicsAt(tree, q, pt.FrameID, pt.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	normal, normalJac, err := directionAt(tree, q, plane.FrameID, plane.Params.Dir)
	if err != nil {
		return 0, nil, err
	}
	origin, err := kinematicsAt(tree, q, plane.FrameID, vScale(normal, plane.Params.Offset))
	if err != nil {
		return 0, nil, err
	}
	v := vSub(kp.pos, origin.pos)
	e := vDot(v, normal)

	vJac := kp.linJac.sub(origin.linJac)
	row := make([]float64, len(vJac))
	for i := range vJac {
		row[i] = vDot(vJac[i], normal) + vDot(v, normalJac[i])
	}
	return e, row, nil
}

func pointSphere(tree kinchain.Tree, q []float64, pt, sph primitives.Primitive) (float64, []float64, error) {
	kp, err := kinematicsAt(tree, q, pt.FrameID, pt.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	kc, err := kinematicsAt(tree, q, sph.FrameID, sph.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	d := vSub(kp.pos, kc.pos)
	dist := vNorm(d)
	jac := kp.linJac.sub(kc.linJac)
	if dist < 1e-9 {
		return -sph.Params.Radius, make([]float64, len(jac)), nil
	}
	u := vScale(d, 1/dist)
	return dist - sph.Params.Radius, jac.dotRow(u), nil
}

func pointCylinder(tree kinchain.Tree, q []float64, pt, cyl primitives.Primitive) (float64, []float64, error) {
	kp, err := kinematicsAt(tree, q, pt.FrameID, pt.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	ko, err := kinematicsAt(tree, q, cyl.FrameID, cyl.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	axis, _, err := directionAt(tree, q, cyl.FrameID, cyl.Params.Dir)
	if err != nil {
		return 0, nil, err
	}
	v := vSub(kp.pos, ko.pos)
	s := vDot(v, axis)
	perp := vSub(v, vScale(axis, s))
	dist := vNorm(perp)
	vJac := kp.linJac.sub(ko.linJac)
	if dist < 1e-9 {
		return -cyl.Params.Radius, make([]float64, len(vJac)), nil
	}
	u := vScale(perp, 1/dist)
	perpJac := make(colJac, len(vJac))
	for i, dv := range vJac {
		perpJac[i] = vSub(dv, vScale(axis, vDot(axis, dv)))
	}
	return dist - cyl.Params.Radius, perpJac.dotRow(u), nil
}

// pointBox approximates the point-to-box distance in the box's local
// (axis-aligned) frame, ignoring the box's own orientation parameter —
// supporting oriented boxes would need a second rotation composed with
// the frame's, which the reference kinematic tree has no primitive for.
func pointBox(tree kinchain.Tree, q []float64, pt, box primitives.Primitive) (float64, []float64, error) {
	kpPoint, err := kinematicsAt(tree, q, pt.FrameID, pt.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	kc, err := kinematicsAt(tree, q, box.FrameID, box.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	v := vSub(kpPoint.pos, kc.pos)
	var clamped vec3
	outside := false
	for i := 0; i < 3; i++ {
		half := box.Params.Extents[i] / 2
		c := v[i]
		if c > half {
			c = half
			outside = true
		} else if c < -half {
			c = -half
			outside = true
		}
		clamped[i] = c
	}
	jac := kpPoint.linJac.sub(kc.linJac)
	if outside {
		closest := vAdd(kc.pos, clamped)
		d := vSub(kpPoint.pos, closest)
		dist := vNorm(d)
		if dist < 1e-9 {
			return 0, make([]float64, len(jac)), nil
		}
		u := vScale(d, 1/dist)
		return dist, jac.dotRow(u), nil
	}
	// Point is inside the box: distance to the nearest face, negative.
	best := box.Params.Extents[0]/2 - abs(v[0])
	axis := 0
	for i := 1; i < 3; i++ {
		d := box.Params.Extents[i]/2 - abs(v[i])
		if d < best {
			best, axis = d, i
		}
	}
	sign := 1.0
	if v[axis] < 0 {
		sign = -1.0
	}
	var u vec3
	u[axis] = sign
	return -best, jac.dotRow(u), nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func sphereSphere(tree kinchain.Tree, q []float64, a, b primitives.Primitive) (float64, []float64, error) {
	ka, err := kinematicsAt(tree, q, a.FrameID, a.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	kb, err := kinematicsAt(tree, q, b.FrameID, b.Params.Coords)
	if err != nil {
		return 0, nil, err
	}
	d := vSub(ka.pos, kb.pos)
	dist := vNorm(d)
	jac := ka.linJac.sub(kb.linJac)
	if dist < 1e-9 {
		return -(a.Params.Radius + b.Params.Radius), make([]float64, len(jac)), nil
	}
	u := vScale(d, 1/dist)
	return dist - a.Params.Radius - b.Params.Radius, jac.dotRow(u), nil
}

func spherePlane(tree kinchain.Tree, q []float64, sph, plane primitives.Primitive) (float64, []float64, error) {
	e, row, err := pointPlane(tree, q, primitives.Primitive{FrameID: sph.FrameID, Params: primitives.Params{Coords: sph.Params.Coords}}, plane)
	if err != nil {
		return 0, nil, err
	}
	return e - sph.Params.Radius, row, nil
}
