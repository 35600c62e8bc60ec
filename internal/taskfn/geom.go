package taskfn

import (
	"fmt"
	"math"

	"github.com/taskstack/hqpik/internal/kinchain"
	"gonum.org/v1/gonum/mat"
)

type vec3 = [3]float64

func vAdd(a, b vec3) vec3  { return vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func vSub(a, b vec3) vec3  { return vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func vScale(a vec3, s float64) vec3 {
	return vec3{a[0] * s, a[1] * s, a[2] * s}
}
func vDot(a, b vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }
func vCross(a, b vec3) vec3 {
	return vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
func vNorm(a vec3) float64 { return math.Sqrt(vDot(a, a)) }
func vNormalize(a vec3) vec3 {
	n := vNorm(a)
	if n < 1e-12 {
		return a
	}
	return vScale(a, 1/n)
}
func vRotate(r mat.Dense, a vec3) vec3 {
	var out mat.VecDense
	out.MulVec(&r, mat.NewVecDense(3, a[:]))
	return vec3{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

// colJac is a column-wise 3-vector Jacobian: one vec3 per controlled DOF.
type colJac []vec3

func newColJac(n int) colJac { return make(colJac, n) }

func denseRows012(m *mat.Dense) colJac {
	_, n := m.Dims()
	out := newColJac(n)
	for j := 0; j < n; j++ {
		out[j] = vec3{m.At(0, j), m.At(1, j), m.At(2, j)}
	}
	return out
}

func denseRows345(m *mat.Dense) colJac {
	_, n := m.Dims()
	out := newColJac(n)
	for j := 0; j < n; j++ {
		out[j] = vec3{m.At(3, j), m.At(4, j), m.At(5, j)}
	}
	return out
}

func (j colJac) sub(other colJac) colJac {
	out := newColJac(len(j))
	for i := range j {
		out[i] = vSub(j[i], other[i])
	}
	return out
}

func (j colJac) scale(s float64) colJac {
	out := newColJac(len(j))
	for i := range j {
		out[i] = vScale(j[i], s)
	}
	return out
}

func (j colJac) dotRow(v vec3) []float64 {
	out := make([]float64, len(j))
	for i := range j {
		out[i] = vDot(j[i], v)
	}
	return out
}

// pointKin is the world position and linear/angular velocity Jacobian
// of a point rigidly attached to frameID at localOffset.
type pointKin struct {
	pos    vec3
	linJac colJac // d(pos)/dq
	angJac colJac // d(frame angular velocity)/dq — used to transport attached directions
}

func kinematicsAt(tree kinchain.Tree, q []float64, frameID string, localOffset vec3) (pointKin, error) {
	if !tree.HasSegment(frameID) {
		return pointKin{}, fmt.Errorf("frame %q is not in the kinematic tree", frameID)
	}
	pose, err := tree.FK(q, frameID)
	if err != nil {
		return pointKin{}, err
	}
	j6, err := tree.Jacobian(q, frameID)
	if err != nil {
		return pointKin{}, err
	}
	rWorld := vRotate(pose.Rot, localOffset)
	pos := vAdd(pose.Pos, rWorld)

	lin := denseRows012(j6)
	ang := denseRows345(j6)
	for i := range lin {
		lin[i] = vAdd(lin[i], vCross(ang[i], rWorld))
	}
	return pointKin{pos: pos, linJac: lin, angJac: ang}, nil
}

// directionAt returns the world-frame direction (dirLocal expressed in
// frameID, normalized) and its per-DOF rate of change, transported by
// the frame's angular Jacobian.
func directionAt(tree kinchain.Tree, q []float64, frameID string, dirLocal vec3) (vec3, colJac, error) {
	if !tree.HasSegment(frameID) {
		return vec3{}, nil, fmt.Errorf("frame %q is not in the kinematic tree", frameID)
	}
	pose, err := tree.FK(q, frameID)
	if err != nil {
		return vec3{}, nil, err
	}
	j6, err := tree.Jacobian(q, frameID)
	if err != nil {
		return vec3{}, nil, err
	}
	dirWorld := vNormalize(vRotate(pose.Rot, dirLocal))
	ang := denseRows345(j6)
	jac := newColJac(len(ang))
	for i := range ang {
		jac[i] = vCross(ang[i], dirWorld)
	}
	return dirWorld, jac, nil
}
