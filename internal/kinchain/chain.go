package kinchain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// JointType is the motion a Chain joint contributes.
type JointType int

const (
	// Fixed contributes no DOF; the segment moves rigidly with its parent.
	Fixed JointType = iota
	Revolute
	Prismatic
)

// JointSpec describes one segment's attachment to its parent: a fixed
// offset pose (origin) followed by the joint's own one-DOF motion
// about/along Axis (ignored for Fixed joints).
type JointSpec struct {
	Name   string // segment/frame name, unique in the chain
	Parent string // parent segment name, "" for the root
	Type   JointType
	Axis   [3]float64 // unit axis, in the parent-joint (post-origin) frame
	Origin Pose       // fixed transform from parent frame to this joint's frame

	// JointName is the controllable joint's name as exposed via QNr.
	// Required (and must be unique) when Type != Fixed; ignored otherwise.
	JointName string
}

type segment struct {
	spec       JointSpec
	parentIdx  int // -1 for root
	qnr        int // -1 if fixed
}

// Chain is a reference kinematic tree: a serial or branching set of
// segments, each a fixed offset plus an optional one-DOF joint. It
// exists to exercise the task engine and its tests; production
// deployments supply their own Tree.
type Chain struct {
	segments   []segment
	byName     map[string]int
	jointQNr   map[string]int
	jointNames []string
	dof        int
}

// NewChain builds a Chain from an ordered list of joint specs; parents
// must appear before their children.
func NewChain(specs []JointSpec) (*Chain, error) {
	c := &Chain{
		byName:   make(map[string]int, len(specs)),
		jointQNr: make(map[string]int),
	}
	for _, s := range specs {
		if _, dup := c.byName[s.Name]; dup {
			return nil, fmt.Errorf("kinchain: duplicate segment name %q", s.Name)
		}
		parentIdx := -1
		if s.Parent != "" {
			pi, ok := c.byName[s.Parent]
			if !ok {
				return nil, fmt.Errorf("kinchain: segment %q references unknown parent %q", s.Name, s.Parent)
			}
			parentIdx = pi
		}
		qnr := -1
		if s.Type != Fixed {
			if s.JointName == "" {
				return nil, fmt.Errorf("kinchain: segment %q has a movable joint with no JointName", s.Name)
			}
			if _, dup := c.jointQNr[s.JointName]; dup {
				return nil, fmt.Errorf("kinchain: duplicate joint name %q", s.JointName)
			}
			qnr = c.dof
			c.jointQNr[s.JointName] = qnr
			c.jointNames = append(c.jointNames, s.JointName)
			c.dof++
		}
		c.byName[s.Name] = len(c.segments)
		c.segments = append(c.segments, segment{spec: s, parentIdx: parentIdx, qnr: qnr})
	}
	return c, nil
}

func (c *Chain) DOF() int { return c.dof }

func (c *Chain) QNr(jointName string) (int, bool) {
	n, ok := c.jointQNr[jointName]
	return n, ok
}

func (c *Chain) JointNames() []string {
	out := make([]string, len(c.jointNames))
	copy(out, c.jointNames)
	return out
}

func (c *Chain) HasSegment(frameID string) bool {
	_, ok := c.byName[frameID]
	return ok
}

// chainTo returns the ordered list of segment indices from root to
// frameID, inclusive.
func (c *Chain) chainTo(frameID string) ([]int, error) {
	idx, ok := c.byName[frameID]
	if !ok {
		return nil, fmt.Errorf("kinchain: unknown segment %q", frameID)
	}
	var path []int
	for i := idx; i != -1; i = c.segments[i].parentIdx {
		path = append(path, i)
	}
	// reverse to root-first order
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, nil
}

// FK walks the chain to frameID, composing each segment's fixed origin
// with its joint motion.
func (c *Chain) FK(q []float64, frameID string) (Pose, error) {
	if len(q) != c.dof {
		return Pose{}, fmt.Errorf("kinchain: len(q)=%d, want %d", len(q), c.dof)
	}
	path, err := c.chainTo(frameID)
	if err != nil {
		return Pose{}, err
	}
	pose := Identity()
	for _, idx := range path {
		seg := c.segments[idx]
		pose = compose(pose, seg.spec.Origin)
		if seg.qnr >= 0 {
			pose = compose(pose, jointMotion(seg.spec.Type, seg.spec.Axis, q[seg.qnr]))
		}
	}
	return pose, nil
}

// Jacobian builds the 6xDOF geometric Jacobian of frameID's origin:
// rows 0-2 are the linear velocity contribution of each joint, rows
// 3-5 the angular velocity contribution.
func (c *Chain) Jacobian(q []float64, frameID string) (*mat.Dense, error) {
	if len(q) != c.dof {
		return nil, fmt.Errorf("kinchain: len(q)=%d, want %d", len(q), c.dof)
	}
	path, err := c.chainTo(frameID)
	if err != nil {
		return nil, err
	}

	J := mat.NewDense(6, c.dof, nil)
	if len(path) == 0 {
		return J, nil
	}

	// end-effector world position
	pEnd, err := c.FK(q, frameID)
	if err != nil {
		return nil, err
	}

	pose := Identity()
	for _, idx := range path {
		seg := c.segments[idx]
		jointFrame := compose(pose, seg.spec.Origin) // frame the joint axis is expressed in, pre-motion
		if seg.qnr >= 0 {
			axisWorld := rotate(jointFrame.Rot, seg.spec.Axis)
			switch seg.spec.Type {
			case Revolute:
				lever := sub(pEnd.Pos, jointFrame.Pos)
				lin := cross(axisWorld, lever)
				setCol(J, seg.qnr, lin, axisWorld)
			case Prismatic:
				setCol(J, seg.qnr, axisWorld, [3]float64{})
			}
			pose = compose(jointFrame, jointMotion(seg.spec.Type, seg.spec.Axis, q[seg.qnr]))
		} else {
			pose = jointFrame
		}
	}
	return J, nil
}

func setCol(J *mat.Dense, col int, lin, ang [3]float64) {
	J.Set(0, col, lin[0])
	J.Set(1, col, lin[1])
	J.Set(2, col, lin[2])
	J.Set(3, col, ang[0])
	J.Set(4, col, ang[1])
	J.Set(5, col, ang[2])
}

// --- small pose/vector algebra -------------------------------------------

func compose(a, b Pose) Pose {
	var out Pose
	out.Rot.Mul(&a.Rot, &b.Rot)
	rb := rotate(a.Rot, b.Pos)
	out.Pos = add(a.Pos, rb)
	return out
}

func jointMotion(t JointType, axis [3]float64, value float64) Pose {
	switch t {
	case Revolute:
		p := Identity()
		p.Rot = rotationAbout(axis, value)
		return p
	case Prismatic:
		p := Identity()
		p.Pos = scale(normalize(axis), value)
		return p
	default:
		return Identity()
	}
}

// rotationAbout returns the Rodrigues rotation matrix for a rotation
// of `angle` radians about the (assumed unit) axis.
func rotationAbout(axis [3]float64, angle float64) mat.Dense {
	a := normalize(axis)
	s, cs := math.Sin(angle), math.Cos(angle)
	x, y, z := a[0], a[1], a[2]
	k := mat.NewDense(3, 3, []float64{
		0, -z, y,
		z, 0, -x,
		-y, x, 0,
	})
	var outer mat.Dense
	outer.Outer(1, mat.NewVecDense(3, a[:]), mat.NewVecDense(3, a[:]))

	var r mat.Dense
	r.Scale(cs, eye3())
	var t1 mat.Dense
	t1.Scale(1-cs, &outer)
	r.Add(&r, &t1)
	var t2 mat.Dense
	t2.Scale(s, k)
	r.Add(&r, &t2)
	return r
}

func eye3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func rotate(rot mat.Dense, v [3]float64) [3]float64 {
	var out mat.VecDense
	out.MulVec(&rot, mat.NewVecDense(3, v[:]))
	return [3]float64{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func normalize(a [3]float64) [3]float64 {
	n := math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
	if n < 1e-12 {
		return a
	}
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}
