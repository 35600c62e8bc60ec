// Package kinchain defines the narrow interface the task engine uses
// to query a kinematic tree (forward kinematics, Jacobians, joint-index
// lookup) plus one reference implementation, Chain, a serial or
// branching tree of revolute/prismatic joints.
//
// The real kinematic-tree math library is an external collaborator per
// the specification this controller implements — production
// deployments inject their own Tree built on whatever FK/Jacobian
// library they already run. Chain exists so the task engine and its
// tests don't need one.
package kinchain

import "gonum.org/v1/gonum/mat"

// Pose is a rigid transform: world-frame position and a 3x3 rotation
// matrix (column-major orthonormal basis of the frame's axes).
type Pose struct {
	Pos [3]float64
	Rot mat.Dense // 3x3
}

// Identity returns the identity pose.
func Identity() Pose {
	return Pose{Rot: *mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
}

// Tree is the forward-kinematics/Jacobian contract the task engine
// consumes. Implementations must be safe for concurrent read-only use
// across ticks; identity and topology are fixed for the tree's
// lifetime once joint-index lookups have been handed out.
type Tree interface {
	// DOF returns the number of controllable joints (the column count
	// every task Jacobian must match).
	DOF() int

	// QNr resolves a joint name to its index into q/q̇. The second
	// return is false if the name is unknown.
	QNr(jointName string) (int, bool)

	// JointNames returns the ordered list of controllable joint names,
	// index-aligned with QNr.
	JointNames() []string

	// HasSegment reports whether frameID names a segment in the tree.
	HasSegment(frameID string) bool

	// FK returns the world-frame pose of the named segment at joint
	// configuration q.
	FK(q []float64, frameID string) (Pose, error)

	// Jacobian returns the 6xDOF geometric Jacobian (rows 0-2 linear,
	// 3-5 angular) of the named segment's origin at configuration q.
	Jacobian(q []float64, frameID string) (*mat.Dense, error)
}
