// Package state defines the immutable per-tick snapshot of the robot
// that flows into the task engine: the kinematic tree, joint positions
// and velocities, and the tick timestamp.
package state

import (
	"fmt"
	"time"

	"github.com/taskstack/hqpik/internal/kinchain"
)

// Robot is one tick's worth of robot state. It is never mutated after
// construction — tasks hold a reference for the duration of one
// update() call only.
type Robot struct {
	// T is the monotonic time point this snapshot was sampled at.
	T time.Time

	// Tree is the kinematic tree shared across ticks; it is not
	// expected to change identity within a control session.
	Tree kinchain.Tree

	// Q is the joint position vector, indexed by q_nr.
	Q []float64

	// QDot is the joint velocity vector, same indexing as Q.
	QDot []float64
}

// Validate enforces the invariant |Q| = |QDot| = tree.nDOF.
func (r Robot) Validate() error {
	if r.Tree == nil {
		return fmt.Errorf("robot state: nil kinematic tree")
	}
	n := r.Tree.DOF()
	if len(r.Q) != n {
		return fmt.Errorf("robot state: len(Q)=%d, want %d", len(r.Q), n)
	}
	if len(r.QDot) != n {
		return fmt.Errorf("robot state: len(QDot)=%d, want %d", len(r.QDot), n)
	}
	return nil
}

// New builds a Robot snapshot, defaulting QDot to zeros when callers
// don't track velocity themselves.
func New(t time.Time, tree kinchain.Tree, q, qdot []float64) Robot {
	if qdot == nil {
		qdot = make([]float64, len(q))
	}
	return Robot{T: t, Tree: tree, Q: q, QDot: qdot}
}
