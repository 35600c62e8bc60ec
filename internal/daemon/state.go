package daemon

import (
	"sync"
	"time"

	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/state"
)

// LiveState is the daemon's single writable robot snapshot: the tick
// loop integrates it forward every cycle, and cmdsurface reads it
// through CurrentState to seed newly created tasks.
type LiveState struct {
	mu   sync.Mutex
	tree kinchain.Tree
	q    []float64
	qdot []float64
	t    time.Time
}

// NewLiveState builds a LiveState at the zero configuration.
func NewLiveState(tree kinchain.Tree) *LiveState {
	return &LiveState{
		tree: tree,
		q:    make([]float64, tree.DOF()),
		qdot: make([]float64, tree.DOF()),
		t:    time.Now(),
	}
}

// CurrentState implements cmdsurface.StateProvider.
func (l *LiveState) CurrentState() state.Robot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return state.New(l.t, l.tree, append([]float64{}, l.q...), append([]float64{}, l.qdot...))
}

// Integrate advances q by u*dt (explicit Euler on the commanded joint
// velocities), records qdot = u, and returns the snapshot the next
// tick should run against.
func (l *LiveState) Integrate(u []float64, now time.Time) state.Robot {
	l.mu.Lock()
	defer l.mu.Unlock()
	dt := now.Sub(l.t).Seconds()
	if l.t.IsZero() || dt < 0 {
		dt = 0
	}
	for i := range l.q {
		l.q[i] += u[i] * dt
	}
	copy(l.qdot, u)
	l.t = now
	return state.New(l.t, l.tree, append([]float64{}, l.q...), append([]float64{}, l.qdot...))
}

// Snapshot returns the current state without advancing it, used to
// seed dynamics for tasks created before the first tick.
func (l *LiveState) Snapshot() state.Robot {
	return l.CurrentState()
}
