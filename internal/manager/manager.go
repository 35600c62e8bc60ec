// Package manager implements the task manager: the single
// coarse-grained-mutex-protected owner of the task map, the primitive
// store, and the dependency graph between them, and the driver of one
// control tick's solve.
package manager

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/kinchain"
	"github.com/taskstack/hqpik/internal/oracle"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/solver"
	"github.com/taskstack/hqpik/internal/state"
	"github.com/taskstack/hqpik/internal/task"
	"github.com/taskstack/hqpik/internal/taskfn"
	"github.com/taskstack/hqpik/internal/visualizer"
)

// TaskRequest is the command-surface-facing description of a task to
// create, mirroring task.Config but using the function catalogue's
// type-name dispatch instead of a constructed taskfn.Function.
type TaskRequest struct {
	Priority  int
	FnType    string
	FnParams  []string
	DynType   string
	DynParams []string
	Active    bool
	Monitored bool
}

// TaskInfo is what ListAllTasks reports per task, without exposing the
// task's internal function/dynamics objects.
type TaskInfo struct {
	Name      string
	Priority  int
	Active    bool
	Monitored bool
}

// MonitorRecord is one monitored task's telemetry as pushed to the
// monitoring channel at the end of a Tick. It carries no behavior so
// internal/monitor can consume it without importing task/taskfn.
type MonitorRecord struct {
	Name     string
	E        []float64
	EDotStar []float64
	Measures []float64
}

// Manager owns the task map, the primitive store, and the kinematic
// tree/solver collaborators injected at construction. Every exported
// method locks mu for its duration, matching the reference
// implementation's single resource mutex bracketing every mutation
// and the tick itself.
type Manager struct {
	mu        sync.Mutex
	tree      kinchain.Tree
	nControls int
	store     *primitives.Store
	solver    solver.Solver
	oracle    oracle.Oracle
	tasks     map[string]*task.Task
	monitorCh chan []MonitorRecord
}

// New builds a Manager bound to tree (nControls DOF), using slv as the
// HQP solver and o as the AvoidCollisionsSDF Oracle. onPrimitiveChange
// and onPrimitiveRemove are wired into the primitive store — typically
// a visualizer sink.
func New(tree kinchain.Tree, nControls int, slv solver.Solver, o oracle.Oracle, onPrimitiveChange func(), onPrimitiveRemove func(string)) *Manager {
	return &Manager{
		tree:      tree,
		nControls: nControls,
		store:     primitives.New(onPrimitiveChange, onPrimitiveRemove),
		solver:    slv,
		oracle:    o,
		tasks:     make(map[string]*task.Task),
		monitorCh: make(chan []MonitorRecord, 1),
	}
}

// MonitorRecords returns the channel internal/monitor.Driver drains on
// its own cadence. Each Tick that produces at least one monitored
// task's telemetry overwrites whatever stale batch is still buffered,
// so the monitoring stream always carries the freshest record rather
// than backing up behind a slow consumer.
func (m *Manager) MonitorRecords() <-chan []MonitorRecord {
	return m.monitorCh
}

func (m *Manager) pushMonitorRecords(recs []MonitorRecord) {
	if len(recs) == 0 {
		return
	}
	select {
	case m.monitorCh <- recs:
		return
	default:
	}
	select {
	case <-m.monitorCh:
	default:
	}
	select {
	case m.monitorCh <- recs:
	default:
	}
}

// SetTask creates or replaces the named task. Replacing an existing
// task tears down its old primitive dependencies before building the
// new one, so a task redefinition never leaks stale edges.
func (m *Manager) SetTask(name string, req TaskRequest, st state.Robot) (task.InitStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store.RemoveDependency(name)

	cfg := task.Config{
		Name:     name,
		Priority: req.Priority,
		FnFactory: func() (taskfn.Function, error) {
			return taskfn.New(req.FnType, m.oracle)
		},
		FnParams:  req.FnParams,
		DynType:   req.DynType,
		DynParams: req.DynParams,
		Active:    req.Active,
		Monitored: req.Monitored,
	}

	tk, status, err := task.New(cfg, m.tree, m.store, m.nControls, st)
	if err != nil {
		return status, err
	}
	m.tasks[name] = tk
	return status, nil
}

// RemoveTask deletes a task and its primitive dependency edges.
// Removing an unknown name is a no-op.
func (m *Manager) RemoveTask(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, name)
	m.store.RemoveDependency(name)
}

// RemoveAllTasks clears every task.
func (m *Manager) RemoveAllTasks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name := range m.tasks {
		m.store.RemoveDependency(name)
	}
	m.tasks = make(map[string]*task.Task)
}

// RemovePriorityLevel removes every task at the given priority.
func (m *Manager) RemovePriorityLevel(priority int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, tk := range m.tasks {
		if tk.Priority == priority {
			delete(m.tasks, name)
			m.store.RemoveDependency(name)
		}
	}
}

func (m *Manager) setActive(name string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tk, ok := m.tasks[name]
	if !ok {
		return hqperr.New(hqperr.BindingError, name, "unknown task")
	}
	tk.Active = active
	return nil
}

func (m *Manager) ActivateTask(name string) error   { return m.setActive(name, true) }
func (m *Manager) DeactivateTask(name string) error  { return m.setActive(name, false) }

func (m *Manager) setMonitored(name string, monitored bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tk, ok := m.tasks[name]
	if !ok {
		return hqperr.New(hqperr.BindingError, name, "unknown task")
	}
	tk.Monitored = monitored
	return nil
}

func (m *Manager) MonitorTask(name string) error   { return m.setMonitored(name, true) }
func (m *Manager) DemonitorTask(name string) error  { return m.setMonitored(name, false) }

func (m *Manager) setPriorityActive(priority int, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tk := range m.tasks {
		if tk.Priority == priority {
			tk.Active = active
		}
	}
}

func (m *Manager) ActivatePriorityLevel(priority int)   { m.setPriorityActive(priority, true) }
func (m *Manager) DeactivatePriorityLevel(priority int) { m.setPriorityActive(priority, false) }

func (m *Manager) setPriorityMonitored(priority int, monitored bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tk := range m.tasks {
		if tk.Priority == priority {
			tk.Monitored = monitored
		}
	}
}

func (m *Manager) MonitorPriorityLevel(priority int)   { m.setPriorityMonitored(priority, true) }
func (m *Manager) DemonitorPriorityLevel(priority int) { m.setPriorityMonitored(priority, false) }

// SetPrimitive upserts a primitive in the store.
func (m *Manager) SetPrimitive(p primitives.Primitive) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.SetPrimitive(p)
}

// RemovePrimitive removes a primitive; dependent tasks discover the
// removal on their next Tick.
func (m *Manager) RemovePrimitive(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.RemovePrimitive(name)
}

// RemoveAllPrimitives clears the primitive store.
func (m *Manager) RemoveAllPrimitives() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.RemoveAllPrimitives()
}

// ListAllPrimitiveNames returns the sorted names of every registered primitive.
func (m *Manager) ListAllPrimitiveNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.store.ListNames()
}

// ListAllTasks reports every task's name, priority, and lifecycle flags.
func (m *Manager) ListAllTasks() []TaskInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TaskInfo, 0, len(m.tasks))
	for name, tk := range m.tasks {
		out = append(out, TaskInfo{Name: name, Priority: tk.Priority, Active: tk.Active, Monitored: tk.Monitored})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetTaskMeasures returns the named task's monitor vector.
func (m *Manager) GetTaskMeasures(name string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tk, ok := m.tasks[name]
	if !ok {
		return nil, hqperr.New(hqperr.BindingError, name, "unknown task")
	}
	return tk.Monitor(), nil
}

// MonitoredTaskNames returns the sorted names of every task currently
// flagged Monitored, for the monitoring stream's per-tick batch.
func (m *Manager) MonitoredTaskNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.tasks))
	for name, tk := range m.tasks {
		if tk.Monitored {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// TaskTelemetry returns the named task's current e, ė*, and dynamics
// monitor vector separately, for the monitoring stream's batch record.
func (m *Manager) TaskTelemetry(name string) (e, eDotStar, measures []float64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tk, ok := m.tasks[name]
	if !ok {
		return nil, nil, nil, hqperr.New(hqperr.BindingError, name, "unknown task")
	}
	return copyFloats(tk.E()), copyFloats(tk.EDotStar()), copyFloats(tk.DynMonitor()), nil
}

// copyFloats returns a copy of s, so telemetry handed out of the lock
// does not alias a task's buffers that the next Tick rewrites.
func copyFloats(s []float64) []float64 {
	if s == nil {
		return nil
	}
	return append([]float64(nil), s...)
}

// RenderPrimitives visits the store's primitives (all, or just name if given).
func (m *Manager) RenderPrimitives(v primitives.Visitor, name ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store.AcceptVisitor(v, name...)
}

// Snapshot builds a visualizer.Snapshot of the current primitive
// store and task list, for the daemon to Publish after every tick.
func (m *Manager) Snapshot() visualizer.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	tasks := make([]visualizer.TaskView, 0, len(m.tasks))
	for name, tk := range m.tasks {
		tasks = append(tasks, visualizer.TaskView{Name: name, Priority: tk.Priority, Active: tk.Active, Monitored: tk.Monitored})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Name < tasks[j].Name })
	return visualizer.BuildSnapshot(m.store, tasks)
}

// Tick updates every active task at st/now and solves the stacked HQP,
// returning the commanded joint velocities and whether the solve was
// feasible. A task whose Update fails this tick is logged and skipped
// rather than aborting the whole tick; every other task still gets a
// command. ok is false, with an all-zero command, whenever the solver
// found no feasible top priority or there was nothing to solve.
func (m *Manager) Tick(st state.Robot, now time.Time) (u []float64, ok bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := st.Validate(); err != nil {
		return nil, false, hqperr.Wrap(hqperr.DimensionError, "tick", err)
	}

	m.solver.ClearStages()
	var monitored []MonitorRecord
	for name, tk := range m.tasks {
		if !tk.Active && !tk.Monitored {
			continue
		}
		if err := tk.Update(st, now); err != nil {
			log.Printf("[manager] task %q update failed, skipping this tick: %v", name, err)
			continue
		}
		if tk.Active {
			m.solver.AppendStage(tk.Priority, tk.E(), tk.EDotStar(), tk.J(), tk.RowTypes())
		}
		if tk.Monitored {
			monitored = append(monitored, MonitorRecord{
				Name: name, E: copyFloats(tk.E()), EDotStar: tk.EDotStar(), Measures: tk.DynMonitor(),
			})
		}
	}
	sort.Slice(monitored, func(i, j int) bool { return monitored[i].Name < monitored[j].Name })
	m.pushMonitorRecords(monitored)

	u, ok, err = m.solver.Solve(m.nControls)
	if err != nil {
		log.Printf("[manager] solve failed: %v", err)
		return nil, false, hqperr.Wrap(hqperr.InternalError, "tick", err)
	}
	if !ok {
		log.Printf("[manager] solver reported infeasible top priority or no active tasks")
	}
	return u, ok, nil
}

// GetVelocityControls is the spec-literal alias for Tick: it writes
// the commanded velocities into out (which must have length nControls)
// and returns whether the solve was feasible.
func (m *Manager) GetVelocityControls(st state.Robot, now time.Time, out []float64) (bool, error) {
	u, ok, err := m.Tick(st, now)
	if err != nil {
		return false, err
	}
	copy(out, u)
	return ok, nil
}
