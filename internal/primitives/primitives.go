// Package primitives implements the typed, named, frame-attached
// registry of geometric objects that tasks bind to. It tracks, per
// primitive, the set of task names depending on it, so the task
// manager can cascade removal and so primitive deletion while
// depended-upon can be diagnosed.
package primitives

import (
	"sort"
	"sync"

	"github.com/taskstack/hqpik/internal/hqperr"
)

// Kind is the tagged-variant discriminator for a Primitive.
type Kind int

const (
	Point Kind = iota
	Line
	Plane
	Sphere
	Cylinder
	Box
)

func (k Kind) String() string {
	switch k {
	case Point:
		return "point"
	case Line:
		return "line"
	case Plane:
		return "plane"
	case Sphere:
		return "sphere"
	case Cylinder:
		return "cylinder"
	case Box:
		return "box"
	default:
		return "unknown"
	}
}

// RGBA is a visualization color.
type RGBA struct{ R, G, B, A float64 }

// Params holds the type-specific numeric parameters for a primitive.
// Only the fields relevant to Kind are meaningful; callers read the
// fields directly (ParseParams in parse.go fills them).
type Params struct {
	// Point: Coords. Line: Coords (origin) + Dir. Plane: Dir (normal) + Offset.
	// Sphere: Coords (center) + Radius. Cylinder: Coords (base) + Dir (axis) + Radius + Height.
	// Box: Coords (center) + Extents + Orientation (quaternion x,y,z,w).
	Coords      [3]float64
	Dir         [3]float64
	Offset      float64
	Radius      float64
	Height      float64
	Extents     [3]float64
	Orientation [4]float64 // quaternion x,y,z,w
}

// Primitive is one entry in the store.
type Primitive struct {
	Name    string
	Kind    Kind
	FrameID string
	Visible bool
	Color   RGBA
	Params  Params
}

// Store is the registry. All operations are safe for concurrent use;
// callers that need a mutation and a read to appear atomic (e.g. the
// task manager during a tick) must hold their own higher-level lock —
// the store's own mutex only protects its internal maps.
type Store struct {
	mu         sync.RWMutex
	byName     map[string]*Primitive
	dependents map[string]map[string]struct{} // primitive name -> set of task names
	onChange   func() // notifies the visualizer sink; nil-safe
	onRemove   func(name string)
}

// New builds an empty store. onChange is called after any mutation
// that should be reflected by the visualizer (upsert); onRemove is
// called with the removed primitive's name so the sink can erase it.
func New(onChange func(), onRemove func(name string)) *Store {
	return &Store{
		byName:     make(map[string]*Primitive),
		dependents: make(map[string]map[string]struct{}),
		onChange:   onChange,
		onRemove:   onRemove,
	}
}

// SetPrimitive upserts a primitive by name. If a primitive of that
// name already exists with a different Kind, the call fails and the
// existing primitive is left untouched.
func (s *Store) SetPrimitive(p Primitive) error {
	s.mu.Lock()
	existing, ok := s.byName[p.Name]
	if ok && existing.Kind != p.Kind {
		s.mu.Unlock()
		return hqperr.New(hqperr.BindingError, p.Name, "primitive exists with a different type")
	}
	cp := p
	s.byName[p.Name] = &cp
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange()
	}
	return nil
}

// GetPrimitive returns the primitive named name if it exists and has
// the requested Kind; ok is false otherwise.
func (s *Store) GetPrimitive(name string, kind Kind) (Primitive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[name]
	if !ok || p.Kind != kind {
		return Primitive{}, false
	}
	return *p, true
}

// Lookup returns the primitive named name regardless of its Kind. Used
// by task functions that accept any geometry and dispatch on Kind
// themselves, such as GeometricProjection.
func (s *Store) Lookup(name string) (Primitive, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byName[name]
	if !ok {
		return Primitive{}, false
	}
	return *p, true
}

// RemovePrimitive deletes the named primitive. Removing an unknown
// name is a no-op (idempotent), matching setPrimitive's upsert
// semantics. Dependent tasks are not notified here — they discover the
// removal on their next update() call, per the primitive lifecycle
// invariant in the specification.
func (s *Store) RemovePrimitive(name string) {
	s.mu.Lock()
	delete(s.byName, name)
	delete(s.dependents, name)
	s.mu.Unlock()

	if s.onRemove != nil {
		s.onRemove(name)
	}
}

// RemoveAllPrimitives clears the store.
func (s *Store) RemoveAllPrimitives() {
	s.mu.Lock()
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	s.byName = make(map[string]*Primitive)
	s.dependents = make(map[string]map[string]struct{})
	s.mu.Unlock()

	if s.onRemove != nil {
		for _, n := range names {
			s.onRemove(n)
		}
	}
}

// AddDependency records that taskName depends on primitiveName.
// Called by a task's init.
func (s *Store) AddDependency(primitiveName, taskName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.dependents[primitiveName]
	if !ok {
		set = make(map[string]struct{})
		s.dependents[primitiveName] = set
	}
	set[taskName] = struct{}{}
}

// RemoveDependency withdraws all dependency edges for taskName, across
// every primitive. Called when a task is torn down.
func (s *Store) RemoveDependency(taskName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, set := range s.dependents {
		delete(set, taskName)
	}
}

// DependentsOf returns the sorted list of task names depending on
// primitiveName.
func (s *Store) DependentsOf(primitiveName string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.dependents[primitiveName]
	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ListNames returns the sorted names of every primitive in the store.
func (s *Store) ListNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byName))
	for n := range s.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Visitor is implemented by callers of AcceptVisitor (visualization or
// introspection).
type Visitor interface {
	Visit(Primitive)
}

// AcceptVisitor iterates the store, calling v.Visit for each primitive.
// If name is non-empty, only that primitive (if present) is visited.
func (s *Store) AcceptVisitor(v Visitor, name ...string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(name) > 0 && name[0] != "" {
		if p, ok := s.byName[name[0]]; ok {
			v.Visit(*p)
		}
		return
	}
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		v.Visit(*s.byName[n])
	}
}
