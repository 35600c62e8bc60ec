package visualizer

import "github.com/taskstack/hqpik/internal/primitives"

// primitiveCollector implements primitives.Visitor, gathering every
// visited Primitive into PrimitiveViews for a Snapshot.
type primitiveCollector struct {
	out []PrimitiveView
}

func (c *primitiveCollector) Visit(p primitives.Primitive) {
	c.out = append(c.out, primitiveView(p))
}

// BuildSnapshot collects store's primitives and the caller-supplied
// task views into one Snapshot ready for Publish. Tasks are passed in
// rather than queried here so this package never needs to import the
// task manager.
func BuildSnapshot(store *primitives.Store, tasks []TaskView) Snapshot {
	var c primitiveCollector
	store.AcceptVisitor(&c)
	return Snapshot{Primitives: c.out, Tasks: tasks}
}
