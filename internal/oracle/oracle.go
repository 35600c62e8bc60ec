// Package oracle defines the signed-distance query contract that
// AvoidCollisionsSDF consults: an external collision-geometry service
// keeping its own map of the environment, queried once per tick for
// the gradient of the nearest obstacle at a set of sample points.
package oracle

import "context"

// Gradient is a distance-field sample: the signed distance to the
// nearest obstacle surface and the direction (unit vector, pointing
// away from the obstacle) in which that distance increases fastest.
type Gradient struct {
	Distance  float64
	Direction [3]float64
}

// Oracle is queried once per control tick, per AvoidCollisionsSDF task.
// A failed or invalid query causes the task function to drop the
// corresponding row for that tick rather than fabricate a gradient.
type Oracle interface {
	QueryGradients(ctx context.Context, points [][3]float64, frame string) ([]Gradient, error)
}

// IsValid reports whether a returned Gradient is usable: its direction
// must be non-degenerate.
func IsValid(g Gradient) bool {
	n := g.Direction[0]*g.Direction[0] + g.Direction[1]*g.Direction[1] + g.Direction[2]*g.Direction[2]
	return n > 1e-9
}
