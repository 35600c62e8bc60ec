package oracle

import (
	"context"
	"fmt"
)

// Fixed is a reference Oracle that returns one canned Gradient per
// query, regardless of point or frame. Useful for replay and tests;
// production deployments inject their own SDF-backed Oracle.
type Fixed struct {
	Gradient Gradient
	Err      error
}

func (f Fixed) QueryGradients(ctx context.Context, points [][3]float64, frame string) ([]Gradient, error) {
	if f.Err != nil {
		return nil, fmt.Errorf("fixed oracle: %w", f.Err)
	}
	out := make([]Gradient, len(points))
	for i := range out {
		out[i] = f.Gradient
	}
	return out, nil
}
