package primitives

import (
	"fmt"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/paramutil"
)

// ParseKind maps the set_primitive call's exact type-name string to a
// Kind, per spec.md §6's string parameter conventions. Shared by the
// command surface and the daemon's startup preload path so both
// accept the same spelling.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "Point":
		return Point, nil
	case "Line":
		return Line, nil
	case "Plane":
		return Plane, nil
	case "Sphere":
		return Sphere, nil
	case "Cylinder":
		return Cylinder, nil
	case "Box":
		return Box, nil
	default:
		return 0, hqperr.New(hqperr.ConfigError, name, "unknown primitive type")
	}
}

var paramCount = map[Kind]int{
	Point:    3,
	Line:     6,
	Plane:    4,
	Sphere:   4,
	Cylinder: 8,
	Box:      10,
}

// ParseParams decodes the ASCII-decimal params list into a Params
// according to kind's documented layout.
func ParseParams(kind Kind, raw []string) (Params, error) {
	v, err := paramutil.ParseFloats(raw)
	if err != nil {
		return Params{}, hqperr.Wrap(hqperr.ConfigError, "params", err)
	}

	want := paramCount[kind]
	if len(v) != want {
		return Params{}, hqperr.New(hqperr.ConfigError, kind.String(),
			fmt.Sprintf("expected %d params, got %d", want, len(v)))
	}

	var p Params
	switch kind {
	case Point:
		p.Coords = [3]float64{v[0], v[1], v[2]}
	case Line:
		p.Coords = [3]float64{v[0], v[1], v[2]}
		p.Dir = [3]float64{v[3], v[4], v[5]}
	case Plane:
		p.Dir = [3]float64{v[0], v[1], v[2]}
		p.Offset = v[3]
	case Sphere:
		p.Coords = [3]float64{v[0], v[1], v[2]}
		p.Radius = v[3]
	case Cylinder:
		p.Coords = [3]float64{v[0], v[1], v[2]}
		p.Dir = [3]float64{v[3], v[4], v[5]}
		p.Radius = v[6]
		p.Height = v[7]
	case Box:
		p.Coords = [3]float64{v[0], v[1], v[2]}
		p.Extents = [3]float64{v[3], v[4], v[5]}
		p.Orientation = [4]float64{v[6], v[7], v[8], v[9]}
	}
	return p, nil
}
