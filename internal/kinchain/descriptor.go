package kinchain

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// jointTypeName maps the descriptor's type strings onto JointType.
var jointTypeName = map[string]JointType{
	"fixed":     Fixed,
	"revolute":  Revolute,
	"prismatic": Prismatic,
}

// segmentDescriptor is one entry of a serialized robot_description
// tree: a segment's attachment to its parent, in the same shape as
// JointSpec but YAML-friendly (plain slices instead of Pose/mat.Dense).
type segmentDescriptor struct {
	Name      string     `yaml:"name"`
	Parent    string     `yaml:"parent"`
	Type      string     `yaml:"type"`
	Axis      [3]float64 `yaml:"axis"`
	JointName string     `yaml:"joint_name"`
	Origin    struct {
		Pos [3]float64 `yaml:"pos"`
		Rot []float64  `yaml:"rot"` // row-major 3x3, omitted = identity
	} `yaml:"origin"`
}

// ParseDescription decodes a YAML-serialized kinematic tree (the
// startup config's robot_description field) into a *Chain.
func ParseDescription(doc []byte) (*Chain, error) {
	var descs []segmentDescriptor
	if err := yaml.Unmarshal(doc, &descs); err != nil {
		return nil, fmt.Errorf("kinchain: parsing robot_description: %w", err)
	}

	specs := make([]JointSpec, len(descs))
	for i, d := range descs {
		jt, ok := jointTypeName[d.Type]
		if !ok {
			return nil, fmt.Errorf("kinchain: segment %q: unknown joint type %q", d.Name, d.Type)
		}

		origin := Identity()
		origin.Pos = d.Origin.Pos
		if len(d.Origin.Rot) == 9 {
			origin.Rot = *mat.NewDense(3, 3, d.Origin.Rot)
		} else if len(d.Origin.Rot) != 0 {
			return nil, fmt.Errorf("kinchain: segment %q: origin.rot must have 9 entries, got %d", d.Name, len(d.Origin.Rot))
		}

		specs[i] = JointSpec{
			Name:      d.Name,
			Parent:    d.Parent,
			Type:      jt,
			Axis:      d.Axis,
			Origin:    origin,
			JointName: d.JointName,
		}
	}

	return NewChain(specs)
}
