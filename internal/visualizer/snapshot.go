// Package visualizer streams read-only snapshots of the primitive
// store and task list to any connected diagnostic client, over a
// google.golang.org/grpc server using a custom JSON wire codec (see
// codec.go). It never receives commands — mutation stays on the
// command surface.
package visualizer

import "github.com/taskstack/hqpik/internal/primitives"

// PrimitiveView is the wire shape of one primitive.
type PrimitiveView struct {
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	FrameID string          `json:"frame_id"`
	Visible bool            `json:"visible"`
	Color   primitives.RGBA `json:"color"`
	Params  primitives.Params `json:"params"`
}

// TaskView is the wire shape of one task's lifecycle state.
type TaskView struct {
	Name      string `json:"name"`
	Priority  int    `json:"priority"`
	Active    bool   `json:"active"`
	Monitored bool   `json:"monitored"`
}

// Snapshot is the single message shape streamed to every subscriber.
type Snapshot struct {
	SequenceNr int64           `json:"sequence_nr"`
	Primitives []PrimitiveView `json:"primitives"`
	Tasks      []TaskView      `json:"tasks"`
}

func primitiveView(p primitives.Primitive) PrimitiveView {
	return PrimitiveView{
		Name: p.Name, Kind: p.Kind.String(), FrameID: p.FrameID,
		Visible: p.Visible, Color: p.Color, Params: p.Params,
	}
}
