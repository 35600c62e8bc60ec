// Package replay pushes a resolved startup config's preload_*
// sections into an already-running daemon over its command surface,
// the same JSON shapes cmdsurface.Server accepts from any other
// client. It exists for hqpikctl's replay subcommand: re-seeding a
// live controller from a recorded config file without restarting it.
package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/taskstack/hqpik/internal/config"
)

// Client posts preload sections to a running command surface.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client targeting baseURL (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

type setTaskBody struct {
	Type      string   `json:"type"`
	DynType   string   `json:"dyn_type"`
	Priority  int      `json:"priority"`
	Active    bool     `json:"active"`
	Monitored bool     `json:"monitored"`
	DefParams []string `json:"def_params"`
	DynParams []string `json:"dyn_params"`
}

type setPrimitiveBody struct {
	Type    string     `json:"type"`
	FrameID string     `json:"frame_id"`
	Visible bool       `json:"visible"`
	Color   [4]float64 `json:"color"`
	Params  []string   `json:"params"`
}

// Apply replays every preload_joint_limits, preload_geometric_primitives,
// and preload_tasks entry of r against the command surface, in that
// order, stopping at the first failure.
func (c *Client) Apply(r config.Resolved) error {
	for _, jl := range r.PreloadJointLimits {
		name := fmt.Sprintf("%s_limit", jl.JointName)
		body := setTaskBody{
			Type:      "JointLimits",
			DynType:   "JntLimits",
			Priority:  jl.Priority,
			Active:    true,
			DefParams: []string{jl.JointName, ftoa(jl.QMin), ftoa(jl.QMax)},
			DynParams: []string{jl.JointName, ftoa(jl.DQMax), ftoa(jl.Gain)},
		}
		if err := c.post("/v1/tasks/"+name, body); err != nil {
			return fmt.Errorf("replay joint limit %q: %w", jl.JointName, err)
		}
	}

	for _, pp := range r.PreloadGeometricPrimitives {
		body := setPrimitiveBody{
			Type:    pp.Type,
			FrameID: pp.FrameID,
			Visible: pp.Visible,
			Color:   pp.Color,
			Params:  pp.Params,
		}
		if err := c.post("/v1/primitives/"+pp.Name, body); err != nil {
			return fmt.Errorf("replay primitive %q: %w", pp.Name, err)
		}
	}

	for _, tp := range r.PreloadTasks {
		body := setTaskBody{
			Type:      tp.Type,
			DynType:   tp.DynType,
			Priority:  tp.Priority,
			Active:    tp.Active,
			Monitored: tp.Monitored,
			DefParams: tp.DefParams,
			DynParams: tp.DynParams,
		}
		if err := c.post("/v1/tasks/"+tp.Name, body); err != nil {
			return fmt.Errorf("replay task %q: %w", tp.Name, err)
		}
	}
	return nil
}

func (c *Client) post(path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Post(c.BaseURL+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

func ftoa(v float64) string { return fmt.Sprintf("%g", v) }
