package daemon

import (
	"fmt"
	"log"
	"strconv"

	"github.com/taskstack/hqpik/internal/config"
	"github.com/taskstack/hqpik/internal/manager"
	"github.com/taskstack/hqpik/internal/primitives"
	"github.com/taskstack/hqpik/internal/state"
)

func ftoa(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// applyPreloads replays a Resolved config's preload_* sections into
// mgr. It is called once at startup and again, with the freshly
// reloaded config, by the fsnotify watcher whenever the config file
// changes on disk — so a running daemon can pick up new joint limits,
// primitives, or tasks without a restart.
func applyPreloads(mgr *manager.Manager, r config.Resolved, st state.Robot) error {
	for _, jl := range r.PreloadJointLimits {
		name := fmt.Sprintf("%s_limit", jl.JointName)
		_, err := mgr.SetTask(name, manager.TaskRequest{
			Priority:  jl.Priority,
			FnType:    "JointLimits",
			FnParams:  []string{jl.JointName, ftoa(jl.QMin), ftoa(jl.QMax)},
			DynType:   "JntLimits",
			DynParams: []string{jl.JointName, ftoa(jl.DQMax), ftoa(jl.Gain)},
			Active:    true,
		}, st)
		if err != nil {
			return fmt.Errorf("preload joint limit %q: %w", jl.JointName, err)
		}
	}

	for _, pp := range r.PreloadGeometricPrimitives {
		kind, err := primitives.ParseKind(pp.Type)
		if err != nil {
			return fmt.Errorf("preload primitive %q: %w", pp.Name, err)
		}
		params, err := primitives.ParseParams(kind, pp.Params)
		if err != nil {
			return fmt.Errorf("preload primitive %q: %w", pp.Name, err)
		}
		prim := primitives.Primitive{
			Name:    pp.Name,
			Kind:    kind,
			FrameID: pp.FrameID,
			Visible: pp.Visible,
			Color:   primitives.RGBA{R: pp.Color[0], G: pp.Color[1], B: pp.Color[2], A: pp.Color[3]},
			Params:  params,
		}
		if err := mgr.SetPrimitive(prim); err != nil {
			return fmt.Errorf("preload primitive %q: %w", pp.Name, err)
		}
	}

	for _, tp := range r.PreloadTasks {
		_, err := mgr.SetTask(tp.Name, manager.TaskRequest{
			Priority:  tp.Priority,
			FnType:    tp.Type,
			FnParams:  tp.DefParams,
			DynType:   tp.DynType,
			DynParams: tp.DynParams,
			Active:    tp.Active,
			Monitored: tp.Monitored,
		}, st)
		if err != nil {
			return fmt.Errorf("preload task %q: %w", tp.Name, err)
		}
	}

	log.Printf("[daemon] preloaded %d joint limits, %d primitives, %d tasks",
		len(r.PreloadJointLimits), len(r.PreloadGeometricPrimitives), len(r.PreloadTasks))
	return nil
}
