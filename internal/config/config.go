// Package config loads the controller's tuning parameters through
// viper, with fsnotify-driven hot reload. The preload sections mirror
// the command surface's set_primitive and set_task request shapes, so
// the same file can seed a daemon at startup and be replayed at runtime.
package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// JointLimitPreload is one entry of preload_joint_limits, shaped like
// the arguments a JointLimits task function plus its paired JntLimits
// dynamics need: the joint's name, its position bounds, its hard
// velocity cap, and the position-margin feedback gain.
type JointLimitPreload struct {
	JointName string  `mapstructure:"joint_name"`
	Priority  int     `mapstructure:"priority"`
	QMin      float64 `mapstructure:"q_min"`
	QMax      float64 `mapstructure:"q_max"`
	DQMax     float64 `mapstructure:"dq_max"`
	Gain      float64 `mapstructure:"gain"`
}

// PrimitivePreload is one entry of preload_geometric_primitives,
// shaped like the command surface's set_primitive call.
type PrimitivePreload struct {
	Name    string     `mapstructure:"name"`
	Type    string     `mapstructure:"type"`
	FrameID string     `mapstructure:"frame_id"`
	Visible bool       `mapstructure:"visible"`
	Color   [4]float64 `mapstructure:"color"`
	Params  []string   `mapstructure:"params"`
}

// TaskPreload is one entry of preload_tasks, shaped like the command
// surface's set_task call.
type TaskPreload struct {
	Name      string   `mapstructure:"name"`
	Type      string   `mapstructure:"type"`
	DynType   string   `mapstructure:"dyn_type"`
	Priority  int      `mapstructure:"priority"`
	Visible   bool     `mapstructure:"visible"`
	Active    bool     `mapstructure:"active"`
	Monitored bool     `mapstructure:"monitored"`
	DefParams []string `mapstructure:"def_params"`
	DynParams []string `mapstructure:"dyn_params"`
}

// Monitoring is the nested monitoring.* section.
type Monitoring struct {
	Active      *bool    `mapstructure:"active"`
	PublishRate *float64 `mapstructure:"publish_rate"`
}

// Tuning is the root configuration. Every scalar field is an optional
// pointer: a field omitted from the config file keeps its
// EmptyTuning() zero value, and Resolve fills in the documented
// default for anything still nil after loading. Preload lists and
// joints are not pointerized — an omitted list is simply empty.
type Tuning struct {
	DLSEta                 *float64 `mapstructure:"dls_eta"`
	DefaultJointVelocity   *float64 `mapstructure:"default_joint_velocity_cap"`
	ActiveRowEpsilon       *float64 `mapstructure:"active_row_epsilon"`
	InfeasibilityTolerance *float64 `mapstructure:"infeasibility_tolerance"`
	OracleEndpoint         *string  `mapstructure:"oracle_endpoint"`
	VisualizerListenAddr   *string  `mapstructure:"visualizer_listen_addr"`
	CommandSurfaceAddr     *string  `mapstructure:"command_surface_addr"`
	TickInterval           *string  `mapstructure:"tick_interval"` // duration string like "10ms"

	Joints                     []string            `mapstructure:"joints"`
	RobotDescription           string              `mapstructure:"robot_description"`
	Monitoring                 Monitoring          `mapstructure:"monitoring"`
	PreloadJointLimits         []JointLimitPreload `mapstructure:"preload_joint_limits"`
	PreloadGeometricPrimitives []PrimitivePreload  `mapstructure:"preload_geometric_primitives"`
	PreloadTasks               []TaskPreload       `mapstructure:"preload_tasks"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrBool(v bool) *bool          { return &v }

// EmptyTuning returns a Tuning with every field nil.
func EmptyTuning() *Tuning { return &Tuning{} }

// Resolved is Tuning with every field defaulted and parsed to its
// native type, used by the rest of the program.
type Resolved struct {
	DLSEta                 float64
	DefaultJointVelocity   float64
	ActiveRowEpsilon       float64
	InfeasibilityTolerance float64
	OracleEndpoint         string
	VisualizerListenAddr   string
	CommandSurfaceAddr     string
	TickInterval           string

	Joints                     []string
	RobotDescription           string
	MonitoringActive           bool
	MonitoringPublishRate      float64
	PreloadJointLimits         []JointLimitPreload
	PreloadGeometricPrimitives []PrimitivePreload
	PreloadTasks               []TaskPreload
}

// Resolve fills in defaults for any nil field and validates ranges.
func (t *Tuning) Resolve() (Resolved, error) {
	r := Resolved{
		DLSEta:                     0.01,
		DefaultJointVelocity:       1.0,
		ActiveRowEpsilon:           0.0,
		InfeasibilityTolerance:     1e-6,
		OracleEndpoint:             "",
		VisualizerListenAddr:       "localhost:50061",
		CommandSurfaceAddr:         "localhost:8080",
		TickInterval:               "10ms",
		Joints:                     t.Joints,
		RobotDescription:           t.RobotDescription,
		MonitoringActive:           true,
		MonitoringPublishRate:      10.0,
		PreloadJointLimits:         t.PreloadJointLimits,
		PreloadGeometricPrimitives: t.PreloadGeometricPrimitives,
		PreloadTasks:               t.PreloadTasks,
	}
	if t.Monitoring.Active != nil {
		r.MonitoringActive = *t.Monitoring.Active
	}
	if t.Monitoring.PublishRate != nil {
		r.MonitoringPublishRate = *t.Monitoring.PublishRate
	}
	if t.DLSEta != nil {
		r.DLSEta = *t.DLSEta
	}
	if t.DefaultJointVelocity != nil {
		r.DefaultJointVelocity = *t.DefaultJointVelocity
	}
	if t.ActiveRowEpsilon != nil {
		r.ActiveRowEpsilon = *t.ActiveRowEpsilon
	}
	if t.InfeasibilityTolerance != nil {
		r.InfeasibilityTolerance = *t.InfeasibilityTolerance
	}
	if t.OracleEndpoint != nil {
		r.OracleEndpoint = *t.OracleEndpoint
	}
	if t.VisualizerListenAddr != nil {
		r.VisualizerListenAddr = *t.VisualizerListenAddr
	}
	if t.CommandSurfaceAddr != nil {
		r.CommandSurfaceAddr = *t.CommandSurfaceAddr
	}
	if t.TickInterval != nil {
		r.TickInterval = *t.TickInterval
	}
	if r.DLSEta < 0 {
		return Resolved{}, fmt.Errorf("dls_eta must be >= 0, got %v", r.DLSEta)
	}
	if r.DefaultJointVelocity <= 0 {
		return Resolved{}, fmt.Errorf("default_joint_velocity_cap must be > 0, got %v", r.DefaultJointVelocity)
	}
	if r.InfeasibilityTolerance < 0 {
		return Resolved{}, fmt.Errorf("infeasibility_tolerance must be >= 0, got %v", r.InfeasibilityTolerance)
	}
	if r.MonitoringPublishRate <= 0 {
		return Resolved{}, fmt.Errorf("monitoring.publish_rate must be > 0, got %v", r.MonitoringPublishRate)
	}
	return r, nil
}

// Loader owns a viper instance watching one config file and notifies
// subscribers whenever a reload produces a validated Resolved config.
type Loader struct {
	v  *viper.Viper
	mu sync.Mutex
	on []func(Resolved)
}

// NewLoader builds a Loader reading path (any format viper supports:
// yaml, json, toml). It does not read the file yet — call Load.
func NewLoader(path string) *Loader {
	v := viper.New()
	v.SetConfigFile(path)
	return &Loader{v: v}
}

// OnReload registers a callback invoked (after Load or a filesystem
// change via Watch) with the newly resolved config.
func (l *Loader) OnReload(f func(Resolved)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.on = append(l.on, f)
}

// Load reads and resolves the config file once.
func (l *Loader) Load() (Resolved, error) {
	if err := l.v.ReadInConfig(); err != nil {
		return Resolved{}, fmt.Errorf("config: %w", err)
	}
	t := EmptyTuning()
	if err := l.v.Unmarshal(t); err != nil {
		return Resolved{}, fmt.Errorf("config: %w", err)
	}
	r, err := t.Resolve()
	if err != nil {
		return Resolved{}, err
	}
	l.notify(r)
	return r, nil
}

// Watch starts fsnotify-driven hot reload: every write to the config
// file re-runs Load and fans the result out to every OnReload
// subscriber. Malformed reloads are logged and otherwise ignored —
// the last good Resolved config stays in effect.
func (l *Loader) Watch() error {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if _, err := l.Load(); err != nil {
			log.Printf("[config] reload of %s failed, keeping previous config: %v", e.Name, err)
		}
	})
	l.v.WatchConfig()
	return nil
}

func (l *Loader) notify(r Resolved) {
	l.mu.Lock()
	subs := append([]func(Resolved){}, l.on...)
	l.mu.Unlock()
	for _, f := range subs {
		f(r)
	}
}
