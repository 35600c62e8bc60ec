// Package taskdyn implements the task dynamics catalogue: strategies
// that turn a task function's current error e (and the target e_final
// it reports) into a desired error rate ė*.
package taskdyn

import (
	"fmt"
	"time"

	"github.com/taskstack/hqpik/internal/hqperr"
	"github.com/taskstack/hqpik/internal/paramutil"
)

// Dynamics is the contract every dynamics kind satisfies. Build
// parses def_params; Init is called once with the sampled e_initial
// and e_final; Update is called every tick with the function's
// current e and the tick's time point.
type Dynamics interface {
	Build(params []string) error
	Init(eInitial, eFinal []float64) error
	Update(e []float64, now time.Time) ([]float64, error)
	Monitor() []float64
}

// New dispatches on the exact type-name strings of §6: "FirstOrder",
// "MinimalJerk", "JntLimits".
func New(typeName string) (Dynamics, error) {
	switch typeName {
	case "FirstOrder":
		return &FirstOrder{}, nil
	case "MinimalJerk":
		return &MinimalJerk{}, nil
	case "JntLimits":
		return &JntLimits{}, nil
	default:
		return nil, hqperr.New(hqperr.ConfigError, typeName, "unknown dynamics type")
	}
}

// FirstOrder implements ė* = -λ·e.
type FirstOrder struct {
	lambda float64
	rows   int
}

func (d *FirstOrder) Build(params []string) error {
	if len(params) != 1 {
		return hqperr.New(hqperr.ConfigError, "FirstOrder", fmt.Sprintf("requires 1 parameter, got %d", len(params)))
	}
	v, err := paramutil.ParseFloat(params[0])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, "FirstOrder", err)
	}
	d.lambda = v
	return nil
}

func (d *FirstOrder) Init(eInitial, eFinal []float64) error {
	d.rows = len(eInitial)
	return nil
}

func (d *FirstOrder) Update(e []float64, now time.Time) ([]float64, error) {
	if len(e) != d.rows {
		return nil, hqperr.New(hqperr.DimensionError, "FirstOrder", "row count changed after init")
	}
	out := make([]float64, len(e))
	for i, v := range e {
		out[i] = -d.lambda * v
	}
	return out, nil
}

func (d *FirstOrder) Monitor() []float64 { return nil }

// MinimalJerk implements a smooth quintic profile from e_initial to 0
// over horizon T, switching to -λ·e steady state once the horizon
// elapses.
type MinimalJerk struct {
	horizon  float64
	lambda   float64
	eInitial []float64
	start    time.Time
	started  bool
}

func (d *MinimalJerk) Build(params []string) error {
	if len(params) != 2 {
		return hqperr.New(hqperr.ConfigError, "MinimalJerk", fmt.Sprintf("requires 2 parameters, got %d", len(params)))
	}
	T, err := paramutil.ParseFloat(params[0])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, "MinimalJerk", err)
	}
	lambda, err := paramutil.ParseFloat(params[1])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, "MinimalJerk", err)
	}
	if T <= 0 {
		return hqperr.New(hqperr.ConfigError, "MinimalJerk", "horizon T must be positive")
	}
	d.horizon, d.lambda = T, lambda
	return nil
}

func (d *MinimalJerk) Init(eInitial, eFinal []float64) error {
	d.eInitial = append([]float64{}, eInitial...)
	d.started = false
	return nil
}

func (d *MinimalJerk) Update(e []float64, now time.Time) ([]float64, error) {
	if len(e) != len(d.eInitial) {
		return nil, hqperr.New(hqperr.DimensionError, "MinimalJerk", "row count changed after init")
	}
	if !d.started {
		d.start = now
		d.started = true
	}

	elapsed := now.Sub(d.start).Seconds()
	out := make([]float64, len(e))

	if elapsed >= d.horizon {
		for i, v := range e {
			out[i] = -d.lambda * v
		}
		return out, nil
	}

	tau := elapsed / d.horizon
	sdot := 30*tau*tau - 60*tau*tau*tau + 30*tau*tau*tau*tau // d/dtau of 10τ³-15τ⁴+6τ⁵
	for i := range e {
		out[i] = -d.eInitial[i] * sdot / d.horizon
	}
	return out, nil
}

func (d *MinimalJerk) Monitor() []float64 { return nil }

// JntLimits pairs with the JointLimits task function: rows 0,1 are
// hard velocity caps; rows 2,3 push back from the position limits.
// Its def_params are (joint_name, dq_max, gain) — index 0 is consumed
// by the paired JointLimits function, not by the dynamics itself.
type JntLimits struct {
	dqMax float64
	gain  float64
}

func (d *JntLimits) Build(params []string) error {
	if len(params) != 3 {
		return hqperr.New(hqperr.ConfigError, "JntLimits", fmt.Sprintf("requires 3 parameters, got %d", len(params)))
	}
	dqMax, err := paramutil.ParseFloat(params[1])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, "JntLimits", err)
	}
	gain, err := paramutil.ParseFloat(params[2])
	if err != nil {
		return hqperr.Wrap(hqperr.ConfigError, "JntLimits", err)
	}
	d.dqMax, d.gain = dqMax, gain
	return nil
}

func (d *JntLimits) Init(eInitial, eFinal []float64) error {
	if len(eInitial) != 4 {
		return hqperr.New(hqperr.DimensionError, "JntLimits", "expected a 4-row JointLimits function")
	}
	return nil
}

func (d *JntLimits) Update(e []float64, now time.Time) ([]float64, error) {
	if len(e) != 4 {
		return nil, hqperr.New(hqperr.DimensionError, "JntLimits", "expected a 4-row JointLimits function")
	}
	return []float64{
		-d.dqMax,
		d.dqMax,
		-d.gain * e[2],
		-d.gain * e[3],
	}, nil
}

func (d *JntLimits) Monitor() []float64 { return nil }
