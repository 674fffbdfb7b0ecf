package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Simulator records a Probe frame by frame through its own Driver.
type Simulator struct {
	probe      Probe
	controller dynamo.Controller
	driver     *Driver
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(probe Probe, controller dynamo.Controller, tuning dynamo.TuningConfig) *Simulator {
	driver := NewDriver(tuning)
	driver.Register(probe)
	return &Simulator{
		probe:      probe,
		controller: controller,
		driver:     driver,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Driver() *Driver { return s.driver }
func (s *Simulator) Probe() Probe    { return s.probe }

// retarget asks the controller for new targets and resamples if it gave any.
func (s *Simulator) retarget(x dynamo.State, u dynamo.Control, t float64) (dynamo.State, dynamo.Control) {
	if s.controller == nil {
		return x, u
	}
	if next := s.controller.Compute(x, t); len(next) > 0 {
		s.probe.Retarget(next)
		return s.probe.Sample()
	}
	return x, u
}

func (s *Simulator) Run(ctx context.Context, cfg dynamo.RunConfig) (*dynamo.Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := frames(cfg)
	result := &dynamo.Result{
		States:   make([]dynamo.State, 0, steps+1),
		Controls: make([]dynamo.Control, 0, steps+1),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	x, u := s.probe.Sample()
	x, u = s.retarget(x, u, t)

	result.States = append(result.States, x.Clone())
	result.Controls = append(result.Controls, u.Clone())
	result.Times = append(result.Times, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if i > 0 {
			x, u = s.retarget(x, u, t)
		}

		for _, m := range s.metrics {
			m.Observe(x, u, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, u, t)
		}

		s.driver.Update(cfg.Dt)
		t += cfg.Dt
		x, u = s.probe.Sample()

		if cfg.ValidateState && !x.IsValid() {
			err := &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrInvalidValue}
			result.Errors = append(result.Errors, err)
			return result, err
		}

		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Controls = append(result.Controls, u.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		m.Observe(x, u, t)
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// RunWithCallback steps like Run without recording; callback returning
// false stops the run early.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg dynamo.RunConfig, callback func(dynamo.State, dynamo.Control, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	t := 0.0
	x, u := s.probe.Sample()
	for i := 0; i < frames(cfg); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		x, u = s.retarget(x, u, t)
		if !callback(x, u, t) {
			return nil
		}

		s.driver.Update(cfg.Dt)
		t += cfg.Dt
		x, u = s.probe.Sample()

		if cfg.ValidateState && !x.IsValid() {
			return &dynamo.SimulationError{Step: i, Time: t, State: x, Wrapped: dynamo.ErrInvalidValue}
		}
	}

	callback(x, u, t)
	return nil
}

func (s *Simulator) validateConfig(cfg dynamo.RunConfig) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, cfg.Duration)
	}
	return nil
}

func frames(cfg dynamo.RunConfig) int {
	return int(math.Floor(cfg.Duration/cfg.Dt + 1e-9))
}
