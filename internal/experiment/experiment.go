package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

// Experiment runs one spring of a Config offline.
type Experiment struct {
	cfg       *config.Config
	spring    *config.SpringConfig
	probe     Spring
	simulator *sim.Simulator
}

// New selects the spring called name, or the first one when name is empty.
func New(cfg *config.Config, name string) (*Experiment, error) {
	if len(cfg.Springs) == 0 {
		return nil, fmt.Errorf("%w: config has no springs", dynamo.ErrParameterBounds)
	}
	sc := &cfg.Springs[0]
	if name != "" {
		if sc = cfg.Find(name); sc == nil {
			return nil, fmt.Errorf("%w: no spring named %q", dynamo.ErrUnknownKind, name)
		}
	}
	return &Experiment{cfg: cfg, spring: sc}, nil
}

// Setup builds the spring, its schedule and metrics. Extra metrics are
// added after the defaults.
func (e *Experiment) Setup(reg *Registry, extra ...dynamo.Metric) error {
	probe, err := reg.Build(e.spring, e.cfg)
	if err != nil {
		return err
	}
	schedule, err := reg.BuildSchedule(e.spring, probe)
	if err != nil {
		return err
	}

	e.probe = probe
	e.simulator = sim.New(probe, schedule, e.cfg.Tuning)
	for _, m := range reg.DefaultMetrics(e.spring) {
		e.simulator.AddMetric(m)
	}
	for _, m := range extra {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.Run)
}

func (e *Experiment) Config() *config.Config       { return e.cfg }
func (e *Experiment) Spring() *config.SpringConfig { return e.spring }
func (e *Experiment) Probe() Spring                { return e.probe }

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}
