package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/sim"
)

// SpringBuilder returns a builder that runs the named spring of cfg with
// force and drag taken from the grid parameters. cfg is never modified.
func SpringBuilder(cfg *config.Config, name string, reg *experiment.Registry) func(map[string]float64) (*sim.Simulator, error) {
	if reg == nil {
		reg = experiment.NewRegistry()
	}
	return func(params map[string]float64) (*sim.Simulator, error) {
		local := *cfg
		local.Springs = make([]config.SpringConfig, len(cfg.Springs))
		copy(local.Springs, cfg.Springs)

		exp, err := experiment.New(&local, name)
		if err != nil {
			return nil, err
		}
		sc := exp.Spring()
		if f, ok := params["force"]; ok {
			sc.Force = &f
		}
		if d, ok := params["drag"]; ok {
			sc.Drag = &d
		}
		if err := exp.Setup(reg); err != nil {
			return nil, err
		}
		return exp.GetSimulator(), nil
	}
}

// Tune searches force and drag for the spring called name, minimising metric.
func Tune(ctx context.Context, cfg *config.Config, name string, forces, drags []float64, metric string) ([]Candidate, error) {
	if len(forces) == 0 || len(drags) == 0 {
		return nil, fmt.Errorf("%w: tune needs at least one force and one drag", dynamo.ErrParameterBounds)
	}
	g := NewGridSearch([]string{"force", "drag"}, [][]float64{forces, drags})
	return g.Evaluate(ctx, cfg.Run, SpringBuilder(cfg, name, experiment.NewRegistry()), metric)
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}
