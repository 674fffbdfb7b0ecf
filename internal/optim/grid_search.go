package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/sim"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Candidate is one evaluated point of the grid.
type Candidate struct {
	Params  map[string]float64
	Score   float64
	Metrics map[string]float64
}

// Combinations enumerates the grid, last parameter varying fastest.
func (g *GridSearch) Combinations() []map[string]float64 {
	var out []map[string]float64
	g.combine(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) combine(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		*out = append(*out, params)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.combine(depth+1, current, out)
	}
	delete(current, paramName)
}

// Evaluate runs every combination concurrently and returns the candidates
// ordered best first. Lower scores are better.
func (g *GridSearch) Evaluate(
	ctx context.Context,
	cfg dynamo.RunConfig,
	build func(params map[string]float64) (*sim.Simulator, error),
	metricName string,
) ([]Candidate, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("%w: %d parameters but %d ranges", dynamo.ErrDimensionMismatch, len(g.paramNames), len(g.ranges))
	}

	combos := g.Combinations()
	if len(combos) == 0 {
		return nil, fmt.Errorf("%w: empty search grid", dynamo.ErrParameterBounds)
	}

	ensemble := sim.NewEnsemble(len(combos), func(i int) (*sim.Simulator, error) {
		return build(combos[i])
	})
	results, err := ensemble.Run(ctx, cfg)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(combos))
	for i, res := range results {
		candidates[i] = Candidate{
			Params:  combos[i],
			Score:   Score(res.Metrics, metricName),
			Metrics: res.Metrics,
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score < candidates[j].Score })
	return candidates, nil
}

func (g *GridSearch) Search(
	ctx context.Context,
	cfg dynamo.RunConfig,
	build func(params map[string]float64) (*sim.Simulator, error),
	metricName string,
) (map[string]float64, float64, error) {
	candidates, err := g.Evaluate(ctx, cfg, build, metricName)
	if err != nil {
		return nil, math.Inf(1), err
	}
	best := candidates[0]
	return best.Params, best.Score, nil
}

// Score maps a metric onto a value to minimise. Missing or non-finite
// metrics and runs that never settled score +Inf; stability is inverted so
// fully stable runs score 0.
func Score(m map[string]float64, name string) float64 {
	v, ok := m[name]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return math.Inf(1)
	}
	switch name {
	case "settle_time":
		if v == metrics.NotSettled {
			return math.Inf(1)
		}
	case "stability":
		return 1 - v
	}
	return v
}
