package sim

import (
	"context"
	"sync"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Ensemble runs independent simulations concurrently. Each run builds its
// own Simulator, so no spring is ever shared between goroutines.
type Ensemble struct {
	build   func(i int) (*Simulator, error)
	numRuns int
}

func NewEnsemble(numRuns int, build func(i int) (*Simulator, error)) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns}
}

// Run returns results in build order, or the first error.
func (e *Ensemble) Run(ctx context.Context, cfg dynamo.RunConfig) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			sim, err := e.build(idx)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
