package control

import "github.com/san-kum/springsim/internal/dynamo"

// Hold leaves targets as they were set before the run.
type Hold struct{}

func NewHold() *Hold {
	return &Hold{}
}

func (h *Hold) Compute(x dynamo.State, t float64) dynamo.Control {
	return nil
}
