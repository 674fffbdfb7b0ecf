package control

import "github.com/san-kum/springsim/internal/dynamo"

// Manual passes a manually set target vector to the spring. Used by the live
// view when the user flips or drags the target.
type Manual struct {
	U       dynamo.Control
	pending bool
}

func NewManual(dim int) *Manual {
	return &Manual{
		U: make(dynamo.Control, dim),
	}
}

// SetControl stores u; vectors of the wrong size are ignored.
func (c *Manual) SetControl(u []float64) {
	if len(u) != len(c.U) {
		return
	}
	copy(c.U, u)
	c.pending = true
}

// Compute returns the stored targets once per SetControl, then holds.
func (c *Manual) Compute(state dynamo.State, t float64) dynamo.Control {
	if !c.pending {
		return nil
	}
	c.pending = false
	return c.U.Clone()
}
