package spring

// Clamp is the range policy of one axis. ClampCurrent limits the live value
// after every step and every SetCurrentValue, ClampTarget limits what is
// accepted as a destination.
type Clamp struct {
	Min          float64
	Max          float64
	ClampCurrent bool
	ClampTarget  bool
	StopOnClamp  bool
}

func DefaultClamp() Clamp {
	return Clamp{Min: 0, Max: 1}
}

// Limit returns v restricted to [Min, Max] and whether it had to move.
func (c Clamp) Limit(v float64) (float64, bool) {
	if v < c.Min {
		return c.Min, true
	}
	if v > c.Max {
		return c.Max, true
	}
	return v, false
}

// SetMin moves the lower bound, raising Max when needed to keep Min <= Max.
func (c *Clamp) SetMin(v float64) {
	c.Min = v
	if c.Max < v {
		c.Max = v
	}
}

// SetMax moves the upper bound, lowering Min when needed to keep Min <= Max.
func (c *Clamp) SetMax(v float64) {
	c.Max = v
	if c.Min > v {
		c.Min = v
	}
}
