package control

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Oscillate moves every target along center + amplitude*sin(2*pi*f*t + phase).
type Oscillate struct {
	Center    []float64
	Amplitude float64
	Frequency float64
	Phase     float64
}

func NewOscillate(center []float64, amplitude, frequency float64) *Oscillate {
	c := make([]float64, len(center))
	copy(c, center)
	return &Oscillate{
		Center:    c,
		Amplitude: amplitude,
		Frequency: frequency,
	}
}

func (o *Oscillate) Compute(x dynamo.State, t float64) dynamo.Control {
	offset := o.Amplitude * math.Sin(2*math.Pi*o.Frequency*t+o.Phase)
	u := make(dynamo.Control, len(o.Center))
	for i, c := range o.Center {
		u[i] = c + offset
	}
	return u
}

func (o *Oscillate) GetParams() map[string]float64 {
	return map[string]float64{
		"amplitude": o.Amplitude,
		"frequency": o.Frequency,
		"phase":     o.Phase,
	}
}

func (o *Oscillate) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s must be finite", dynamo.ErrParameterBounds, name)
	}
	switch name {
	case "amplitude":
		o.Amplitude = value
	case "frequency":
		if value < 0 {
			return fmt.Errorf("%w: frequency must be >= 0, got %g", dynamo.ErrParameterBounds, value)
		}
		o.Frequency = value
	case "phase":
		o.Phase = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
