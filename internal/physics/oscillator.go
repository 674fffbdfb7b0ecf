package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	DefaultForce = 150.0
	DefaultDrag  = 10.0
)

// Oscillator is a bank of independent damped springs sharing force and drag.
// State is [x_1..x_n, v_1..v_n]; control is [target_1..target_n].
type Oscillator struct {
	Axes  int
	Force float64
	Drag  float64
}

func NewOscillator(force, drag float64) *Oscillator {
	return &Oscillator{Axes: 1, Force: force, Drag: drag}
}

func NewOscillatorBank(n int, force, drag float64) *Oscillator {
	if n < 1 {
		n = 1
	}
	return &Oscillator{Axes: n, Force: force, Drag: drag}
}

func (o *Oscillator) StateDim() int   { return o.Axes * 2 }
func (o *Oscillator) ControlDim() int { return o.Axes }

func (o *Oscillator) Stiffness() float64 { return o.Force }
func (o *Oscillator) Damping() float64   { return o.Drag }

func (o *Oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n := len(x) / 2
	dx := make(dynamo.State, len(x))

	for i := 0; i < n; i++ {
		pos, vel := x[i], x[n+i]
		target := 0.0
		if i < len(u) {
			target = u[i]
		}
		dx[i] = vel
		dx[n+i] = o.Force*(target-pos) - o.Drag*vel
	}

	return dx
}

// Energy is the kinetic plus potential energy per unit mass, relative to the targets.
func (o *Oscillator) Energy(x dynamo.State, u dynamo.Control) float64 {
	n := len(x) / 2
	energy := 0.0

	for i := 0; i < n; i++ {
		target := 0.0
		if i < len(u) {
			target = u[i]
		}
		stretch := x[i] - target
		v := x[n+i]
		energy += 0.5*v*v + 0.5*o.Force*stretch*stretch
	}

	return energy
}

// NaturalFrequency returns omega = sqrt(force) in rad/s.
func (o *Oscillator) NaturalFrequency() float64 {
	return math.Sqrt(math.Max(o.Force, 0))
}

// DampingRatio returns zeta = drag / (2*omega); +Inf when force is zero.
func (o *Oscillator) DampingRatio() float64 {
	omega := o.NaturalFrequency()
	if omega == 0 {
		return math.Inf(1)
	}
	return o.Drag / (2 * omega)
}

// DampedFrequency returns omega*sqrt(1-zeta^2) in rad/s, or 0 when the
// oscillator is critically or over damped.
func (o *Oscillator) DampedFrequency() float64 {
	zeta := o.DampingRatio()
	if zeta >= 1 {
		return 0
	}
	return o.NaturalFrequency() * math.Sqrt(1-zeta*zeta)
}

func (o *Oscillator) GetParams() map[string]float64 {
	return map[string]float64{
		"force": o.Force,
		"drag":  o.Drag,
	}
}

func (o *Oscillator) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return fmt.Errorf("%w: %s must be finite and >= 0, got %g", dynamo.ErrParameterBounds, name, value)
	}
	switch name {
	case "force":
		o.Force = value
	case "drag":
		o.Drag = value
	default:
		return fmt.Errorf("%w: unknown parameter %q", dynamo.ErrParameterBounds, name)
	}
	return nil
}
