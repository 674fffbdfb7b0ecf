package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

// Energy is the mean spring energy per unit mass over the run.
type Energy struct {
	name        string
	osc         *physics.Oscillator
	samples     int
	totalEnergy float64
}

func NewEnergy(force float64) *Energy {
	return &Energy{
		name: "energy",
		osc:  physics.NewOscillator(force, 0),
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 2 {
		return
	}
	e.totalEnergy += e.osc.Energy(x, u)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// PeakEnergy is the largest energy seen relative to the first sample. A
// damped spring with a fixed target stays at or below 1; integrator gain
// shows up as values above it.
type PeakEnergy struct {
	name          string
	sys           dynamo.Hamiltonian
	initialEnergy float64
	peak          float64
	samples       int
}

func NewPeakEnergy(sys dynamo.Hamiltonian) *PeakEnergy {
	return &PeakEnergy{
		name: "peak_energy",
		sys:  sys,
	}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	energy := e.sys.Energy(x, u)
	if math.IsNaN(energy) || math.IsInf(energy, 0) {
		return
	}

	e.samples++
	if e.samples == 1 {
		e.initialEnergy = energy
		return
	}

	if e.initialEnergy > 0 {
		e.peak = math.Max(e.peak, energy/e.initialEnergy)
	}
}

func (e *PeakEnergy) Value() float64 {
	if e.samples == 0 || e.initialEnergy == 0 {
		return 0
	}
	return math.Max(e.peak, 1)
}

func (e *PeakEnergy) Reset() {
	e.initialEnergy = 0
	e.peak = 0
	e.samples = 0
}
