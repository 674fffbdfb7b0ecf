// Package physics provides the dynamical system behind every spring.
//
// [Oscillator] implements [dynamo.System] for a bank of independent
// mass-spring-damper axes pulled toward per-axis targets:
//
//	a = force*(target - x) - drag*v
//
// It also implements [dynamo.Linear], which lets the closed-form integrator
// recognise it, [dynamo.Hamiltonian] for energy monitoring and
// [dynamo.Configurable] for live tuning.
//
// # Energy
//
// With drag > 0 the energy relative to a fixed target decays monotonically
// for the exact solution:
//
//	osc := physics.NewOscillator(150, 10)
//	e := osc.Energy(dynamo.State{0, 0}, dynamo.Control{1})
package physics
