// Package dynamo provides the core primitives shared by the spring engine.
//
// The package defines the fundamental interfaces and types for advancing
// damped oscillators toward their targets:
//
//   - [State]: vector of positions followed by velocities
//   - [Control]: vector of targets, one per position
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Linear]: a System that is a linear mass-spring-damper
//   - [Integrator]: numerical integrator interface
//   - [TuningConfig]: process-wide stepping and stability knobs
//
// # Example
//
//	osc := physics.NewOscillator(150, 10)
//	integ := integrators.NewSwitch(integrators.ModeAuto, dynamo.DefaultTuning())
//	x = integ.Step(osc, dynamo.State{0, 0}, dynamo.Control{1}, 0, 1.0/60)
//
// # Thread Safety
//
// Nothing in this package or its users spawns goroutines. Springs are owned
// and stepped by a single caller; sharing one across goroutines needs
// external locking.
package dynamo
