// Package control provides target schedules for springs.
//
// A schedule implements [dynamo.Controller]: each frame it is asked for the
// targets a spring should chase at time t. An empty [dynamo.Control] means
// "keep the current targets".
//
//   - [Hold]: never retargets
//   - [Keyframes]: steps through timed targets
//   - [Oscillate]: sweeps targets along a sine wave
//   - [Manual]: returns whatever the user last set
//
// # Usage
//
//	sched := control.NewKeyframes(
//		control.Keyframe{Time: 0, Target: []float64{1}},
//		control.Keyframe{Time: 2, Target: []float64{0}},
//	)
//	sim := sim.New(probe, sched, tuning)
//
// Schedules implementing [dynamo.Configurable] support live tuning.
package control
