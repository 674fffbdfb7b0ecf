// Package spring implements the per-frame spring animation engine.
//
// A spring chases a target with the damped oscillator of [physics.Oscillator]
// and is advanced by the host once per frame (or per fixed tick) through
// Step(dt). Four shapes are provided:
//
//   - [Scalar]: one axis; the building block of every other spring
//   - [Vector]: N independent axes behind a [Codec] for the host tuple type
//     ([NewVector2], [NewVector3], [NewVector4], [NewColor])
//   - [Rotation]: unit quaternions driven through a rotation-vector spring
//   - [Clamp]: the per-axis range policy shared by Scalar and Vector
//
// # Integration
//
// Each spring owns an [integrators.Switch]. In auto mode springs are stepped
// with semi-implicit Euler and switch to the closed-form solution once the
// force exceeds TuningConfig.MaxForceBeforeAnalyticalIntegration or
// sqrt(force)*dt exceeds TuningConfig.MaxFrequencyStep.
//
// # Bad input
//
// Springs never return errors or panic on bad numbers. NaN or Inf values are
// rejected with a logged warning and leave the spring untouched, negative
// force or drag is clamped to zero, and a zero, negative or non-finite dt is
// ignored.
//
// # Events
//
// [Events] fires on edges of two automata: rest/moving for the whole spring
// and clamped/unclamped per axis. Edges are evaluated after Step and after
// ReachEquilibrium.
//
//	s := spring.NewScalar(dynamo.DefaultTuning())
//	cancel := s.Events().Subscribe(func(ev spring.Event) {
//		if ev.Kind == spring.EventRest {
//			log.Println("settled")
//		}
//	})
//	defer cancel()
package spring
