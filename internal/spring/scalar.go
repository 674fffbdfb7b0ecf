package spring

import (
	"log"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/physics"
)

func warnf(format string, args ...any) {
	log.Printf("spring: "+format, args...)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validStep(dt float64) bool {
	return dt > 0 && !math.IsInf(dt, 0)
}

// nonNegative returns v, or 0 with a warning when v is negative.
// ok is false for NaN or Inf.
func nonNegative(name string, v float64) (float64, bool) {
	if !finite(v) {
		warnf("ignoring non-finite %s %g", name, v)
		return 0, false
	}
	if v < 0 {
		warnf("negative %s %g clamped to 0", name, v)
		return 0, true
	}
	return v, true
}

// Scalar is a single-axis spring.
type Scalar struct {
	current  float64
	target   float64
	velocity float64
	force    float64
	drag     float64
	clamp    Clamp

	enabled     bool
	initialized bool
	clamped     bool
	elapsed     float64

	tuning  dynamo.TuningConfig
	osc     *physics.Oscillator
	integ   *integrators.Switch
	state   dynamo.State
	control dynamo.Control
	flags   [1]bool
	events  Events
}

func NewScalar(tuning dynamo.TuningConfig) *Scalar {
	return &Scalar{
		force:   physics.DefaultForce,
		drag:    physics.DefaultDrag,
		clamp:   DefaultClamp(),
		enabled: true,
		tuning:  tuning,
		osc:     physics.NewOscillator(physics.DefaultForce, physics.DefaultDrag),
		integ:   integrators.NewSwitch(integrators.ModeAuto, tuning),
		state:   make(dynamo.State, 2),
		control: make(dynamo.Control, 1),
	}
}

// Initialize applies the active clamps and records the starting rest and
// clamp state. It fires no events.
func (s *Scalar) Initialize() {
	s.initialized = true
	s.clamped = false
	if s.clamp.ClampTarget {
		s.target, _ = s.clamp.Limit(s.target)
	}
	if s.clamp.ClampCurrent {
		s.current, _ = s.clamp.Limit(s.current)
	}
	s.flags[0] = s.clamped
	s.events.prime(s.IsAtRest(), s.flags[:])
}

func (s *Scalar) Initialized() bool { return s.initialized }

func (s *Scalar) SetTuning(tuning dynamo.TuningConfig) {
	s.tuning = tuning
	s.integ.SetTuning(tuning)
}

func (s *Scalar) Tuning() dynamo.TuningConfig { return s.tuning }

func (s *Scalar) SetTarget(v float64) {
	if !finite(v) {
		warnf("ignoring non-finite target %g", v)
		return
	}
	if s.clamp.ClampTarget {
		v, _ = s.clamp.Limit(v)
	}
	s.target = v
}

func (s *Scalar) Target() float64 { return s.target }

func (s *Scalar) SetCurrentValue(v float64) {
	if !finite(v) {
		warnf("ignoring non-finite current value %g", v)
		return
	}
	if s.clamp.ClampCurrent {
		v, _ = s.clamp.Limit(v)
	}
	s.current = v
}

func (s *Scalar) CurrentValue() float64 { return s.current }

func (s *Scalar) SetVelocity(v float64) {
	if !finite(v) {
		warnf("ignoring non-finite velocity %g", v)
		return
	}
	s.velocity = v
}

func (s *Scalar) AddVelocity(delta float64) {
	if !finite(delta) || !finite(s.velocity+delta) {
		warnf("ignoring non-finite velocity delta %g", delta)
		return
	}
	s.velocity += delta
}

func (s *Scalar) Velocity() float64 { return s.velocity }

func (s *Scalar) SetForce(f float64) {
	if f, ok := nonNegative("force", f); ok {
		s.force = f
	}
}

func (s *Scalar) Force() float64 { return s.force }

func (s *Scalar) SetDrag(d float64) {
	if d, ok := nonNegative("drag", d); ok {
		s.drag = d
	}
}

func (s *Scalar) Drag() float64 { return s.drag }

// SetMinValue moves the lower bound (raising the upper one if needed) and
// re-applies the active clamps.
func (s *Scalar) SetMinValue(v float64) {
	if !finite(v) {
		warnf("ignoring non-finite min value %g", v)
		return
	}
	s.clamp.SetMin(v)
	s.reclamp()
}

func (s *Scalar) SetMaxValue(v float64) {
	if !finite(v) {
		warnf("ignoring non-finite max value %g", v)
		return
	}
	s.clamp.SetMax(v)
	s.reclamp()
}

func (s *Scalar) MinValue() float64 { return s.clamp.Min }
func (s *Scalar) MaxValue() float64 { return s.clamp.Max }

func (s *Scalar) SetClampCurrentValue(on bool) {
	s.clamp.ClampCurrent = on
	s.reclamp()
}

func (s *Scalar) ClampCurrentValue() bool { return s.clamp.ClampCurrent }

func (s *Scalar) SetClampTarget(on bool) {
	s.clamp.ClampTarget = on
	s.reclamp()
}

func (s *Scalar) ClampTarget() bool { return s.clamp.ClampTarget }

func (s *Scalar) SetStopOnClamp(on bool) { s.clamp.StopOnClamp = on }
func (s *Scalar) StopOnClamp() bool      { return s.clamp.StopOnClamp }

// Clamp returns a copy of the range policy.
func (s *Scalar) Clamp() Clamp { return s.clamp }

func (s *Scalar) reclamp() {
	if s.clamp.ClampTarget {
		s.target, _ = s.clamp.Limit(s.target)
	}
	if s.clamp.ClampCurrent {
		s.current, _ = s.clamp.Limit(s.current)
	}
}

func (s *Scalar) SetEnabled(on bool) { s.enabled = on }
func (s *Scalar) Enabled() bool      { return s.enabled }

func (s *Scalar) SetIntegrationMode(mode integrators.Mode) { s.integ.SetMode(mode) }
func (s *Scalar) IntegrationMode() integrators.Mode        { return s.integ.Mode() }

// SetNumericalIntegrator replaces the integrator used below the analytical
// threshold; nil restores semi-implicit Euler.
func (s *Scalar) SetNumericalIntegrator(integ dynamo.Integrator) {
	s.integ.SetNumerical(integ)
}

// UsesAnalytical reports whether a step of dt would take the closed-form path.
func (s *Scalar) UsesAnalytical(dt float64) bool {
	return s.integ.UseAnalytical(s.force, dt)
}

// Step advances the spring by dt seconds.
func (s *Scalar) Step(dt float64) {
	if !s.enabled || !validStep(dt) {
		return
	}
	if !s.initialized {
		s.Initialize()
	}
	s.advance(dt)
	s.notify()
}

// advance integrates and clamps without evaluating events.
func (s *Scalar) advance(dt float64) {
	s.osc.Force, s.osc.Drag = s.force, s.drag
	s.state[0], s.state[1] = s.current, s.velocity
	s.control[0] = s.target

	next := s.integ.Step(s.osc, s.state, s.control, s.elapsed, dt)
	if !next.IsValid() {
		warnf("discarding non-finite step (force=%g drag=%g dt=%g)", s.force, s.drag, dt)
		return
	}

	s.current, s.velocity = next[0], next[1]
	s.elapsed += dt
	s.clamped = false

	if !s.clamp.ClampCurrent {
		return
	}
	if v, hit := s.clamp.Limit(s.current); hit {
		s.current = v
		s.clamped = true
		if s.clamp.StopOnClamp {
			s.velocity = 0
		}
	}
}

func (s *Scalar) notify() {
	s.flags[0] = s.clamped
	s.events.update(s.IsAtRest(), s.flags[:])
}

// ReachEquilibrium snaps to the target with zero velocity. With ClampCurrent
// set the value stays inside the range even when the target is outside it.
func (s *Scalar) ReachEquilibrium() {
	s.snap()
	s.notify()
}

func (s *Scalar) snap() {
	s.current = s.target
	s.velocity = 0
	s.clamped = false
	if s.clamp.ClampCurrent {
		s.current, _ = s.clamp.Limit(s.current)
	}
}

// IsAtRest reports whether both speed and distance to the target are within
// the tuning's rest thresholds.
func (s *Scalar) IsAtRest() bool {
	return math.Abs(s.velocity) <= s.tuning.RestVelocity &&
		math.Abs(s.target-s.current) <= s.tuning.RestDistance
}

// IsClamped reports whether the last step hit a bound.
func (s *Scalar) IsClamped() bool { return s.clamped }

func (s *Scalar) Events() *Events { return &s.events }

// Elapsed is the simulated time integrated so far.
func (s *Scalar) Elapsed() float64 { return s.elapsed }

// Sample returns the state as [value, velocity] and the target as the control.
func (s *Scalar) Sample() (dynamo.State, dynamo.Control) {
	return dynamo.State{s.current, s.velocity}, dynamo.Control{s.target}
}

// Retarget sets the target from u[0]; an empty control is ignored.
func (s *Scalar) Retarget(u dynamo.Control) {
	if len(u) > 0 {
		s.SetTarget(u[0])
	}
}
