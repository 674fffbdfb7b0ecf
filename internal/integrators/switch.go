package integrators

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Mode selects how a Switch integrates.
type Mode int

const (
	// ModeAuto steps numerically and blends into the closed form as force or
	// omega*dt approach the tuning limits.
	ModeAuto Mode = iota
	ModeNumerical
	ModeAnalytical
)

var modeNames = []string{"auto", "numerical", "analytical"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return ModeAuto, nil
	}
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeAuto, fmt.Errorf("%w: integration mode %q (want one of %s)", dynamo.ErrUnknownKind, s, strings.Join(modeNames, ", "))
}

// blendStart is the fraction of the analytical limits at which auto mode
// starts mixing in the closed form. At the limits the mix is fully
// analytical, so the result is continuous in force.
const blendStart = 0.8

// Switch is an Integrator choosing per step between a numerical integrator
// and the closed-form solution. The numerical path is sub-stepped so that
// sqrt(maxForce)*h stays within the frequency limit; the sub-step count
// depends on dt only, never on force.
type Switch struct {
	mode        Mode
	numerical   dynamo.Integrator
	analytical  *Analytical
	maxForce    float64
	maxOmegaDt  float64
	maxSubSteps int
}

func NewSwitch(mode Mode, tuning dynamo.TuningConfig) *Switch {
	s := &Switch{
		mode:       mode,
		numerical:  NewSemiImplicitEuler(),
		analytical: NewAnalytical(),
	}
	s.SetTuning(tuning)
	return s
}

func (s *Switch) Mode() Mode        { return s.mode }
func (s *Switch) SetMode(mode Mode) { s.mode = mode }

func (s *Switch) SetTuning(tuning dynamo.TuningConfig) {
	s.maxForce = tuning.MaxForceBeforeAnalyticalIntegration
	s.maxOmegaDt = tuning.MaxFrequencyStep
	s.maxSubSteps = max(tuning.MaxSubSteps, 1)
}

// SetNumerical replaces the numerical path; nil restores SemiImplicitEuler.
func (s *Switch) SetNumerical(integ dynamo.Integrator) {
	if integ == nil {
		integ = NewSemiImplicitEuler()
	}
	s.numerical = integ
}

func (s *Switch) Numerical() dynamo.Integrator { return s.numerical }

// SubSteps is the number of numerical steps taken for one step of dt:
// ceil(sqrt(maxForce)*dt/maxOmegaDt), capped by MaxSubSteps.
func (s *Switch) SubSteps(dt float64) int {
	if !(s.maxOmegaDt > 0) || !(dt > 0) {
		return 1
	}
	n := math.Ceil(math.Sqrt(math.Max(s.maxForce, 0)) * dt / s.maxOmegaDt)
	if !(n >= 1) {
		return 1
	}
	if n > float64(s.maxSubSteps) {
		return s.maxSubSteps
	}
	return int(n)
}

// pressure is how close a spring is to the analytical limits, 1 at either
// the force limit or the per-sub-step frequency limit.
func (s *Switch) pressure(force, dt float64) float64 {
	force = math.Max(force, 0)
	p := 0.0
	if s.maxForce > 0 {
		p = force / s.maxForce
	} else if force > 0 {
		return math.Inf(1)
	}
	if s.maxOmegaDt > 0 {
		h := dt / float64(s.SubSteps(dt))
		p = math.Max(p, math.Sqrt(force)*h/s.maxOmegaDt)
	}
	return p
}

// AnalyticalWeight is the share of the closed-form result in a step: 0 well
// below the limits, rising smoothly to 1 at them.
func (s *Switch) AnalyticalWeight(force, dt float64) float64 {
	switch s.mode {
	case ModeNumerical:
		return 0
	case ModeAnalytical:
		return 1
	}
	w := (s.pressure(force, dt) - blendStart) / (1 - blendStart)
	if w <= 0 {
		return 0
	}
	if w >= 1 {
		return 1
	}
	return w * w * (3 - 2*w)
}

// UseAnalytical reports whether a spring of the given force stepped by dt
// is past the limits and takes the closed-form path alone.
func (s *Switch) UseAnalytical(force, dt float64) bool {
	switch s.mode {
	case ModeNumerical:
		return false
	case ModeAnalytical:
		return true
	}
	return s.pressure(force, dt) > 1
}

func (s *Switch) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	if s.mode == ModeAnalytical {
		return s.analytical.Step(dyn, x, u, t, dt)
	}
	lin, ok := dyn.(dynamo.Linear)
	if !ok {
		return s.numerical.Step(dyn, x, u, t, dt)
	}

	w := s.AnalyticalWeight(lin.Stiffness(), dt)
	if w >= 1 {
		return s.analytical.Step(dyn, x, u, t, dt)
	}
	num := s.subStep(dyn, x, u, t, dt)
	if w <= 0 {
		return num
	}
	exact := s.analytical.Step(dyn, x, u, t, dt)
	for i := range num {
		num[i] += w * (exact[i] - num[i])
	}
	return num
}

func (s *Switch) subStep(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := s.SubSteps(dt)
	h := dt / float64(n)
	for i := 0; i < n; i++ {
		x = s.numerical.Step(dyn, x, u, t+float64(i)*h, h)
	}
	return x
}
