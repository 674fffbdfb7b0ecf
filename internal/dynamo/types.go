package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Control carries one target per position component.
type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

// Linear is a System of independent mass-spring-damper axes:
// a = Stiffness()*(u - x) - Damping()*v.
type Linear interface {
	System
	Stiffness() float64
	Damping() float64
}

type Hamiltonian interface {
	Energy(x State, u Control) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Controller produces the targets a spring should chase at time t.
// An empty Control leaves the current targets untouched.
type Controller interface {
	Compute(x State, t float64) Control
}

const (
	DefaultFixedTimeStep       = 1.0 / 60.0
	DefaultMaxAnalyticalForce  = 7500.0
	DefaultMaxFrequencyStep    = 1.0
	DefaultRestVelocity        = 1e-3
	DefaultRestDistance        = 1e-3
	DefaultMaxSubSteps         = 8
	DefaultRunDt               = 1.0 / 60.0
	DefaultRunDuration         = 5.0
	maxReasonableFixedTimeStep = 1.0
)

// TuningConfig holds the process-wide knobs owned by the host application.
type TuningConfig struct {
	DoFixedUpdateRate bool    `yaml:"do_fixed_update_rate" json:"do_fixed_update_rate"`
	FixedTimeStep     float64 `yaml:"spring_fixed_time_step" json:"spring_fixed_time_step"`
	// MaxForceBeforeAnalyticalIntegration switches springs stiffer than this
	// to the closed-form solution.
	MaxForceBeforeAnalyticalIntegration float64 `yaml:"max_force_before_analytical_integration" json:"max_force_before_analytical_integration"`
	// MaxFrequencyStep is the largest omega*dt stepped numerically.
	MaxFrequencyStep float64 `yaml:"max_frequency_step" json:"max_frequency_step"`
	RestVelocity     float64 `yaml:"rest_velocity" json:"rest_velocity"`
	RestDistance     float64 `yaml:"rest_distance" json:"rest_distance"`
	MaxSubSteps      int     `yaml:"max_sub_steps" json:"max_sub_steps"`
}

func DefaultTuning() TuningConfig {
	return TuningConfig{
		DoFixedUpdateRate:                   false,
		FixedTimeStep:                       DefaultFixedTimeStep,
		MaxForceBeforeAnalyticalIntegration: DefaultMaxAnalyticalForce,
		MaxFrequencyStep:                    DefaultMaxFrequencyStep,
		RestVelocity:                        DefaultRestVelocity,
		RestDistance:                        DefaultRestDistance,
		MaxSubSteps:                         DefaultMaxSubSteps,
	}
}

func (c TuningConfig) Validate() error {
	if !(c.FixedTimeStep > 0) || c.FixedTimeStep > maxReasonableFixedTimeStep {
		return fmt.Errorf("%w: fixed time step must be in (0, %g], got %g", ErrInvalidTuning, maxReasonableFixedTimeStep, c.FixedTimeStep)
	}
	if !(c.MaxForceBeforeAnalyticalIntegration >= 0) {
		return fmt.Errorf("%w: max force before analytical integration must be >= 0, got %g", ErrInvalidTuning, c.MaxForceBeforeAnalyticalIntegration)
	}
	if !(c.MaxFrequencyStep > 0) {
		return fmt.Errorf("%w: max frequency step must be positive, got %g", ErrInvalidTuning, c.MaxFrequencyStep)
	}
	if !(c.RestVelocity >= 0) || !(c.RestDistance >= 0) {
		return fmt.Errorf("%w: rest thresholds must be >= 0", ErrInvalidTuning)
	}
	if c.MaxSubSteps < 1 {
		return fmt.Errorf("%w: max sub steps must be >= 1, got %d", ErrInvalidTuning, c.MaxSubSteps)
	}
	return nil
}

// RunConfig describes an offline run: frames of Dt seconds for Duration seconds.
type RunConfig struct {
	Dt            float64 `yaml:"dt" json:"dt"`
	Duration      float64 `yaml:"duration" json:"duration"`
	ValidateState bool    `yaml:"validate_state" json:"validate_state"`
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Dt:            DefaultRunDt,
		Duration:      DefaultRunDuration,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Controls   []Control
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}
