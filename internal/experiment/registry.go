package experiment

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/control"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/spring"
)

// Spring is what every spring kind offers a run.
type Spring interface {
	sim.Probe
	Initialize()
	ReachEquilibrium()
	IsAtRest() bool
	SetIntegrationMode(mode integrators.Mode)
	SetNumericalIntegrator(integ dynamo.Integrator)
}

var (
	_ Spring = (*spring.Scalar)(nil)
	_ Spring = (*spring.Vector[mgl64.Vec3])(nil)
	_ Spring = (*spring.Vector[spring.Color])(nil)
	_ Spring = (*spring.Rotation)(nil)
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["semi-implicit"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["analytical"] = func() dynamo.Integrator { return integrators.NewAnalytical() }

	return r
}

// GetIntegrator returns nil for an empty name, which keeps the default.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	if name == "" {
		return nil, nil
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownKind, name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs and initializes the spring sc describes.
func (r *Registry) Build(sc *config.SpringConfig, cfg *config.Config) (Spring, error) {
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("spring %q: %w", sc.Name, err)
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	force, drag := sc.Params(physics.DefaultForce, physics.DefaultDrag)

	var s Spring
	switch sc.KindOrDefault() {
	case "scalar":
		s = buildScalar(sc, cfg.Tuning, force, drag)
	case "vector2":
		s = configureVector(spring.NewVector2(cfg.Tuning), spring.Vec2Codec{}, sc, force, drag)
	case "vector3":
		s = configureVector(spring.NewVector3(cfg.Tuning), spring.Vec3Codec{}, sc, force, drag)
	case "vector4":
		s = configureVector(spring.NewVector4(cfg.Tuning), spring.Vec4Codec{}, sc, force, drag)
	case "color":
		s, err = buildColor(sc, cfg.Tuning, force, drag)
	case "rotation":
		s = buildRotation(sc, cfg.Tuning, force, drag)
	default:
		return nil, fmt.Errorf("%w: spring kind %q", dynamo.ErrUnknownKind, sc.Kind)
	}
	if err != nil {
		return nil, err
	}

	s.SetIntegrationMode(mode)
	s.SetNumericalIntegrator(integ)
	s.Initialize()
	return s, nil
}

func buildScalar(sc *config.SpringConfig, tuning dynamo.TuningConfig, force, drag float64) *spring.Scalar {
	s := spring.NewScalar(tuning)
	s.SetForce(force)
	s.SetDrag(drag)
	if len(sc.Min) > 0 {
		s.SetMinValue(sc.Min[0])
	}
	if len(sc.Max) > 0 {
		s.SetMaxValue(sc.Max[0])
	}
	s.SetClampCurrentValue(sc.ClampCurrent)
	s.SetClampTarget(sc.ClampTarget)
	s.SetStopOnClamp(sc.StopOnClamp)
	if len(sc.Initial) > 0 {
		s.SetCurrentValue(sc.Initial[0])
	}
	if len(sc.Target) > 0 {
		s.SetTarget(sc.Target[0])
	}
	if len(sc.Velocity) > 0 {
		s.SetVelocity(sc.Velocity[0])
	}
	return s
}

// configureVector applies sc to v. Clamp flags only switch clamping on, so
// kinds that clamp by default keep doing so.
func configureVector[T any](v *spring.Vector[T], codec spring.Codec[T], sc *config.SpringConfig, force, drag float64) *spring.Vector[T] {
	if sc.CommonForceAndDrag {
		v.SetCommonForceAndDrag(true)
		v.SetCommonForce(force)
		v.SetCommonDrag(drag)
	} else {
		for i := 0; i < v.Arity(); i++ {
			v.SetAxisForce(i, force)
			v.SetAxisDrag(i, drag)
		}
	}
	if len(sc.Min) > 0 {
		v.SetMinValue(codec.Compose(sc.Min))
	}
	if len(sc.Max) > 0 {
		v.SetMaxValue(codec.Compose(sc.Max))
	}
	if sc.ClampCurrent {
		v.SetClampCurrentValue(true)
	}
	if sc.ClampTarget {
		v.SetClampTarget(true)
	}
	if sc.StopOnClamp {
		v.SetStopOnClamp(true)
	}
	if len(sc.Initial) > 0 {
		v.SetCurrentValue(codec.Compose(sc.Initial))
	}
	if len(sc.Target) > 0 {
		v.SetTarget(codec.Compose(sc.Target))
	}
	if len(sc.Velocity) > 0 {
		v.SetVelocity(codec.Compose(sc.Velocity))
	}
	return v
}

func buildColor(sc *config.SpringConfig, tuning dynamo.TuningConfig, force, drag float64) (*spring.Vector[spring.Color], error) {
	v := configureVector(spring.NewColor(tuning), spring.ColorCodec{}, sc, force, drag)
	if sc.InitialHex != "" {
		c, err := spring.ParseHex(sc.InitialHex)
		if err != nil {
			return nil, fmt.Errorf("spring %q: %w", sc.Name, err)
		}
		v.SetCurrentValue(c)
	}
	if sc.TargetHex != "" {
		c, err := spring.ParseHex(sc.TargetHex)
		if err != nil {
			return nil, fmt.Errorf("spring %q: %w", sc.Name, err)
		}
		v.SetTarget(c)
	}
	return v, nil
}

func buildRotation(sc *config.SpringConfig, tuning dynamo.TuningConfig, force, drag float64) *spring.Rotation {
	r := spring.NewRotation(tuning)
	r.SetForce(force)
	r.SetDrag(drag)
	if q, ok := orientation(sc.Initial); ok {
		r.SetCurrentValue(q)
	}
	if q, ok := orientation(sc.Target); ok {
		r.SetTarget(q)
	}
	if len(sc.Velocity) == 3 {
		r.SetVelocity(mgl64.Vec3{sc.Velocity[0], sc.Velocity[1], sc.Velocity[2]})
	}
	return r
}

// orientation reads Euler degrees (x, y, z) or a quaternion (w, x, y, z).
func orientation(v []float64) (mgl64.Quat, bool) {
	switch len(v) {
	case 3:
		return spring.EulerToQuat(v[0], v[1], v[2]), true
	case 4:
		return mgl64.Quat{W: v[0], V: mgl64.Vec3{v[1], v[2], v[3]}}, true
	}
	return mgl64.Quat{}, false
}

// BuildSchedule returns the controller retargeting s during a run.
func (r *Registry) BuildSchedule(sc *config.SpringConfig, s Spring) (dynamo.Controller, error) {
	if sc.Schedule == nil {
		return control.NewHold(), nil
	}
	switch sc.Schedule.Kind {
	case "", "hold":
		return control.NewHold(), nil
	case "keyframes":
		return control.NewKeyframes(sc.Schedule.Keyframes...), nil
	case "oscillate":
		_, center := s.Sample()
		if sc.KindOrDefault() == "rotation" {
			center = dynamo.Control{0, 0, 0}
			if len(sc.Target) == 3 {
				copy(center, sc.Target)
			}
		}
		return control.NewOscillate(center, sc.Schedule.Amplitude, sc.Schedule.Frequency), nil
	}
	return nil, fmt.Errorf("%w: schedule kind %q", dynamo.ErrUnknownKind, sc.Schedule.Kind)
}

const (
	DefaultStabilityThreshold = 1e6
	DefaultSettleTolerance    = 1e-2
)

func (r *Registry) DefaultMetrics(sc *config.SpringConfig) []dynamo.Metric {
	force, drag := sc.Params(physics.DefaultForce, physics.DefaultDrag)
	return []dynamo.Metric{
		metrics.NewEnergy(force),
		metrics.NewPeakEnergy(physics.NewOscillator(force, drag)),
		metrics.NewStability(DefaultStabilityThreshold),
		metrics.NewSettleTime(DefaultSettleTolerance),
		metrics.NewOvershoot(),
	}
}
