package spring

import (
	"bytes"
	"log"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
)

// captureLogs redirects the standard logger for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func stepN(s interface{ Step(float64) }, n int, dt float64) {
	for i := 0; i < n; i++ {
		s.Step(dt)
	}
}

func TestScalarDefaults(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())

	if s.Force() != 150 || s.Drag() != 10 {
		t.Errorf("force/drag = %g/%g, want 150/10", s.Force(), s.Drag())
	}
	if s.MinValue() != 0 || s.MaxValue() != 1 {
		t.Errorf("range = [%g, %g], want [0, 1]", s.MinValue(), s.MaxValue())
	}
	if s.ClampCurrentValue() || s.ClampTarget() || s.StopOnClamp() {
		t.Error("clamp flags should default to off")
	}
	if !s.Enabled() {
		t.Error("spring should start enabled")
	}
	if s.IntegrationMode() != integrators.ModeAuto {
		t.Errorf("mode = %v, want auto", s.IntegrationMode())
	}
}

func TestScalarConvergence(t *testing.T) {
	for _, mode := range []integrators.Mode{integrators.ModeAuto, integrators.ModeNumerical, integrators.ModeAnalytical} {
		t.Run(mode.String(), func(t *testing.T) {
			s := NewScalar(dynamo.DefaultTuning())
			s.SetIntegrationMode(mode)
			s.SetCurrentValue(0)
			s.SetTarget(1)
			s.Initialize()

			stepN(s, 300, 1.0/60.0)

			if math.Abs(s.CurrentValue()-1) > 0.01 {
				t.Errorf("value = %f, want within 0.01 of 1", s.CurrentValue())
			}
			if math.Abs(s.Velocity()) > 0.05 {
				t.Errorf("velocity = %f, want |v| < 0.05", s.Velocity())
			}
		})
	}
}

func TestScalarHighForceStaysFinite(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetForce(1e6)
	s.SetDrag(100)
	s.SetTarget(1)

	if !s.UsesAnalytical(1.0 / 60.0) {
		t.Fatal("expected the analytical path above the force threshold")
	}

	stepN(s, 300, 1.0/60.0)

	if math.Abs(s.CurrentValue()-1) > 1e-3 {
		t.Errorf("value = %g, want 1", s.CurrentValue())
	}
}

func TestScalarStepNoOp(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
	}{
		{"zero", 0},
		{"negative", -0.1},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScalar(dynamo.DefaultTuning())
			s.SetTarget(1)
			s.SetVelocity(0.5)
			s.Step(tt.dt)

			if s.CurrentValue() != 0 || s.Velocity() != 0.5 || s.Elapsed() != 0 {
				t.Errorf("dt=%g changed state: x=%g v=%g", tt.dt, s.CurrentValue(), s.Velocity())
			}
		})
	}
}

func TestScalarDisabled(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(1)
	s.SetEnabled(false)
	stepN(s, 10, 1.0/60.0)

	if s.CurrentValue() != 0 {
		t.Errorf("disabled spring moved to %g", s.CurrentValue())
	}

	s.SetEnabled(true)
	s.Step(1.0 / 60.0)
	if s.CurrentValue() == 0 {
		t.Error("re-enabled spring did not move")
	}
}

func TestScalarStepInitializesImplicitly(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(1)
	if s.Initialized() {
		t.Fatal("should not be initialized before first step")
	}
	s.Step(1.0 / 60.0)
	if !s.Initialized() {
		t.Error("Step should initialize")
	}
}

func TestScalarRejectsNonFinite(t *testing.T) {
	logs := captureLogs(t)
	s := NewScalar(dynamo.DefaultTuning())
	s.SetCurrentValue(0.25)
	s.SetTarget(0.75)
	s.SetVelocity(1)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		s.SetTarget(bad)
		s.SetCurrentValue(bad)
		s.SetVelocity(bad)
		s.AddVelocity(bad)
		s.SetForce(bad)
		s.SetDrag(bad)
		s.SetMinValue(bad)
		s.SetMaxValue(bad)
	}

	if s.Target() != 0.75 || s.CurrentValue() != 0.25 || s.Velocity() != 1 {
		t.Errorf("state changed: target=%g current=%g velocity=%g", s.Target(), s.CurrentValue(), s.Velocity())
	}
	if s.Force() != 150 || s.Drag() != 10 || s.MinValue() != 0 || s.MaxValue() != 1 {
		t.Error("parameters changed by non-finite input")
	}
	if !strings.Contains(logs.String(), "spring: ignoring non-finite") {
		t.Errorf("expected a warning, got %q", logs.String())
	}
}

func TestScalarNegativeParameters(t *testing.T) {
	logs := captureLogs(t)
	s := NewScalar(dynamo.DefaultTuning())
	s.SetForce(-5)
	s.SetDrag(-1)

	if s.Force() != 0 || s.Drag() != 0 {
		t.Errorf("force/drag = %g/%g, want 0/0", s.Force(), s.Drag())
	}
	if !strings.Contains(logs.String(), "clamped to 0") {
		t.Errorf("expected a clamp warning, got %q", logs.String())
	}

	s.SetVelocity(1)
	s.Step(0.5)
	if s.CurrentValue() != 0.5 || s.Velocity() != 1 {
		t.Errorf("zero force and drag should drift: x=%g v=%g", s.CurrentValue(), s.Velocity())
	}
}

func TestScalarDiscardsNonFiniteStep(t *testing.T) {
	captureLogs(t)
	s := NewScalar(dynamo.DefaultTuning())
	s.SetIntegrationMode(integrators.ModeNumerical)
	s.SetForce(1e300)
	s.SetDrag(0)
	s.SetTarget(1)

	s.Step(1)
	x, v := s.CurrentValue(), s.Velocity()
	if math.IsInf(x, 0) || math.IsInf(v, 0) {
		t.Fatalf("first step already overflowed: x=%g v=%g", x, v)
	}

	s.Step(1)
	if s.CurrentValue() != x || s.Velocity() != v {
		t.Errorf("overflowing step was applied: x=%g v=%g", s.CurrentValue(), s.Velocity())
	}
}

func TestScalarReachEquilibrium(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(0.8)
	s.SetVelocity(3)

	s.ReachEquilibrium()
	first := [2]float64{s.CurrentValue(), s.Velocity()}
	s.ReachEquilibrium()
	second := [2]float64{s.CurrentValue(), s.Velocity()}

	if first != second {
		t.Errorf("not idempotent: %v then %v", first, second)
	}
	if s.CurrentValue() != s.Target() || s.Velocity() != 0 {
		t.Errorf("got x=%g v=%g, want x=%g v=0", s.CurrentValue(), s.Velocity(), s.Target())
	}
	if !s.IsAtRest() {
		t.Error("spring should be at rest after ReachEquilibrium")
	}
}

func TestScalarRestKeepsResidual(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(0.5)
	s.SetCurrentValue(0.5005)
	s.SetForce(0)
	s.SetDrag(0)
	s.Step(1.0 / 60)

	if !s.IsAtRest() {
		t.Fatal("spring within the rest thresholds should report rest")
	}
	if s.CurrentValue() != 0.5005 {
		t.Errorf("value = %g, rest must not snap to the target", s.CurrentValue())
	}
}

func TestScalarReachEquilibriumHonoursClamp(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(3)
	s.SetClampCurrentValue(true)
	s.ReachEquilibrium()

	if s.CurrentValue() != 1 {
		t.Errorf("value = %g, want clamped to 1", s.CurrentValue())
	}
}

func TestScalarClampInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewScalar(dynamo.DefaultTuning())
	s.SetMinValue(-0.5)
	s.SetMaxValue(0.5)
	s.SetClampCurrentValue(true)

	check := func(op string) {
		if v := s.CurrentValue(); v < s.MinValue() || v > s.MaxValue() {
			t.Fatalf("after %s value %g escaped [%g, %g]", op, v, s.MinValue(), s.MaxValue())
		}
	}

	for i := 0; i < 2000; i++ {
		switch rng.Intn(4) {
		case 0:
			s.SetTarget(rng.Float64()*6 - 3)
		case 1:
			s.SetCurrentValue(rng.Float64()*6 - 3)
			check("SetCurrentValue")
		case 2:
			s.AddVelocity(rng.Float64()*40 - 20)
		default:
			s.Step(rng.Float64() / 20)
			check("Step")
		}
	}
}

func TestScalarStopOnClamp(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetClampCurrentValue(true)
	s.SetStopOnClamp(true)
	s.SetTarget(5)

	for i := 0; i < 120 && !s.IsClamped(); i++ {
		s.Step(1.0 / 60.0)
	}

	if !s.IsClamped() {
		t.Fatal("spring never reached the bound")
	}
	if s.CurrentValue() != 1 {
		t.Errorf("value = %g, want 1", s.CurrentValue())
	}
	if s.Velocity() != 0 {
		t.Errorf("velocity = %g, want exactly 0", s.Velocity())
	}
}

func TestScalarClampWithoutStopKeepsVelocity(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetClampCurrentValue(true)
	s.SetTarget(5)

	for i := 0; i < 120 && !s.IsClamped(); i++ {
		s.Step(1.0 / 60.0)
	}
	if s.Velocity() <= 0 {
		t.Errorf("velocity = %g, want still pushing into the bound", s.Velocity())
	}
}

func TestScalarRangeEdits(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetClampCurrentValue(true)
	s.SetClampTarget(true)
	s.SetCurrentValue(0.5)
	s.SetTarget(0.9)

	s.SetMinValue(2)
	if s.MaxValue() != 2 {
		t.Errorf("max = %g, want raised to 2", s.MaxValue())
	}
	if s.CurrentValue() != 2 || s.Target() != 2 {
		t.Errorf("current/target = %g/%g, want re-clamped to 2", s.CurrentValue(), s.Target())
	}

	s.SetMaxValue(-1)
	if s.MinValue() != -1 || s.CurrentValue() != -1 {
		t.Errorf("min = %g current = %g, want -1", s.MinValue(), s.CurrentValue())
	}
}

func TestScalarClampTarget(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(4)
	s.SetClampTarget(true)
	if s.Target() != 1 {
		t.Errorf("enabling target clamp should clamp existing target, got %g", s.Target())
	}
	s.SetTarget(-3)
	if s.Target() != 0 {
		t.Errorf("target = %g, want 0", s.Target())
	}
}

func TestScalarSampleAndRetarget(t *testing.T) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetCurrentValue(0.2)
	s.SetVelocity(-1)
	s.Retarget(dynamo.Control{0.7})
	s.Retarget(nil)

	x, u := s.Sample()
	if len(x) != 2 || x[0] != 0.2 || x[1] != -1 {
		t.Errorf("state = %v", x)
	}
	if len(u) != 1 || u[0] != 0.7 {
		t.Errorf("control = %v", u)
	}
}

func TestScalarNumericalIntegrator(t *testing.T) {
	a := NewScalar(dynamo.DefaultTuning())
	b := NewScalar(dynamo.DefaultTuning())
	b.SetNumericalIntegrator(integrators.NewRK4())
	a.SetTarget(1)
	b.SetTarget(1)

	a.Step(0.05)
	b.Step(0.05)
	if a.CurrentValue() == b.CurrentValue() {
		t.Error("RK4 and semi-implicit Euler should differ on a coarse step")
	}
}

func BenchmarkScalarStep(b *testing.B) {
	s := NewScalar(dynamo.DefaultTuning())
	s.SetTarget(1)
	for i := 0; i < b.N; i++ {
		s.Step(1.0 / 60.0)
	}
}
