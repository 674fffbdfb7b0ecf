package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"auto", ModeAuto, false},
		{"", ModeAuto, false},
		{"Numerical", ModeNumerical, false},
		{" analytical ", ModeAnalytical, false},
		{"rk9", ModeAuto, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.err {
			if !errors.Is(err, dynamo.ErrUnknownKind) {
				t.Errorf("ParseMode(%q) error = %v, want ErrUnknownKind", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if got.String() != modeNames[got] {
			t.Errorf("String() = %q", got.String())
		}
	}
}

func TestSwitchUseAnalytical(t *testing.T) {
	tuning := dynamo.DefaultTuning()
	tuning.MaxForceBeforeAnalyticalIntegration = 1000
	tuning.MaxFrequencyStep = 1

	tests := []struct {
		name  string
		mode  Mode
		force float64
		dt    float64
		want  bool
	}{
		{"auto soft spring", ModeAuto, 100, 1.0 / 60, false},
		{"auto above force threshold", ModeAuto, 1001, 1.0 / 60, true},
		{"auto large step", ModeAuto, 100, 2, true},
		{"auto sub-stepped frame", ModeAuto, 900, 1.0 / 60, false},
		{"numerical ignores threshold", ModeNumerical, 1e9, 1, false},
		{"analytical always", ModeAnalytical, 1, 1.0 / 60, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSwitch(tt.mode, tuning)
			if got := s.UseAnalytical(tt.force, tt.dt); got != tt.want {
				t.Errorf("UseAnalytical(%g, %g) = %v, want %v", tt.force, tt.dt, got, tt.want)
			}
		})
	}
}

func TestSwitchContinuityAtThreshold(t *testing.T) {
	tuning := dynamo.DefaultTuning()
	threshold := tuning.MaxForceBeforeAnalyticalIntegration
	dt := 1e-4
	u := dynamo.Control{1}

	below := physics.NewOscillator(threshold, 10)
	above := physics.NewOscillator(math.Nextafter(threshold, math.Inf(1)), 10)

	sBelow := NewSwitch(ModeAuto, tuning)
	sAbove := NewSwitch(ModeAuto, tuning)
	if sBelow.UseAnalytical(below.Force, dt) || !sAbove.UseAnalytical(above.Force, dt) {
		t.Fatal("test forces do not straddle the threshold")
	}

	xb := dynamo.State{0, 0}
	xa := dynamo.State{0, 0}
	maxDiff := 0.0
	for i := 0; i < 1000; i++ {
		xb = sBelow.Step(below, xb, u, float64(i)*dt, dt)
		xa = sAbove.Step(above, xa, u, float64(i)*dt, dt)
		if i == 0 && math.Abs(xb[0]-xa[0]) > 1e-4 {
			t.Errorf("first step jumps by %g", math.Abs(xb[0]-xa[0]))
		}
		maxDiff = math.Max(maxDiff, math.Abs(xb[0]-xa[0]))
	}

	if maxDiff > 1e-2 {
		t.Errorf("trajectories diverge by %g across the threshold", maxDiff)
	}
}

func TestSwitchSubSteps(t *testing.T) {
	s := NewSwitch(ModeAuto, dynamo.DefaultTuning())

	tests := []struct {
		dt   float64
		want int
	}{
		{1e-4, 1},
		{1.0 / 60, 2},
		{0.05, 5},
		{10, dynamo.DefaultMaxSubSteps},
		{0, 1},
	}

	for _, tt := range tests {
		if got := s.SubSteps(tt.dt); got != tt.want {
			t.Errorf("SubSteps(%g) = %d, want %d", tt.dt, got, tt.want)
		}
	}
}

func TestSwitchAnalyticalWeight(t *testing.T) {
	tuning := dynamo.DefaultTuning()
	limit := tuning.MaxForceBeforeAnalyticalIntegration
	s := NewSwitch(ModeAuto, tuning)
	dt := 1e-4

	if w := s.AnalyticalWeight(0.5*limit, dt); w != 0 {
		t.Errorf("weight well below the limit = %g, want 0", w)
	}
	if w := s.AnalyticalWeight(limit, dt); w != 1 {
		t.Errorf("weight at the limit = %g, want 1", w)
	}
	mid := s.AnalyticalWeight(0.9*limit, dt)
	if mid <= 0 || mid >= 1 {
		t.Errorf("weight inside the blend band = %g", mid)
	}

	prev := 0.0
	for f := 0.8 * limit; f <= limit; f += limit / 1000 {
		w := s.AnalyticalWeight(f, dt)
		if w < prev {
			t.Fatalf("weight not monotonic at force %g", f)
		}
		prev = w
	}

	if w := NewSwitch(ModeNumerical, tuning).AnalyticalWeight(10*limit, dt); w != 0 {
		t.Errorf("numerical weight = %g", w)
	}
	if w := NewSwitch(ModeAnalytical, tuning).AnalyticalWeight(1, dt); w != 1 {
		t.Errorf("analytical weight = %g", w)
	}
}

// At 60 Hz sqrt(force)*dt reaches 1 around force 3600 and the force limit
// sits at 7500. Neither crossing may move the trajectory noticeably.
func TestSwitchContinuityAtFrameRate(t *testing.T) {
	tuning := dynamo.DefaultTuning()
	dt := 1.0 / 60
	u := dynamo.Control{1}

	for _, force := range []float64{3600, tuning.MaxForceBeforeAnalyticalIntegration} {
		below := physics.NewOscillator(force*0.999, 10)
		above := physics.NewOscillator(force*1.001, 10)
		sBelow := NewSwitch(ModeAuto, tuning)
		sAbove := NewSwitch(ModeAuto, tuning)

		xb := dynamo.State{0, 0}
		xa := dynamo.State{0, 0}
		maxDiff := 0.0
		for i := 0; i < 30; i++ {
			xb = sBelow.Step(below, xb, u, float64(i)*dt, dt)
			xa = sAbove.Step(above, xa, u, float64(i)*dt, dt)
			maxDiff = math.Max(maxDiff, math.Abs(xb[0]-xa[0]))
		}
		if maxDiff > 1e-2 {
			t.Errorf("force %g: trajectories diverge by %g", force, maxDiff)
		}
	}
}

func TestSwitchFrameStepContinuousInForce(t *testing.T) {
	tuning := dynamo.DefaultTuning()
	s := NewSwitch(ModeAuto, tuning)
	dt := 1.0 / 60
	u := dynamo.Control{1}

	step := func(force float64) float64 {
		return s.Step(physics.NewOscillator(force, 10), dynamo.State{0, 0}, u, 0, dt)[0]
	}

	prev := step(1000)
	for f := 1001.0; f <= 2*tuning.MaxForceBeforeAnalyticalIntegration; f++ {
		x := step(f)
		if d := math.Abs(x - prev); d > 5e-3 {
			t.Fatalf("one-step result jumps by %g at force %g", d, f)
		}
		prev = x
	}
}

func TestSwitchLowForceAgreement(t *testing.T) {
	osc := physics.NewOscillator(10, 2)
	numeric := NewSwitch(ModeNumerical, dynamo.DefaultTuning())
	exact := NewSwitch(ModeAnalytical, dynamo.DefaultTuning())
	u := dynamo.Control{1}
	dt := 1e-3

	xn := dynamo.State{0, 0}
	xe := dynamo.State{0, 0}
	for i := 0; i < 5000; i++ {
		xn = numeric.Step(osc, xn, u, float64(i)*dt, dt)
		xe = exact.Step(osc, xe, u, float64(i)*dt, dt)
		if d := math.Abs(xn[0] - xe[0]); d > 5e-3 {
			t.Fatalf("step %d: paths differ by %g", i, d)
		}
	}
}

func TestSwitchConvergesInEveryMode(t *testing.T) {
	for _, mode := range []Mode{ModeAuto, ModeNumerical, ModeAnalytical} {
		t.Run(mode.String(), func(t *testing.T) {
			osc := physics.NewOscillator(150, 10)
			s := NewSwitch(mode, dynamo.DefaultTuning())
			x := dynamo.State{0, 0}
			dt := 1.0 / 60.0
			for i := 0; i < 300; i++ {
				x = s.Step(osc, x, dynamo.Control{1}, float64(i)*dt, dt)
			}
			if math.Abs(x[0]-1) > 0.01 || math.Abs(x[1]) > 0.05 {
				t.Errorf("did not converge: %v", x)
			}
		})
	}
}

func TestSwitchSetNumerical(t *testing.T) {
	s := NewSwitch(ModeNumerical, dynamo.DefaultTuning())
	s.SetNumerical(NewRK4())
	if _, ok := s.Numerical().(*RK4); !ok {
		t.Error("numerical integrator not replaced")
	}
	s.SetNumerical(nil)
	if _, ok := s.Numerical().(*SemiImplicitEuler); !ok {
		t.Error("nil should restore semi-implicit euler")
	}
}
