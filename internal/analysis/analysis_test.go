package analysis

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/springsim/internal/control"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/spring"
)

// exactRun samples the closed-form response of a spring released from
// rest one unit away from its target.
func exactRun(force, drag, dt, duration float64) *dynamo.Result {
	w0 := math.Sqrt(force)
	a := drag / 2
	wd := math.Sqrt(force - a*a)

	r := &dynamo.Result{}
	for i := 0; float64(i)*dt <= duration; i++ {
		t := float64(i) * dt
		decay := math.Exp(-a * t)
		x := decay * (math.Cos(wd*t) + a/wd*math.Sin(wd*t))
		v := -decay * w0 * w0 / wd * math.Sin(wd*t)
		r.States = append(r.States, dynamo.State{x, v})
		r.Controls = append(r.Controls, dynamo.Control{0})
		r.Times = append(r.Times, t)
	}
	return r
}

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 3 + math.Sin(2*math.Pi*5*float64(i)*dt)
	}

	if got := DominantFrequency(samples, dt); math.Abs(got-5) > 0.11 {
		t.Errorf("dominant frequency = %g, want 5", got)
	}
	if got := DominantFrequency(make([]float64, 64), dt); got != 0 {
		t.Errorf("flat signal should have no frequency, got %g", got)
	}
	if f, p := Spectrum([]float64{1}, dt); f != nil || p != nil {
		t.Error("single sample should have no spectrum")
	}
}

func TestLogDecrement(t *testing.T) {
	zeta := 0.1
	half := math.Exp(-math.Pi * zeta / math.Sqrt(1-zeta*zeta))
	peaks := []float64{1, -half, half * half, -half * half * half}

	_, got, ok := LogDecrement(peaks)
	if !ok {
		t.Fatal("expected a decrement")
	}
	if math.Abs(got-zeta) > 1e-12 {
		t.Errorf("zeta = %g, want %g", got, zeta)
	}

	if _, _, ok := LogDecrement([]float64{1}); ok {
		t.Error("one peak has no decrement")
	}
}

func TestAnalyzeExactResponse(t *testing.T) {
	force, drag := 100.0, 1.0
	report, err := Analyze(exactRun(force, drag, 0.001, 20), 0, force, drag)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if !report.Ringing || report.Peaks < 4 {
		t.Fatalf("expected ringing, got %+v", report)
	}
	if math.Abs(report.MeasuredHz-report.PredictedHz) > 0.06 {
		t.Errorf("measured %g Hz, predicted %g Hz", report.MeasuredHz, report.PredictedHz)
	}
	if math.Abs(report.EstimatedZeta-report.PredictedZeta) > 0.01 {
		t.Errorf("estimated zeta %g, predicted %g", report.EstimatedZeta, report.PredictedZeta)
	}
}

func TestAnalyzeSimulatedSpring(t *testing.T) {
	force, drag := 100.0, 1.0
	s := spring.NewScalar(dynamo.DefaultTuning())
	s.SetForce(force)
	s.SetDrag(drag)
	s.SetCurrentValue(0)
	s.SetTarget(1)
	s.Initialize()

	result, err := sim.New(s, control.NewHold(), dynamo.DefaultTuning()).
		Run(context.Background(), dynamo.RunConfig{Dt: 1.0 / 60.0, Duration: 20})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	report, err := Analyze(result, 0, force, drag)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if math.Abs(report.MeasuredHz-report.PredictedHz) > 0.1 {
		t.Errorf("measured %g Hz, predicted %g Hz", report.MeasuredHz, report.PredictedHz)
	}
}

func TestAnalyzeOverdampedDoesNotRing(t *testing.T) {
	r := &dynamo.Result{}
	for i := 0; i <= 100; i++ {
		ts := float64(i) * 0.05
		r.States = append(r.States, dynamo.State{-math.Exp(-ts), math.Exp(-ts)})
		r.Controls = append(r.Controls, dynamo.Control{0})
		r.Times = append(r.Times, ts)
	}

	report, err := Analyze(r, 0, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if report.Ringing || report.Peaks != 0 {
		t.Errorf("overdamped response should not ring: %+v", report)
	}
	if report.PredictedHz != 0 {
		t.Errorf("predicted Hz = %g, want 0", report.PredictedHz)
	}
}

func TestAnalyzeBadAxis(t *testing.T) {
	r := exactRun(100, 4, 0.01, 1)
	if _, err := Analyze(r, 1, 100, 4); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if _, err := Analyze(&dynamo.Result{}, 0, 100, 4); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("empty run: expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPhasePortrait(t *testing.T) {
	p, err := NewPhasePortrait(exactRun(100, 4, 0.01, 5), 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Points[0].X != 1 || p.Points[0].Y != 0 {
		t.Errorf("first point = %+v, want {1 0}", p.Points[0])
	}

	art := p.ASCII(40, 12)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	if len(lines) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(lines))
	}
	if !strings.ContainsRune(art, '•') || !strings.ContainsRune(art, '│') || !strings.ContainsRune(art, '─') {
		t.Error("portrait should show points and both axes")
	}

	var empty *PhasePortrait
	if empty.ASCII(10, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}
