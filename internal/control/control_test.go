package control

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/springsim/internal/dynamo"
)

func TestHold(t *testing.T) {
	ctrl := NewHold()
	if u := ctrl.Compute(dynamo.State{1.0, 2.0}, 3.0); len(u) != 0 {
		t.Errorf("hold should not retarget, got %v", u)
	}
}

func TestManual(t *testing.T) {
	ctrl := NewManual(2)
	if u := ctrl.Compute(nil, 0); u != nil {
		t.Errorf("expected no retarget before SetControl, got %v", u)
	}

	ctrl.SetControl([]float64{1, 2, 3})
	if u := ctrl.Compute(nil, 0); u != nil {
		t.Errorf("wrong-sized control accepted: %v", u)
	}

	ctrl.SetControl([]float64{0.5, -0.5})
	u := ctrl.Compute(nil, 0)
	if len(u) != 2 || u[0] != 0.5 || u[1] != -0.5 {
		t.Fatalf("got %v", u)
	}
	u[0] = 99
	if ctrl.U[0] != 0.5 {
		t.Error("Compute should return a copy")
	}
	if again := ctrl.Compute(nil, 0.1); again != nil {
		t.Errorf("manual target delivered twice: %v", again)
	}
}

func TestKeyframes(t *testing.T) {
	ctrl := NewKeyframes(
		Keyframe{Time: 2, Target: []float64{0}},
		Keyframe{Time: 0, Target: []float64{1}},
		Keyframe{Time: 2.5, Target: []float64{0.5}},
	)

	tests := []struct {
		t    float64
		want []float64
	}{
		{0, []float64{1}},
		{1, nil},
		{2, []float64{0}},
		{2.1, nil},
		{10, []float64{0.5}},
		{11, nil},
	}

	for _, tt := range tests {
		u := ctrl.Compute(nil, tt.t)
		if len(u) != len(tt.want) || (len(u) == 1 && u[0] != tt.want[0]) {
			t.Errorf("t=%g: got %v, want %v", tt.t, u, tt.want)
		}
	}

	ctrl.Reset()
	if u := ctrl.Compute(nil, 5); len(u) != 1 || u[0] != 0.5 {
		t.Errorf("after reset, skipping ahead should land on the latest keyframe, got %v", u)
	}
}

func TestKeyframesValidate(t *testing.T) {
	ok := NewKeyframes(Keyframe{Time: 0, Target: []float64{1, 2}})
	if err := ok.Validate(2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ok.Validate(3); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("got %v, want ErrDimensionMismatch", err)
	}

	bad := NewKeyframes(Keyframe{Time: 1, Target: []float64{math.NaN()}})
	if err := bad.Validate(1); !errors.Is(err, dynamo.ErrInvalidValue) {
		t.Errorf("got %v, want ErrInvalidValue", err)
	}
}

func TestOscillate(t *testing.T) {
	ctrl := NewOscillate([]float64{0.5, 1}, 0.25, 1)

	u := ctrl.Compute(nil, 0.25)
	if math.Abs(u[0]-0.75) > 1e-12 || math.Abs(u[1]-1.25) > 1e-12 {
		t.Errorf("quarter period: got %v", u)
	}

	if err := ctrl.SetParam("frequency", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("negative frequency accepted: %v", err)
	}
	if err := ctrl.SetParam("gain", 1); err == nil {
		t.Error("unknown parameter accepted")
	}
	if err := ctrl.SetParam("amplitude", 0); err != nil {
		t.Fatal(err)
	}
	if u := ctrl.Compute(nil, 0.25); u[0] != 0.5 {
		t.Errorf("zero amplitude: got %v", u)
	}
	if ctrl.GetParams()["frequency"] != 1 {
		t.Errorf("params = %v", ctrl.GetParams())
	}
}
