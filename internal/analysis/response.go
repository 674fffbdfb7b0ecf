package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

// minPeak ends the peak list once ringing falls into numerical noise.
const minPeak = 1e-9

// Displacement returns x - target for one axis of a run. Samples without a
// recorded target use 0.
func Displacement(result *dynamo.Result, axis int) ([]float64, error) {
	if len(result.States) == 0 {
		return nil, fmt.Errorf("%w: run has no samples", dynamo.ErrDimensionMismatch)
	}
	axes := len(result.States[0]) / 2
	if axis < 0 || axis >= axes {
		return nil, fmt.Errorf("%w: axis %d of %d", dynamo.ErrDimensionMismatch, axis, axes)
	}

	out := make([]float64, len(result.States))
	for i, x := range result.States {
		goal := 0.0
		if i < len(result.Controls) && axis < len(result.Controls[i]) {
			goal = result.Controls[i][axis]
		}
		out[i] = x[axis] - goal
	}
	return out, nil
}

// Extrema returns the displacement at each turning point, found where the
// velocity changes sign.
func Extrema(displacement, velocity []float64) []float64 {
	var peaks []float64
	for i := 1; i < len(velocity) && i < len(displacement); i++ {
		if velocity[i-1] > 0 && velocity[i] <= 0 || velocity[i-1] < 0 && velocity[i] >= 0 {
			if math.Abs(displacement[i]) < minPeak {
				break
			}
			peaks = append(peaks, displacement[i])
		}
	}
	return peaks
}

// LogDecrement returns the mean log ratio of successive half-period peaks
// and the damping ratio it implies. ok is false with fewer than two peaks.
func LogDecrement(peaks []float64) (delta, zeta float64, ok bool) {
	sum, n := 0.0, 0
	for i := 1; i < len(peaks); i++ {
		a, b := math.Abs(peaks[i-1]), math.Abs(peaks[i])
		if b == 0 || a == 0 {
			break
		}
		sum += math.Log(a / b)
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	delta = sum / float64(n)
	return delta, delta / math.Sqrt(math.Pi*math.Pi+delta*delta), true
}

type Report struct {
	Axis          int
	MeasuredHz    float64
	PredictedHz   float64
	PredictedZeta float64
	EstimatedZeta float64
	LogDecrement  float64
	Peaks         int
	// Ringing is false when no two peaks were seen, as for critical or
	// over damping.
	Ringing bool
}

// Analyze measures one axis of result against the oscillator defined by
// force and drag.
func Analyze(result *dynamo.Result, axis int, force, drag float64) (*Report, error) {
	disp, err := Displacement(result, axis)
	if err != nil {
		return nil, err
	}
	if len(result.Times) < 2 {
		return nil, fmt.Errorf("%w: need at least two samples", dynamo.ErrDimensionMismatch)
	}
	dt := (result.Times[len(result.Times)-1] - result.Times[0]) / float64(len(result.Times)-1)

	axes := len(result.States[0]) / 2
	velocity := make([]float64, len(result.States))
	for i, x := range result.States {
		velocity[i] = x[axes+axis]
	}

	osc := physics.NewOscillator(force, drag)
	peaks := Extrema(disp, velocity)
	delta, zeta, ringing := LogDecrement(peaks)

	return &Report{
		Axis:          axis,
		MeasuredHz:    DominantFrequency(disp, dt),
		PredictedHz:   osc.DampedFrequency() / (2 * math.Pi),
		PredictedZeta: osc.DampingRatio(),
		EstimatedZeta: zeta,
		LogDecrement:  delta,
		Peaks:         len(peaks),
		Ringing:       ringing,
	}, nil
}
