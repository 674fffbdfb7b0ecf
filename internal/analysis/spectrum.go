package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the one-sided amplitude spectrum of samples taken every
// dt seconds, with the mean removed. freqs are in Hz.
func Spectrum(samples []float64, dt float64) (freqs, power []float64) {
	n := len(samples)
	if n < 2 || !(dt > 0) {
		return nil, nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centred := make([]float64, n)
	for i, v := range samples {
		centred[i] = v - mean
	}

	bins := fft.FFTReal(centred)
	half := n / 2
	freqs = make([]float64, half)
	power = make([]float64, half)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) / (float64(n) * dt)
		power[i] = cmplx.Abs(bins[i]) / float64(n)
	}
	return freqs, power
}

// DominantFrequency returns the strongest non-DC frequency in Hz, or 0 when
// the signal has no oscillating content.
func DominantFrequency(samples []float64, dt float64) float64 {
	freqs, power := Spectrum(samples, dt)
	best, peak := 0, 0.0
	for i := 1; i < len(power); i++ {
		if power[i] > peak {
			best, peak = i, power[i]
		}
	}
	if peak < 1e-12 || math.IsNaN(peak) {
		return 0
	}
	return freqs[best]
}
