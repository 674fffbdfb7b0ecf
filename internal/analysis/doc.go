// Package analysis characterises the response of a recorded spring run.
//
//   - [Spectrum] and [DominantFrequency]: FFT of the displacement from target
//   - [Extrema] and [LogDecrement]: ringing peaks and the damping they imply
//   - [Analyze]: measured against predicted frequency and damping ratio
//   - [NewPhasePortrait]: displacement against velocity for one axis
//
// # Checking a run
//
// An underdamped spring rings at omega*sqrt(1-zeta^2). Comparing the
// measured frequency with the prediction shows how far an integrator
// drifts from the exact solution:
//
//	report, err := analysis.Analyze(result, 0, force, drag)
//	fmt.Printf("%.3f Hz measured, %.3f Hz predicted\n", report.MeasuredHz, report.PredictedHz)
package analysis
