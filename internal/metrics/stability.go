package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Stability scores a run by the share of samples in which the spring stayed
// finite and within threshold of its targets. Positions are measured from
// the matching target when one is given; velocities are taken as is.
type Stability struct {
	threshold  float64
	violations int
	samples    int
	firstBad   float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold, firstBad: NotSettled}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	if !s.bounded(x, u) {
		if s.violations == 0 {
			s.firstBad = t
		}
		s.violations++
	}
}

func (s *Stability) bounded(x dynamo.State, u dynamo.Control) bool {
	axes := len(x) / 2
	for i, v := range x {
		if i < axes && i < len(u) {
			v -= u[i]
		}
		if !(math.Abs(v) <= s.threshold) {
			return false
		}
	}
	return true
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return 1 - float64(s.violations)/float64(s.samples)
}

// FirstViolation is the time of the first out-of-bounds sample, or
// NotSettled when there was none.
func (s *Stability) FirstViolation() float64 { return s.firstBad }

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.firstBad = NotSettled
}
