package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// NotSettled is reported by SettleTime when the run ends away from the target.
const NotSettled = -1.0

// SettleTime is the earliest time after which every position stays within
// tolerance of its target.
type SettleTime struct {
	name      string
	tolerance float64
	settledAt float64
	inside    bool
	samples   int
}

func NewSettleTime(tolerance float64) *SettleTime {
	return &SettleTime{
		name:      "settle_time",
		tolerance: tolerance,
	}
}

func (s *SettleTime) Name() string { return s.name }

func (s *SettleTime) Observe(x dynamo.State, u dynamo.Control, t float64) {
	s.samples++
	n := len(x) / 2
	for i := 0; i < n; i++ {
		target := 0.0
		if i < len(u) {
			target = u[i]
		}
		if !(math.Abs(x[i]-target) <= s.tolerance) {
			s.inside = false
			return
		}
	}
	if !s.inside {
		s.inside = true
		s.settledAt = t
	}
}

func (s *SettleTime) Value() float64 {
	if s.samples == 0 || !s.inside {
		return NotSettled
	}
	return s.settledAt
}

func (s *SettleTime) Reset() {
	s.settledAt = 0
	s.inside = false
	s.samples = 0
}

// Overshoot is the largest excursion past the target, relative to the
// distance the spring started from. A new target starts a new excursion.
type Overshoot struct {
	name    string
	start   []float64
	targets []float64
	max     float64
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "overshoot"}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(x dynamo.State, u dynamo.Control, t float64) {
	n := len(x) / 2
	if len(o.start) != n {
		o.start = make([]float64, n)
		o.targets = make([]float64, n)
		for i := range o.targets {
			o.targets[i] = math.NaN()
		}
	}

	for i := 0; i < n; i++ {
		target := 0.0
		if i < len(u) {
			target = u[i]
		}
		if target != o.targets[i] {
			o.targets[i] = target
			o.start[i] = x[i]
			continue
		}

		travel := target - o.start[i]
		if travel == 0 {
			continue
		}
		past := (x[i] - target) / travel
		if past > o.max {
			o.max = past
		}
	}
}

func (o *Overshoot) Value() float64 { return o.max }

func (o *Overshoot) Reset() {
	o.start = nil
	o.targets = nil
	o.max = 0
}
