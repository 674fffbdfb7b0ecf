package sim

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// accumulatorSlack absorbs rounding when frame time is a multiple of the
// fixed step.
const accumulatorSlack = 1e-9

// Driver advances registered springs once per host frame. With
// DoFixedUpdateRate set it runs fixed FixedTimeStep ticks out of an
// accumulator, at most MaxSubSteps per frame; the rest of a long frame is
// dropped.
type Driver struct {
	tuning      dynamo.TuningConfig
	steppers    []Stepper
	appliers    []Applier
	accumulator float64
	dropped     float64
	ticks       int
}

func NewDriver(tuning dynamo.TuningConfig) *Driver {
	return &Driver{tuning: tuning}
}

func (d *Driver) SetTuning(tuning dynamo.TuningConfig) {
	d.tuning = tuning
	d.accumulator = 0
}

func (d *Driver) Tuning() dynamo.TuningConfig { return d.tuning }

// Register adds s; if s is also an Applier it is applied after each frame.
func (d *Driver) Register(s Stepper) {
	d.steppers = append(d.steppers, s)
	if a, ok := s.(Applier); ok {
		d.appliers = append(d.appliers, a)
	}
}

// RegisterApplier adds an Applier that is not stepped by the driver.
func (d *Driver) RegisterApplier(a Applier) {
	d.appliers = append(d.appliers, a)
}

// Unregister removes s from both lists. s must be comparable.
func (d *Driver) Unregister(s Stepper) {
	for i, v := range d.steppers {
		if v == s {
			d.steppers = append(d.steppers[:i], d.steppers[i+1:]...)
			break
		}
	}
	a, ok := s.(Applier)
	if !ok {
		return
	}
	for i, v := range d.appliers {
		if v == a {
			d.appliers = append(d.appliers[:i], d.appliers[i+1:]...)
			break
		}
	}
}

func (d *Driver) Len() int { return len(d.steppers) }

// Update advances every registered Stepper for a frame of frameDt seconds
// and returns the number of ticks run. Invalid frame times run nothing.
func (d *Driver) Update(frameDt float64) int {
	if !(frameDt > 0) || math.IsInf(frameDt, 0) {
		return 0
	}

	steps := 0
	if !d.tuning.DoFixedUpdateRate {
		d.tick(frameDt)
		steps = 1
	} else {
		steps = d.fixed(frameDt)
	}

	for _, a := range d.appliers {
		a.Apply()
	}
	return steps
}

func (d *Driver) fixed(frameDt float64) int {
	h := d.tuning.FixedTimeStep
	if !(h > 0) {
		h = dynamo.DefaultFixedTimeStep
	}
	maxSteps := d.tuning.MaxSubSteps
	if maxSteps < 1 {
		maxSteps = 1
	}

	d.accumulator += frameDt
	steps := 0
	for d.accumulator+accumulatorSlack*h >= h && steps < maxSteps {
		d.tick(h)
		d.accumulator -= h
		steps++
	}

	if d.accumulator >= h {
		kept := math.Mod(d.accumulator, h)
		if kept+accumulatorSlack*h >= h {
			kept = 0
		}
		d.dropped += d.accumulator - kept
		d.accumulator = kept
	}
	if d.accumulator < 0 {
		d.accumulator = 0
	}
	return steps
}

func (d *Driver) tick(dt float64) {
	for _, s := range d.steppers {
		s.Step(dt)
	}
	d.ticks++
}

// Alpha is the fraction of a fixed step left in the accumulator, for hosts
// that interpolate between ticks.
func (d *Driver) Alpha() float64 {
	if !d.tuning.DoFixedUpdateRate || !(d.tuning.FixedTimeStep > 0) {
		return 0
	}
	return d.accumulator / d.tuning.FixedTimeStep
}

// Dropped is the total frame time discarded by the sub-step cap.
func (d *Driver) Dropped() float64 { return d.dropped }

// Ticks is the total number of steps taken.
func (d *Driver) Ticks() int { return d.ticks }
