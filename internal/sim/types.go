package sim

import "github.com/san-kum/springsim/internal/dynamo"

// Stepper is anything advanced once per tick.
type Stepper interface {
	Step(dt float64)
}

// Applier copies a spring's value into the host once per frame, after all
// stepping for that frame is done.
type Applier interface {
	Apply()
}

// Probe is a Stepper whose state can be recorded and retargeted, which is
// what an offline run needs.
type Probe interface {
	Stepper
	Sample() (dynamo.State, dynamo.Control)
	Retarget(u dynamo.Control)
}
