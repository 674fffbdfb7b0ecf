// Package adapter is the boundary between springs and the host properties
// they animate.
//
// A [Component] owns one spring, reads the property's current value as its
// default initial value and target from a [Source], and writes the spring's
// value to a [Sink] once per frame. Components implement [sim.Stepper] and
// [sim.Applier], so a [sim.Driver] steps and applies them:
//
//	opacity := adapter.NewProperty(0.0)
//	c := adapter.NewComponent[float64]("fade", spring.NewScalar(tuning), opacity, opacity)
//	c.SetTargetValue(1)
//	if err := c.Initialize(); err != nil {
//		return err
//	}
//	driver.Register(c)
//
// Missing references are reported by [Component.IsValid] as readable reasons
// rather than panics.
package adapter
