package spring

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/physics"
)

// Vector is a spring over a fixed-size tuple. Every component is an
// independent Scalar axis; axes never read each other's state.
type Vector[T any] struct {
	codec  Codec[T]
	axes   []*Scalar
	buf    []float64
	flags  []bool
	events Events

	common      bool
	commonForce float64
	commonDrag  float64

	enabled     bool
	initialized bool
}

func NewVector[T any](codec Codec[T], tuning dynamo.TuningConfig) *Vector[T] {
	n := codec.Arity()
	v := &Vector[T]{
		codec:       codec,
		axes:        make([]*Scalar, n),
		buf:         make([]float64, n),
		flags:       make([]bool, n),
		commonForce: physics.DefaultForce,
		commonDrag:  physics.DefaultDrag,
		enabled:     true,
	}
	for i := range v.axes {
		v.axes[i] = NewScalar(tuning)
	}
	return v
}

func NewVector2(tuning dynamo.TuningConfig) *Vector[mgl64.Vec2] {
	return NewVector[mgl64.Vec2](Vec2Codec{}, tuning)
}

func NewVector3(tuning dynamo.TuningConfig) *Vector[mgl64.Vec3] {
	return NewVector[mgl64.Vec3](Vec3Codec{}, tuning)
}

func NewVector4(tuning dynamo.TuningConfig) *Vector[mgl64.Vec4] {
	return NewVector[mgl64.Vec4](Vec4Codec{}, tuning)
}

func (v *Vector[T]) Arity() int { return len(v.axes) }

// split unpacks val into v.buf; false if any component is NaN or Inf.
func (v *Vector[T]) split(what string, val T) bool {
	for i := range v.buf {
		c := v.codec.Component(val, i)
		if !finite(c) {
			warnf("ignoring %s with non-finite component %d (%g)", what, i, c)
			return false
		}
		v.buf[i] = c
	}
	return true
}

func (v *Vector[T]) compose(get func(*Scalar) float64) T {
	c := make([]float64, len(v.axes))
	for i, a := range v.axes {
		c[i] = get(a)
	}
	return v.codec.Compose(c)
}

func (v *Vector[T]) validAxis(i int) bool {
	if i < 0 || i >= len(v.axes) {
		warnf("axis %d out of range [0, %d)", i, len(v.axes))
		return false
	}
	return true
}

func (v *Vector[T]) Initialize() {
	v.initialized = true
	for _, a := range v.axes {
		a.Initialize()
	}
	v.events.prime(v.IsAtRest(), v.clampFlags())
}

func (v *Vector[T]) SetTuning(tuning dynamo.TuningConfig) {
	for _, a := range v.axes {
		a.SetTuning(tuning)
	}
}

func (v *Vector[T]) SetTarget(val T) {
	if !v.split("target", val) {
		return
	}
	for i, a := range v.axes {
		a.SetTarget(v.buf[i])
	}
}

func (v *Vector[T]) Target() T {
	return v.compose((*Scalar).Target)
}

func (v *Vector[T]) SetCurrentValue(val T) {
	if !v.split("current value", val) {
		return
	}
	for i, a := range v.axes {
		a.SetCurrentValue(v.buf[i])
	}
}

func (v *Vector[T]) CurrentValue() T {
	return v.compose((*Scalar).CurrentValue)
}

func (v *Vector[T]) SetVelocity(val T) {
	if !v.split("velocity", val) {
		return
	}
	for i, a := range v.axes {
		a.SetVelocity(v.buf[i])
	}
}

func (v *Vector[T]) AddVelocity(delta T) {
	if !v.split("velocity delta", delta) {
		return
	}
	for i, a := range v.axes {
		a.AddVelocity(v.buf[i])
	}
}

func (v *Vector[T]) Velocity() T {
	return v.compose((*Scalar).Velocity)
}

// SetCommonForceAndDrag toggles write-through of the common force and drag.
// Turning it on copies both to every axis immediately.
func (v *Vector[T]) SetCommonForceAndDrag(on bool) {
	v.common = on
	if on {
		v.broadcastCommon()
	}
}

func (v *Vector[T]) CommonForceAndDrag() bool { return v.common }

func (v *Vector[T]) SetCommonForce(f float64) {
	f, ok := nonNegative("common force", f)
	if !ok {
		return
	}
	v.commonForce = f
	if v.common {
		v.broadcastCommon()
	}
}

func (v *Vector[T]) CommonForce() float64 { return v.commonForce }

func (v *Vector[T]) SetCommonDrag(d float64) {
	d, ok := nonNegative("common drag", d)
	if !ok {
		return
	}
	v.commonDrag = d
	if v.common {
		v.broadcastCommon()
	}
}

func (v *Vector[T]) CommonDrag() float64 { return v.commonDrag }

func (v *Vector[T]) broadcastCommon() {
	for _, a := range v.axes {
		a.force = v.commonForce
		a.drag = v.commonDrag
	}
}

// SetForce sets per-axis force. Ignored while common force and drag is on.
func (v *Vector[T]) SetForce(val T) {
	if v.common {
		warnf("per-axis force ignored while common force and drag is enabled")
		return
	}
	if !v.split("force", val) {
		return
	}
	for i, a := range v.axes {
		a.SetForce(v.buf[i])
	}
}

func (v *Vector[T]) Force() T {
	return v.compose((*Scalar).Force)
}

// SetDrag sets per-axis drag. Ignored while common force and drag is on.
func (v *Vector[T]) SetDrag(val T) {
	if v.common {
		warnf("per-axis drag ignored while common force and drag is enabled")
		return
	}
	if !v.split("drag", val) {
		return
	}
	for i, a := range v.axes {
		a.SetDrag(v.buf[i])
	}
}

func (v *Vector[T]) Drag() T {
	return v.compose((*Scalar).Drag)
}

func (v *Vector[T]) SetAxisForce(i int, f float64) {
	if v.common {
		warnf("force of axis %d ignored while common force and drag is enabled", i)
		return
	}
	if v.validAxis(i) {
		v.axes[i].SetForce(f)
	}
}

func (v *Vector[T]) AxisForce(i int) float64 {
	if !v.validAxis(i) {
		return 0
	}
	return v.axes[i].Force()
}

func (v *Vector[T]) SetAxisDrag(i int, d float64) {
	if v.common {
		warnf("drag of axis %d ignored while common force and drag is enabled", i)
		return
	}
	if v.validAxis(i) {
		v.axes[i].SetDrag(d)
	}
}

func (v *Vector[T]) AxisDrag(i int) float64 {
	if !v.validAxis(i) {
		return 0
	}
	return v.axes[i].Drag()
}

func (v *Vector[T]) SetMinValue(val T) {
	if !v.split("min value", val) {
		return
	}
	for i, a := range v.axes {
		a.SetMinValue(v.buf[i])
	}
}

func (v *Vector[T]) MinValue() T {
	return v.compose((*Scalar).MinValue)
}

func (v *Vector[T]) SetMaxValue(val T) {
	if !v.split("max value", val) {
		return
	}
	for i, a := range v.axes {
		a.SetMaxValue(v.buf[i])
	}
}

func (v *Vector[T]) MaxValue() T {
	return v.compose((*Scalar).MaxValue)
}

func (v *Vector[T]) SetAxisMinValue(i int, value float64) {
	if v.validAxis(i) {
		v.axes[i].SetMinValue(value)
	}
}

func (v *Vector[T]) SetAxisMaxValue(i int, value float64) {
	if v.validAxis(i) {
		v.axes[i].SetMaxValue(value)
	}
}

func (v *Vector[T]) SetClampCurrentValue(on bool) {
	for _, a := range v.axes {
		a.SetClampCurrentValue(on)
	}
}

func (v *Vector[T]) SetClampTarget(on bool) {
	for _, a := range v.axes {
		a.SetClampTarget(on)
	}
}

func (v *Vector[T]) SetStopOnClamp(on bool) {
	for _, a := range v.axes {
		a.SetStopOnClamp(on)
	}
}

func (v *Vector[T]) SetAxisClampCurrentValue(i int, on bool) {
	if v.validAxis(i) {
		v.axes[i].SetClampCurrentValue(on)
	}
}

func (v *Vector[T]) SetAxisClampTarget(i int, on bool) {
	if v.validAxis(i) {
		v.axes[i].SetClampTarget(on)
	}
}

func (v *Vector[T]) SetAxisStopOnClamp(i int, on bool) {
	if v.validAxis(i) {
		v.axes[i].SetStopOnClamp(on)
	}
}

// AxisClamp returns a copy of the range policy of axis i.
func (v *Vector[T]) AxisClamp(i int) Clamp {
	if !v.validAxis(i) {
		return Clamp{}
	}
	return v.axes[i].Clamp()
}

func (v *Vector[T]) SetEnabled(on bool) { v.enabled = on }
func (v *Vector[T]) Enabled() bool      { return v.enabled }

func (v *Vector[T]) SetIntegrationMode(mode integrators.Mode) {
	for _, a := range v.axes {
		a.SetIntegrationMode(mode)
	}
}

func (v *Vector[T]) IntegrationMode() integrators.Mode { return v.axes[0].IntegrationMode() }

// SetNumericalIntegrator shares integ between all axes; nil restores
// semi-implicit Euler.
func (v *Vector[T]) SetNumericalIntegrator(integ dynamo.Integrator) {
	for _, a := range v.axes {
		a.SetNumericalIntegrator(integ)
	}
}

func (v *Vector[T]) Step(dt float64) {
	if !v.enabled || !validStep(dt) {
		return
	}
	if !v.initialized {
		v.Initialize()
	}
	for _, a := range v.axes {
		a.advance(dt)
	}
	v.events.update(v.IsAtRest(), v.clampFlags())
}

// ReachEquilibrium snaps every axis to its target with zero velocity.
func (v *Vector[T]) ReachEquilibrium() {
	for _, a := range v.axes {
		a.snap()
	}
	v.events.update(v.IsAtRest(), v.clampFlags())
}

// IsAtRest reports whether every axis is at rest.
func (v *Vector[T]) IsAtRest() bool {
	for _, a := range v.axes {
		if !a.IsAtRest() {
			return false
		}
	}
	return true
}

// IsClamped reports whether any axis hit a bound on the last step.
func (v *Vector[T]) IsClamped() bool {
	for _, a := range v.axes {
		if a.clamped {
			return true
		}
	}
	return false
}

func (v *Vector[T]) AxisClamped(i int) bool {
	return v.validAxis(i) && v.axes[i].clamped
}

func (v *Vector[T]) clampFlags() []bool {
	for i, a := range v.axes {
		v.flags[i] = a.clamped
	}
	return v.flags
}

func (v *Vector[T]) Events() *Events { return &v.events }

// Sample returns [values..., velocities...] and the targets as the control.
func (v *Vector[T]) Sample() (dynamo.State, dynamo.Control) {
	n := len(v.axes)
	x := make(dynamo.State, 2*n)
	u := make(dynamo.Control, n)
	for i, a := range v.axes {
		x[i] = a.current
		x[n+i] = a.velocity
		u[i] = a.target
	}
	return x, u
}

// Retarget sets the targets from u. Missing components keep their target.
func (v *Vector[T]) Retarget(u dynamo.Control) {
	for i, a := range v.axes {
		if i < len(u) {
			a.SetTarget(u[i])
		}
	}
}
