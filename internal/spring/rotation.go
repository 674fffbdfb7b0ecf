package spring

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
)

const smallAngle = 1e-12

// Rotation springs a unit quaternion towards a target. The error between the
// two is taken as a rotation vector and driven to zero by a three-axis
// spring whose velocity is the angular velocity in rad/s.
type Rotation struct {
	current  mgl64.Quat
	target   mgl64.Quat
	velocity mgl64.Vec3
	axes     *Vector[mgl64.Vec3]

	enabled     bool
	initialized bool
	tuning      dynamo.TuningConfig
	events      Events
}

func NewRotation(tuning dynamo.TuningConfig) *Rotation {
	axes := NewVector3(tuning)
	axes.SetCommonForceAndDrag(true)
	return &Rotation{
		current: mgl64.QuatIdent(),
		target:  mgl64.QuatIdent(),
		axes:    axes,
		enabled: true,
		tuning:  tuning,
	}
}

// unitQuat normalizes q; false for zero-length or non-finite input.
func unitQuat(what string, q mgl64.Quat) (mgl64.Quat, bool) {
	l := q.Len()
	if !finite(l) || l < smallAngle {
		warnf("ignoring degenerate %s quaternion %v", what, q)
		return mgl64.Quat{}, false
	}
	return q.Scale(1 / l), true
}

// EulerToQuat converts degrees, applied Z first, then X, then Y.
func EulerToQuat(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), mgl64.Vec3{0, 1, 0})
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz)
}

// logMap returns the rotation vector of q, with angle in [0, pi].
func logMap(q mgl64.Quat) mgl64.Vec3 {
	if q.W < 0 {
		q = q.Scale(-1)
	}
	s := q.V.Len()
	if s < smallAngle {
		return q.V.Mul(2)
	}
	return q.V.Mul(2 * math.Atan2(s, q.W) / s)
}

func expMap(v mgl64.Vec3) mgl64.Quat {
	angle := v.Len()
	if angle < smallAngle {
		return mgl64.Quat{W: 1, V: v.Mul(0.5)}.Normalize()
	}
	return mgl64.QuatRotate(angle, v.Mul(1/angle))
}

// nearTarget returns the target flipped into the current hemisphere.
func (r *Rotation) nearTarget() mgl64.Quat {
	if r.current.Dot(r.target) < 0 {
		return r.target.Scale(-1)
	}
	return r.target
}

// errorVector is the rotation vector taking current onto target.
func (r *Rotation) errorVector() mgl64.Vec3 {
	return logMap(r.nearTarget().Mul(r.current.Inverse()))
}

func (r *Rotation) Initialize() {
	r.initialized = true
	r.events.prime(r.IsAtRest(), nil)
}

func (r *Rotation) SetTuning(tuning dynamo.TuningConfig) {
	r.tuning = tuning
	r.axes.SetTuning(tuning)
}

func (r *Rotation) SetTarget(q mgl64.Quat) {
	if q, ok := unitQuat("target", q); ok {
		r.target = q
	}
}

// SetTargetEuler sets the target from Euler angles in degrees.
func (r *Rotation) SetTargetEuler(x, y, z float64) {
	if !finite(x) || !finite(y) || !finite(z) {
		warnf("ignoring non-finite target euler (%g, %g, %g)", x, y, z)
		return
	}
	r.target = EulerToQuat(x, y, z)
}

func (r *Rotation) Target() mgl64.Quat { return r.target }

func (r *Rotation) SetCurrentValue(q mgl64.Quat) {
	if q, ok := unitQuat("current", q); ok {
		r.current = q
	}
}

func (r *Rotation) SetCurrentEuler(x, y, z float64) {
	if !finite(x) || !finite(y) || !finite(z) {
		warnf("ignoring non-finite current euler (%g, %g, %g)", x, y, z)
		return
	}
	r.current = EulerToQuat(x, y, z)
}

func (r *Rotation) CurrentValue() mgl64.Quat { return r.current }

// SetVelocity sets the angular velocity in rad/s.
func (r *Rotation) SetVelocity(w mgl64.Vec3) {
	if !finite(w[0]) || !finite(w[1]) || !finite(w[2]) {
		warnf("ignoring non-finite angular velocity %v", w)
		return
	}
	r.velocity = w
}

func (r *Rotation) AddVelocity(dw mgl64.Vec3) {
	r.SetVelocity(r.velocity.Add(dw))
}

func (r *Rotation) Velocity() mgl64.Vec3 { return r.velocity }

func (r *Rotation) SetForce(f float64) { r.axes.SetCommonForce(f) }
func (r *Rotation) Force() float64     { return r.axes.CommonForce() }
func (r *Rotation) SetDrag(d float64)  { r.axes.SetCommonDrag(d) }
func (r *Rotation) Drag() float64      { return r.axes.CommonDrag() }

func (r *Rotation) SetEnabled(on bool) { r.enabled = on }
func (r *Rotation) Enabled() bool      { return r.enabled }

func (r *Rotation) SetIntegrationMode(mode integrators.Mode) { r.axes.SetIntegrationMode(mode) }
func (r *Rotation) IntegrationMode() integrators.Mode        { return r.axes.IntegrationMode() }

func (r *Rotation) SetNumericalIntegrator(integ dynamo.Integrator) {
	r.axes.SetNumericalIntegrator(integ)
}

// AngleToTarget is the shortest angle in radians between current and target.
func (r *Rotation) AngleToTarget() float64 {
	return r.errorVector().Len()
}

func (r *Rotation) Step(dt float64) {
	if !r.enabled || !validStep(dt) {
		return
	}
	if !r.initialized {
		r.Initialize()
	}

	r.axes.SetCurrentValue(mgl64.Vec3{})
	r.axes.SetVelocity(r.velocity)
	r.axes.SetTarget(r.errorVector())
	for _, a := range r.axes.axes {
		a.advance(dt)
	}

	next := expMap(r.axes.CurrentValue()).Mul(r.current)
	if q, ok := unitQuat("stepped", next); ok {
		r.current = q
		r.velocity = r.axes.Velocity()
	}
	r.events.update(r.IsAtRest(), nil)
}

// ReachEquilibrium snaps to the target on the short arc with zero angular
// velocity.
func (r *Rotation) ReachEquilibrium() {
	r.current = r.nearTarget()
	r.velocity = mgl64.Vec3{}
	r.events.update(r.IsAtRest(), nil)
}

func (r *Rotation) IsAtRest() bool {
	return r.velocity.Len() <= r.tuning.RestVelocity &&
		r.AngleToTarget() <= r.tuning.RestDistance
}

func (r *Rotation) Events() *Events { return &r.events }

// Sample returns [error..., angular velocity...] where error is the rotation
// vector from target to current, so the control (the error's target) is zero.
func (r *Rotation) Sample() (dynamo.State, dynamo.Control) {
	e := r.errorVector()
	w := r.velocity
	return dynamo.State{-e[0], -e[1], -e[2], w[0], w[1], w[2]}, dynamo.Control{0, 0, 0}
}

// Retarget takes three Euler angles in degrees or a quaternion as w, x, y, z.
func (r *Rotation) Retarget(u dynamo.Control) {
	switch len(u) {
	case 3:
		r.SetTargetEuler(u[0], u[1], u[2])
	case 4:
		r.SetTarget(mgl64.Quat{W: u[0], V: mgl64.Vec3{u[1], u[2], u[3]}})
	}
}
