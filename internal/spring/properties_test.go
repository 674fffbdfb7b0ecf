package spring_test

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/spring"
)

const frame = 1.0 / 60.0

func settle(s *spring.Scalar, steps int, dt float64) {
	for i := 0; i < steps; i++ {
		s.Step(dt)
	}
}

var _ = Describe("Scalar spring", func() {
	var s *spring.Scalar

	BeforeEach(func() {
		s = spring.NewScalar(dynamo.DefaultTuning())
	})

	DescribeTable("converges to a fixed target",
		func(force, drag float64, mode integrators.Mode) {
			s.SetForce(force)
			s.SetDrag(drag)
			s.SetIntegrationMode(mode)
			s.SetTarget(0.75)
			settle(s, 3000, 1.0/240.0)

			Expect(s.CurrentValue()).To(BeNumerically("~", 0.75, 1e-3))
			Expect(s.Velocity()).To(BeNumerically("~", 0, 1e-3))
		},
		Entry("soft numerical", 20.0, 4.0, integrators.ModeNumerical),
		Entry("soft analytical", 20.0, 4.0, integrators.ModeAnalytical),
		Entry("default numerical", 150.0, 10.0, integrators.ModeNumerical),
		Entry("default analytical", 150.0, 10.0, integrators.ModeAnalytical),
		Entry("overdamped analytical", 50.0, 60.0, integrators.ModeAnalytical),
		Entry("stiff auto", 20000.0, 150.0, integrators.ModeAuto),
	)

	It("reaches equilibrium idempotently", func() {
		s.SetTarget(0.3)
		s.SetVelocity(-4)
		s.ReachEquilibrium()
		once := []float64{s.CurrentValue(), s.Velocity()}
		s.ReachEquilibrium()

		Expect([]float64{s.CurrentValue(), s.Velocity()}).To(Equal(once))
		Expect(s.CurrentValue()).To(Equal(s.Target()))
		Expect(s.Velocity()).To(BeZero())
	})

	It("can reach equilibrium before Initialize", func() {
		s.SetTarget(0.6)
		s.ReachEquilibrium()
		Expect(s.CurrentValue()).To(Equal(0.6))
		Expect(s.Initialized()).To(BeFalse())
	})

	It("keeps the value in range under random input", func() {
		rng := rand.New(rand.NewSource(42))
		s.SetMinValue(-2)
		s.SetMaxValue(3)
		s.SetClampCurrentValue(true)
		s.SetStopOnClamp(true)

		for i := 0; i < 5000; i++ {
			s.SetTarget(rng.NormFloat64() * 5)
			if rng.Intn(5) == 0 {
				s.SetCurrentValue(rng.NormFloat64() * 5)
				Expect(s.CurrentValue()).To(BeNumerically(">=", -2))
				Expect(s.CurrentValue()).To(BeNumerically("<=", 3))
			}
			s.Step(rng.Float64() * 0.1)
			Expect(s.CurrentValue()).To(BeNumerically(">=", -2))
			Expect(s.CurrentValue()).To(BeNumerically("<=", 3))
			if s.IsClamped() {
				Expect(s.Velocity()).To(BeZero())
			}
		}
	})
})

var _ = Describe("Integration switch", func() {
	It("agrees with the analytical path for soft springs", func() {
		numeric := spring.NewScalar(dynamo.DefaultTuning())
		exact := spring.NewScalar(dynamo.DefaultTuning())
		numeric.SetIntegrationMode(integrators.ModeNumerical)
		exact.SetIntegrationMode(integrators.ModeAnalytical)
		for _, s := range []*spring.Scalar{numeric, exact} {
			s.SetForce(4)
			s.SetDrag(1)
			s.SetTarget(1)
		}

		for i := 0; i < 4000; i++ {
			numeric.Step(1e-3)
			exact.Step(1e-3)
			Expect(numeric.CurrentValue()).To(BeNumerically("~", exact.CurrentValue(), 2e-3))
		}
	})

	It("shows no jump as force crosses the threshold", func() {
		tuning := dynamo.DefaultTuning()
		below := spring.NewScalar(tuning)
		above := spring.NewScalar(tuning)
		below.SetForce(tuning.MaxForceBeforeAnalyticalIntegration)
		above.SetForce(math.Nextafter(tuning.MaxForceBeforeAnalyticalIntegration, math.Inf(1)))

		dt := 1e-4
		Expect(below.UsesAnalytical(dt)).To(BeFalse())
		Expect(above.UsesAnalytical(dt)).To(BeTrue())

		below.SetTarget(1)
		above.SetTarget(1)
		below.Step(dt)
		above.Step(dt)
		Expect(below.CurrentValue()).To(BeNumerically("~", above.CurrentValue(), 1e-4))
	})

	It("switches a live spring without a discontinuity", func() {
		tuning := dynamo.DefaultTuning()
		s := spring.NewScalar(tuning)
		s.SetTarget(1)
		dt := 1e-3
		settle(s, 50, dt)
		last := s.CurrentValue()

		s.SetForce(tuning.MaxForceBeforeAnalyticalIntegration * 1.01)
		Expect(s.UsesAnalytical(dt)).To(BeTrue())
		s.Step(dt)

		// One step can move at most |v|*dt plus the second-order force term.
		bound := math.Abs(s.Velocity())*dt + tuning.MaxForceBeforeAnalyticalIntegration*1.01*dt*dt
		Expect(math.Abs(s.CurrentValue() - last)).To(BeNumerically("<=", bound+1e-9))
	})

	It("shows no jump at frame rate where omega*dt reaches one", func() {
		tuning := dynamo.DefaultTuning()
		below := spring.NewScalar(tuning)
		above := spring.NewScalar(tuning)
		for _, sp := range []*spring.Scalar{below, above} {
			sp.SetDrag(10)
			sp.SetTarget(1)
		}
		below.SetForce(3600 * 0.999)
		above.SetForce(3600 * 1.001)

		maxDiff := 0.0
		for i := 0; i < 30; i++ {
			below.Step(frame)
			above.Step(frame)
			maxDiff = math.Max(maxDiff, math.Abs(below.CurrentValue()-above.CurrentValue()))
		}
		Expect(maxDiff).To(BeNumerically("<", 1e-2))
	})
})

var _ = Describe("Vector3 spring", func() {
	It("clamps the current value per axis", func() {
		v := spring.NewVector3(dynamo.DefaultTuning())
		v.SetMinValue(mgl64.Vec3{0, 0, 0})
		v.SetMaxValue(mgl64.Vec3{1, 1, 1})
		v.SetClampCurrentValue(true)
		v.SetCurrentValue(mgl64.Vec3{2, -1, 0.5})

		Expect(v.CurrentValue()).To(Equal(mgl64.Vec3{1, 0, 0.5}))
	})

	It("stops only the axis that hit the wall", func() {
		v := spring.NewVector3(dynamo.DefaultTuning())
		v.SetClampCurrentValue(true)
		v.SetStopOnClamp(true)
		v.SetTarget(mgl64.Vec3{3, 0.5, 0})

		for i := 0; i < 120 && !v.AxisClamped(0); i++ {
			v.Step(frame)
		}
		Expect(v.AxisClamped(0)).To(BeTrue())
		Expect(v.Velocity()[0]).To(BeZero())
		Expect(v.AxisClamped(1)).To(BeFalse())
	})
})

var _ = Describe("Rotation spring", func() {
	It("snaps a half turn to identity", func() {
		r := spring.NewRotation(dynamo.DefaultTuning())
		r.SetTarget(mgl64.QuatIdent())
		r.SetCurrentValue(mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0}))
		r.ReachEquilibrium()

		Expect(r.CurrentValue().ApproxEqual(mgl64.QuatIdent())).To(BeTrue())
		Expect(r.Velocity()).To(Equal(mgl64.Vec3{}))
	})

	It("treats q and -q as the same target", func() {
		q := spring.EulerToQuat(-60, 100, 10)
		a := spring.NewRotation(dynamo.DefaultTuning())
		b := spring.NewRotation(dynamo.DefaultTuning())
		a.SetTarget(q)
		b.SetTarget(q.Scale(-1))

		for i := 0; i < 90; i++ {
			a.Step(frame)
			b.Step(frame)
			Expect(a.CurrentValue()).To(Equal(b.CurrentValue()))
			Expect(a.Velocity()).To(Equal(b.Velocity()))
		}
	})

	It("stays unit length", func() {
		r := spring.NewRotation(dynamo.DefaultTuning())
		r.SetForce(400)
		r.SetDrag(5)
		r.SetVelocity(mgl64.Vec3{20, -10, 5})
		for i := 0; i < 1000; i++ {
			r.Step(frame)
			Expect(r.CurrentValue().Len()).To(BeNumerically("~", 1, 1e-12))
		}
	})
})
