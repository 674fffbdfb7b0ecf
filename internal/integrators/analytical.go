package integrators

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/san-kum/springsim/internal/dynamo"
)

// omegaEpsilon matches the cutoff below which harmonica treats a spring as
// having no stiffness at all.
const omegaEpsilon = 1e-8

// Analytical advances dynamo.Linear systems with the exact solution of the
// damped oscillator, so it stays stable for any force and dt. Other systems
// fall back to RK4.
type Analytical struct {
	spring          harmonica.Spring
	dt, omega, zeta float64
	cached          bool
	fallback        *RK4
}

func NewAnalytical() *Analytical {
	return &Analytical{}
}

func (a *Analytical) coefficients(dt, omega, zeta float64) harmonica.Spring {
	if !a.cached || a.dt != dt || a.omega != omega || a.zeta != zeta {
		a.spring = harmonica.NewSpring(dt, omega, zeta)
		a.dt, a.omega, a.zeta = dt, omega, zeta
		a.cached = true
	}
	return a.spring
}

func (a *Analytical) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	lin, ok := dyn.(dynamo.Linear)
	if !ok {
		if a.fallback == nil {
			a.fallback = NewRK4()
		}
		return a.fallback.Step(dyn, x, u, t, dt)
	}

	force := math.Max(lin.Stiffness(), 0)
	drag := math.Max(lin.Damping(), 0)
	n := len(x)
	half := n / 2
	result := make(dynamo.State, n)

	omega := math.Sqrt(force)
	if omega < omegaEpsilon {
		for i := 0; i < half; i++ {
			result[i], result[half+i] = dragDecay(x[i], x[half+i], drag, dt)
		}
		return result
	}

	s := a.coefficients(dt, omega, drag/(2*omega))
	for i := 0; i < half; i++ {
		target := 0.0
		if i < len(u) {
			target = u[i]
		}
		result[i], result[half+i] = s.Update(x[i], x[half+i], target)
	}

	return result
}

// dragDecay is the exact solution of x'' = -drag*x'.
func dragDecay(pos, vel, drag, dt float64) (float64, float64) {
	if drag < omegaEpsilon {
		return pos + vel*dt, vel
	}
	decay := math.Exp(-drag * dt)
	return pos + vel*(1-decay)/drag, vel * decay
}
