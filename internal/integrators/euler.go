package integrators

import "github.com/san-kum/incline/internal/dynamo"

// Euler is the explicit (forward) Euler method: every component advances
// with the derivative evaluated at the start of the step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return x.Add(dyn.Derive(x, t).Scale(dt))
}

// SemiImplicitEuler updates velocities first and then moves positions with
// the new velocities. It expects the positions-then-velocities layout.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	dx := dyn.Derive(x, t)

	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dx[half+i]*dt
		result[i] = x[i] + result[half+i]*dt
	}
	return result
}
