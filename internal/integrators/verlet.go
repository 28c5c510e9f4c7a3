package integrators

import "github.com/san-kum/incline/internal/dynamo"

// Verlet is velocity Verlet over the positions-then-velocities layout.
type Verlet struct {
	moved dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(v.moved) != n {
		v.moved = make(dynamo.State, n)
	}

	a0 := dyn.Derive(x, t)
	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[i] = x[i] + x[half+i]*dt + 0.5*a0[half+i]*dt*dt
		v.moved[i] = result[i]
		v.moved[half+i] = x[half+i]
	}

	a1 := dyn.Derive(v.moved, t+dt)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + 0.5*(a0[half+i]+a1[half+i])*dt
	}
	return result
}
