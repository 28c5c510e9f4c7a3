package integrators

import "github.com/san-kum/incline/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta method. The stage buffers are
// reused between steps, so an RK4 value must not be shared across
// goroutines.
type RK4 struct {
	stage [4]dynamo.State
	probe dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) resize(n int) {
	if len(r.probe) == n {
		return
	}
	for i := range r.stage {
		r.stage[i] = make(dynamo.State, n)
	}
	r.probe = make(dynamo.State, n)
}

// axpy writes x + h*k into dst.
func axpy(dst, x, k dynamo.State, h float64) {
	for i := range x {
		dst[i] = x[i] + h*k[i]
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.resize(n)
	half := 0.5 * dt

	copy(r.stage[0], dyn.Derive(x, t))

	axpy(r.probe, x, r.stage[0], half)
	copy(r.stage[1], dyn.Derive(r.probe, t+half))

	axpy(r.probe, x, r.stage[1], half)
	copy(r.stage[2], dyn.Derive(r.probe, t+half))

	axpy(r.probe, x, r.stage[2], dt)
	copy(r.stage[3], dyn.Derive(r.probe, t+dt))

	result := make(dynamo.State, n)
	sixth := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + sixth*(r.stage[0][i]+2*r.stage[1][i]+2*r.stage[2][i]+r.stage[3][i])
	}
	return result
}
