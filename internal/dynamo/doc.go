// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces shared by the incline
// model, the integrators and the metrics:
//
//   - [State]: flat vector of positions followed by velocities
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: fixed-step numerical integrator interface
//   - [Metric]: passive per-step measurement
//
// # Example
//
//	inc, _ := physics.NewIncline(physics.DefaultInclineSpec(), 9.8)
//	slide := physics.NewSlide(inc, 0.5)
//	integ := integrators.NewSemiImplicitEuler()
//	next := integ.Step(slide, x, t, dt)
//
// # State layout
//
// Mechanical systems store positions in the first half of a [State] and the
// matching velocities in the second half. Integrators that split position
// and velocity updates (semi-implicit Euler, Verlet) rely on this layout.
package dynamo
