// Package physics models a point-mass cart on a frictionless inclined plane.
//
// The plane is described by an [InclineSpec] in its untilted frame and
// tilted once by [NewIncline]; the derived unit axis never changes after
// that. A [Cart] holds mass, position and velocity. [Slide] binds the two
// into a [dynamo.System] so any integrator can advance it:
//
//	inc, _ := physics.NewIncline(spec, 9.8)
//	cart, _ := physics.NewCart(0.5, r3.Vec{Y: 0.04, Z: 0.08}, r3.Vec{})
//	cart.Place(inc)
//	cart.Launch(inc, 3)
//
// # Sign convention
//
// Gravity is always a magnitude. The net force is Axis·(−m·g·sinθ), so it
// points toward the base of the plane for any tilt.
//
// [Slide] also implements [dynamo.Hamiltonian] for energy drift checks.
package physics
