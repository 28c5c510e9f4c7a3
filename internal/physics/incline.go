package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/incline/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// InclineSpec describes the plane before it is tilted. All lengths are in
// meters, Angle is in radians and is applied counterclockwise about
// RotationAxis through Origin.
type InclineSpec struct {
	Center       r3.Vec
	Length       float64
	Thickness    float64
	Width        float64
	Angle        float64
	Origin       r3.Vec
	RotationAxis r3.Vec
}

// DefaultInclineSpec is a 2 m plane whose left end sits on the origin.
func DefaultInclineSpec() InclineSpec {
	return InclineSpec{
		Center:       r3.Vec{X: 1},
		Length:       2,
		Thickness:    0.02,
		Width:        0.2,
		RotationAxis: r3.Vec{Z: 1},
	}
}

// Incline is the tilted plane. It is immutable once built.
type Incline struct {
	spec    InclineSpec
	gravity float64
	axis    r3.Vec
	sin     float64
}

// NewIncline tilts the plane described by spec and derives its unit axis.
// g is taken as a magnitude: gravity always pulls the cart toward the base
// of the plane regardless of the sign the caller used.
func NewIncline(spec InclineSpec, g float64) (*Incline, error) {
	if !(spec.Length > 0) || math.IsInf(spec.Length, 0) {
		return nil, fmt.Errorf("incline length %v: %w", spec.Length, dynamo.ErrParameterBounds)
	}
	if math.IsNaN(spec.Angle) || math.IsInf(spec.Angle, 0) {
		return nil, fmt.Errorf("incline angle %v: %w", spec.Angle, dynamo.ErrParameterBounds)
	}
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, fmt.Errorf("gravity %v: %w", g, dynamo.ErrParameterBounds)
	}
	if r3.Norm(spec.RotationAxis) == 0 || !finite(spec.RotationAxis) {
		return nil, fmt.Errorf("rotation axis %v: %w", spec.RotationAxis, dynamo.ErrParameterBounds)
	}
	if !finite(spec.Center) || !finite(spec.Origin) {
		return nil, fmt.Errorf("incline placement: %w", dynamo.ErrInvalidState)
	}

	inc := &Incline{
		spec:    spec,
		gravity: math.Abs(g),
		sin:     math.Sin(spec.Angle),
	}
	inc.axis = r3.Unit(r3.Rotate(r3.Vec{X: spec.Length}, spec.Angle, spec.RotationAxis))
	return inc, nil
}

func (inc *Incline) Spec() InclineSpec { return inc.spec }
func (inc *Incline) Angle() float64    { return inc.spec.Angle }
func (inc *Incline) Gravity() float64  { return inc.gravity }

// Axis is the unit vector along the plane, pointing up-slope for angles
// in (0, π/2).
func (inc *Incline) Axis() r3.Vec { return inc.axis }

// Rotate applies the incline's tilt to a point given in the untilted frame.
func (inc *Incline) Rotate(p r3.Vec) r3.Vec {
	rel := r3.Sub(p, inc.spec.Origin)
	return r3.Add(r3.Rotate(rel, inc.spec.Angle, inc.spec.RotationAxis), inc.spec.Origin)
}

// Center is the tilted center of the plane.
func (inc *Incline) Center() r3.Vec { return inc.Rotate(inc.spec.Center) }

// Acceleration is the signed acceleration along Axis: -g·sinθ.
func (inc *Incline) Acceleration() float64 {
	return -inc.gravity * inc.sin
}

// NetForce is the gravity component along the plane acting on mass m.
func (inc *Incline) NetForce(m float64) r3.Vec {
	return r3.Scale(-(m * inc.gravity * inc.sin), inc.axis)
}

// Corners returns the outline of the plane's long face in the tilted
// frame, in drawing order.
func (inc *Incline) Corners() [4]r3.Vec {
	c := inc.spec.Center
	hl, ht := inc.spec.Length/2, inc.spec.Thickness/2
	pts := [4]r3.Vec{
		{X: c.X - hl, Y: c.Y - ht, Z: c.Z},
		{X: c.X + hl, Y: c.Y - ht, Z: c.Z},
		{X: c.X + hl, Y: c.Y + ht, Z: c.Z},
		{X: c.X - hl, Y: c.Y + ht, Z: c.Z},
	}
	for i := range pts {
		pts[i] = inc.Rotate(pts[i])
	}
	return pts
}

// Analytic is the closed-form position and velocity after time t for a
// cart starting at pos0 with velocity vel0.
func (inc *Incline) Analytic(pos0, vel0 r3.Vec, t float64) (r3.Vec, r3.Vec) {
	a := r3.Scale(inc.Acceleration(), inc.axis)
	pos := r3.Add(pos0, r3.Add(r3.Scale(t, vel0), r3.Scale(0.5*t*t, a)))
	vel := r3.Add(vel0, r3.Scale(t, a))
	return pos, vel
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
