package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/incline/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Cart is the point mass riding the incline.
type Cart struct {
	Mass float64
	Pos  r3.Vec
	Vel  r3.Vec
}

func NewCart(mass float64, pos, vel r3.Vec) (*Cart, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("cart mass %v: %w", mass, dynamo.ErrParameterBounds)
	}
	if !finite(pos) || !finite(vel) {
		return nil, fmt.Errorf("cart initial conditions: %w", dynamo.ErrInvalidState)
	}
	return &Cart{Mass: mass, Pos: pos, Vel: vel}, nil
}

// Place applies the incline's tilt to the cart position so the cart stays
// on the surface.
func (c *Cart) Place(inc *Incline) {
	c.Pos = inc.Rotate(c.Pos)
}

// Launch sets the velocity to speed along the tilted axis. Positive speed
// moves up-slope.
func (c *Cart) Launch(inc *Incline, speed float64) {
	c.Vel = r3.Scale(speed, inc.Axis())
}

func (c *Cart) Speed() float64 { return r3.Norm(c.Vel) }

func (c *Cart) State() dynamo.State {
	return dynamo.State{c.Pos.X, c.Pos.Y, c.Pos.Z, c.Vel.X, c.Vel.Y, c.Vel.Z}
}

// SetState replaces position and velocity together.
func (c *Cart) SetState(x dynamo.State) error {
	if len(x) != 6 {
		return fmt.Errorf("cart state has %d components: %w", len(x), dynamo.ErrDimensionMismatch)
	}
	c.Pos = r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	c.Vel = r3.Vec{X: x[3], Y: x[4], Z: x[5]}
	return nil
}

// Slide is the cart-on-incline system integrated by the runner. State
// layout is [x y z vx vy vz].
type Slide struct {
	Incline *Incline
	Mass    float64
}

func NewSlide(inc *Incline, mass float64) *Slide {
	return &Slide{Incline: inc, Mass: mass}
}

func (s *Slide) StateDim() int { return 6 }

func (s *Slide) Derive(x dynamo.State, t float64) dynamo.State {
	a := r3.Scale(1/s.Mass, s.Incline.NetForce(s.Mass))
	return dynamo.State{x[3], x[4], x[5], a.X, a.Y, a.Z}
}

// Energy is kinetic plus gravitational potential energy, with the zero of
// potential at y = 0.
func (s *Slide) Energy(x dynamo.State) float64 {
	v2 := x[3]*x[3] + x[4]*x[4] + x[5]*x[5]
	return 0.5*s.Mass*v2 + s.Mass*s.Incline.Gravity()*x[1]
}
