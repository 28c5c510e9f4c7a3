package metrics

import (
	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// AnalyticError is the largest distance between the integrated position
// and the closed form solution on the incline.
type AnalyticError struct {
	name     string
	incline  *physics.Incline
	pos0     r3.Vec
	vel0     r3.Vec
	maxError float64
}

func NewAnalyticError(inc *physics.Incline, pos0, vel0 r3.Vec) *AnalyticError {
	return &AnalyticError{name: "analytic_error", incline: inc, pos0: pos0, vel0: vel0}
}

func (a *AnalyticError) Name() string { return a.name }

// Observe compares x against the exact position at time t.
func (a *AnalyticError) Observe(x dynamo.State, t float64) {
	want, _ := a.incline.Analytic(a.pos0, a.vel0, t)
	got := r3.Vec{X: x[0], Y: x[1], Z: x[2]}
	if d := r3.Norm(r3.Sub(got, want)); d > a.maxError {
		a.maxError = d
	}
}

func (a *AnalyticError) Value() float64 { return a.maxError }

func (a *AnalyticError) Reset() { a.maxError = 0 }
