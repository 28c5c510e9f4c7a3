package viz

import "fmt"

// Timer is the on-screen elapsed time readout. X and Y anchor it in scene
// coordinates.
type Timer struct {
	X, Y float64
	t    float64
}

func NewTimer(x, y float64) *Timer {
	return &Timer{X: x, Y: y}
}

func (tm *Timer) Update(t float64) { tm.t = t }
func (tm *Timer) Elapsed() float64 { return tm.t }

func (tm *Timer) String() string {
	return fmt.Sprintf("Time: %.2f s", tm.t)
}
