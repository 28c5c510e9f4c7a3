package sim

import (
	"context"

	"gonum.org/v1/gonum/spatial/r3"
	"golang.org/x/time/rate"
)

// Plotter accumulates an ordered (time, value) series.
type Plotter interface {
	Plot(t, v float64)
}

// Trail collects every position the cart passes through.
type Trail interface {
	Append(p r3.Vec)
}

// MotionMap decides on its own when to drop a breadcrumb. It receives the
// cart position by value.
type MotionMap interface {
	Update(t float64, p r3.Vec)
}

// Timer shows the elapsed simulation time.
type Timer interface {
	Update(t float64)
}

// Observer receives a copy of every step. Metrics and recorders use it.
type Observer interface {
	OnStep(s Sample)
}

// Views groups the display collaborators fed on every step. Nil members
// are skipped.
type Views struct {
	Position     Plotter
	Velocity     Plotter
	Acceleration Plotter
	Trail        Trail
	MotionMap    MotionMap
	Timer        Timer
}

// Sample pairs the time at the start of a step with the state after it.
type Sample struct {
	Step     int     `json:"step"`
	Time     float64 `json:"time"`
	Pos      r3.Vec  `json:"position"`
	Vel      r3.Vec  `json:"velocity"`
	Distance float64 `json:"distance"`
	Speed    float64 `json:"speed"`
	Accel    float64 `json:"accel"`
}

// Pacer caps how fast steps run against the wall clock. It may block but
// never speeds a run up.
type Pacer interface {
	Wait(ctx context.Context) error
}

type noPacer struct{}

func (noPacer) Wait(context.Context) error { return nil }

// NoPacer runs steps as fast as the CPU allows.
var NoPacer Pacer = noPacer{}

// RatePacer allows at most maxPerSecond steps per second.
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer returns NoPacer when maxPerSecond is not positive.
func NewRatePacer(maxPerSecond int) Pacer {
	if maxPerSecond <= 0 {
		return NoPacer
	}
	return &RatePacer{limiter: rate.NewLimiter(rate.Limit(maxPerSecond), 1)}
}

func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
