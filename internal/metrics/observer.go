package metrics

import (
	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/sim"
)

// Observer feeds runner samples into metrics. Samples carry the time a
// step started, so dt is added to get the time of the post-step state.
type Observer struct {
	dt      float64
	metrics []dynamo.Metric
}

func NewObserver(dt float64, ms ...dynamo.Metric) *Observer {
	return &Observer{dt: dt, metrics: ms}
}

func (o *Observer) OnStep(s sim.Sample) {
	x := dynamo.State{s.Pos.X, s.Pos.Y, s.Pos.Z, s.Vel.X, s.Vel.Y, s.Vel.Z}
	t := s.Time + o.dt
	for _, m := range o.metrics {
		m.Observe(x, t)
	}
}

func (o *Observer) Metrics() []dynamo.Metric { return o.metrics }

// Values returns every metric's value keyed by name.
func (o *Observer) Values() map[string]float64 {
	out := make(map[string]float64, len(o.metrics))
	for _, m := range o.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (o *Observer) Reset() {
	for _, m := range o.metrics {
		m.Reset()
	}
}
