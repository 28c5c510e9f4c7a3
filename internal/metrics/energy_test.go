package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/physics"
	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

func slide(t *testing.T, deg float64) *physics.Slide {
	t.Helper()
	spec := physics.DefaultInclineSpec()
	spec.Angle = deg * math.Pi / 180
	inc, err := physics.NewIncline(spec, 9.8)
	if err != nil {
		t.Fatal(err)
	}
	return physics.NewSlide(inc, 0.5)
}

func TestEnergyMean(t *testing.T) {
	s := slide(t, 30)
	m := NewEnergy(s)

	m.Observe(dynamo.State{0, 1, 0, 0, 0, 0}, 0)
	m.Observe(dynamo.State{0, 0, 0, 2, 0, 0}, 0)

	want := (0.5*9.8*1 + 0.5*0.5*4) / 2
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("mean energy = %v, want %v", m.Value(), want)
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDriftUsesStartState(t *testing.T) {
	s := slide(t, 30)
	x0 := dynamo.State{0, 1, 0, 0, 0, 0}
	d := NewEnergyDrift(s, x0)

	// same height, 10% more kinetic energy than the start holds in total
	e0 := s.Energy(x0)
	v := math.Sqrt(2 * 0.1 * e0 / 0.5)
	d.Observe(dynamo.State{0, 1, 0, v, 0, 0}, 0.1)

	if math.Abs(d.Value()-0.1) > 1e-12 {
		t.Errorf("drift = %v, want 0.1", d.Value())
	}

	x0[1] = 100
	d.Reset()
	d.Observe(dynamo.State{0, 1, 0, 0, 0, 0}, 0)
	if d.Value() != 0 {
		t.Errorf("drift = %v, start state was not copied", d.Value())
	}
}

func TestEnergyDriftFirstSampleReference(t *testing.T) {
	d := NewEnergyDrift(slide(t, 30), nil)
	d.Observe(dynamo.State{0, 1, 0, 0, 0, 0}, 0)
	if d.Value() != 0 {
		t.Errorf("first sample drift = %v, want 0", d.Value())
	}
	d.Observe(dynamo.State{0, 0.5, 0, 0, 0, 0}, 0)
	if math.Abs(d.Value()-0.5) > 1e-12 {
		t.Errorf("drift = %v, want 0.5", d.Value())
	}
}

func TestAnalyticErrorExactPath(t *testing.T) {
	s := slide(t, 22)
	inc := s.Incline
	vel0 := r3.Scale(3, inc.Axis())
	a := NewAnalyticError(inc, r3.Vec{}, vel0)

	for _, tm := range []float64{0, 0.1, 0.5, 1} {
		p, v := inc.Analytic(r3.Vec{}, vel0, tm)
		a.Observe(dynamo.State{p.X, p.Y, p.Z, v.X, v.Y, v.Z}, tm)
	}
	if a.Value() > 1e-12 {
		t.Errorf("error on the exact path = %v", a.Value())
	}

	a.Observe(dynamo.State{0, 0.25, 0, 0, 0, 0}, 0)
	if math.Abs(a.Value()-0.25) > 1e-12 {
		t.Errorf("error = %v, want 0.25", a.Value())
	}
}

func TestObserverShiftsTime(t *testing.T) {
	s := slide(t, 22)
	inc := s.Incline
	a := NewAnalyticError(inc, r3.Vec{}, r3.Vec{})
	o := NewObserver(0.01, a, NewEnergy(s))

	p, v := inc.Analytic(r3.Vec{}, r3.Vec{}, 0.01)
	o.OnStep(sim.Sample{Time: 0, Pos: p, Vel: v})

	vals := o.Values()
	if vals["analytic_error"] > 1e-15 {
		t.Errorf("post-step state compared at the wrong time: error %v", vals["analytic_error"])
	}
	if _, ok := vals["energy"]; !ok {
		t.Error("energy missing from values")
	}

	o.Reset()
	if o.Values()["energy"] != 0 {
		t.Error("reset did not reach every metric")
	}
}
