package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func preset(t *testing.T, name string) *config.Scenario {
	t.Helper()
	s, err := config.GetPreset(name)
	require.NoError(t, err)
	return s
}

type sampleLog struct{ samples []sim.Sample }

func (l *sampleLog) OnStep(s sim.Sample) { l.samples = append(l.samples, s) }

func TestLaunchRidesUpAndComesBack(t *testing.T) {
	log := &sampleLog{}
	e, err := New(preset(t, "launch"), Options{Observers: []sim.Observer{log}})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	axis := e.Incline.Axis()
	apex := -1.0
	for _, s := range log.samples {
		if r3.Dot(s.Vel, axis) <= 0 {
			apex = s.Time
			break
		}
	}
	require.Greater(t, apex, 0.0, "cart never turned around")
	assert.InDelta(t, 3/(9.8*math.Sin(22*math.Pi/180)), apex, 0.001)
	assert.Greater(t, res.Report.Time, apex)
	assert.InDelta(t, 1.641, res.Report.Time, 0.005)
	assert.LessOrEqual(t, res.Report.Pos.Y, 0.03)

	assert.InDelta(t, 9.8*math.Sin(22*math.Pi/180), res.Report.Accel, 1e-9)
	assert.Less(t, res.Metrics["energy_drift"], 5e-3)
	assert.Less(t, res.Metrics["analytic_error"], 5e-3)
	assert.Len(t, e.Panel.MotionMap.Markers(), 9)
}

func TestSlideFromRest(t *testing.T) {
	e, err := New(preset(t, "slide"), Options{})
	require.NoError(t, err)

	res, err := e.Run(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, 1.032, res.Report.Time, 0.005)
	assert.LessOrEqual(t, res.Report.Pos.Y, 0.0)

	speeds := e.Panel.Velocity.Points()
	require.NotEmpty(t, speeds)
	for i := 1; i < len(speeds); i++ {
		require.Greater(t, speeds[i].V, speeds[i-1].V, "speed dropped at step %d", i)
	}
	axis := e.Incline.Axis()
	assert.Less(t, r3.Dot(res.Report.Vel, axis), 0.0, "cart should move down-slope")

	for _, mk := range e.Panel.MotionMap.Markers() {
		assert.NotEmpty(t, mk.Label)
	}
}

func TestGravitySignConventionsAgree(t *testing.T) {
	pos := preset(t, "slide")
	neg := pos.Clone()
	pos.Gravity = 9.8
	neg.Gravity = -9.8

	a, err := Run(context.Background(), pos, nil)
	require.NoError(t, err)
	b, err := Run(context.Background(), neg, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Report, b.Report)
}

func TestIntegratorsAgreeOnTheGround(t *testing.T) {
	want := 0.0
	for _, name := range []string{"semi-implicit", "euler", "rk4", "verlet"} {
		s := preset(t, "slide")
		s.Integrator = name
		res, err := Run(context.Background(), s, nil)
		require.NoError(t, err, name)
		if want == 0 {
			want = res.Report.Time
		}
		assert.InDelta(t, want, res.Report.Time, 0.002, name)
	}
}

func TestStepLimit(t *testing.T) {
	s := preset(t, "launch")
	s.MaxSteps = 100

	res, err := Run(context.Background(), s, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, dynamo.ErrStepLimit)
	require.NotNil(t, res)
	assert.Equal(t, 100, res.Report.Steps)
}

func TestNewRejectsInvalidScenario(t *testing.T) {
	s := preset(t, "launch")
	s.Dt = 0
	_, err := New(s, Options{})
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}

func TestNewCopiesScenario(t *testing.T) {
	s := preset(t, "launch")
	e, err := New(s, Options{})
	require.NoError(t, err)
	s.Mass = 10
	assert.Equal(t, 0.5, e.Scenario.Mass)
}

func TestLauncherAppliesParams(t *testing.T) {
	base := preset(t, "slide")
	launch := Launcher(base, nil)

	params := base.GetParams()
	params["angle_deg"] = 45
	runner, panel, err := launch(params)
	require.NoError(t, err)
	require.NotNil(t, panel)
	assert.InDelta(t, math.Pi/4, runner.Incline().Angle(), 1e-12)
	assert.Equal(t, 22.5, base.AngleDeg, "base scenario must not change")

	params["mass"] = -1
	_, _, err = launch(params)
	assert.ErrorIs(t, err, dynamo.ErrParameterBounds)
}
