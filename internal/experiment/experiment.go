package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/integrators"
	"github.com/san-kum/incline/internal/metrics"
	"github.com/san-kum/incline/internal/physics"
	"github.com/san-kum/incline/internal/sim"
	"github.com/san-kum/incline/internal/storage"
	"github.com/san-kum/incline/internal/viz"
	"go.uber.org/zap"
)

type Options struct {
	Logger *zap.Logger
	// Paced applies the scenario rate to the runner.
	Paced bool
	// Record keeps every sample in Experiment.Recorder.
	Record bool
	// Observers are attached after the built-in metrics.
	Observers []sim.Observer
}

// Experiment is one fully wired run: geometry, cart, runner, display
// collaborators and metrics.
type Experiment struct {
	Scenario *config.Scenario
	Incline  *physics.Incline
	Runner   *sim.Runner
	Panel    *viz.Panel
	Metrics  *metrics.Observer
	Drift    *metrics.EnergyDrift
	Recorder *storage.Recorder
	Start    dynamo.State
}

// Result is what a finished run leaves behind.
type Result struct {
	Scenario *config.Scenario   `json:"scenario"`
	Report   *sim.Report        `json:"report"`
	Metrics  map[string]float64 `json:"metrics"`
}

// New sets up a run. The scenario is copied, so callers may keep
// modifying theirs.
func New(s *config.Scenario, opts Options) (*Experiment, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.Clone()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	inc, err := physics.NewIncline(s.InclineSpec(), s.Gravity)
	if err != nil {
		return nil, err
	}

	cart, err := physics.NewCart(s.Mass, s.Position.R3(), s.Velocity.R3())
	if err != nil {
		return nil, err
	}
	cart.Place(inc)
	if s.LaunchSpeed != nil {
		cart.Launch(inc, *s.LaunchSpeed)
	}
	start := cart.State()
	pos0, vel0 := cart.Pos, cart.Vel

	integ, err := integrators.New(s.Integrator)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, dynamo.ErrParameterBounds)
	}

	runner, err := sim.New(inc, cart, integ, sim.Config{
		Dt:        s.Dt,
		Threshold: s.Threshold,
		MaxSteps:  s.MaxSteps,
	})
	if err != nil {
		return nil, err
	}
	runner.SetLogger(log.With(zap.String("scenario", s.Name)))
	if opts.Paced {
		runner.SetPacer(sim.NewRatePacer(int(s.Rate)))
	}

	panel, err := viz.NewPanel(viz.PanelConfig{
		EndTime:  s.MotionMap.EndTime,
		Markers:  s.MotionMap.Markers,
		DropTime: s.MotionMap.DropTime,
		TimerX:   s.Timer.X,
		TimerY:   s.Timer.Y,
	})
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, dynamo.ErrParameterBounds)
	}
	runner.Attach(panel.Views())

	slide := physics.NewSlide(inc, s.Mass)
	drift := metrics.NewEnergyDrift(slide, start)
	obs := metrics.NewObserver(s.Dt,
		metrics.NewEnergy(slide),
		drift,
		metrics.NewAnalyticError(inc, pos0, vel0),
	)
	runner.AddObserver(obs)
	var rec *storage.Recorder
	if opts.Record {
		rec = storage.NewRecorder()
		runner.AddObserver(rec)
	}
	for _, o := range opts.Observers {
		runner.AddObserver(o)
	}

	return &Experiment{
		Scenario: s,
		Incline:  inc,
		Runner:   runner,
		Panel:    panel,
		Metrics:  obs,
		Drift:    drift,
		Recorder: rec,
		Start:    start,
	}, nil
}

// Run drives the runner to the ground. The result is returned even when
// the run fails part way.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	report, err := e.Runner.Run(ctx)
	return &Result{
		Scenario: e.Scenario,
		Report:   report,
		Metrics:  e.Metrics.Values(),
	}, err
}

// Format is the report format the scenario asks for.
func (e *Experiment) Format() sim.ReportFormat {
	f, _ := sim.ParseReportFormat(e.Scenario.Report)
	return f
}

// Run builds and runs a scenario without pacing.
func Run(ctx context.Context, s *config.Scenario, log *zap.Logger) (*Result, error) {
	e, err := New(s, Options{Logger: log})
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

// Launcher adapts a base scenario for the live view. Each launch applies
// the tuned parameters to a fresh copy of base.
func Launcher(base *config.Scenario, log *zap.Logger) viz.Launcher {
	return func(params map[string]float64) (*sim.Runner, *viz.Panel, error) {
		s := base.Clone()
		for k, v := range params {
			if err := s.SetParam(k, v); err != nil {
				return nil, nil, err
			}
		}
		e, err := New(s, Options{Logger: log})
		if err != nil {
			return nil, nil, err
		}
		return e.Runner, e.Panel, nil
	}
}
