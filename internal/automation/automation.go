// Package automation runs many incline scenarios: scripted batches,
// parameter sweeps and Monte Carlo trials.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/experiment"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Batch is a scripted sequence of runs.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Runs        []BatchRun `yaml:"runs"`
}

// BatchRun starts from a preset (or the default scenario) and applies
// tunable parameters on top.
type BatchRun struct {
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Dt         float64            `yaml:"dt"`
	Params     map[string]float64 `yaml:"params"`
	SaveAs     string             `yaml:"save_as"`
}

// Sink receives every finished run, e.g. to store it.
type Sink func(name string, e *experiment.Experiment, res *experiment.Result) error

func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse batch %s: %w", path, err)
	}
	if len(b.Runs) == 0 {
		return nil, fmt.Errorf("batch %s has no runs", path)
	}
	return &b, nil
}

// Scenario resolves the run into a full scenario.
func (r BatchRun) Scenario() (*config.Scenario, error) {
	s := config.DefaultScenario()
	if r.Preset != "" {
		p, err := config.GetPreset(r.Preset)
		if err != nil {
			return nil, err
		}
		s = p
	}
	if r.Integrator != "" {
		s.Integrator = r.Integrator
	}
	if r.Dt != 0 {
		s.Dt = r.Dt
	}
	for k, v := range r.Params {
		if err := s.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	if r.SaveAs != "" {
		s.Name = r.SaveAs
	}
	return s, s.Validate()
}

// RunBatch executes the runs in order and stops at the first failure.
func RunBatch(ctx context.Context, b *Batch, sink Sink, log *zap.Logger) ([]*experiment.Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]*experiment.Result, 0, len(b.Runs))

	for i, run := range b.Runs {
		s, err := run.Scenario()
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}
		log.Info("batch run", zap.Int("index", i+1), zap.Int("total", len(b.Runs)), zap.String("scenario", s.Name))

		e, err := experiment.New(s, experiment.Options{Logger: log, Record: sink != nil && run.SaveAs != ""})
		if err != nil {
			return results, fmt.Errorf("run %d setup: %w", i+1, err)
		}
		res, err := e.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("run %d: %w", i+1, err)
		}
		results = append(results, res)

		if sink != nil && run.SaveAs != "" {
			if err := sink(run.SaveAs, e, res); err != nil {
				return results, fmt.Errorf("run %d save: %w", i+1, err)
			}
		}
	}
	return results, nil
}

// ParameterSweep varies one tunable parameter over an evenly spaced range.
type ParameterSweep struct {
	Base      *config.Scenario
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

type SweepResult struct {
	ParamValue float64            `json:"param_value"`
	Result     *experiment.Result `json:"result"`
}

// Values lists the parameter values the sweep visits.
func (sw *ParameterSweep) Values() []float64 {
	if sw.NumSteps <= 1 {
		return []float64{sw.ParamMin}
	}
	step := (sw.ParamMax - sw.ParamMin) / float64(sw.NumSteps-1)
	out := make([]float64, sw.NumSteps)
	for i := range out {
		out[i] = sw.ParamMin + float64(i)*step
	}
	return out
}

// RunSweep runs every point of the sweep concurrently. Results keep the
// order of Values.
func RunSweep(ctx context.Context, sw *ParameterSweep) ([]SweepResult, error) {
	return sweep(ctx, sw.Base, sw.ParamName, sw.Values(), sw.Workers)
}

// SweepAngles runs base once per incline angle, in degrees.
func SweepAngles(ctx context.Context, base *config.Scenario, angles []float64, workers int) ([]SweepResult, error) {
	return sweep(ctx, base, "angle_deg", angles, workers)
}

func sweep(ctx context.Context, base *config.Scenario, param string, values []float64, workers int) ([]SweepResult, error) {
	if base == nil {
		return nil, fmt.Errorf("sweep needs a base scenario")
	}
	results := make([]SweepResult, len(values))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range values {
		i, v := i, v
		g.Go(func() error {
			s := base.Clone()
			if err := s.SetParam(param, v); err != nil {
				return fmt.Errorf("%s=%v: %w", param, v, err)
			}
			res, err := experiment.Run(ctx, s, nil)
			if err != nil {
				return fmt.Errorf("%s=%v: %w", param, v, err)
			}
			results[i] = SweepResult{ParamValue: v, Result: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloConfig perturbs the launch speed and start position of a base
// scenario.
type MonteCarloConfig struct {
	Base *config.Scenario
	// SpeedJitter and PositionJitter are half widths of uniform noise.
	SpeedJitter    float64
	PositionJitter float64
	NumTrials      int
	Workers        int
	Seed           int64
}

type MonteCarloResult struct {
	TrialID     int     `json:"trial"`
	LaunchSpeed float64 `json:"launch_speed"`
	Start       float64 `json:"start"`
	Time        float64 `json:"time"`
	Speed       float64 `json:"speed"`
}

// RunMonteCarlo draws every trial up front from one seeded source so the
// outcome does not depend on scheduling.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil || cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo needs a base scenario and at least one trial")
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	trials := make([]*config.Scenario, cfg.NumTrials)
	results := make([]MonteCarloResult, cfg.NumTrials)
	for i := range trials {
		s := cfg.Base.Clone()
		speed := 0.0
		if s.LaunchSpeed != nil {
			speed = *s.LaunchSpeed
		}
		speed += (rng.Float64() - 0.5) * 2 * cfg.SpeedJitter
		if s.LaunchSpeed != nil || cfg.SpeedJitter != 0 {
			s.SetLaunchSpeed(speed)
		}
		s.Position[0] += (rng.Float64() - 0.5) * 2 * cfg.PositionJitter
		trials[i] = s
		results[i] = MonteCarloResult{TrialID: i, LaunchSpeed: speed, Start: s.Position[0]}
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, s := range trials {
		i, s := i, s
		g.Go(func() error {
			res, err := experiment.Run(ctx, s, nil)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			results[i].Time = res.Report.Time
			results[i].Speed = res.Report.Speed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloStats summarizes the time to reach the ground.
func MonteCarloStats(results []MonteCarloResult) (mean, std float64) {
	if len(results) == 0 {
		return 0, 0
	}
	times := make([]float64, len(results))
	for i, r := range results {
		times[i] = r.Time
	}
	if len(times) == 1 {
		return times[0], 0
	}
	return stat.MeanStdDev(times, nil)
}
