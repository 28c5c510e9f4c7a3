package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/incline/internal/automation"
	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/experiment"
	"github.com/san-kum/incline/internal/optim"
	"github.com/san-kum/incline/internal/storage"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [preset] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addScenarioFlags(cmd)
	return cmd
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	base, err := resolveScenario(cmd, args[:1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing integrators for %s (dt=%.4g, angle=%.4g°)\n\n", base.Name, base.Dt, base.AngleDeg)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tT_FINAL\tSPEED\tENERGY_DRIFT\tANALYTIC_ERR\tTIME_MS")

	for _, name := range args[1:] {
		s := base.Clone()
		s.Integrator = name

		start := time.Now()
		res, err := experiment.Run(cmd.Context(), s, logger)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.6f\t%.2e\t%.2e\t%.2f\n",
			name,
			res.Report.Time,
			res.Report.Speed,
			res.Metrics["energy_drift"],
			res.Metrics["analytic_error"],
			float64(elapsed.Microseconds())/1000,
		)
	}
	return w.Flush()
}

var (
	sweepAngles  string
	sweepWorkers int
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scenario at several incline angles in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScenario,
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringVar(&sweepAngles, "angles", "10,20,30,40,50", "comma separated angles in degrees")
	cmd.Flags().IntVar(&sweepWorkers, "workers", 4, "concurrent runs")
	return cmd
}

func parseFloats(list string) ([]float64, error) {
	parts := strings.Split(list, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", p, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no values in %q", list)
	}
	return out, nil
}

func sweepScenario(cmd *cobra.Command, args []string) error {
	base, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}
	angles, err := parseFloats(sweepAngles)
	if err != nil {
		return err
	}

	results, err := automation.SweepAngles(cmd.Context(), base, angles, sweepWorkers)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ANGLE\tT_FINAL\tSPEED\tACCEL\tSTEPS")
	for _, r := range results {
		rep := r.Result.Report
		fmt.Fprintf(w, "%.2f\t%.4f\t%.4f\t%.4f\t%d\n", r.ParamValue, rep.Time, rep.Speed, rep.Accel, rep.Steps)
	}
	return w.Flush()
}

var (
	mcTrials      int
	mcSeed        int64
	mcSpeedJitter float64
	mcPosJitter   float64
)

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "perturb launch speed and start position and summarize landing times",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveScenario(cmd, args)
			if err != nil {
				return err
			}
			results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
				Base:           base,
				SpeedJitter:    mcSpeedJitter,
				PositionJitter: mcPosJitter,
				NumTrials:      mcTrials,
				Workers:        sweepWorkers,
				Seed:           mcSeed,
			})
			if err != nil {
				return err
			}
			mean, std := automation.MonteCarloStats(results)
			fmt.Fprintf(cmd.OutOrStdout(), "trials: %d\nlanding time: %.4f ± %.4f s\n", len(results), mean, std)
			return nil
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().IntVar(&mcTrials, "trials", 100, "number of trials")
	cmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().Float64Var(&mcSpeedJitter, "speed-jitter", 0.2, "half width of launch speed noise (m/s)")
	cmd.Flags().Float64Var(&mcPosJitter, "pos-jitter", 0.01, "half width of start position noise along x (m)")
	cmd.Flags().IntVar(&sweepWorkers, "workers", 4, "concurrent runs")
	return cmd
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [file]",
		Short: "run a yaml list of scenarios, storing those with save_as",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := automation.LoadBatch(args[0])
			if err != nil {
				return err
			}
			st := storage.New(dataDir)
			out := cmd.OutOrStdout()
			sink := func(name string, e *experiment.Experiment, res *experiment.Result) error {
				runID, err := st.Save(res.Scenario, res.Report, res.Metrics, e.Recorder.Samples())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "saved %s as %s\n", name, runID)
				return nil
			}

			results, err := automation.RunBatch(cmd.Context(), b, sink, logger)
			for i, r := range results {
				fmt.Fprintf(out, "%d. %s: t=%.4f s, speed=%.4f m/s\n", i+1, r.Scenario.Name, r.Report.Time, r.Report.Speed)
			}
			return err
		},
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available scenario presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tANGLE\tLAUNCH\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				launch := "rest"
				if p.LaunchSpeed != nil {
					launch = fmt.Sprintf("%.2f m/s", *p.LaunchSpeed)
				}
				fmt.Fprintf(w, "%s\t%.2f°\t%s\t%s\n", name, p.AngleDeg, launch, p.Description)
			}
			return w.Flush()
		},
	}
}

var (
	optAxes   []string
	optMetric string
	optTarget float64
)

func newOptimizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "optimize [preset]",
		Short: "grid search tunable parameters so a run quantity lands on a target",
		Long: "Each --param takes name=lo:hi:n, e.g. launch_speed=1:5:17.\n" +
			"Quantities: time, speed, distance, steps, or any metric name.",
		Args: cobra.MaximumNArgs(1),
		RunE: optimizeScenario,
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringArrayVar(&optAxes, "param", []string{"launch_speed=1:5:17"}, "parameter range name=lo:hi:n (repeatable)")
	cmd.Flags().StringVar(&optMetric, "metric", "time", "quantity to match")
	cmd.Flags().Float64Var(&optTarget, "target", 1.5, "target value of the quantity")
	return cmd
}

func parseAxis(spec string) (optim.Axis, error) {
	name, rng, ok := strings.Cut(spec, "=")
	if !ok || name == "" {
		return optim.Axis{}, fmt.Errorf("bad parameter range %q, want name=lo:hi:n", spec)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return optim.Axis{}, fmt.Errorf("bad parameter range %q, want name=lo:hi:n", spec)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return optim.Axis{}, fmt.Errorf("bad lower bound in %q: %w", spec, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return optim.Axis{}, fmt.Errorf("bad upper bound in %q: %w", spec, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return optim.Axis{}, fmt.Errorf("bad count in %q", spec)
	}
	return optim.Axis{Param: name, Values: optim.Linspace(lo, hi, n)}, nil
}

func optimizeScenario(cmd *cobra.Command, args []string) error {
	base, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}
	axes := make([]optim.Axis, 0, len(optAxes))
	for _, a := range optAxes {
		axis, err := parseAxis(a)
		if err != nil {
			return err
		}
		axes = append(axes, axis)
	}
	objective, err := optim.Target(optMetric, optTarget)
	if err != nil {
		return err
	}

	best, err := optim.NewGridSearch(logger, axes...).Search(cmd.Context(), base, objective)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	got, _ := optim.Quantity(best.Result, optMetric)
	fmt.Fprintf(out, "tried %d combinations\n", best.Tried)
	keys := make([]string, 0, len(best.Params))
	for k := range best.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s = %.4f\n", k, best.Params[k])
	}
	fmt.Fprintf(out, "%s = %.4f (target %.4f, off by %.2e)\n", optMetric, got, optTarget, best.Score)
	return nil
}
