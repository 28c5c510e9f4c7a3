package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/incline/internal/config"
	"github.com/san-kum/incline/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	logLevel   string
	configFile string

	mass       float64
	angle      float64
	gravity    float64
	dt         float64
	speed      float64
	threshold  float64
	integrator string
	rate       float64
	maxSteps   int
	report     string

	logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "incline",
		Short:         "cart on a frictionless inclined plane",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := logging.New(logLevel)
			if err != nil {
				return err
			}
			logger = log
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".incline", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newCompareCmd(),
		newSweepCmd(),
		newMonteCarloCmd(),
		newBatchCmd(),
		newOptimizeCmd(),
		newRenderCmd(),
		newListCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newPresetsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// addScenarioFlags registers the flags that override scenario fields.
func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml), applied over the preset")
	cmd.Flags().Float64Var(&mass, "mass", config.DefaultMass, "cart mass (kg)")
	cmd.Flags().Float64Var(&angle, "angle", 22, "incline angle (degrees)")
	cmd.Flags().Float64Var(&gravity, "gravity", config.DefaultGravity, "gravitational acceleration (m/s/s), sign ignored")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "time step (s)")
	cmd.Flags().Float64Var(&speed, "speed", 0, "launch speed along the incline (m/s), negative is down-slope")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "height at which the run stops (m)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator (semi-implicit, euler, rk4, verlet)")
	cmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "maximum steps per second when paced")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop with an error after this many steps (0 = no limit)")
	cmd.Flags().StringVar(&report, "report", "", "report format (brief, full)")
}

// resolveScenario layers preset < config file < explicit flags.
func resolveScenario(cmd *cobra.Command, args []string) (*config.Scenario, error) {
	name := "launch"
	if len(args) > 0 {
		name = args[0]
	}
	s, err := config.GetPreset(name)
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		s, err = config.Overlay(s, configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("mass") {
		s.Mass = mass
	}
	if f.Changed("angle") {
		s.AngleDeg = angle
	}
	if f.Changed("gravity") {
		s.Gravity = gravity
	}
	if f.Changed("dt") {
		s.Dt = dt
	}
	if f.Changed("speed") {
		s.SetLaunchSpeed(speed)
	}
	if f.Changed("threshold") {
		s.Threshold = threshold
	}
	if f.Changed("integrator") {
		s.Integrator = integrator
	}
	if f.Changed("rate") {
		s.Rate = rate
	}
	if f.Changed("max-steps") {
		s.MaxSteps = maxSteps
	}
	if f.Changed("report") {
		s.Report = report
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("scenario resolved",
		zap.String("name", s.Name),
		zap.Float64("angle_deg", s.AngleDeg),
		zap.Float64("dt", s.Dt),
		zap.String("integrator", s.Integrator),
	)
	return s, nil
}
