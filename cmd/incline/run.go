package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/san-kum/incline/internal/experiment"
	"github.com/san-kum/incline/internal/export"
	"github.com/san-kum/incline/internal/storage"
	"github.com/san-kum/incline/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	realtime  bool
	saveRun   bool
	showPlot  bool
	pngDir    string
	liveGIF   string
	chartSize = 400
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a scenario and print the final report",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addScenarioFlags(cmd)
	cmd.Flags().BoolVar(&realtime, "realtime", false, "pace the run at --rate steps per second")
	cmd.Flags().BoolVar(&saveRun, "save", false, "store the run in the data directory")
	cmd.Flags().BoolVar(&showPlot, "plot", false, "print ascii charts of the run")
	cmd.Flags().StringVar(&pngDir, "png", "", "write PNG charts into this directory")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	s, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}

	e, err := experiment.New(s, experiment.Options{
		Logger: logger,
		Paced:  realtime,
		Record: saveRun || pngDir != "",
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := e.Runner.Report().WriteInitial(out); err != nil {
		return err
	}

	start := time.Now()
	res, runErr := e.Run(cmd.Context())
	elapsed := time.Since(start)

	if err := res.Report.Write(out, e.Format()); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "\nsteps: %d (%v)\n", res.Report.Steps, elapsed.Round(time.Millisecond))
	printMetrics(out, res.Metrics)

	if showPlot {
		fmt.Fprintln(out)
		fmt.Fprint(out, e.Panel.Charts(chartSize, 70, 8))
	}

	if pngDir != "" {
		corners := e.Incline.Corners()
		files, err := export.SaveCharts(pngDir, e.Recorder.Samples(), corners[:])
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "wrote %s\n", f)
		}
	}

	if saveRun {
		runID, err := storage.New(dataDir).Save(res.Scenario, res.Report, res.Metrics, e.Recorder.Samples())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
	}
	return nil
}

func printMetrics(w io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "metrics:")
	for _, k := range names {
		fmt.Fprintf(w, "  %s: %.6g\n", k, m[k])
	}
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "animate a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := resolveScenario(cmd, args)
			if err != nil {
				return err
			}
			m, err := viz.NewLiveModel(s.GetParams(), experiment.Launcher(s, logger), viz.LiveOptions{
				Title:   s.Name,
				Rate:    s.Rate,
				GIFPath: liveGIF,
			})
			if err != nil {
				return err
			}
			return viz.Run(m)
		},
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringVar(&liveGIF, "gif", "incline.gif", "where the g key saves recordings")
	return cmd
}

var (
	renderOut   string
	renderGIF   string
	renderEvery int
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [preset]",
		Short: "run headless and save the final scene as SVG, optionally as an animated GIF",
		Args:  cobra.MaximumNArgs(1),
		RunE:  renderScenario,
	}
	addScenarioFlags(cmd)
	cmd.Flags().StringVar(&renderOut, "out", "scene.svg", "SVG output path")
	cmd.Flags().StringVar(&renderGIF, "gif", "", "also record an animated GIF to this path")
	cmd.Flags().IntVar(&renderEvery, "every", 40, "steps between GIF frames")
	return cmd
}

func renderScenario(cmd *cobra.Command, args []string) error {
	s, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}
	e, err := experiment.New(s, experiment.Options{Logger: logger})
	if err != nil {
		return err
	}

	panel := e.Panel
	scene := viz.NewScene(60, 20, e.Incline, r3.Vec{X: panel.Timer.X, Y: panel.Timer.Y})
	var rec *viz.Recorder
	if renderGIF != "" {
		rec = viz.NewRecorder(2)
	}
	every := renderEvery
	if every < 1 {
		every = 1
	}

	ctx := cmd.Context()
	for {
		more, err := e.Runner.Step(ctx)
		if err != nil {
			return err
		}
		if rec != nil && (e.Runner.Steps()%every == 0 || !more) {
			scene.Draw(e.Runner.Cart().Pos, panel.Trail, panel.MotionMap)
			rec.Capture(scene.Canvas)
		}
		if !more {
			break
		}
	}

	scene.Draw(e.Runner.Cart().Pos, panel.Trail, panel.MotionMap)
	if err := os.WriteFile(renderOut, []byte(export.CanvasToSVG(scene.Canvas, 4)), 0644); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\nwrote %s\n", panel.Timer, renderOut)

	if rec != nil {
		if err := rec.Save(renderGIF); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s (%d frames)\n", renderGIF, rec.Len())
	}
	return nil
}
