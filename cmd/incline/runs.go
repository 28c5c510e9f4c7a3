package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/incline/internal/export"
	"github.com/san-kum/incline/internal/physics"
	"github.com/san-kum/incline/internal/sim"
	"github.com/san-kum/incline/internal/storage"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

var exportOut string

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tCREATED\tANGLE\tDT\tINTEG\tT_FINAL\tSPEED")
	for _, run := range runs {
		s, rep := run.Scenario, run.Report
		if s == nil || rep == nil {
			continue
		}
		integ := s.Integrator
		if integ == "" {
			integ = "semi-implicit"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f°\t%.4gs\t%s\t%.4fs\t%.4f\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			s.AngleDeg,
			s.Dt,
			integ,
			rep.Time,
			rep.Speed,
		)
	}
	return w.Flush()
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringVar(&pngDir, "png", "", "write PNG charts into this directory instead")
	return cmd
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	out := cmd.OutOrStdout()
	if pngDir != "" {
		corners, err := runOutline(meta)
		if err != nil {
			return err
		}
		files, err := export.SaveCharts(pngDir, samples, corners)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(out, "wrote %s\n", f)
		}
		return nil
	}

	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "scenario: %s\n", meta.Name)
	fmt.Fprintf(out, "samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(sim.Sample) float64
	}{
		{"position (m)", func(s sim.Sample) float64 { return s.Distance }},
		{"velocity (m/s)", func(s sim.Sample) float64 { return s.Speed }},
		{"acceleration (m/s/s)", func(s sim.Sample) float64 { return s.Accel }},
	}
	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}
	return nil
}

func newExportCSVCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run samples to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(cmd, func(w io.Writer) error {
				return storage.New(dataDir).ExportCSV(w, args[0])
			})
		},
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and samples to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withOutput(cmd, func(w io.Writer) error {
				return storage.New(dataDir).ExportJSON(w, args[0])
			})
		},
	}
	cmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	return cmd
}

// withOutput runs fn against --out, or stdout when it is empty.
func withOutput(cmd *cobra.Command, fn func(io.Writer) error) error {
	if exportOut == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", exportOut)
	return nil
}

// runOutline rebuilds the incline of a stored run for drawing.
func runOutline(meta *storage.RunMetadata) ([]r3.Vec, error) {
	if meta.Scenario == nil {
		return nil, nil
	}
	inc, err := physics.NewIncline(meta.Scenario.InclineSpec(), meta.Scenario.Gravity)
	if err != nil {
		return nil, err
	}
	corners := inc.Corners()
	return corners[:], nil
}
