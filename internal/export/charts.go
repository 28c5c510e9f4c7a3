package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	chartWidthIn  = 8
	chartHeightIn = 5
	chartDPI      = 150
)

// Chart files written by SaveCharts.
const (
	PositionFile     = "position.png"
	VelocityFile     = "velocity.png"
	AccelerationFile = "acceleration.png"
	TrajectoryFile   = "trajectory.png"
	TrajectorySVG    = "trajectory.svg"
)

// limitedTicker produces at most maxLabels evenly spaced ticks formatted
// with labelFmt.
func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)

		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.Padding = vg.Points(8)

	p.X.Label.TextStyle.Font.Size = vg.Points(13)
	p.Y.Label.TextStyle.Font.Size = vg.Points(13)
	p.X.Label.Padding = vg.Points(6)
	p.Y.Label.Padding = vg.Points(6)

	p.X.LineStyle.Width = vg.Points(1.5)
	p.Y.LineStyle.Width = vg.Points(1.5)
	p.X.Padding = vg.Points(10)
	p.Y.Padding = vg.Points(10)

	p.X.Tick.Label.Font.Size = vg.Points(11)
	p.Y.Tick.Label.Font.Size = vg.Points(11)

	p.X.Tick.Marker = limitedTicker(8, "%.2f")
	p.Y.Tick.Marker = limitedTicker(8, "%.2f")

	p.Add(plotter.NewGrid())
}

// WritePNG renders p as a PNG of the given size in inches.
func WritePNG(w io.Writer, p *plot.Plot, widthIn, heightIn float64) error {
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch),
		vgimg.UseDPI(chartDPI),
	)
	p.Draw(draw.New(c))

	bw := bufio.NewWriter(w)
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(bw); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return bw.Flush()
}

func savePNG(p *plot.Plot, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, p, chartWidthIn, chartHeightIn); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// TimeSeriesPlot charts one derived value against time.
func TimeSeriesPlot(title, ylabel string, samples []sim.Sample, value func(sim.Sample) float64) (*plot.Plot, error) {
	pts := make(plotter.XYs, len(samples))
	for i, s := range samples {
		pts[i].X = s.Time
		pts[i].Y = value(s)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel
	stylePlot(p)

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Width = vg.Points(2)
	line.LineStyle.Color = color.RGBA{R: 0, G: 120, B: 200, A: 255}
	p.Add(line)
	return p, nil
}

// TrajectoryPlot draws the cart path in the x-y plane over the incline
// outline.
func TrajectoryPlot(samples []sim.Sample, outline []r3.Vec) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "trajectory"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	stylePlot(p)

	if len(outline) > 1 {
		pts := make(plotter.XYs, 0, len(outline)+1)
		for _, c := range outline {
			pts = append(pts, plotter.XY{X: c.X, Y: c.Y})
		}
		pts = append(pts, pts[0])
		l, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = color.Gray{Y: 90}
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
	}

	path := make(plotter.XYs, len(samples))
	for i, s := range samples {
		path[i] = plotter.XY{X: s.Pos.X, Y: s.Pos.Y}
	}
	l, err := plotter.NewLine(path)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	l.LineStyle.Width = vg.Points(2)
	p.Add(l)
	p.Legend.Add("cart", l)
	return p, nil
}

// SaveCharts writes the position, velocity, acceleration and trajectory
// charts of a run into dir.
func SaveCharts(dir string, samples []sim.Sample, outline []r3.Vec) ([]string, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("no samples to chart")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create directory: %w", err)
	}

	series := []struct {
		file, title, label string
		value              func(sim.Sample) float64
	}{
		{PositionFile, "position", "distance from origin (m)", func(s sim.Sample) float64 { return s.Distance }},
		{VelocityFile, "velocity", "speed (m/s)", func(s sim.Sample) float64 { return s.Speed }},
		{AccelerationFile, "acceleration", "acceleration (m/s/s)", func(s sim.Sample) float64 { return s.Accel }},
	}

	written := make([]string, 0, len(series)+2)
	for _, sr := range series {
		p, err := TimeSeriesPlot(sr.title, sr.label, samples, sr.value)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, sr.file)
		if err := savePNG(p, path); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	p, err := TrajectoryPlot(samples, outline)
	if err != nil {
		return written, err
	}
	path := filepath.Join(dir, TrajectoryFile)
	if err := savePNG(p, path); err != nil {
		return written, err
	}
	written = append(written, path)

	pts := make([]r3.Vec, len(samples))
	for i, s := range samples {
		pts[i] = s.Pos
	}
	if svg := TrajectoryToSVG(pts, outline, 800, 500, "#00ccff"); svg != "" {
		path := filepath.Join(dir, TrajectorySVG)
		if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}
