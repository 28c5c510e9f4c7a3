package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Point is one (time, value) sample.
type Point struct {
	T float64
	V float64
}

// Series accumulates samples in the order they are plotted. Nothing is
// resampled or dropped.
type Series struct {
	Name   string
	Unit   string
	points []Point
}

func NewSeries(name, unit string) *Series {
	return &Series{Name: name, Unit: unit, points: make([]Point, 0, 1024)}
}

func (s *Series) Plot(t, v float64) {
	s.points = append(s.points, Point{T: t, V: v})
}

func (s *Series) Len() int { return len(s.points) }

// Points returns the samples. The slice must not be modified.
func (s *Series) Points() []Point { return s.points }

func (s *Series) Last() (Point, bool) {
	if len(s.points) == 0 {
		return Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Values returns the last n values, or all of them when n <= 0.
func (s *Series) Values(n int) []float64 {
	pts := s.points
	if n > 0 && len(pts) > n {
		pts = pts[len(pts)-n:]
	}
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = p.V
	}
	return out
}

func (s *Series) Reset() { s.points = s.points[:0] }

// Chart renders the last n values as an ASCII line chart.
func (s *Series) Chart(n, width, height int) string {
	data := s.Values(n)
	if len(data) < 2 {
		return ""
	}
	caption := s.Name
	if s.Unit != "" {
		caption += " (" + s.Unit + ")"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
