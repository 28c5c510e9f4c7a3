package viz

import (
	"math"

	"github.com/san-kum/incline/internal/physics"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scene draws the x-y plane of the run onto a braille canvas: the incline,
// the trail, the motion map markers and the cart.
type Scene struct {
	Canvas  *Canvas
	incline *physics.Incline
	minX    float64
	maxY    float64
	scale   float64
}

// NewScene fits the incline, with a margin, into a w×h character canvas.
// extra points (such as the timer anchor) are kept in view as well.
func NewScene(w, h int, inc *physics.Incline, extra ...r3.Vec) *Scene {
	c := NewCanvas(w, h)
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	corners := inc.Corners()
	pts := append(corners[:], extra...)
	pts = append(pts, r3.Vec{})
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	margin := 0.1 * math.Max(maxX-minX, maxY-minY)
	minX, maxX = minX-margin, maxX+margin
	minY, maxY = minY-margin, maxY+margin

	pw, ph := c.PixelSize()
	scale := math.Min(float64(pw-1)/(maxX-minX), float64(ph-1)/(maxY-minY))
	return &Scene{Canvas: c, incline: inc, minX: minX, maxY: maxY, scale: scale}
}

// Project maps a world point to canvas sub-pixels. Screen y grows downward.
func (s *Scene) Project(p r3.Vec) (int, int) {
	x := int(math.Round((p.X - s.minX) * s.scale))
	y := int(math.Round((s.maxY - p.Y) * s.scale))
	return x, y
}

func (s *Scene) line(a, b r3.Vec) {
	x0, y0 := s.Project(a)
	x1, y1 := s.Project(b)
	s.Canvas.DrawLine(x0, y0, x1, y1)
}

// Draw repaints the scene. trail and mm may be nil.
func (s *Scene) Draw(cart r3.Vec, trail *Trail, mm *MotionMap) string {
	s.Canvas.Clear()

	s.line(r3.Vec{X: s.minX}, r3.Vec{X: s.minX + float64(s.Canvas.Width*2)/s.scale})

	corners := s.incline.Corners()
	for i := range corners {
		s.line(corners[i], corners[(i+1)%len(corners)])
	}

	if trail != nil {
		pts := trail.Points()
		for i := 1; i < len(pts); i++ {
			s.line(pts[i-1], pts[i])
		}
	}

	if mm != nil {
		for _, mk := range mm.Markers() {
			x, y := s.Project(mk.Pos)
			s.Canvas.FillRect(x, y, 1, 1)
		}
	}

	x, y := s.Project(cart)
	s.Canvas.FillRect(x, y, 2, 1)

	return s.Canvas.String()
}
