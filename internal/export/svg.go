package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/incline/internal/viz"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	svgBackground = "#0a0a0a"
	svgDot        = "#00ff00"
	svgOutline    = "#888888"
)

// svgDoc accumulates the body of one SVG image.
type svgDoc struct {
	w, h float64
	body strings.Builder
}

func (d *svgDoc) printf(format string, args ...any) {
	fmt.Fprintf(&d.body, format, args...)
	d.body.WriteByte('\n')
}

func (d *svgDoc) String() string {
	return fmt.Sprintf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"+
		"<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%.0f\" height=\"%.0f\" viewBox=\"0 0 %.0f %.0f\">\n"+
		"<rect width=\"100%%\" height=\"100%%\" fill=\"%s\"/>\n%s</svg>\n",
		d.w, d.h, d.w, d.h, svgBackground, d.body.String())
}

// CanvasToSVG draws every lit sub-pixel of the canvas as a dot, each
// sub-pixel scale units wide.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	pw, ph := canvas.PixelSize()
	doc := &svgDoc{w: float64(pw) * scale, h: float64(ph) * scale}

	doc.printf(`<g fill="%s">`, svgDot)
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			doc.printf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>`,
				(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, 0.4*scale)
		}
	}
	doc.printf("</g>")
	return doc.String()
}

// frame maps the x-y plane of a set of points into a w×h image with a 10%
// margin, keeping the aspect ratio so the incline angle reads true.
type frame struct {
	minX, minY, scale, h float64
}

func fit(w, h int, sets ...[]r3.Vec) frame {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pts := range sets {
		for _, p := range pts {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	margin := 0.1 * span
	scale := math.Min(float64(w), float64(h)) / (span + 2*margin)
	return frame{minX: minX - margin, minY: minY - margin, scale: scale, h: float64(h)}
}

func (f frame) project(p r3.Vec) (float64, float64) {
	return (p.X - f.minX) * f.scale, f.h - (p.Y-f.minY)*f.scale
}

func (f frame) path(pts []r3.Vec, closed bool) string {
	var b strings.Builder
	for i, p := range pts {
		x, y := f.project(p)
		if i == 0 {
			fmt.Fprintf(&b, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&b, " L%.1f,%.1f", x, y)
		}
	}
	if closed {
		b.WriteString(" Z")
	}
	return b.String()
}

// TrajectoryToSVG draws the x-y projection of the cart's path. A non-empty
// outline (the incline corners) is drawn behind it as a closed polygon.
func TrajectoryToSVG(points, outline []r3.Vec, width, height int, stroke string) string {
	if len(points) < 2 {
		return ""
	}
	f := fit(width, height, points, outline)
	doc := &svgDoc{w: float64(width), h: float64(height)}

	if len(outline) > 1 {
		doc.printf(`<path fill="none" stroke="%s" stroke-width="1" d="%s"/>`, svgOutline, f.path(outline, true))
	}
	doc.printf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>`, stroke, f.path(points, false))
	return doc.String()
}
