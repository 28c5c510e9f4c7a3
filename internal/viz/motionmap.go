package viz

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Marker is one breadcrumb of a motion map.
type Marker struct {
	Time  float64
	Pos   r3.Vec
	Label string
}

// MotionMap drops up to a fixed number of breadcrumbs spread evenly over
// the expected duration of a run.
type MotionMap struct {
	interval float64
	limit    int
	dropTime bool
	markers  []Marker
}

// NewMotionMap spaces markers endTime/markers seconds apart. With dropTime
// set every marker carries its drop time as a label.
func NewMotionMap(endTime float64, markers int, dropTime bool) (*MotionMap, error) {
	if !(endTime > 0) {
		return nil, fmt.Errorf("motion map end time must be positive, got %v", endTime)
	}
	if markers <= 0 {
		return nil, fmt.Errorf("motion map needs at least one marker, got %d", markers)
	}
	return &MotionMap{
		interval: endTime / float64(markers),
		limit:    markers,
		dropTime: dropTime,
		markers:  make([]Marker, 0, markers),
	}, nil
}

// Update drops the next marker once its slot time has been reached. At
// most one marker is dropped per call.
func (m *MotionMap) Update(t float64, p r3.Vec) {
	if len(m.markers) >= m.limit {
		return
	}
	if t < float64(len(m.markers))*m.interval {
		return
	}
	mk := Marker{Time: t, Pos: p}
	if m.dropTime {
		mk.Label = fmt.Sprintf("%.2fs", t)
	}
	m.markers = append(m.markers, mk)
}

func (m *MotionMap) Markers() []Marker { return m.markers }
func (m *MotionMap) Interval() float64 { return m.interval }

func (m *MotionMap) Reset() { m.markers = m.markers[:0] }
