package viz

import "gonum.org/v1/gonum/spatial/r3"

// Trail is the continuous polyline of every position the cart visited.
type Trail struct {
	points []r3.Vec
}

func NewTrail() *Trail {
	return &Trail{points: make([]r3.Vec, 0, 1024)}
}

func (tr *Trail) Append(p r3.Vec) { tr.points = append(tr.points, p) }
func (tr *Trail) Len() int        { return len(tr.points) }

// Points returns the polyline vertices. The slice must not be modified.
func (tr *Trail) Points() []r3.Vec { return tr.points }

func (tr *Trail) Reset() { tr.points = tr.points[:0] }
