package viz

import "github.com/san-kum/incline/internal/sim"

// Panel owns the display collaborators of one run.
type Panel struct {
	Position     *Series
	Velocity     *Series
	Acceleration *Series
	Trail        *Trail
	MotionMap    *MotionMap
	Timer        *Timer
}

type PanelConfig struct {
	EndTime  float64
	Markers  int
	DropTime bool
	TimerX   float64
	TimerY   float64
}

func NewPanel(cfg PanelConfig) (*Panel, error) {
	mm, err := NewMotionMap(cfg.EndTime, cfg.Markers, cfg.DropTime)
	if err != nil {
		return nil, err
	}
	return &Panel{
		Position:     NewSeries("position", "m"),
		Velocity:     NewSeries("velocity", "m/s"),
		Acceleration: NewSeries("acceleration", "m/s/s"),
		Trail:        NewTrail(),
		MotionMap:    mm,
		Timer:        NewTimer(cfg.TimerX, cfg.TimerY),
	}, nil
}

// Views wires the panel into a runner.
func (p *Panel) Views() sim.Views {
	return sim.Views{
		Position:     p.Position,
		Velocity:     p.Velocity,
		Acceleration: p.Acceleration,
		Trail:        p.Trail,
		MotionMap:    p.MotionMap,
		Timer:        p.Timer,
	}
}

// Charts renders the three strip charts stacked vertically.
func (p *Panel) Charts(n, width, height int) string {
	out := ""
	for _, s := range []*Series{p.Position, p.Velocity, p.Acceleration} {
		if c := s.Chart(n, width, height); c != "" {
			out += c + "\n\n"
		}
	}
	return out
}
