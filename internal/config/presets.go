package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/incline/internal/sim"
)

func launchSpeed(v float64) *float64 { return &v }

// Presets are the two classic runs: a cart launched up the slope that
// comes back down, and a cart released from rest near the top.
var Presets = map[string]*Scenario{
	"launch": {
		Name:        "launch",
		Description: "launched up a 22° slope at 3 m/s, rides up, stops and slides back",
		Mass:        0.5,
		AngleDeg:    22,
		Gravity:     9.8,
		Dt:          0.0005,
		Position:    Vec{0, 0.04, 0.08},
		LaunchSpeed: launchSpeed(3),
		Threshold:   0.03,
		Incline:     InclineConfig{Center: Vec{1, 0, 0}, Length: 2, Thickness: 0.02, Width: 0.2},
		MotionMap:   MotionMapConfig{EndTime: 2, Markers: 10},
		Timer:       TimerConfig{X: 2, Y: 1.5},
		Rate:        1000,
		Report:      string(sim.ReportFull),
	},
	"slide": {
		Name:        "slide",
		Description: "released from rest near the top of a 22.5° slope",
		Mass:        0.5,
		AngleDeg:    22.5,
		Gravity:     -9.8,
		Dt:          0.0005,
		Position:    Vec{1.9, 0.04, 0.08},
		Threshold:   0,
		Incline:     InclineConfig{Center: Vec{1, 0, 0}, Length: 2, Thickness: 0.02, Width: 0.2},
		MotionMap:   MotionMapConfig{EndTime: 1, Markers: 10, DropTime: true},
		Timer:       TimerConfig{X: 2, Y: 2},
		Rate:        1000,
		Report:      string(sim.ReportBrief),
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Scenario, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (have %v)", name, ListPresets())
	}
	return p.Clone(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for k := range Presets {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
