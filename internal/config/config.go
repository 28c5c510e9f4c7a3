package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/integrators"
	"github.com/san-kum/incline/internal/physics"
	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMass      = 0.5
	DefaultGravity   = 9.8
	DefaultDt        = 0.0005
	DefaultRate      = 1000.0
	DefaultMarkers   = 10
	DefaultThickness = 0.02
	DefaultWidth     = 0.2
	DefaultLength    = 2.0
)

// Vec is a point or vector written as a three element YAML sequence.
type Vec [3]float64

func (v Vec) R3() r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func FromR3(p r3.Vec) Vec { return Vec{p.X, p.Y, p.Z} }

type InclineConfig struct {
	Center    Vec     `yaml:"center" json:"center"`
	Length    float64 `yaml:"length" json:"length"`
	Thickness float64 `yaml:"thickness" json:"thickness"`
	Width     float64 `yaml:"width" json:"width"`
}

type MotionMapConfig struct {
	EndTime  float64 `yaml:"end_time" json:"end_time"`
	Markers  int     `yaml:"markers" json:"markers"`
	DropTime bool    `yaml:"drop_time" json:"drop_time"`
}

type TimerConfig struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Scenario is everything needed to set up and run one cart on one incline.
type Scenario struct {
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Mass        float64 `yaml:"mass" json:"mass"`
	AngleDeg    float64 `yaml:"angle_deg" json:"angle_deg"`
	// Gravity is a magnitude. Its sign is ignored.
	Gravity float64 `yaml:"gravity" json:"gravity"`
	Dt      float64 `yaml:"dt" json:"dt"`
	// Position is the cart position before the incline is tilted.
	Position Vec `yaml:"position" json:"position"`
	// Velocity is used as given unless LaunchSpeed is set.
	Velocity Vec `yaml:"velocity" json:"velocity"`
	// LaunchSpeed seeds the velocity along the tilted incline. Positive is
	// up-slope.
	LaunchSpeed *float64        `yaml:"launch_speed,omitempty" json:"launch_speed,omitempty"`
	Threshold   float64         `yaml:"threshold" json:"threshold"`
	Incline     InclineConfig   `yaml:"incline" json:"incline"`
	MotionMap   MotionMapConfig `yaml:"motion_map" json:"motion_map"`
	Timer       TimerConfig     `yaml:"timer" json:"timer"`
	// Rate caps steps per wall clock second. Zero runs unpaced.
	Rate       float64 `yaml:"rate" json:"rate"`
	MaxSteps   int     `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`
	Report     string  `yaml:"report" json:"report"`
	Integrator string  `yaml:"integrator" json:"integrator"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Name:     "default",
		Mass:     DefaultMass,
		AngleDeg: 22,
		Gravity:  DefaultGravity,
		Dt:       DefaultDt,
		Position: Vec{0, 0.04, 0.08},
		Incline: InclineConfig{
			Center:    Vec{1, 0, 0},
			Length:    DefaultLength,
			Thickness: DefaultThickness,
			Width:     DefaultWidth,
		},
		MotionMap: MotionMapConfig{EndTime: 2, Markers: DefaultMarkers},
		Timer:     TimerConfig{X: 2, Y: 1.5},
		Rate:      DefaultRate,
		Report:    string(sim.ReportFull),
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a scenario on top of the defaults and validates it.
func Parse(data []byte) (*Scenario, error) {
	return parseOver(DefaultScenario(), data)
}

// Overlay reads a scenario file on top of base. Fields missing from the
// file keep the base values. base itself is not modified.
func Overlay(base *Scenario, path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseOver(base.Clone(), data)
}

func parseOver(s *Scenario, data []byte) (*Scenario, error) {
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (s *Scenario) Clone() *Scenario {
	c := *s
	if s.LaunchSpeed != nil {
		v := *s.LaunchSpeed
		c.LaunchSpeed = &v
	}
	return &c
}

func (s *Scenario) Angle() float64 { return s.AngleDeg * math.Pi / 180 }

func (s *Scenario) SetLaunchSpeed(v float64) { s.LaunchSpeed = &v }

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Validate checks every field a run depends on.
func (s *Scenario) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if !(s.Mass > 0) || !finite(s.Mass) {
		add("mass must be positive, got %v", s.Mass)
	}
	if !finite(s.AngleDeg) {
		add("angle must be finite, got %v", s.AngleDeg)
	}
	if !finite(s.Gravity) {
		add("gravity must be finite, got %v", s.Gravity)
	}
	if !(s.Dt > 0) || !finite(s.Dt) {
		add("dt must be positive, got %v", s.Dt)
	}
	if !finite(s.Position[:]...) || !finite(s.Velocity[:]...) || !finite(s.Threshold) {
		add("initial conditions must be finite")
	}
	if s.LaunchSpeed != nil && !finite(*s.LaunchSpeed) {
		add("launch speed must be finite, got %v", *s.LaunchSpeed)
	}
	if !(s.Incline.Length > 0) || !finite(s.Incline.Length) {
		add("incline length must be positive, got %v", s.Incline.Length)
	}
	if s.Incline.Thickness < 0 || s.Incline.Width < 0 {
		add("incline thickness and width must not be negative")
	}
	if !(s.MotionMap.EndTime > 0) {
		add("motion map end time must be positive, got %v", s.MotionMap.EndTime)
	}
	if s.MotionMap.Markers <= 0 {
		add("motion map needs at least one marker, got %d", s.MotionMap.Markers)
	}
	if s.Rate < 0 || !finite(s.Rate) {
		add("rate must not be negative, got %v", s.Rate)
	}
	if s.MaxSteps < 0 {
		add("max steps must not be negative, got %d", s.MaxSteps)
	}
	if _, err := sim.ParseReportFormat(s.Report); err != nil {
		add("%v", err)
	}
	if _, err := integrators.New(s.Integrator); err != nil {
		add("%v", err)
	}

	if len(problems) > 0 {
		return fmt.Errorf("scenario %q: %s: %w", s.Name, strings.Join(problems, "; "), dynamo.ErrParameterBounds)
	}
	return nil
}

// InclineSpec converts the scenario geometry for physics.NewIncline.
func (s *Scenario) InclineSpec() physics.InclineSpec {
	spec := physics.DefaultInclineSpec()
	spec.Center = s.Incline.Center.R3()
	spec.Length = s.Incline.Length
	spec.Thickness = s.Incline.Thickness
	spec.Width = s.Incline.Width
	spec.Angle = s.Angle()
	return spec
}

var _ dynamo.Configurable = (*Scenario)(nil)

// GetParams returns the parameters that can be tuned between runs.
func (s *Scenario) GetParams() map[string]float64 {
	p := map[string]float64{
		"angle_deg": s.AngleDeg,
		"gravity":   s.Gravity,
		"mass":      s.Mass,
	}
	if s.LaunchSpeed != nil {
		p["launch_speed"] = *s.LaunchSpeed
	}
	return p
}

// SetParam changes one tunable parameter. The scenario is left untouched
// when the new value does not validate.
func (s *Scenario) SetParam(name string, value float64) error {
	next := s.Clone()
	switch name {
	case "angle_deg":
		next.AngleDeg = value
	case "gravity":
		next.Gravity = value
	case "mass":
		next.Mass = value
	case "launch_speed":
		next.SetLaunchSpeed(value)
	default:
		return fmt.Errorf("unknown parameter %q: %w", name, dynamo.ErrParameterBounds)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = *next
	return nil
}
