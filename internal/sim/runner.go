package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/physics"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

type Config struct {
	Dt float64
	// Threshold is the height the cart must stay above for the run to
	// continue.
	Threshold float64
	// MaxSteps stops a run that never reaches the ground. Zero means no
	// limit.
	MaxSteps int
}

// Runner owns the incline, the cart and the clock for one run.
type Runner struct {
	incline    *physics.Incline
	cart       *physics.Cart
	slide      *physics.Slide
	integrator dynamo.Integrator
	cfg        Config

	views     Views
	observers []Observer
	pacer     Pacer
	log       *zap.Logger

	t       float64
	steps   int
	fnet    r3.Vec
	initial r3.Vec
}

// New takes ownership of cart. The cart must already be placed on the
// incline and launched.
func New(inc *physics.Incline, cart *physics.Cart, integ dynamo.Integrator, cfg Config) (*Runner, error) {
	if inc == nil || cart == nil || integ == nil {
		return nil, fmt.Errorf("runner needs an incline, a cart and an integrator: %w", dynamo.ErrParameterBounds)
	}
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return nil, fmt.Errorf("dt must be positive, got %v: %w", cfg.Dt, dynamo.ErrParameterBounds)
	}
	if math.IsNaN(cfg.Threshold) || math.IsInf(cfg.Threshold, 0) {
		return nil, fmt.Errorf("threshold %v: %w", cfg.Threshold, dynamo.ErrParameterBounds)
	}
	if cfg.MaxSteps < 0 {
		return nil, fmt.Errorf("max steps must not be negative, got %d: %w", cfg.MaxSteps, dynamo.ErrParameterBounds)
	}
	if !cart.State().IsValid() {
		return nil, dynamo.ErrInvalidState
	}

	return &Runner{
		incline:    inc,
		cart:       cart,
		slide:      physics.NewSlide(inc, cart.Mass),
		integrator: integ,
		cfg:        cfg,
		pacer:      NoPacer,
		log:        zap.NewNop(),
		fnet:       inc.NetForce(cart.Mass),
		initial:    cart.Pos,
	}, nil
}

func (r *Runner) Attach(v Views)            { r.views = v }
func (r *Runner) AddObserver(o Observer)    { r.observers = append(r.observers, o) }
func (r *Runner) SetPacer(p Pacer)          { r.pacer = p }
func (r *Runner) SetLogger(log *zap.Logger) { r.log = log }

func (r *Runner) Time() float64            { return r.t }
func (r *Runner) Steps() int               { return r.steps }
func (r *Runner) Incline() *physics.Incline { return r.incline }

// Cart returns a copy of the current cart.
func (r *Runner) Cart() physics.Cart { return *r.cart }

// Done reports whether the cart has reached the ground. Once true it stays
// true: Step never moves a grounded cart.
func (r *Runner) Done() bool {
	return !(r.cart.Pos.Y > r.cfg.Threshold)
}

// Step advances the run by one fixed step and reports whether another step
// should follow.
func (r *Runner) Step(ctx context.Context) (bool, error) {
	if r.Done() {
		return false, nil
	}
	if r.cfg.MaxSteps > 0 && r.steps >= r.cfg.MaxSteps {
		return false, r.fail(dynamo.ErrStepLimit)
	}
	select {
	case <-ctx.Done():
		return false, r.fail(dynamo.ErrContextCanceled)
	default:
	}
	if err := r.pacer.Wait(ctx); err != nil {
		return false, r.fail(fmt.Errorf("%w: %v", dynamo.ErrContextCanceled, err))
	}

	r.fnet = r.incline.NetForce(r.cart.Mass)
	next := r.integrator.Step(r.slide, r.cart.State(), r.t, r.cfg.Dt)
	if !next.IsValid() {
		return false, r.fail(dynamo.ErrInvalidState)
	}
	if err := r.cart.SetState(next); err != nil {
		return false, r.fail(err)
	}

	r.fanOut()

	r.t += r.cfg.Dt
	r.steps++
	return !r.Done(), nil
}

func (r *Runner) fanOut() {
	s := Sample{
		Step:     r.steps,
		Time:     r.t,
		Pos:      r.cart.Pos,
		Vel:      r.cart.Vel,
		Distance: r3.Norm(r.cart.Pos),
		Speed:    r3.Norm(r.cart.Vel),
		Accel:    r3.Norm(r.fnet) / r.cart.Mass,
	}

	v := r.views
	if v.MotionMap != nil {
		v.MotionMap.Update(s.Time, s.Pos)
	}
	if v.Position != nil {
		v.Position.Plot(s.Time, s.Distance)
	}
	if v.Velocity != nil {
		v.Velocity.Plot(s.Time, s.Speed)
	}
	if v.Acceleration != nil {
		v.Acceleration.Plot(s.Time, s.Accel)
	}
	if v.Trail != nil {
		v.Trail.Append(s.Pos)
	}
	if v.Timer != nil {
		v.Timer.Update(s.Time)
	}
	for _, o := range r.observers {
		o.OnStep(s)
	}
}

func (r *Runner) fail(err error) error {
	r.log.Warn("run stopped",
		zap.Int("step", r.steps),
		zap.Float64("t", r.t),
		zap.Error(err),
	)
	return &dynamo.SimulationError{
		Step:    r.steps,
		Time:    r.t,
		State:   r.cart.State(),
		Wrapped: err,
	}
}

// Run steps until the cart reaches the ground. The report is returned even
// when the run stops with an error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	r.log.Debug("run start",
		zap.Float64("angle", r.incline.Angle()),
		zap.Float64("dt", r.cfg.Dt),
		zap.Float64("threshold", r.cfg.Threshold),
		zap.Float64("y0", r.cart.Pos.Y),
	)

	for {
		more, err := r.Step(ctx)
		if err != nil {
			return r.Report(), err
		}
		if !more {
			break
		}
	}

	r.log.Debug("run finished",
		zap.Int("steps", r.steps),
		zap.Float64("t", r.t),
		zap.Float64("speed", r.cart.Speed()),
	)
	return r.Report(), nil
}

// Report summarizes the run so far. The acceleration comes from the last
// net force evaluated.
func (r *Runner) Report() *Report {
	return &Report{
		Time:    r.t,
		Steps:   r.steps,
		Initial: r.initial,
		Pos:     r.cart.Pos,
		Vel:     r.cart.Vel,
		Speed:   r3.Norm(r.cart.Vel),
		Accel:   r3.Norm(r.fnet) / r.cart.Mass,
	}
}
