package sim_test

import (
	"bytes"
	"context"
	"errors"
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/incline/internal/dynamo"
	"github.com/san-kum/incline/internal/integrators"
	"github.com/san-kum/incline/internal/physics"
	"github.com/san-kum/incline/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

type event struct {
	kind string
	t    float64
	v    float64
	p    r3.Vec
}

// journal records every collaborator call in order.
type journal struct {
	events []event
}

type plot struct {
	j    *journal
	kind string
}

func (p plot) Plot(t, v float64) { p.j.events = append(p.j.events, event{kind: p.kind, t: t, v: v}) }

type trail struct{ j *journal }

func (tr trail) Append(p r3.Vec) { tr.j.events = append(tr.j.events, event{kind: "trail", p: p}) }

type motionMap struct{ j *journal }

func (m motionMap) Update(t float64, p r3.Vec) {
	m.j.events = append(m.j.events, event{kind: "map", t: t, p: p})
}

type timer struct{ j *journal }

func (tm timer) Update(t float64) { tm.j.events = append(tm.j.events, event{kind: "timer", t: t}) }

func (j *journal) views() sim.Views {
	return sim.Views{
		Position:     plot{j, "pos"},
		Velocity:     plot{j, "vel"},
		Acceleration: plot{j, "acc"},
		Trail:        trail{j},
		MotionMap:    motionMap{j},
		Timer:        timer{j},
	}
}

type samples []sim.Sample

func (s *samples) OnStep(x sim.Sample) { *s = append(*s, x) }

type scenario struct {
	angle     float64
	gravity   float64
	pos       r3.Vec
	speed     float64
	threshold float64
	maxSteps  int
}

// launch is the cart pushed 3 m/s up a 22° plane from its foot.
var launch = scenario{
	angle:     22 * math.Pi / 180,
	gravity:   9.8,
	pos:       r3.Vec{Y: 0.04, Z: 0.08},
	speed:     3,
	threshold: 0.03,
}

// slide is the cart released from rest near the top of a π/8 plane, with
// gravity given as a negative number.
var slide = scenario{
	angle:     math.Pi / 8,
	gravity:   -9.8,
	pos:       r3.Vec{X: 1.9, Y: 0.04, Z: 0.08},
	threshold: 0,
}

func build(sc scenario) *sim.Runner {
	spec := physics.DefaultInclineSpec()
	spec.Angle = sc.angle
	inc, err := physics.NewIncline(spec, sc.gravity)
	Expect(err).NotTo(HaveOccurred())

	cart, err := physics.NewCart(0.5, sc.pos, r3.Vec{})
	Expect(err).NotTo(HaveOccurred())
	cart.Place(inc)
	if sc.speed != 0 {
		cart.Launch(inc, sc.speed)
	}

	r, err := sim.New(inc, cart, integrators.NewSemiImplicitEuler(), sim.Config{
		Dt:        0.0005,
		Threshold: sc.threshold,
		MaxSteps:  sc.maxSteps,
	})
	Expect(err).NotTo(HaveOccurred())
	return r
}

var _ = Describe("Runner", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("launching the cart up-slope", func() {
		It("rises, reverses and finishes below the threshold after the reversal", func() {
			r := build(launch)
			var rec samples
			r.AddObserver(&rec)
			axis := r.Incline().Axis()

			report, err := r.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			reversal := -1.0
			for _, s := range rec {
				if r3.Dot(s.Vel, axis) <= 0 {
					reversal = s.Time
					break
				}
			}
			Expect(reversal).To(BeNumerically(">", 0))
			Expect(report.Time).To(BeNumerically(">", reversal))
			Expect(report.Pos.Y).To(BeNumerically("<=", 0.03))

			// apex at v0/(g sinθ), back past the start shortly after twice that
			apex := 3 / (9.8 * math.Sin(launch.angle))
			Expect(reversal).To(BeNumerically("~", apex, 0.001))
			Expect(report.Time).To(BeNumerically("~", 2*apex, 0.02))
		})

		It("reports the last net force as a magnitude over mass", func() {
			report, err := build(launch).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Accel).To(BeNumerically("~", 9.8*math.Sin(launch.angle), 1e-12))
			Expect(report.Speed).To(BeNumerically("~", r3.Norm(report.Vel), 1e-15))
		})
	})

	Describe("releasing the cart from rest", func() {
		It("only moves down-slope with increasing speed", func() {
			r := build(slide)
			var rec samples
			r.AddObserver(&rec)
			axis := r.Incline().Axis()

			report, err := r.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Pos.Y).To(BeNumerically("<=", 0))
			Expect(rec).NotTo(BeEmpty())

			prev := 0.0
			for _, s := range rec {
				Expect(r3.Dot(s.Vel, axis)).To(BeNumerically("<", 0))
				Expect(s.Speed).To(BeNumerically(">", prev))
				prev = s.Speed
			}

			// distance down the slope to y = 0 covered at constant acceleration
			a := 9.8 * math.Sin(slide.angle)
			dist := r.Incline().Rotate(slide.pos).Y / math.Sin(slide.angle)
			Expect(report.Time).To(BeNumerically("~", math.Sqrt(2*dist/a), 0.005))
		})

		It("matches the acceleration magnitude of the launch scenario for the same angle", func() {
			same := slide
			same.angle = launch.angle
			a, err := build(same).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			b, err := build(launch).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Accel).To(Equal(b.Accel))
		})
	})

	Describe("observer fan-out", func() {
		It("feeds every collaborator once per step in a fixed order", func() {
			r := build(slide)
			j := &journal{}
			r.Attach(j.views())

			_, err := r.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			order := []string{"map", "pos", "vel", "acc", "trail", "timer"}
			Expect(j.events).To(HaveLen(len(order) * r.Steps()))
			for i, e := range j.events {
				Expect(e.kind).To(Equal(order[i%len(order)]))
			}
		})

		It("pairs the start-of-step time with the post-step state", func() {
			r := build(launch)
			j := &journal{}
			r.Attach(j.views())
			var rec samples
			r.AddObserver(&rec)

			before := r.Cart()
			more, err := r.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeTrue())
			after := r.Cart()

			Expect(rec).To(HaveLen(1))
			Expect(rec[0].Time).To(Equal(0.0))
			Expect(rec[0].Pos).To(Equal(after.Pos))
			Expect(rec[0].Pos).NotTo(Equal(before.Pos))
			Expect(r.Time()).To(Equal(0.0005))

			for _, e := range j.events {
				Expect(e.t).To(Equal(0.0))
			}
			Expect(j.events[1].v).To(Equal(r3.Norm(after.Pos)))
			Expect(j.events[2].v).To(Equal(r3.Norm(after.Vel)))
			Expect(j.events[4].p).To(Equal(after.Pos))
		})

		It("advances time by exactly dt per step", func() {
			r := build(slide)
			var rec samples
			r.AddObserver(&rec)
			_, err := r.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			t := 0.0
			for _, s := range rec {
				Expect(s.Time).To(Equal(t))
				t += 0.0005
			}
			Expect(r.Time()).To(Equal(t))
		})
	})

	Describe("stepping", func() {
		It("is deterministic from the same pre-step state", func() {
			r := build(launch)
			for i := 0; i < 100; i++ {
				_, err := r.Step(ctx)
				Expect(err).NotTo(HaveOccurred())
			}
			pre := r.Cart()

			_, err := r.Step(ctx)
			Expect(err).NotTo(HaveOccurred())
			post := r.Cart()

			f := r.Incline().NetForce(pre.Mass)
			v := r3.Add(pre.Vel, r3.Scale(0.0005, r3.Scale(1/pre.Mass, f)))
			p := r3.Add(pre.Pos, r3.Scale(0.0005, v))
			Expect(post.Vel).To(Equal(v))
			Expect(post.Pos).To(Equal(p))
		})

		It("never recovers once the cart is below the threshold", func() {
			r := build(slide)
			_, err := r.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Done()).To(BeTrue())

			frozen := r.Cart()
			steps := r.Steps()
			for i := 0; i < 10; i++ {
				more, err := r.Step(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(more).To(BeFalse())
				Expect(r.Done()).To(BeTrue())
			}
			Expect(r.Cart()).To(Equal(frozen))
			Expect(r.Steps()).To(Equal(steps))
		})

		It("skips the loop when the cart starts on the ground", func() {
			sc := slide
			sc.pos = r3.Vec{}
			report, err := build(sc).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Steps).To(BeZero())
			Expect(report.Time).To(BeZero())
			Expect(report.Accel).To(BeNumerically("~", 9.8*math.Sin(math.Pi/8), 1e-12))
		})
	})

	Describe("step limit", func() {
		It("is off by default", func() {
			report, err := build(launch).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Steps).To(BeNumerically(">", 3000))
		})

		It("stops a run that has not reached the ground", func() {
			sc := launch
			sc.maxSteps = 50
			r := build(sc)

			report, err := r.Run(ctx)
			Expect(errors.Is(err, dynamo.ErrStepLimit)).To(BeTrue())
			var simErr *dynamo.SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(50))
			Expect(report.Steps).To(Equal(50))
		})
	})

	Describe("cancellation", func() {
		It("stops with ErrContextCanceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := build(launch).Run(cctx)
			Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
		})
	})

	Describe("pacing", func() {
		It("never runs faster than the configured rate", func() {
			sc := launch
			sc.maxSteps = 21
			r := build(sc)
			r.SetPacer(sim.NewRatePacer(200))

			start := time.Now()
			_, err := r.Run(ctx)
			Expect(errors.Is(err, dynamo.ErrStepLimit)).To(BeTrue())
			// the first token is free, the other 20 arrive every 5ms
			Expect(time.Since(start)).To(BeNumerically(">=", 90*time.Millisecond))
		})

		It("is disabled for non-positive rates", func() {
			Expect(sim.NewRatePacer(0)).To(Equal(sim.NoPacer))
			Expect(sim.NewRatePacer(-5)).To(Equal(sim.NoPacer))
		})
	})

	Describe("construction", func() {
		DescribeTable("rejects invalid configuration",
			func(cfg sim.Config) {
				inc, err := physics.NewIncline(physics.DefaultInclineSpec(), 9.8)
				Expect(err).NotTo(HaveOccurred())
				cart, err := physics.NewCart(1, r3.Vec{Y: 1}, r3.Vec{})
				Expect(err).NotTo(HaveOccurred())

				_, err = sim.New(inc, cart, integrators.NewEuler(), cfg)
				Expect(errors.Is(err, dynamo.ErrParameterBounds)).To(BeTrue())
			},
			Entry("zero dt", sim.Config{Dt: 0}),
			Entry("negative dt", sim.Config{Dt: -0.1}),
			Entry("infinite dt", sim.Config{Dt: math.Inf(1)}),
			Entry("nan threshold", sim.Config{Dt: 0.01, Threshold: math.NaN()}),
			Entry("negative step cap", sim.Config{Dt: 0.01, MaxSteps: -1}),
		)
	})

	Describe("report", func() {
		It("prints the brief and full field sets", func() {
			report := &sim.Report{
				Time:    1.5,
				Initial: r3.Vec{X: 0, Y: 0.04, Z: 0.08},
				Pos:     r3.Vec{X: 1, Y: 2, Z: 3},
				Vel:     r3.Vec{X: -1, Y: -0.5, Z: 0},
				Speed:   1.118,
				Accel:   3.67,
			}

			var buf bytes.Buffer
			Expect(report.WriteInitial(&buf)).To(Succeed())
			Expect(buf.String()).To(Equal("initial cart position (m): <0, 0.04, 0.08>\n"))

			buf.Reset()
			Expect(report.Write(&buf, sim.ReportBrief)).To(Succeed())
			Expect(buf.String()).To(Equal("final time (s): 1.5000\nfinal cart position (m): <1, 2, 3>\n"))

			buf.Reset()
			Expect(report.Write(&buf, sim.ReportFull)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring("final cart velocity (m/s): <-1, -0.5, 0>"))
			Expect(buf.String()).To(ContainSubstring("final cart speed (m/s): 1.118"))
			Expect(buf.String()).To(ContainSubstring("final cart acceleration (m/s/s): 3.67"))
		})

		It("parses report formats", func() {
			f, err := sim.ParseReportFormat("")
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(sim.ReportFull))

			f, err = sim.ParseReportFormat("brief")
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(sim.ReportBrief))

			_, err = sim.ParseReportFormat("verbose")
			Expect(err).To(HaveOccurred())
		})
	})
})
