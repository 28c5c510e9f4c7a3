package integrators

import (
	"testing"

	"github.com/san-kum/incline/internal/dynamo"
)

func benchmarkIntegrator(b *testing.B, integ dynamo.Integrator) {
	slide := newSlide(b, 22)
	x := dynamo.State{0, 0.04, 0.08, 2.78, 1.12, 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(slide, x, 0, 0.0005)
	}
}

func BenchmarkSemiImplicitEuler(b *testing.B) { benchmarkIntegrator(b, NewSemiImplicitEuler()) }
func BenchmarkEuler(b *testing.B)             { benchmarkIntegrator(b, NewEuler()) }
func BenchmarkRK4(b *testing.B)               { benchmarkIntegrator(b, NewRK4()) }
func BenchmarkVerlet(b *testing.B)            { benchmarkIntegrator(b, NewVerlet()) }
