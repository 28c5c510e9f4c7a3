package metrics

import (
	"math"

	"github.com/san-kum/incline/internal/dynamo"
)

// Energy is the mean mechanical energy over every observed state.
type Energy struct {
	name        string
	sys         dynamo.Hamiltonian
	samples     int
	totalEnergy float64
}

func NewEnergy(sys dynamo.Hamiltonian) *Energy {
	return &Energy{name: "energy", sys: sys}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, t float64) {
	e.totalEnergy += e.sys.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation of mechanical energy from
// its starting value. A frictionless run should keep it near zero.
type EnergyDrift struct {
	name          string
	sys           dynamo.Hamiltonian
	start         dynamo.State
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

// NewEnergyDrift measures drift against x0. With a nil x0 the first
// observed state is the reference.
func NewEnergyDrift(sys dynamo.Hamiltonian, x0 dynamo.State) *EnergyDrift {
	e := &EnergyDrift{name: "energy_drift", sys: sys}
	if x0 != nil {
		e.start = x0.Clone()
	}
	return e
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	energy := e.sys.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
		if e.start != nil {
			e.initialEnergy = e.sys.Energy(e.start)
		}
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

// Current is the energy of the last observed state.
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
