package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
)

// Energy is the total energy of the last observed state.
type Energy struct {
	name    string
	samples int
	last    float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(g *nbody.Grid, t float64) {
	e.last = g.TotalEnergy()
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.last
}

func (e *Energy) Reset() {
	e.last = 0
	e.samples = 0
}

// EnergyDrift is the largest relative deviation |E - E0| / |E0| seen so far,
// or the largest absolute deviation |E - E0| when the first observed energy
// is 0.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(g *nbody.Grid, t float64) {
	energy := g.TotalEnergy()

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	// math.Max propagates NaN.
	e.maxDrift = math.Max(e.maxDrift, nbody.EnergyDrift(e.initialEnergy, energy))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
