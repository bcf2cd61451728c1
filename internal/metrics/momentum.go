package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
)

// MomentumDrift is the largest ||P - P0|| seen so far.
type MomentumDrift struct {
	name     string
	initial  nbody.Vector
	maxDrift float64
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(g *nbody.Grid, t float64) {
	p := g.TotalMomentum()
	if m.initial == nil {
		m.initial = p
		return
	}
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 {
	return m.maxDrift
}

func (m *MomentumDrift) Reset() {
	m.initial = nil
	m.maxDrift = 0
}
