package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
)

// MinSeparation is the closest approach between any two particles. With
// fewer than two particles it reports +Inf. A non-finite distance makes it
// NaN for the rest of the run.
type MinSeparation struct {
	name string
	min  float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{name: "min_separation", min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return m.name }

func (m *MinSeparation) Observe(g *nbody.Grid, t float64) {
	ps := g.Particles()
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			d := ps[i].Position.Sub(ps[j].Position).Norm()
			switch {
			case math.IsNaN(d) || math.IsInf(d, 0):
				m.min = math.NaN()
			case d < m.min:
				m.min = d
			}
		}
	}
}

func (m *MinSeparation) Value() float64 { return m.min }

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }
