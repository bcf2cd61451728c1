package metrics

import (
	"github.com/san-kum/gravsim/internal/nbody"
)

// Stability is the fraction of observed states in which every particle is
// finite and, when escapeRadius > 0, within escapeRadius of the origin.
type Stability struct {
	name         string
	escapeRadius float64
	violations   int
	samples      int
}

func NewStability(escapeRadius float64) *Stability {
	return &Stability{
		name:         "stability",
		escapeRadius: escapeRadius,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(g *nbody.Grid, t float64) {
	s.samples++
	if !g.IsFinite() {
		s.violations++
		return
	}
	if s.escapeRadius <= 0 {
		return
	}
	for _, p := range g.Particles() {
		if p.Position.Norm() > s.escapeRadius {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
