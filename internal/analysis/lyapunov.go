package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
)

// ErrSeparationLost is returned with a partial estimate when the phase-space
// separation stops being finite before the end of the run.
var ErrSeparationLost = errors.New("analysis: separation became non-finite")

// LyapunovExponent estimates the largest Lyapunov exponent of a grid by
// following it alongside a copy whose first particle is displaced by
// perturbation along x. Every renormEvery steps the phase-space separation
// d is measured, ln(d/perturbation) accumulated and the copy pulled back to
// distance perturbation along the same direction. A clearly positive value
// indicates chaos. The grid passed in is not modified. If the separation
// stops being finite, the estimate covers the time up to the last
// renormalization and the error wraps ErrSeparationLost.
func LyapunovExponent(g *nbody.Grid, dt, duration, perturbation float64, renormEvery int) (float64, error) {
	if g.Len() == 0 {
		return 0, errors.New("analysis: empty grid")
	}
	if !(perturbation > 0) {
		return 0, errors.New("analysis: perturbation must be positive")
	}
	if renormEvery < 1 {
		renormEvery = 1
	}

	ref := g.Clone()
	pert := g.Clone()
	pert.Particle(0).Position[0] += perturbation

	simRef, err := nbody.New(ref, dt, duration)
	if err != nil {
		return 0, err
	}
	simPert, err := nbody.New(pert, dt, duration)
	if err != nil {
		return 0, err
	}
	simRef.Prime()
	simPert.Prime()

	sumLog, renormTime := 0.0, 0.0
	var lost error
	for !simRef.Done() {
		simRef.Step()
		simPert.Step()

		if simRef.StepCount()%renormEvery != 0 && !simRef.Done() {
			continue
		}

		sep := phaseSeparation(ref, pert)
		if !(sep > 0) || math.IsInf(sep, 0) {
			lost = fmt.Errorf("%w at t=%g", ErrSeparationLost, simRef.Time())
			break
		}
		sumLog += math.Log(sep / perturbation)
		renormTime = simRef.Time()

		scale := perturbation / sep
		for i, p := range pert.Particles() {
			q := ref.Particle(i)
			for d := range p.Position {
				p.Position[d] = q.Position[d] + (p.Position[d]-q.Position[d])*scale
				p.Velocity[d] = q.Velocity[d] + (p.Velocity[d]-q.Velocity[d])*scale
			}
		}
		pert.UpdateForces()
	}

	if renormTime == 0 {
		return 0, lost
	}
	return sumLog / renormTime, lost
}

func phaseSeparation(a, b *nbody.Grid) float64 {
	sum := 0.0
	for i, p := range a.Particles() {
		q := b.Particle(i)
		for d := range p.Position {
			dx := q.Position[d] - p.Position[d]
			dv := q.Velocity[d] - p.Velocity[d]
			sum += dx*dx + dv*dv
		}
	}
	return math.Sqrt(sum)
}
