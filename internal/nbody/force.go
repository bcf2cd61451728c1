package nbody

import "math"

// PairForce returns the gravitational pull of p2 on p1 with G = 1:
// m1*m2/dist^3 * (p2 - p1). A positive minDistance floors dist; with 0 a
// coincident pair yields a non-finite force.
func PairForce(p1, p2 *Particle, minDistance float64) Vector {
	f := NewVector(p1.Dim())
	accumulatePairForce(f, p1, p2, minDistance)
	return f
}

func accumulatePairForce(dst Vector, p1, p2 *Particle, minDistance float64) {
	dist2 := 0.0
	for d := range p1.Position {
		diff := p1.Position[d] - p2.Position[d]
		dist2 += diff * diff
	}
	if minDistance > 0 && dist2 < minDistance*minDistance {
		dist2 = minDistance * minDistance
	}

	f := (p1.Mass * p2.Mass) / (math.Sqrt(dist2) * dist2)
	for d := range dst {
		dst[d] += f * (p2.Position[d] - p1.Position[d])
	}
}

// pairPotential is -m1*m2/dist under the same distance floor.
func pairPotential(p1, p2 *Particle, minDistance float64) float64 {
	dist2 := 0.0
	for d := range p1.Position {
		diff := p1.Position[d] - p2.Position[d]
		dist2 += diff * diff
	}
	dist := math.Sqrt(dist2)
	if minDistance > 0 && dist < minDistance {
		dist = minDistance
	}
	return -p1.Mass * p2.Mass / dist
}
