package nbody

import (
	"fmt"
	"math"
)

// Particle is one point mass. Position, Velocity, Force and ForceOld always
// have the same length; NewParticle and Grid.Add enforce it, the update
// methods rely on it.
type Particle struct {
	Mass     float64
	Position Vector
	Velocity Vector
	// Force acting at the current position.
	Force Vector
	// ForceOld is the force from before the last position advance.
	ForceOld Vector
}

// NewParticle copies position and velocity into a new particle with zero
// force state.
func NewParticle(mass float64, position, velocity Vector) (*Particle, error) {
	if len(position) == 0 {
		return nil, fmt.Errorf("%w: empty position", ErrDimensionMismatch)
	}
	if len(position) != len(velocity) {
		return nil, fmt.Errorf("%w: position has %d components, velocity %d",
			ErrDimensionMismatch, len(position), len(velocity))
	}
	dim := len(position)
	return &Particle{
		Mass:     mass,
		Position: position.Clone(),
		Velocity: velocity.Clone(),
		Force:    NewVector(dim),
		ForceOld: NewVector(dim),
	}, nil
}

// DefaultParticle returns a two-dimensional particle at rest with zero mass.
// Mass, position and velocity must be set before it is simulated.
func DefaultParticle() *Particle {
	return &Particle{
		Position: NewVector(2),
		Velocity: NewVector(2),
		Force:    NewVector(2),
		ForceOld: NewVector(2),
	}
}

func (p *Particle) Dim() int { return len(p.Position) }

// Validate checks the vector lengths and the mass.
func (p *Particle) Validate() error {
	d := len(p.Position)
	if d == 0 || len(p.Velocity) != d || len(p.Force) != d || len(p.ForceOld) != d {
		return fmt.Errorf("%w: position %d, velocity %d, force %d, force_old %d",
			ErrDimensionMismatch, len(p.Position), len(p.Velocity), len(p.Force), len(p.ForceOld))
	}
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return fmt.Errorf("%w: got %v", ErrNonPositiveMass, p.Mass)
	}
	return nil
}

// UpdatePosition advances the position with the current force:
// x += dt * (v + dt/(2m) * F).
func (p *Particle) UpdatePosition(dt float64) {
	a := dt * 0.5 / p.Mass
	for d := range p.Position {
		p.Position[d] += dt * (p.Velocity[d] + a*p.Force[d])
	}
}

// StoreOldForce snapshots Force into ForceOld.
func (p *Particle) StoreOldForce() {
	copy(p.ForceOld, p.Force)
}

// UpdateVelocity advances the velocity with the mean of the recomputed
// force and the stored one: v += dt/(2m) * (F + F_old).
func (p *Particle) UpdateVelocity(dt float64) {
	a := dt * 0.5 / p.Mass
	for d := range p.Velocity {
		p.Velocity[d] += a * (p.Force[d] + p.ForceOld[d])
	}
}

func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Velocity.Dot(p.Velocity)
}

func (p *Particle) Momentum() Vector {
	return p.Velocity.Scale(p.Mass)
}

func (p *Particle) Clone() *Particle {
	return &Particle{
		Mass:     p.Mass,
		Position: p.Position.Clone(),
		Velocity: p.Velocity.Clone(),
		Force:    p.Force.Clone(),
		ForceOld: p.ForceOld.Clone(),
	}
}
