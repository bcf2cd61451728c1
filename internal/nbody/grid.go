package nbody

import "fmt"

// Grid is an ordered collection of particles sharing one dimensionality.
// Insertion order fixes the force summation order.
type Grid struct {
	particles   []*Particle
	dim         int
	minDistance float64
	workers     int
}

type GridOption func(*Grid)

// WithMinDistance floors the pair distance used by the force law. Zero
// leaves coincident positions unguarded.
func WithMinDistance(d float64) GridOption {
	return func(g *Grid) { g.minDistance = d }
}

// WithWorkers accumulates forces on up to n goroutines.
func WithWorkers(n int) GridOption {
	return func(g *Grid) { g.workers = n }
}

// NewGrid adds the particles in order. The grid takes ownership of them.
func NewGrid(particles []*Particle, opts ...GridOption) (*Grid, error) {
	g := &Grid{particles: make([]*Particle, 0, len(particles))}
	for _, opt := range opts {
		opt(g)
	}
	if g.minDistance < 0 {
		return nil, fmt.Errorf("nbody: negative minimum distance %v", g.minDistance)
	}
	for _, p := range particles {
		if err := g.Add(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Add appends p. The first particle fixes the grid's dimensionality.
func (g *Grid) Add(p *Particle) error {
	d := p.Dim()
	if d == 0 || len(p.Velocity) != d || len(p.Force) != d || len(p.ForceOld) != d {
		return &ParticleError{Index: len(g.particles), Err: fmt.Errorf("%w: position %d, velocity %d, force %d, force_old %d",
			ErrDimensionMismatch, d, len(p.Velocity), len(p.Force), len(p.ForceOld))}
	}
	if len(g.particles) > 0 && d != g.dim {
		return &ParticleError{Index: len(g.particles), Err: fmt.Errorf("%w: grid is %d-dimensional, particle is %d-dimensional",
			ErrDimensionMismatch, g.dim, d)}
	}
	g.dim = d
	g.particles = append(g.particles, p)
	return nil
}

// Validate checks every particle for consistent dimensions and positive mass.
func (g *Grid) Validate() error {
	for i, p := range g.particles {
		if err := p.Validate(); err != nil {
			return &ParticleError{Index: i, Err: err}
		}
		if p.Dim() != g.dim {
			return &ParticleError{Index: i, Err: fmt.Errorf("%w: grid is %d-dimensional, particle is %d-dimensional",
				ErrDimensionMismatch, g.dim, p.Dim())}
		}
	}
	return nil
}

func (g *Grid) Len() int                 { return len(g.particles) }
func (g *Grid) Dim() int                 { return g.dim }
func (g *Grid) Particle(i int) *Particle { return g.particles[i] }
func (g *Grid) MinDistance() float64     { return g.minDistance }
func (g *Grid) Workers() int             { return g.workers }

// Particles returns the grid's particles in insertion order. The slice is
// shared with the grid.
func (g *Grid) Particles() []*Particle { return g.particles }

func (g *Grid) UpdatePositions(dt float64) {
	for _, p := range g.particles {
		p.UpdatePosition(dt)
	}
}

func (g *Grid) StoreOldForces() {
	for _, p := range g.particles {
		p.StoreOldForce()
	}
}

func (g *Grid) UpdateVelocities(dt float64) {
	for _, p := range g.particles {
		p.UpdateVelocity(dt)
	}
}

// UpdateForces recomputes every force from scratch: all forces are zeroed
// first, then each particle i sums the pull of every j != i in index order.
func (g *Grid) UpdateForces() {
	for _, p := range g.particles {
		p.Force.Zero()
	}

	n := len(g.particles)
	ParallelFor(n, g.workers, func(start, end int) {
		for i := start; i < end; i++ {
			pi := g.particles[i]
			for j := 0; j < n; j++ {
				if i != j {
					accumulatePairForce(pi.Force, pi, g.particles[j], g.minDistance)
				}
			}
		}
	})
}

func (g *Grid) TotalMomentum() Vector {
	total := NewVector(g.dim)
	for _, p := range g.particles {
		for d, v := range p.Velocity {
			total[d] += p.Mass * v
		}
	}
	return total
}

func (g *Grid) KineticEnergy() float64 {
	ke := 0.0
	for _, p := range g.particles {
		ke += p.KineticEnergy()
	}
	return ke
}

// PotentialEnergy sums -m_i*m_j/dist over unordered pairs.
func (g *Grid) PotentialEnergy() float64 {
	pe := 0.0
	for i := 0; i < len(g.particles); i++ {
		for j := i + 1; j < len(g.particles); j++ {
			pe += pairPotential(g.particles[i], g.particles[j], g.minDistance)
		}
	}
	return pe
}

func (g *Grid) TotalEnergy() float64 {
	return g.KineticEnergy() + g.PotentialEnergy()
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// for an empty or massless grid.
func (g *Grid) CenterOfMass() Vector {
	com := NewVector(g.dim)
	total := 0.0
	for _, p := range g.particles {
		total += p.Mass
		for d, x := range p.Position {
			com[d] += p.Mass * x
		}
	}
	if total == 0 {
		return NewVector(g.dim)
	}
	return com.Scale(1 / total)
}

// IsFinite reports whether every position and velocity is finite.
func (g *Grid) IsFinite() bool {
	for _, p := range g.particles {
		if !p.Position.IsValid() || !p.Velocity.IsValid() {
			return false
		}
	}
	return true
}

// Clone deep-copies the grid and its particles, keeping the options.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		particles:   make([]*Particle, len(g.particles)),
		dim:         g.dim,
		minDistance: g.minDistance,
		workers:     g.workers,
	}
	for i, p := range g.particles {
		c.particles[i] = p.Clone()
	}
	return c
}
