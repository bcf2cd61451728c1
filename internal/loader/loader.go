// Package loader reads and writes the line-oriented simulation input format:
//
//	<delta_t>
//	<t_end>
//	<num_particles>
//
//	<mass>
//	<position components>
//	<velocity components>
//
// with one blank-line separated record per particle.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/gravsim/internal/nbody"
)

var (
	ErrSyntax        = errors.New("loader: syntax error")
	ErrParticleCount = errors.New("loader: particle count mismatch")
)

// Body is one particle record.
type Body struct {
	Mass     float64
	Position nbody.Vector
	Velocity nbody.Vector
}

type Input struct {
	DeltaT    float64
	EndTime   float64
	Particles []Body
}

// FromGrid snapshots the grid's current state as an input document.
func FromGrid(g *nbody.Grid, dt, tEnd float64) *Input {
	in := &Input{DeltaT: dt, EndTime: tEnd, Particles: make([]Body, g.Len())}
	for i, p := range g.Particles() {
		in.Particles[i] = Body{Mass: p.Mass, Position: p.Position.Clone(), Velocity: p.Velocity.Clone()}
	}
	return in
}

// Grid builds a fresh grid from the records. Forces start at zero.
func (in *Input) Grid(opts ...nbody.GridOption) (*nbody.Grid, error) {
	particles := make([]*nbody.Particle, len(in.Particles))
	for i, b := range in.Particles {
		p, err := nbody.NewParticle(b.Mass, b.Position, b.Velocity)
		if err != nil {
			return nil, &nbody.ParticleError{Index: i, Err: err}
		}
		particles[i] = p
	}
	return nbody.NewGrid(particles, opts...)
}

type lineReader struct {
	sc   *bufio.Scanner
	line int
}

// next returns the next non-blank line with surrounding space trimmed.
func (r *lineReader) next() (string, bool) {
	for r.sc.Scan() {
		r.line++
		if s := strings.TrimSpace(r.sc.Text()); s != "" {
			return s, true
		}
	}
	return "", false
}

// missing reports an early end of input, or the underlying read error.
func (r *lineReader) missing(what string) error {
	if err := r.sc.Err(); err != nil {
		return fmt.Errorf("loader: read: %w", err)
	}
	return fmt.Errorf("line %d: %w: missing %s", r.line+1, ErrSyntax, what)
}

func (r *lineReader) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", r.line, ErrSyntax, fmt.Sprintf(format, args...))
}

func (r *lineReader) float(what string) (float64, error) {
	s, ok := r.next()
	if !ok {
		return 0, r.missing(what)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, r.errorf("invalid %s %q", what, s)
	}
	return v, nil
}

func (r *lineReader) vector(what string) (nbody.Vector, error) {
	s, ok := r.next()
	if !ok {
		return nil, r.missing(what)
	}
	fields := strings.Fields(s)
	v := make(nbody.Vector, len(fields))
	for i, f := range fields {
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, r.errorf("invalid %s component %q", what, f)
		}
		v[i] = x
	}
	return v, nil
}

// Parse reads an input document. Blank lines between records are optional
// and surrounding whitespace is ignored. Errors report the 1-based line.
func Parse(rd io.Reader) (*Input, error) {
	r := &lineReader{sc: bufio.NewScanner(rd)}
	in := &Input{}

	var err error
	if in.DeltaT, err = r.float("delta_t"); err != nil {
		return nil, err
	}
	if in.EndTime, err = r.float("t_end"); err != nil {
		return nil, err
	}

	s, ok := r.next()
	if !ok {
		return nil, r.missing("particle count")
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, r.errorf("invalid particle count %q", s)
	}

	in.Particles = make([]Body, 0, min(n, 1024))
	dim := 0
	for i := 0; i < n; i++ {
		s, ok := r.next()
		if !ok {
			if err := r.sc.Err(); err != nil {
				return nil, fmt.Errorf("loader: read: %w", err)
			}
			return nil, fmt.Errorf("%w: header declares %d particles, found %d", ErrParticleCount, n, i)
		}
		mass, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, r.errorf("invalid mass %q for particle %d", s, i)
		}
		pos, err := r.vector("position")
		if err != nil {
			return nil, err
		}
		vel, err := r.vector("velocity")
		if err != nil {
			return nil, err
		}
		if len(pos) == 0 || len(vel) != len(pos) || (dim != 0 && len(pos) != dim) {
			want := dim
			if want == 0 {
				want = len(pos)
			}
			return nil, fmt.Errorf("line %d: particle %d: %w: expected %d components, position has %d, velocity has %d",
				r.line, i, nbody.ErrDimensionMismatch, want, len(pos), len(vel))
		}
		dim = len(pos)
		in.Particles = append(in.Particles, Body{Mass: mass, Position: pos, Velocity: vel})
	}

	if s, ok := r.next(); ok {
		return nil, fmt.Errorf("line %d: %w: %w: header declares %d particles, found trailing content %q",
			r.line, ErrSyntax, ErrParticleCount, n, s)
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("loader: read: %w", err)
	}
	return in, nil
}
