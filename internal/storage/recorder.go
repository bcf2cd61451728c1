package storage

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/nbody"
)

// Layout describes how a frame's state vector is packed: for each particle
// its Dim position components followed by its Dim velocity components.
type Layout struct {
	Particles int `json:"particles"`
	Dim       int `json:"dim"`
}

func (l Layout) Width() int { return 2 * l.Particles * l.Dim }

func (l Layout) PositionIndex(i, d int) int { return 2*i*l.Dim + d }

func (l Layout) VelocityIndex(i, d int) int { return 2*i*l.Dim + l.Dim + d }

// Columns returns the CSV header names, without the leading time column.
func (l Layout) Columns() []string {
	cols := make([]string, 0, l.Width())
	for i := 0; i < l.Particles; i++ {
		for d := 0; d < l.Dim; d++ {
			cols = append(cols, fmt.Sprintf("p%d_x%d", i, d))
		}
		for d := 0; d < l.Dim; d++ {
			cols = append(cols, fmt.Sprintf("p%d_v%d", i, d))
		}
	}
	return cols
}

// Position extracts particle i's position from a packed state.
func (l Layout) Position(state []float64, i int) nbody.Vector {
	start := l.PositionIndex(i, 0)
	return nbody.Vector(state[start : start+l.Dim]).Clone()
}

type Frame struct {
	Step  int
	Time  float64
	State []float64
}

// Recorder is an nbody.Observer that keeps every k-th state. With k == 0
// it records nothing until Record is called.
type Recorder struct {
	every  int
	layout Layout
	frames []Frame
}

func NewRecorder(every int) *Recorder {
	return &Recorder{every: every}
}

func (r *Recorder) OnStep(g *nbody.Grid, step int, t float64) {
	if r.every > 0 && step%r.every == 0 {
		r.Record(g, step, t)
	}
}

// Record appends the grid state unless the last frame is already at step.
func (r *Recorder) Record(g *nbody.Grid, step int, t float64) {
	if n := len(r.frames); n > 0 && r.frames[n-1].Step == step {
		return
	}
	r.layout = Layout{Particles: g.Len(), Dim: g.Dim()}
	state := make([]float64, 0, r.layout.Width())
	for _, p := range g.Particles() {
		state = append(state, p.Position...)
		state = append(state, p.Velocity...)
	}
	r.frames = append(r.frames, Frame{Step: step, Time: t, State: state})
}

func (r *Recorder) Frames() []Frame { return r.frames }
func (r *Recorder) Layout() Layout  { return r.layout }

func (r *Recorder) Reset() {
	r.frames = nil
}

// Tracks splits frames into per-particle position histories.
func Tracks(frames []Frame, layout Layout) [][]nbody.Vector {
	tracks := make([][]nbody.Vector, layout.Particles)
	for i := range tracks {
		tracks[i] = make([]nbody.Vector, len(frames))
		for k, f := range frames {
			tracks[i][k] = layout.Position(f.State, i)
		}
	}
	return tracks
}
