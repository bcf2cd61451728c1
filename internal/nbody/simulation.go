package nbody

import (
	"context"
	"fmt"
	"math"

	"github.com/go-logr/logr"
)

const (
	// stepTolerance absorbs rounding in t_end/dt so that, for example,
	// t_end=0.3 with dt=0.1 counts three steps.
	stepTolerance = 1e-9
	maxSteps      = 1 << 53
)

// Simulation advances a Grid with velocity-Verlet in fixed steps of
// DeltaT until EndTime.
type Simulation struct {
	grid      *Grid
	dt        float64
	tEnd      float64
	planned   int
	step      int
	primed    bool
	observers []Observer
	metrics   []Metric
	log       logr.Logger
}

type Option func(*Simulation)

func WithObserver(o Observer) Option {
	return func(s *Simulation) { s.observers = append(s.observers, o) }
}

func WithMetric(m Metric) Option {
	return func(s *Simulation) { s.metrics = append(s.metrics, m) }
}

func WithLogger(l logr.Logger) Option {
	return func(s *Simulation) { s.log = l }
}

// New validates the grid and the time controls and returns a simulation in
// the loaded state: forces are not yet consistent with positions.
func New(grid *Grid, dt, tEnd float64, opts ...Option) (*Simulation, error) {
	if grid == nil {
		return nil, fmt.Errorf("nbody: nil grid")
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	planned, err := PlannedSteps(dt, tEnd)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		grid:    grid,
		dt:      dt,
		tEnd:    tEnd,
		planned: planned,
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PlannedSteps returns how many whole steps of dt fit into [0, tEnd]. The
// last partial interval, if any, is not taken.
func PlannedSteps(dt, tEnd float64) (int, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidTimestep, dt)
	}
	if !(tEnd >= 0) || math.IsInf(tEnd, 0) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidEndTime, tEnd)
	}
	n := math.Floor(tEnd/dt + stepTolerance)
	if n > maxSteps {
		return 0, fmt.Errorf("%w: %v steps of %v exceed the step limit", ErrInvalidEndTime, n, dt)
	}
	return int(n), nil
}

func (s *Simulation) Grid() *Grid       { return s.grid }
func (s *Simulation) DeltaT() float64   { return s.dt }
func (s *Simulation) EndTime() float64  { return s.tEnd }
func (s *Simulation) StepCount() int    { return s.step }
func (s *Simulation) PlannedSteps() int { return s.planned }
func (s *Simulation) Time() float64     { return float64(s.step) * s.dt }
func (s *Simulation) Done() bool        { return s.step >= s.planned }

// Prime computes the forces for the current positions. Only the first call
// does work.
func (s *Simulation) Prime() {
	if s.primed {
		return
	}
	s.grid.UpdateForces()
	s.primed = true
}

// Step performs one velocity-Verlet step and notifies observers. It may be
// called past EndTime.
func (s *Simulation) Step() {
	s.Prime()

	s.grid.StoreOldForces()
	s.grid.UpdatePositions(s.dt)
	s.grid.UpdateForces()
	s.grid.UpdateVelocities(s.dt)
	s.step++

	s.notify()
}

// Simulate primes the forces and steps until EndTime is reached. Non-finite
// values are not an error; they show up in Result.Finite. The context is
// checked between steps.
func (s *Simulation) Simulate(ctx context.Context) (*Result, error) {
	s.Prime()
	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{
		InitialEnergy:   s.grid.TotalEnergy(),
		InitialMomentum: s.grid.TotalMomentum(),
		Metrics:         make(map[string]float64, len(s.metrics)),
	}

	s.log.V(1).Info("simulation started",
		"particles", s.grid.Len(), "dim", s.grid.Dim(),
		"dt", s.dt, "tEnd", s.tEnd, "steps", s.planned)

	s.notify()

	progressEvery := s.planned / 10
	for s.step < s.planned {
		select {
		case <-ctx.Done():
			s.finish(result)
			return result, fmt.Errorf("%w at step %d (t=%.4f): %w", ErrCanceled, s.step, s.Time(), ctx.Err())
		default:
		}

		s.Step()

		if progressEvery > 0 && s.step%progressEvery == 0 {
			s.log.V(2).Info("progress", "step", s.step, "t", s.Time(), "energy", s.grid.TotalEnergy())
		}
	}

	s.finish(result)
	s.log.V(1).Info("simulation finished",
		"steps", result.Steps, "t", result.FinalTime,
		"energyDrift", result.EnergyDrift, "finite", result.Finite)
	return result, nil
}

func (s *Simulation) notify() {
	t := s.Time()
	for _, o := range s.observers {
		o.OnStep(s.grid, s.step, t)
	}
	for _, m := range s.metrics {
		m.Observe(s.grid, t)
	}
}

func (s *Simulation) finish(result *Result) {
	result.Steps = s.step
	result.FinalTime = s.Time()
	result.FinalEnergy = s.grid.TotalEnergy()
	result.FinalMomentum = s.grid.TotalMomentum()
	result.Finite = s.grid.IsFinite()
	result.EnergyDrift = EnergyDrift(result.InitialEnergy, result.FinalEnergy)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// EnergyDrift is |e - e0| / |e0|, or |e - e0| when e0 is 0.
func EnergyDrift(e0, e float64) float64 {
	if e0 == 0 {
		return math.Abs(e - e0)
	}
	return math.Abs(e-e0) / math.Abs(e0)
}
