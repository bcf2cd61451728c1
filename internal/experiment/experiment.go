// Package experiment turns a run configuration into a simulation and runs
// it with the configured metrics and recorder.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/loader"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/storage"
)

// Plan is a resolved scenario: the initial state and time controls after
// config overrides.
type Plan struct {
	Source      string
	Input       *loader.Input
	MinDistance float64
}

// Resolve loads the scenario a config selects and applies its overrides.
// Non-zero dt, t_end and min_distance in cfg replace the scenario values.
func Resolve(cfg *config.Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	plan := &Plan{Source: cfg.Source()}
	switch {
	case cfg.Input != "":
		in, err := loader.Load(cfg.Input)
		if err != nil {
			return nil, err
		}
		plan.Input = in
	case len(cfg.Bodies) > 0:
		plan.Input = &loader.Input{Particles: bodies(cfg.Bodies)}
	default:
		sc, err := config.GetPreset(plan.Source)
		if err != nil {
			return nil, err
		}
		plan.Input = &loader.Input{
			DeltaT:    sc.DeltaT,
			EndTime:   sc.EndTime,
			Particles: bodies(sc.Bodies),
		}
		plan.MinDistance = sc.MinDistance
	}

	if cfg.DeltaT > 0 {
		plan.Input.DeltaT = cfg.DeltaT
	}
	if cfg.EndTime > 0 {
		plan.Input.EndTime = cfg.EndTime
	}
	if cfg.MinDistance > 0 {
		plan.MinDistance = cfg.MinDistance
	}
	return plan, nil
}

func bodies(cfgs []config.BodyConfig) []loader.Body {
	out := make([]loader.Body, len(cfgs))
	for i, b := range cfgs {
		out[i] = loader.Body{
			Mass:     b.Mass,
			Position: nbody.Vector(b.Position).Clone(),
			Velocity: nbody.Vector(b.Velocity).Clone(),
		}
	}
	return out
}

type Option func(*Experiment)

func WithLogger(l logr.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

// WithObserver adds an observer next to the experiment's recorder.
func WithObserver(o nbody.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

type Experiment struct {
	cfg       *config.Config
	plan      *Plan
	registry  *Registry
	sim       *nbody.Simulation
	recorder  *storage.Recorder
	observers []nbody.Observer
	log       logr.Logger
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup resolves the config and builds the grid, metrics and simulation.
func (e *Experiment) Setup() error {
	plan, err := Resolve(e.cfg)
	if err != nil {
		return err
	}
	sim, recorder, err := e.build(plan, true)
	if err != nil {
		return err
	}
	e.plan, e.sim, e.recorder = plan, sim, recorder
	e.log.V(1).Info("experiment ready", "source", plan.Source,
		"bodies", len(plan.Input.Particles), "dt", plan.Input.DeltaT,
		"t_end", plan.Input.EndTime, "steps", sim.PlannedSteps())
	return nil
}

// build creates a simulation for plan. Without record no recorder is
// attached and the returned recorder is nil.
func (e *Experiment) build(plan *Plan, record bool) (*nbody.Simulation, *storage.Recorder, error) {
	grid, err := plan.Input.Grid(
		nbody.WithMinDistance(plan.MinDistance),
		nbody.WithWorkers(e.cfg.Workers),
	)
	if err != nil {
		return nil, nil, err
	}

	ms, err := e.registry.Metrics(e.cfg.Metrics, e.cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []nbody.Option{nbody.WithLogger(e.log.WithName("nbody"))}
	var recorder *storage.Recorder
	if record {
		recorder = storage.NewRecorder(e.cfg.SnapshotEvery)
		opts = append(opts, nbody.WithObserver(recorder))
	}
	for _, o := range e.observers {
		opts = append(opts, nbody.WithObserver(o))
	}
	for _, m := range ms {
		opts = append(opts, nbody.WithMetric(m))
	}

	sim, err := nbody.New(grid, plan.Input.DeltaT, plan.Input.EndTime, opts...)
	if err != nil {
		return nil, nil, err
	}
	return sim, recorder, nil
}

// Builder returns a function that builds a fresh simulation from the
// resolved plan each time it is called. The live view uses it to restart.
func (e *Experiment) Builder() func() (*nbody.Simulation, error) {
	return func() (*nbody.Simulation, error) {
		if e.plan == nil {
			return nil, fmt.Errorf("experiment not setup")
		}
		sim, _, err := e.build(e.plan, false)
		return sim, err
	}
}

// Outcome is everything a finished run produced.
type Outcome struct {
	Result  *nbody.Result
	Frames  []storage.Frame
	Layout  storage.Layout
	Final   *loader.Input
	Elapsed time.Duration
}

// Run simulates to the end time. The final state is always recorded as the
// last frame. A canceled run returns its partial outcome with the error.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.sim == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	result, err := e.sim.Simulate(ctx)
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, nbody.ErrCanceled) {
		return nil, err
	}

	g := e.sim.Grid()
	e.recorder.Record(g, e.sim.StepCount(), e.sim.Time())

	out := &Outcome{
		Result:  result,
		Frames:  e.recorder.Frames(),
		Layout:  e.recorder.Layout(),
		Final:   loader.FromGrid(g, e.plan.Input.DeltaT, e.plan.Input.EndTime),
		Elapsed: elapsed,
	}
	e.log.Info("run finished", "source", e.plan.Source, "steps", result.Steps,
		"t", result.FinalTime, "energy_drift", result.EnergyDrift,
		"finite", result.Finite, "elapsed", elapsed)
	return out, err
}

// Metadata describes the run for storage.
func (e *Experiment) Metadata(out *Outcome) storage.RunMetadata {
	return storage.RunMetadata{
		Source:        e.plan.Source,
		Layout:        out.Layout,
		Dt:            e.plan.Input.DeltaT,
		EndTime:       e.plan.Input.EndTime,
		Steps:         out.Result.Steps,
		FinalTime:     out.Result.FinalTime,
		MinDistance:   e.plan.MinDistance,
		Workers:       e.sim.Grid().Workers(),
		SnapshotEvery: e.cfg.SnapshotEvery,
		Finite:        out.Result.Finite,
		Elapsed:       out.Elapsed,
		Metrics:       storage.Metrics(out.Result.Metrics),
	}
}

func (e *Experiment) Plan() *Plan                   { return e.plan }
func (e *Experiment) Simulation() *nbody.Simulation { return e.sim }
