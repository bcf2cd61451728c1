package nbody

import (
	"context"
	"errors"
	"math"
	"testing"
)

func binaryGrid(t *testing.T) *Grid {
	t.Helper()
	v := math.Sqrt(0.5)
	a, _ := NewParticle(1, Vector{-0.5, 0}, Vector{0, -v})
	b, _ := NewParticle(1, Vector{0.5, 0}, Vector{0, v})
	g, err := NewGrid([]*Particle{a, b})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

type countingMetric struct {
	observed int
	resets   int
}

func (m *countingMetric) Name() string               { return "count" }
func (m *countingMetric) Observe(g *Grid, t float64) { m.observed++ }
func (m *countingMetric) Value() float64             { return float64(m.observed) }
func (m *countingMetric) Reset()                     { m.observed = 0; m.resets++ }

func TestNewSimulation_Invalid(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		name    string
		dt      float64
		tEnd    float64
		wantErr error
	}{
		{"zero dt", 0, 1, ErrInvalidTimestep},
		{"negative dt", -0.1, 1, ErrInvalidTimestep},
		{"NaN dt", math.NaN(), 1, ErrInvalidTimestep},
		{"infinite dt", inf, 1, ErrInvalidTimestep},
		{"negative end time", 0.1, -1, ErrInvalidEndTime},
		{"NaN end time", 0.1, math.NaN(), ErrInvalidEndTime},
		{"infinite end time", 0.1, inf, ErrInvalidEndTime},
		{"too many steps", 1e-300, 1, ErrInvalidEndTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(binaryGrid(t), tt.dt, tt.tEnd)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if _, err := New(nil, 0.1, 1); err == nil {
		t.Error("expected error for nil grid")
	}

	massless, _ := NewGrid([]*Particle{DefaultParticle()})
	if _, err := New(massless, 0.1, 1); !errors.Is(err, ErrNonPositiveMass) {
		t.Errorf("expected ErrNonPositiveMass, got %v", err)
	}
}

func TestPlannedSteps(t *testing.T) {
	tests := []struct {
		dt, tEnd float64
		want     int
	}{
		{0.1, 1, 10},
		{0.3, 1, 3},
		{0.1, 0.3, 3},
		{0.1, 0, 0},
		{2, 1, 0},
		{0.015, 468.5, 31233},
		{0.5, 0.5, 1},
	}

	for _, tt := range tests {
		got, err := PlannedSteps(tt.dt, tt.tEnd)
		if err != nil {
			t.Fatalf("PlannedSteps(%v, %v) failed: %v", tt.dt, tt.tEnd, err)
		}
		if got != tt.want {
			t.Errorf("PlannedSteps(%v, %v) = %d, want %d", tt.dt, tt.tEnd, got, tt.want)
		}
	}
}

func TestSimulate_ZeroStepsLeavesStateUntouched(t *testing.T) {
	g := binaryGrid(t)
	before := g.Clone()

	s, err := New(g, 0.1, 0)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Simulate(context.Background())
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	if result.Steps != 0 || result.FinalTime != 0 {
		t.Errorf("expected no steps, got %d (t=%v)", result.Steps, result.FinalTime)
	}
	for i := 0; i < g.Len(); i++ {
		approxEqual(t, "position", g.Particle(i).Position, before.Particle(i).Position, 0)
		approxEqual(t, "velocity", g.Particle(i).Velocity, before.Particle(i).Velocity, 0)
	}
	if result.EnergyDrift != 0 {
		t.Errorf("expected zero drift, got %v", result.EnergyDrift)
	}
}

func TestSimulate_StepCountAndObservers(t *testing.T) {
	tests := []struct {
		name      string
		dt, tEnd  float64
		wantSteps int
	}{
		{"exact", 0.1, 1, 10},
		{"partial interval", 0.3, 1, 3},
		{"dt beyond end", 2, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var steps []int
			var times []float64
			obs := ObserverFunc(func(g *Grid, step int, tm float64) {
				steps = append(steps, step)
				times = append(times, tm)
			})
			metric := &countingMetric{}

			s, err := New(binaryGrid(t), tt.dt, tt.tEnd, WithObserver(obs), WithMetric(metric))
			if err != nil {
				t.Fatal(err)
			}
			result, err := s.Simulate(context.Background())
			if err != nil {
				t.Fatalf("Simulate failed: %v", err)
			}

			if result.Steps != tt.wantSteps || s.StepCount() != tt.wantSteps {
				t.Errorf("expected %d steps, got %d", tt.wantSteps, result.Steps)
			}
			if !s.Done() {
				t.Error("expected simulation to be done")
			}
			if len(steps) != tt.wantSteps+1 {
				t.Fatalf("expected %d observer calls, got %d", tt.wantSteps+1, len(steps))
			}
			for i := range steps {
				if steps[i] != i {
					t.Errorf("observer call %d saw step %d", i, steps[i])
				}
				if want := float64(i) * tt.dt; math.Abs(times[i]-want) > 1e-12 {
					t.Errorf("observer call %d saw t=%v, want %v", i, times[i], want)
				}
			}
			if result.FinalTime > tt.tEnd+1e-12 {
				t.Errorf("overshot end time: %v > %v", result.FinalTime, tt.tEnd)
			}
			if metric.resets != 1 || result.Metrics["count"] != float64(tt.wantSteps+1) {
				t.Errorf("metric saw %v states after %d resets", result.Metrics["count"], metric.resets)
			}
		})
	}
}

func TestStep_MatchesManualVerlet(t *testing.T) {
	const dt = 0.01
	g := twoBodyGrid(t)
	ref := g.Clone()

	s, err := New(g, dt, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Step()

	ref.UpdateForces()
	ref.StoreOldForces()
	ref.UpdatePositions(dt)
	ref.UpdateForces()
	ref.UpdateVelocities(dt)

	for i := 0; i < g.Len(); i++ {
		got, want := g.Particle(i), ref.Particle(i)
		approxEqual(t, "position", got.Position, want.Position, 0)
		approxEqual(t, "velocity", got.Velocity, want.Velocity, 0)
		approxEqual(t, "force", got.Force, want.Force, 0)
		approxEqual(t, "force_old", got.ForceOld, want.ForceOld, 0)
	}
	if s.StepCount() != 1 || math.Abs(s.Time()-dt) > 1e-15 {
		t.Errorf("expected step 1 at t=%v, got step %d at t=%v", dt, s.StepCount(), s.Time())
	}
}

func TestStep_PrimesStaleForces(t *testing.T) {
	g := twoBodyGrid(t)
	s, err := New(g, 0.01, 1)
	if err != nil {
		t.Fatal(err)
	}

	s.Step()

	// The loaded force (7, 8, 9) must not leak into the first step.
	approxEqual(t, "force_old B", g.Particle(1).ForceOld,
		Vector{-15.27207096642, -30.5441419328, -45.8162128993}, 1e-9)
}

func TestPrime_Idempotent(t *testing.T) {
	g := twoBodyGrid(t)
	s, err := New(g, 0.01, 1)
	if err != nil {
		t.Fatal(err)
	}
	s.Prime()
	g.Particle(0).Force[0] = 99
	s.Prime()
	if g.Particle(0).Force[0] != 99 {
		t.Error("second Prime recomputed forces")
	}
}

func TestSimulate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	obs := ObserverFunc(func(g *Grid, step int, tm float64) {
		if step == 5 {
			cancel()
		}
	})

	s, err := New(binaryGrid(t), 0.01, 10, WithObserver(obs))
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Simulate(ctx)
	if !errors.Is(err, ErrCanceled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if result == nil || result.Steps != 5 {
		t.Fatalf("expected partial result at step 5, got %+v", result)
	}
	if math.Abs(result.FinalTime-0.05) > 1e-12 {
		t.Errorf("expected t=0.05, got %v", result.FinalTime)
	}
}

func TestSimulate_NonFiniteIsNotAnError(t *testing.T) {
	g, err := NewGrid([]*Particle{
		testParticle(1, Vector{0, 0}, Vector{0, 0}, Vector{0, 0}, Vector{0, 0}),
		testParticle(1, Vector{0, 0}, Vector{0, 0}, Vector{0, 0}, Vector{0, 0}),
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(g, 0.1, 0.3)
	if err != nil {
		t.Fatal(err)
	}

	result, err := s.Simulate(context.Background())
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if result.Finite {
		t.Error("expected non-finite result for coincident particles")
	}
	if result.Steps != 3 {
		t.Errorf("expected all 3 steps to run, got %d", result.Steps)
	}
}

func TestSimulate_BinaryOrbitCloses(t *testing.T) {
	g := binaryGrid(t)
	start := g.Particle(1).Position.Clone()
	period := 2 * math.Pi * 0.5 / math.Sqrt(0.5)

	s, err := New(g, period/2000, period)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Simulate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	approxEqual(t, "position after one period", g.Particle(1).Position, start, 1e-3)
	approxEqual(t, "momentum", result.FinalMomentum, Vector{0, 0}, 1e-12)
	if result.EnergyDrift > 1e-4 {
		t.Errorf("energy drift too large: %v", result.EnergyDrift)
	}
	if !result.Finite {
		t.Error("expected finite result")
	}
}

func TestSimulate_ParallelMatchesSerial(t *testing.T) {
	run := func(workers int) *Grid {
		g := ringGrid(t, 12, 2, WithWorkers(workers), WithMinDistance(1e-3))
		s, err := New(g, 0.001, 0.05)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Simulate(context.Background()); err != nil {
			t.Fatal(err)
		}
		return g
	}

	serial, parallel := run(1), run(4)
	for i := 0; i < serial.Len(); i++ {
		approxEqual(t, "position", parallel.Particle(i).Position, serial.Particle(i).Position, 0)
		approxEqual(t, "velocity", parallel.Particle(i).Velocity, serial.Particle(i).Velocity, 0)
	}
}

func TestEnergyDrift(t *testing.T) {
	if got := EnergyDrift(-2, -1); got != 0.5 {
		t.Errorf("relative drift = %v, want 0.5", got)
	}
	if got := EnergyDrift(0, -0.25); got != 0.25 {
		t.Errorf("absolute drift = %v, want 0.25", got)
	}
	if got := EnergyDrift(0, 4); got != 4 {
		t.Errorf("absolute drift = %v, want 4", got)
	}
}

func TestSimulate_ZeroInitialEnergyDrift(t *testing.T) {
	a, _ := NewParticle(1, Vector{-0.5, 0}, Vector{0, 1})
	b, _ := NewParticle(1, Vector{0.5, 0}, Vector{0, -1})
	g, err := NewGrid([]*Particle{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if e := g.TotalEnergy(); e != 0 {
		t.Fatalf("expected zero initial energy, got %v", e)
	}

	s, err := New(g, 0.05, 1)
	if err != nil {
		t.Fatal(err)
	}
	result, err := s.Simulate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := math.Abs(result.FinalEnergy)
	if result.EnergyDrift != want {
		t.Errorf("drift = %v, want |E - E0| = %v", result.EnergyDrift, want)
	}
}
