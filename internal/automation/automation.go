// Package automation runs scripted batches of simulations and Monte Carlo
// stability studies built from run configs.
package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Batch is a named list of runs stored one after another.
type Batch struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Runs        []config.Config `yaml:"runs"`
}

// LoadBatch loads a batch from a YAML file. Each run starts from
// config.DefaultConfig before the file's values are applied.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Runs        []yaml.Node `yaml:"runs"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	batch := &Batch{Name: raw.Name, Description: raw.Description, Runs: make([]config.Config, len(raw.Runs))}
	for i := range raw.Runs {
		cfg := config.DefaultConfig()
		if err := raw.Runs[i].Decode(cfg); err != nil {
			return nil, fmt.Errorf("%s: run %d: %w", path, i+1, err)
		}
		batch.Runs[i] = *cfg
	}
	return batch, nil
}

// RunBatch executes every run in order and saves it to st. It returns the
// ids of the runs saved before any error.
func RunBatch(ctx context.Context, batch *Batch, st *storage.Store, log logr.Logger) ([]string, error) {
	ids := make([]string, 0, len(batch.Runs))

	for i := range batch.Runs {
		cfg := &batch.Runs[i]
		log.Info("batch run", "index", i+1, "of", len(batch.Runs), "source", cfg.Source())

		exp := experiment.New(cfg, experiment.WithLogger(log))
		if err := exp.Setup(); err != nil {
			return ids, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		out, err := exp.Run(ctx)
		if err != nil {
			return ids, fmt.Errorf("run %d: %w", i+1, err)
		}

		id, err := st.Save(exp.Metadata(out), out.Frames, out.Final)
		if err != nil {
			return ids, fmt.Errorf("run %d save: %w", i+1, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// MonteCarloConfig perturbs every velocity component of the base scenario
// by a uniform offset in [-Perturbation, Perturbation].
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult is one perturbed trial.
type MonteCarloResult struct {
	TrialID     int
	Stable      bool
	Stability   float64
	EnergyDrift float64
	Finite      bool
}

// RunMonteCarlo executes the trials. A trial is stable when every observed
// state stayed finite and inside the escape radius.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log logr.Logger) ([]MonteCarloResult, error) {
	plan, err := experiment.Resolve(cfg.Base)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	for trial := 0; trial < cfg.NumTrials; trial++ {
		trialCfg := *cfg.Base
		trialCfg.Input, trialCfg.Preset = "", ""
		trialCfg.DeltaT, trialCfg.EndTime = plan.Input.DeltaT, plan.Input.EndTime
		trialCfg.MinDistance = plan.MinDistance
		trialCfg.SnapshotEvery = 0
		trialCfg.Metrics = []string{"stability", "energy_drift"}
		trialCfg.Bodies = make([]config.BodyConfig, len(plan.Input.Particles))
		for i, b := range plan.Input.Particles {
			vel := make([]float64, len(b.Velocity))
			for d, v := range b.Velocity {
				vel[d] = v + (rng.Float64()-0.5)*2*cfg.Perturbation
			}
			trialCfg.Bodies[i] = config.BodyConfig{
				Mass:     b.Mass,
				Position: append([]float64(nil), b.Position...),
				Velocity: vel,
			}
		}

		exp := experiment.New(&trialCfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("trial %d setup: %w", trial, err)
		}
		out, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		stability := out.Result.Metrics["stability"]
		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Stable:      stability == 1 && out.Result.Finite,
			Stability:   stability,
			EnergyDrift: out.Result.Metrics["energy_drift"],
			Finite:      out.Result.Finite,
		})

		if (trial+1)%10 == 0 {
			log.V(1).Info("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
