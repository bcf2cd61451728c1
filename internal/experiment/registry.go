package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/nbody"
)

// Registry maps metric names to constructors. Every call builds fresh
// instances so runs never share accumulated state.
type Registry struct {
	metrics map[string]func(cfg *config.Config) nbody.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(*config.Config) nbody.Metric),
	}

	r.metrics["energy"] = func(*config.Config) nbody.Metric { return metrics.NewEnergy() }
	r.metrics["energy_drift"] = func(*config.Config) nbody.Metric { return metrics.NewEnergyDrift() }
	r.metrics["momentum_drift"] = func(*config.Config) nbody.Metric { return metrics.NewMomentumDrift() }
	r.metrics["min_separation"] = func(*config.Config) nbody.Metric { return metrics.NewMinSeparation() }
	r.metrics["stability"] = func(cfg *config.Config) nbody.Metric {
		return metrics.NewStability(cfg.EscapeRadius)
	}

	return r
}

func (r *Registry) GetMetric(name string, cfg *config.Config) (nbody.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(cfg), nil
}

// Metrics builds the named metrics, or the default set when names is empty.
func (r *Registry) Metrics(names []string, cfg *config.Config) ([]nbody.Metric, error) {
	if len(names) == 0 {
		names = DefaultMetrics()
	}
	out := make([]nbody.Metric, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		m, err := r.GetMetric(name, cfg)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics lists the metrics recorded when a config names none.
func DefaultMetrics() []string {
	names := make([]string, 0, 5)
	for _, m := range metrics.Standard(0) {
		names = append(names, m.Name())
	}
	return names
}
