// Package optim searches run parameters for the setting that minimizes a
// metric, for example the time step that keeps energy drift lowest per
// unit of work.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
)

// Point is one evaluated parameter combination. Err is set when the run
// could not be built or did not finish; Value is then NaN.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination in order and returns all points and
// the index of the best one, or -1 when no point produced a finite value.
// It stops early only when ctx is done.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	metricName string,
) ([]Point, int, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, -1, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	var points []Point
	err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, metricName, &points)

	best := -1
	for i, p := range points {
		if p.Err == nil && !math.IsNaN(p.Value) && (best < 0 || p.Value < points[best].Value) {
			best = i
		}
	}
	return points, best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		*points = append(*points, evaluate(ctx, current, buildExperiment, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(
	ctx context.Context,
	params map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	metricName string,
) Point {
	p := Point{Params: params, Value: math.NaN()}
	exp, err := buildExperiment(params)
	if err == nil {
		err = exp.Setup()
	}
	if err != nil {
		p.Err = err
		return p
	}

	out, err := exp.Run(ctx)
	if err != nil {
		p.Err = err
		return p
	}
	val, ok := out.Result.Metrics[metricName]
	if !ok {
		p.Err = fmt.Errorf("optim: run did not record metric %q", metricName)
		return p
	}
	p.Value = val
	return p
}

// Apply sets the named run parameters on cfg. Known names are dt, t_end,
// min_distance, escape_radius and workers.
func Apply(cfg *config.Config, params map[string]float64) error {
	for name, v := range params {
		switch name {
		case "dt":
			cfg.DeltaT = v
		case "t_end":
			cfg.EndTime = v
		case "min_distance":
			cfg.MinDistance = v
		case "escape_radius":
			cfg.EscapeRadius = v
		case "workers":
			cfg.Workers = int(v)
		default:
			return fmt.Errorf("optim: unknown parameter %q", name)
		}
	}
	return nil
}

// Builder returns a buildExperiment function that copies base and applies
// each point's parameters to the copy.
func Builder(base *config.Config, opts ...experiment.Option) func(map[string]float64) (*experiment.Experiment, error) {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := *base
		if err := Apply(&cfg, params); err != nil {
			return nil, err
		}
		return experiment.New(&cfg, opts...), nil
	}
}
