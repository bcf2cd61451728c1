package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
)

func binaryConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Preset = "binary"
	cfg.EndTime = 2
	cfg.SnapshotEvery = 0
	return cfg
}

func TestSearchPrefersSmallerTimestep(t *testing.T) {
	gs := NewGridSearch([]string{"dt"}, [][]float64{{0.1, 0.05, 0.01}})
	points, best, err := gs.Search(context.Background(), Builder(binaryConfig()), "energy_drift")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if best != 2 || points[best].Params["dt"] != 0.01 {
		t.Errorf("best = %d (%v), want dt=0.01", best, points[best].Params)
	}
	for _, p := range points {
		if p.Err != nil {
			t.Errorf("point %v failed: %v", p.Params, p.Err)
		}
	}
}

func TestSearchCartesianProduct(t *testing.T) {
	gs := NewGridSearch(
		[]string{"dt", "min_distance"},
		[][]float64{{0.1, 0.05}, {0, 0.01, 0.1}},
	)
	points, _, err := gs.Search(context.Background(), Builder(binaryConfig()), "energy")
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 6 {
		t.Fatalf("got %d points, want 6", len(points))
	}
	if points[0].Params["dt"] != 0.1 || points[0].Params["min_distance"] != 0 {
		t.Errorf("first point = %v", points[0].Params)
	}
	if points[5].Params["dt"] != 0.05 || points[5].Params["min_distance"] != 0.1 {
		t.Errorf("last point = %v", points[5].Params)
	}
}

func TestSearchRecordsFailures(t *testing.T) {
	gs := NewGridSearch([]string{"dt", "bogus"}, [][]float64{{0.1}, {1}})
	points, best, err := gs.Search(context.Background(), Builder(binaryConfig()), "energy")
	if err != nil {
		t.Fatal(err)
	}
	if best != -1 || points[0].Err == nil || !math.IsNaN(points[0].Value) {
		t.Errorf("points = %+v, best = %d", points, best)
	}

	gs = NewGridSearch([]string{"dt"}, [][]float64{{0.1}})
	points, _, _ = gs.Search(context.Background(), Builder(binaryConfig()), "missing")
	if points[0].Err == nil {
		t.Error("expected error for unrecorded metric")
	}
}

func TestSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gs := NewGridSearch([]string{"dt"}, [][]float64{{0.1, 0.01}})
	points, _, err := gs.Search(ctx, Builder(binaryConfig()), "energy")
	if !errors.Is(err, context.Canceled) || len(points) != 0 {
		t.Errorf("err = %v, points = %d", err, len(points))
	}
}

func TestSearchMismatchedRanges(t *testing.T) {
	gs := NewGridSearch([]string{"dt"}, nil)
	if _, _, err := gs.Search(context.Background(), Builder(binaryConfig()), "energy"); err == nil {
		t.Error("expected error")
	}
}

func TestApply(t *testing.T) {
	cfg := config.DefaultConfig()
	err := Apply(cfg, map[string]float64{"dt": 0.5, "t_end": 3, "min_distance": 0.1, "escape_radius": 50, "workers": 4})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DeltaT != 0.5 || cfg.EndTime != 3 || cfg.MinDistance != 0.1 || cfg.EscapeRadius != 50 || cfg.Workers != 4 {
		t.Errorf("cfg = %+v", cfg)
	}

	base := binaryConfig()
	if _, err := Builder(base)(map[string]float64{"dt": 0.2}); err != nil {
		t.Fatal(err)
	}
	if base.DeltaT != 0 {
		t.Error("Builder modified the base config")
	}
}
