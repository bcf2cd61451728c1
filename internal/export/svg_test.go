package export

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/viz"
)

func TestTrajectoriesToSVG(t *testing.T) {
	tracks := [][]nbody.Vector{
		{{0, 0}, {1, 0}, {1, 1}},
		{{0, 1, 5}, {-1, 1, 5}},
	}

	svg := TrajectoriesToSVG(tracks, 200, 100)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("malformed document:\n%s", svg)
	}
	if n := strings.Count(svg, "<path"); n != 2 {
		t.Errorf("expected 2 paths, got %d", n)
	}
	if !strings.Contains(svg, Palette[0]) || !strings.Contains(svg, Palette[1]) {
		t.Error("expected one color per particle")
	}
	if !strings.Contains(svg, `width="200" height="100"`) {
		t.Error("missing dimensions")
	}
}

func TestTrajectoriesToSVG_NonFinite(t *testing.T) {
	tracks := [][]nbody.Vector{
		{{0, 0}, {1, 1}, {math.NaN(), 0}, {2, 2}, {3, 3}},
	}

	svg := TrajectoriesToSVG(tracks, 100, 100)
	if strings.Contains(svg, "NaN") {
		t.Error("non-finite coordinates leaked into the output")
	}
	if n := strings.Count(svg, "M"); n != 2 {
		t.Errorf("expected the path to restart once, got %d segments", n)
	}

	if TrajectoriesToSVG(nil, 100, 100) != "" {
		t.Error("expected empty output without tracks")
	}
	if TrajectoriesToSVG([][]nbody.Vector{{{math.Inf(1), 0}}}, 100, 100) != "" {
		t.Error("expected empty output without finite points")
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(7, 7)

	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `width="16" height="16"`) {
		t.Errorf("unexpected size in\n%s", svg)
	}
	if CanvasToSVG(nil, 1) != "" {
		t.Error("expected empty output for nil canvas")
	}
}
