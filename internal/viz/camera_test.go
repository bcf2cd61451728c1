package viz

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/nbody"
)

func TestLift(t *testing.T) {
	tests := []struct {
		in   nbody.Vector
		want Vec3
	}{
		{nbody.Vector{1}, Vec3{1, 0, 0}},
		{nbody.Vector{1, 2}, Vec3{1, 2, 0}},
		{nbody.Vector{1, 2, 3}, Vec3{1, 2, 3}},
		{nbody.Vector{1, 2, 3, 4}, Vec3{1, 2, 3}},
	}
	for _, tt := range tests {
		if got := Lift(tt.in); got != tt.want {
			t.Errorf("Lift(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCameraProject(t *testing.T) {
	c := NewCamera()
	const sw, sh = 160, 96

	x, y, _, ok := c.Project(Vec3{}, Vec3{}, sw, sh)
	if !ok || x != 80 || y != 48 {
		t.Errorf("origin -> (%d, %d, %v), want (80, 48, true)", x, y, ok)
	}

	x, y, _, ok = c.Project(Vec3{X: 1}, Vec3{}, sw, sh)
	if !ok || x != 128 || y != 48 {
		t.Errorf("(1,0,0) -> (%d, %d, %v), want (128, 48, true)", x, y, ok)
	}

	// +Y is up on screen.
	_, y, _, _ = c.Project(Vec3{Y: 0.5}, Vec3{}, sw, sh)
	if y != 24 {
		t.Errorf("(0,0.5,0) y = %d, want 24", y)
	}

	x, _, _, _ = c.Project(Vec3{X: 3, Y: 0}, Vec3{X: 2}, sw, sh)
	if x != 128 {
		t.Errorf("offset center x = %d, want 128", x)
	}

	if _, _, _, ok := c.Project(Vec3{X: 5}, Vec3{}, sw, sh); ok {
		t.Error("point outside the view reported on screen")
	}
	if _, _, _, ok := c.Project(Vec3{X: math.NaN()}, Vec3{}, sw, sh); ok {
		t.Error("NaN point reported on screen")
	}
}

func TestCameraRotate(t *testing.T) {
	c := NewCamera()
	c.RotateY(math.Pi / 2)
	p := c.Rotate(Vec3{X: 1})
	if math.Abs(p.X) > 1e-12 || math.Abs(p.Z+1) > 1e-12 {
		t.Errorf("RotY(pi/2) of x-axis = %v, want (0, 0, -1)", p)
	}

	c = NewCamera()
	c.RotateX(math.Pi / 2)
	p = c.Rotate(Vec3{Y: 1})
	if math.Abs(p.Y) > 1e-12 || math.Abs(p.Z-1) > 1e-12 {
		t.Errorf("RotX(pi/2) of y-axis = %v, want (0, 0, 1)", p)
	}
}

func TestCameraZoomLimits(t *testing.T) {
	c := NewCamera()
	for range 100 {
		c.ZoomIn()
	}
	if c.Zoom != 50 {
		t.Errorf("zoom = %v, want 50", c.Zoom)
	}
	for range 200 {
		c.ZoomOut()
	}
	if c.Zoom != 0.02 {
		t.Errorf("zoom = %v, want 0.02", c.Zoom)
	}
}

func TestCameraFit(t *testing.T) {
	a, _ := nbody.NewParticle(1, nbody.Vector{-2, 0}, nbody.Vector{0, 0})
	b, _ := nbody.NewParticle(1, nbody.Vector{2, 0}, nbody.Vector{0, 0})
	g, err := nbody.NewGrid([]*nbody.Particle{a, b})
	if err != nil {
		t.Fatal(err)
	}
	c := NewCamera()
	c.Fit(g)
	if math.Abs(c.Scale-0.4) > 1e-12 {
		t.Errorf("scale = %v, want 0.4", c.Scale)
	}

	one, _ := nbody.NewParticle(1, nbody.Vector{3, 3}, nbody.Vector{0, 0})
	g, _ = nbody.NewGrid([]*nbody.Particle{one})
	c.Fit(g)
	if c.Scale != 0.8 {
		t.Errorf("single body scale = %v, want 0.8", c.Scale)
	}
}
