package viz

import (
	"math"

	"github.com/san-kum/gravsim/internal/nbody"
)

type Vec3 struct {
	X, Y, Z float64
}

// Lift embeds the first three components of v, padding with zeros.
func Lift(v nbody.Vector) Vec3 {
	var p Vec3
	if len(v) > 0 {
		p.X = v[0]
	}
	if len(v) > 1 {
		p.Y = v[1]
	}
	if len(v) > 2 {
		p.Z = v[2]
	}
	return p
}

// Camera is an orthographic view rotated about the X then Y axis. Scale
// maps world units to half the shorter screen side.
type Camera struct {
	RotX, RotY float64
	Zoom       float64
	Scale      float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1.0, Scale: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.02, c.Zoom/1.2) }

// Fit sets Scale so that every particle of g, measured from the center of
// mass, lands inside 80% of the view at zoom 1.
func (c *Camera) Fit(g *nbody.Grid) {
	com := g.CenterOfMass()
	extent := 0.0
	for _, p := range g.Particles() {
		if d := p.Position.Sub(com).Norm(); d > extent && !math.IsInf(d, 0) {
			extent = d
		}
	}
	if !(extent > 0) {
		extent = 1
	}
	c.Scale = 0.8 / extent
}

func (c *Camera) Rotate(p Vec3) Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Project maps a world point, relative to center, onto a sw x sh dot
// screen. It returns the dot coordinates, the depth and whether the dot is
// on screen.
func (c *Camera) Project(p, center Vec3, sw, sh int) (int, int, float64, bool) {
	rel := Vec3{p.X - center.X, p.Y - center.Y, p.Z - center.Z}
	rot := c.Rotate(rel)
	half := float64(min(sw, sh)) / 2
	k := c.Scale * c.Zoom * half
	fx := rot.X*k + float64(sw)/2
	fy := -rot.Y*k + float64(sh)/2
	if !(fx >= 0 && fx < float64(sw) && fy >= 0 && fy < float64(sh)) {
		return 0, 0, rot.Z, false
	}
	return int(fx), int(fy), rot.Z, true
}
