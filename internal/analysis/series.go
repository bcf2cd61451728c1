package analysis

import (
	"strings"

	"github.com/san-kum/gravsim/internal/storage"
)

// Column extracts one packed state component across frames.
func Column(frames []storage.Frame, idx int) []float64 {
	out := make([]float64, len(frames))
	for k, f := range frames {
		if idx < len(f.State) {
			out[k] = f.State[idx]
		}
	}
	return out
}

// Separation returns the distance between particles i and j in each frame.
func Separation(frames []storage.Frame, layout storage.Layout, i, j int) []float64 {
	out := make([]float64, len(frames))
	for k, f := range frames {
		out[k] = layout.Position(f.State, i).Sub(layout.Position(f.State, j)).Norm()
	}
	return out
}

type Point struct{ X, Y float64 }

// PhasePortrait holds two packed state columns plotted against each other.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

func NewPhasePortrait(frames []storage.Frame, xIdx, yIdx int) *PhasePortrait {
	xs, ys := Column(frames, xIdx), Column(frames, yIdx)
	portrait := &PhasePortrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(frames))}
	for i := range frames {
		portrait.Points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return portrait
}

// ASCII renders the portrait with 10% padding, drawing the axes where they
// cross the visible area.
func (p *PhasePortrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := p.Points[0].X, p.Points[0].X
	minY, maxY := p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX, maxX = min(minX, pt.X), max(maxX, pt.X)
		minY, maxY = min(minY, pt.Y), max(maxY, pt.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for _, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))

		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
