package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/viz"
)

// Palette colors particle paths in order, wrapping around.
var Palette = []string{"#00ff9f", "#ff6b6b", "#4dabf7", "#ffd43b", "#cc5de8", "#ff922b", "#20c997", "#f06595"}

// CanvasToSVG converts a Braille canvas to SVG, one circle per set dot.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="%s">
`, width, height, width, height, Palette[0])

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !canvas.IsSet(col*2+dx, row*4+dy) {
						continue
					}
					cx := (float64(col*2+dx) + 0.5) * scale
					cy := (float64(row*4+dy) + 0.5) * scale
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", cx, cy, dotRadius)
				}
			}
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

type bounds struct {
	minX, maxX, minY, maxY float64
}

// trackBounds covers every finite point of every track, padded by 10%.
func trackBounds(tracks [][]nbody.Vector) (bounds, bool) {
	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	found := false
	for _, track := range tracks {
		for _, p := range track {
			if len(p) < 2 || !p.IsValid() {
				continue
			}
			found = true
			b.minX, b.maxX = math.Min(b.minX, p[0]), math.Max(b.maxX, p[0])
			b.minY, b.maxY = math.Min(b.minY, p[1]), math.Max(b.maxY, p[1])
		}
	}
	if !found {
		return b, false
	}

	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b, true
}

// TrajectoriesToSVG draws one path per particle from the first two
// coordinates of its positions, all on shared axes. Non-finite points break
// the path. It returns "" when there is nothing to draw.
func TrajectoriesToSVG(tracks [][]nbody.Vector, width, height int) string {
	b, ok := trackBounds(tracks)
	if !ok {
		return ""
	}
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, track := range tracks {
		color := Palette[i%len(Palette)]
		var d strings.Builder
		pen := false
		var last [2]float64
		for _, p := range track {
			if len(p) < 2 || !p.IsValid() {
				pen = false
				continue
			}
			x := (p[0] - b.minX) / rangeX * float64(width)
			y := float64(height) - (p[1]-b.minY)/rangeY*float64(height)
			if pen {
				fmt.Fprintf(&d, " L%.1f,%.1f", x, y)
			} else {
				if d.Len() > 0 {
					d.WriteByte(' ')
				}
				fmt.Fprintf(&d, "M%.1f,%.1f", x, y)
				pen = true
			}
			last = [2]float64{x, y}
		}
		if d.Len() == 0 {
			continue
		}
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.5\" d=\"%s\"/>\n", color, d.String())
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", last[0], last[1], color)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
