package export

import (
	"errors"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoData = errors.New("export: no finite data to chart")

// Series is one named line of a time chart.
type Series struct {
	Name   string
	Values []float64
}

// finitePrefix cuts times and values at the first non-finite value.
func finitePrefix(times, values []float64) ([]float64, []float64) {
	n := min(len(times), len(values))
	for i := 0; i < n; i++ {
		if math.IsNaN(values[i]) || math.IsInf(values[i], 0) {
			n = i
			break
		}
	}
	return times[:n], values[:n]
}

// WriteChartPNG renders series against times as a PNG line chart. Each
// series stops at its first non-finite value; series with fewer than two
// points are left out.
func WriteChartPNG(w io.Writer, title string, times []float64, series []Series, width, height int) error {
	lines := make([]chart.Series, 0, len(series))
	for i, s := range series {
		xs, ys := finitePrefix(times, s.Values)
		if len(xs) < 2 {
			continue
		}
		lines = append(lines, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(Palette[i%len(Palette)], "#")),
				StrokeWidth: 2.0,
			},
		})
	}
	if len(lines) == 0 {
		return ErrNoData
	}

	graph := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		XAxis: chart.XAxis{
			Name:  "t",
			Style: chart.Style{FontSize: 10.0},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10.0},
		},
		Series: lines,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return graph.Render(chart.PNG, w)
}
