package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

const maxPlots = 6

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tBODIES\tDIM\tSTEPS\tT_END\tDRIFT\tFINITE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%g\t%.2e\t%v\n",
			run.ID,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Layout.Particles,
			run.Layout.Dim,
			run.Steps,
			run.EndTime,
			run.Metrics["energy_drift"],
			run.Finite,
		)
	}

	return w.Flush()
}

// loadRun reads a run's metadata and recorded frames.
func loadRun(runID string) (*storage.RunMetadata, []storage.Frame, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	frames, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) == 0 {
		return nil, nil, fmt.Errorf("run %s has no recorded states", runID)
	}
	return meta, frames, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(frames) < 2 {
		return fmt.Errorf("run %s has a single frame; rerun with --snapshot-every > 0", meta.ID)
	}

	layout := meta.Layout
	if pngFile != "" {
		return plotPNG(meta, frames)
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("samples: %d\n\n", len(frames))

	plotted := 0
	for i := 0; i < layout.Particles && plotted < maxPlots; i++ {
		for d := 0; d < layout.Dim && d < 2 && plotted < maxPlots; d++ {
			data := analysis.Column(frames, layout.PositionIndex(i, d))
			graph := asciigraph.Plot(data,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("body %d x%d vs time", i, d)),
			)
			fmt.Println(graph)
			fmt.Println()
			plotted++
		}
	}

	if layout.Particles >= 2 {
		graph := asciigraph.Plot(analysis.Separation(frames, layout, 0, 1),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("separation of bodies 0 and 1"),
		)
		fmt.Println(graph)
	}
	return nil
}

// plotPNG charts the first coordinate of each body and, for two or more
// bodies, the separation of bodies 0 and 1.
func plotPNG(meta *storage.RunMetadata, frames []storage.Frame) error {
	times := make([]float64, len(frames))
	for i, f := range frames {
		times[i] = f.Time
	}
	layout := meta.Layout
	series := make([]export.Series, 0, layout.Particles+1)
	for i := 0; i < layout.Particles && i < maxPlots; i++ {
		series = append(series, export.Series{
			Name:   fmt.Sprintf("body %d x0", i),
			Values: analysis.Column(frames, layout.PositionIndex(i, 0)),
		})
	}
	if layout.Particles >= 2 {
		series = append(series, export.Series{Name: "separation 0-1", Values: analysis.Separation(frames, layout, 0, 1)})
	}

	f, err := os.Create(pngFile)
	if err != nil {
		return err
	}
	if err := export.WriteChartPNG(f, meta.ID, times, series, chartWidth, chartHeight); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", pngFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("source: %s\n\n", meta.Source)

	if len(frames) >= 4 {
		sampleDt := frames[1].Time - frames[0].Time
		series, caption := analysis.Column(frames, meta.Layout.PositionIndex(0, 0)), "power spectrum (body 0 x0)"
		if meta.Layout.Particles >= 2 {
			series, caption = analysis.Separation(frames, meta.Layout, 0, 1), "power spectrum (separation 0-1)"
		}

		ps := analysis.PowerSpectrum(series)
		if len(ps) > 2 {
			graph := asciigraph.Plot(ps[1:],
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption(caption),
			)
			fmt.Println(graph)
			fmt.Println()
		}

		period, err := analysis.DominantPeriod(series, sampleDt)
		if err != nil {
			fmt.Printf("dominant period: n/a (%v)\n", err)
		} else {
			fmt.Printf("dominant period: %.4g\n", period)
			fmt.Printf("frequency: %.4g\n", 1/period)
		}
	} else {
		fmt.Println("too few frames for spectral analysis")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nMETRIC\tVALUE")
	for _, name := range sortedKeys(meta.Metrics) {
		fmt.Fprintf(w, "%s\t%.6g\n", name, meta.Metrics[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if lyapunovTime > 0 {
		final, err := storage.New(dataDir).LoadFinal(meta.ID)
		if err != nil {
			return err
		}
		g, err := final.Grid(nbody.WithMinDistance(meta.MinDistance), nbody.WithWorkers(meta.Workers))
		if err != nil {
			return err
		}
		lambda, err := analysis.LyapunovExponent(g, meta.Dt, lyapunovTime, perturbation, renormEvery)
		if errors.Is(err, analysis.ErrSeparationLost) {
			fmt.Println(viz.StatusError.Render("warning:"), err)
		} else if err != nil {
			return err
		}
		fmt.Printf("\nlyapunov exponent (from final state, %g time units): %.4g\n", lyapunovTime, lambda)
		if lambda > 0 {
			fmt.Printf("e-folding time: %.4g\n", 1/lambda)
		}
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	columns := meta.Layout.Columns()
	if xAxis < 0 || yAxis < 0 || xAxis >= len(columns) || yAxis >= len(columns) {
		return fmt.Errorf("axes must be in [0, %d)", len(columns))
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("source: %s\n", meta.Source)
	fmt.Printf("x-axis: %s, y-axis: %s\n\n", columns[xAxis], columns[yAxis])

	portrait := analysis.NewPhasePortrait(frames, xAxis, yAxis)
	fmt.Println(portrait.ASCII(70, 20))
	return nil
}

// output returns stdout or the --output file.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteCSV(w, meta.Layout, frames); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if outFile != "" {
		if err := storage.ExportJSON(outFile, *meta, frames); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported %s to %s\n", meta.ID, outFile)
		return nil
	}
	return storage.WriteJSON(os.Stdout, *meta, frames)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	meta, frames, err := loadRun(args[0])
	if err != nil {
		return err
	}
	tracks := storage.Tracks(frames, meta.Layout)

	var svg string
	if braille {
		svg, err = brailleSVG(meta, tracks)
		if err != nil {
			return err
		}
	} else {
		svg = export.TrajectoriesToSVG(tracks, svgWidth, svgHeight)
	}
	if svg == "" {
		return fmt.Errorf("run %s has nothing to draw", meta.ID)
	}

	w, err := output()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, svg); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// brailleSVG draws the tracks the way the live view does, fitted to the
// run's final state, and converts the canvas to SVG.
func brailleSVG(meta *storage.RunMetadata, tracks [][]nbody.Vector) (string, error) {
	final, err := storage.New(dataDir).LoadFinal(meta.ID)
	if err != nil {
		return "", err
	}
	g, err := final.Grid()
	if err != nil {
		return "", err
	}

	canvas := viz.NewCanvas(svgWidth/8, svgHeight/16)
	camera := viz.NewCamera()
	camera.Fit(g)
	center := viz.Lift(g.CenterOfMass())
	sw, sh := canvas.DotWidth(), canvas.DotHeight()
	for _, track := range tracks {
		px, py, started := 0, 0, false
		for _, p := range track {
			x, y, _, ok := camera.Project(viz.Lift(p), center, sw, sh)
			if !ok {
				started = false
				continue
			}
			if started {
				canvas.DrawLine(px, py, x, y)
			} else {
				canvas.Set(x, y)
			}
			px, py, started = x, y, true
		}
	}
	return export.CanvasToSVG(canvas, 4), nil
}

func sortedKeys(m storage.Metrics) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
