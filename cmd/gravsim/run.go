package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	log := newLogger(cfg.Verbosity)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.WithLogger(log))
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	plan := exp.Plan()
	fmt.Printf("running %s: %d bodies, dt=%g, t_end=%g, %d steps\n",
		plan.Source, len(plan.Input.Particles), plan.Input.DeltaT, plan.Input.EndTime,
		exp.Simulation().PlannedSteps())

	out, runErr := exp.Run(ctx)
	if runErr != nil && !errors.Is(runErr, nbody.ErrCanceled) {
		return runErr
	}

	meta := exp.Metadata(out)
	runID, err := st.Save(meta, out.Frames, out.Final)
	if err != nil {
		return err
	}
	meta.ID = runID
	printSummary(meta, len(out.Frames))

	if runErr != nil {
		return fmt.Errorf("partial run %s saved: %w", runID, runErr)
	}
	return nil
}

func printSummary(meta storage.RunMetadata, frames int) {
	fmt.Println()
	fmt.Println(viz.GradientText("run "+meta.ID, viz.CurrentTheme.Primary, viz.CurrentTheme.Secondary))
	fmt.Println(viz.Separator(40))
	fmt.Println(viz.Metric("steps", fmt.Sprintf("%d", meta.Steps)))
	fmt.Println(viz.Metric("time", fmt.Sprintf("%.6g", meta.FinalTime)))
	fmt.Println(viz.Metric("frames", fmt.Sprintf("%d", frames)))
	fmt.Println(viz.Metric("elapsed", meta.Elapsed.Round(time.Microsecond).String()))
	if meta.Finite {
		fmt.Println(viz.Metric("state", viz.StatusRunning.Render("finite")))
	} else {
		fmt.Println(viz.Metric("state", viz.StatusError.Render("non-finite")))
	}

	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\n" + viz.Title.Render("metrics"))
	for _, name := range names {
		fmt.Println(viz.Metric(name, fmt.Sprintf("%.6g", meta.Metrics[name])))
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}
	return viz.RunLive(exp.Plan().Source, exp.Builder(), stepsPerTick)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDIM\tDT\tT_END\tMIN_DIST\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		sc, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		dim := 0
		if len(sc.Bodies) > 0 {
			dim = len(sc.Bodies[0].Position)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%g\t%g\t%g\t%s\n",
			name, len(sc.Bodies), dim, sc.DeltaT, sc.EndTime, sc.MinDistance, sc.Description)
	}
	return w.Flush()
}

// ringBodies places n unit masses on a circle with tangential velocities.
func ringBodies(n int) []config.BodyConfig {
	bodies := make([]config.BodyConfig, n)
	for i := range bodies {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(n))
		bodies[i] = config.BodyConfig{
			Mass:     1,
			Position: []float64{c, s},
			Velocity: []float64{-s * 0.5, c * 0.5},
		}
	}
	return bodies
}

func benchmark(cmd *cobra.Command, args []string) error {
	if benchBodies < 2 || benchSteps < 1 {
		return fmt.Errorf("bench needs at least 2 bodies and 1 step")
	}

	counts := []int{1, 2, 4, runtime.NumCPU()}
	sort.Ints(counts)

	fmt.Printf("benchmarking %d bodies, %d steps\n\n", benchBodies, benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tSTEPS\tTIME\tSTEPS/SEC\tPAIRS/SEC")

	const benchDt = 1e-3
	seen := map[int]bool{}
	for _, n := range counts {
		if seen[n] {
			continue
		}
		seen[n] = true

		cfg := config.DefaultConfig()
		cfg.Bodies = ringBodies(benchBodies)
		cfg.DeltaT, cfg.EndTime = benchDt, benchDt*float64(benchSteps)
		cfg.MinDistance = 1e-3
		cfg.Workers = n
		cfg.SnapshotEvery = 0
		cfg.Metrics = []string{"energy_drift"}

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return err
		}
		out, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		secs := out.Elapsed.Seconds()
		pairs := float64(benchBodies*(benchBodies-1)) * float64(out.Result.Steps)
		fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\t%.3g\n",
			n, out.Result.Steps, out.Elapsed.Round(time.Microsecond),
			float64(out.Result.Steps)/secs, pairs/secs)
	}
	return w.Flush()
}
