package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	trials      int
	kick        float64
	seed        int64
	sweepParams []string
	sweepMetric string
)

func runBatch(cmd *cobra.Command, args []string) error {
	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("batch %s: %d runs\n", batch.Name, len(batch.Runs))
	ids, err := automation.RunBatch(ctx, batch, st, newLogger(verbosity))
	for _, id := range ids {
		fmt.Printf("  saved %s\n", id)
	}
	return err
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if trials < 1 {
		return fmt.Errorf("trials must be at least 1")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("monte carlo on %s: %d trials, velocity kick ±%g\n", cfg.Source(), trials, kick)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: kick,
		NumTrials:    trials,
		Seed:         seed,
	}, newLogger(cfg.Verbosity))
	if err != nil {
		return err
	}

	drifts := make([]float64, len(results))
	for i, r := range results {
		drifts[i] = r.EnergyDrift
	}
	stable, unstable := automation.MonteCarloStats(results)
	fmt.Println()
	fmt.Println(viz.Metric("stable", viz.StatusRunning.Render(strconv.Itoa(stable))))
	fmt.Println(viz.Metric("unstable", viz.StatusError.Render(strconv.Itoa(unstable))))
	fmt.Println(viz.Metric("fraction", fmt.Sprintf("%.3f", float64(stable)/float64(len(results)))))
	fmt.Println(viz.MetricLabel.Render("drift") + viz.Sparkline(drifts, 40))
	return nil
}

// parseSweepParam parses name=v1,v2,...
func parseSweepParam(s string) (string, []float64, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || name == "" || list == "" {
		return "", nil, fmt.Errorf("sweep parameter %q: want name=v1,v2,...", s)
	}
	fields := strings.Split(list, ",")
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, fmt.Errorf("sweep parameter %s: %w", name, err)
		}
		values[i] = v
	}
	return name, values, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	cfg.SnapshotEvery = 0

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, p := range sweepParams {
		name, values, err := parseSweepParam(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gs := optim.NewGridSearch(names, ranges)
	points, best, err := gs.Search(ctx, optim.Builder(cfg), sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(sweepMetric)+"\t")
	for i, p := range points {
		cells := make([]string, 0, len(names)+2)
		for _, n := range names {
			cells = append(cells, strconv.FormatFloat(p.Params[n], 'g', -1, 64))
		}
		switch {
		case p.Err != nil:
			cells = append(cells, "error: "+p.Err.Error())
		default:
			cells = append(cells, fmt.Sprintf("%.6g", p.Value))
		}
		if i == best {
			cells = append(cells, "◆")
		} else {
			cells = append(cells, "")
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best < 0 {
		return fmt.Errorf("no sweep point produced a value for %s", sweepMetric)
	}
	keys := make([]string, 0, len(points[best].Params))
	for k := range points[best].Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, points[best].Params[k])
	}
	fmt.Printf("\nbest: %s (%s = %.6g)\n", strings.Join(parts, " "), sweepMetric, points[best].Value)
	return nil
}
