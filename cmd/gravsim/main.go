package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir       string
	verbosity     int
	configFile    string
	preset        string
	dt            float64
	tEnd          float64
	minDistance   float64
	workers       int
	snapshotEvery int
	stepsPerTick  int
	theme         string
	escapeRadius  float64
	// Phase plot axes
	xAxis int
	yAxis int
	// Output file for exports
	outFile string
	// SVG export
	svgWidth, svgHeight int
	braille             bool
	// PNG chart
	pngFile                 string
	chartWidth, chartHeight int
	// Lyapunov estimate
	lyapunovTime float64
	perturbation float64
	renormEvery  int
	// Benchmark
	benchBodies int
	benchSteps  int
)

// main registers the gravsim commands and exits with status 1 if the
// command returns an error. Without a subcommand it opens the scenario
// picker.
func main() {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "n-body gravitational simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			viz.SetTheme(theme)
			return viz.RunInteractive(presetChoices(), startPreset)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().IntVarP(&verbosity, "verbosity", "v", 0, "log verbosity (0-2)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", viz.ThemeNebula.Name, "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")

	runCmd := &cobra.Command{
		Use:   "run [input]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [input]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-frame", 4, "simulation steps per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <run_id>",
		Short: "plot positions and separation over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngFile, "png", "", "write a PNG chart to this file instead of terminal plots")
	plotCmd.Flags().IntVar(&chartWidth, "width", 800, "chart width")
	plotCmd.Flags().IntVar(&chartHeight, "height", 500, "chart height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <run_id>",
		Short: "orbital period and chaos analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().Float64Var(&lyapunovTime, "lyapunov", 0, "estimate the Lyapunov exponent over this time from the final state (0 skips)")
	analyzeCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial phase-space separation for the Lyapunov estimate")
	analyzeCmd.Flags().IntVar(&renormEvery, "renorm", 10, "steps between renormalizations")

	phaseCmd := &cobra.Command{
		Use:   "phase <run_id>",
		Short: "phase space plot of two state columns",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state column for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state column for y-axis")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv <run_id>",
		Short: "export recorded states to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json <run_id>",
		Short: "export run metadata and states to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg <run_id>",
		Short: "export trajectories to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render the terminal braille view instead of vector paths")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenarios",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the force kernel across worker counts",
		RunE:  benchmark,
	}
	benchCmd.Flags().IntVar(&benchBodies, "bodies", 256, "number of bodies")
	benchCmd.Flags().IntVar(&benchSteps, "steps", 50, "steps per measurement")

	batchCmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "run and store every run listed in a batch file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [input]",
		Short: "stability of a scenario under random velocity kicks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addScenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Float64Var(&kick, "kick", 0.01, "maximum velocity perturbation per component")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [input]",
		Short: "grid search run parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter values as name=v1,v2,... (dt, t_end, min_distance, escape_radius, workers)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "energy_drift", "metric to minimize")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, phaseCmd,
		exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd,
		batchCmd, monteCarloCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.StatusError.Render("error:"), err)
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "built-in scenario ("+strings.Join(config.ListPresets(), ", ")+")")
	cmd.Flags().Float64Var(&dt, "dt", 0, "time step (0 keeps the scenario value)")
	cmd.Flags().Float64Var(&tEnd, "t-end", 0, "end time (0 keeps the scenario value)")
	cmd.Flags().Float64Var(&minDistance, "min-distance", 0, "distance floor for the force law")
	cmd.Flags().IntVar(&workers, "workers", 0, "force workers (0 or 1 is serial)")
	cmd.Flags().Float64Var(&escapeRadius, "escape-radius", 0, "distance from the origin that counts as escaped (0 disables)")
	cmd.Flags().IntVar(&snapshotEvery, "snapshot-every", config.DefaultSnapshotEvery, "record every n-th step (0 records the final state only)")
}

// loadConfig builds the run config: defaults, then the config file, then
// the input argument and any flags set on the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if len(args) > 0 {
		cfg.Input, cfg.Preset, cfg.Bodies = args[0], "", nil
	}
	flags := cmd.Flags()
	if flags.Changed("preset") {
		cfg.Input, cfg.Preset, cfg.Bodies = "", preset, nil
	}
	if flags.Changed("dt") {
		cfg.DeltaT = dt
	}
	if flags.Changed("t-end") {
		cfg.EndTime = tEnd
	}
	if flags.Changed("min-distance") {
		cfg.MinDistance = minDistance
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("snapshot-every") {
		cfg.SnapshotEvery = snapshotEvery
	}
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("escape-radius") {
		cfg.EscapeRadius = escapeRadius
	}
	if flags.Changed("verbosity") {
		cfg.Verbosity = verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes structured logs to stderr.
func newLogger(v int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: v})
}

func presetChoices() []viz.Choice {
	names := config.ListPresets()
	choices := make([]viz.Choice, 0, len(names))
	for _, name := range names {
		sc, _ := config.GetPreset(name)
		choices = append(choices, viz.Choice{
			Name:        name,
			Description: sc.Description,
			DeltaT:      sc.DeltaT,
			EndTime:     sc.EndTime,
		})
	}
	return choices
}

// startPreset builds simulations for a picker choice. The experiment is set
// up on the first call so that errors surface in the picker.
func startPreset(c viz.Choice) viz.Builder {
	cfg := config.DefaultConfig()
	cfg.Preset, cfg.DeltaT, cfg.EndTime = c.Name, c.DeltaT, c.EndTime
	cfg.SnapshotEvery = 0
	exp := experiment.New(cfg)
	return func() (*nbody.Simulation, error) {
		if exp.Plan() == nil {
			if err := exp.Setup(); err != nil {
				return nil, err
			}
		}
		return exp.Builder()()
	}
}
