package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/spf13/cobra"
)

func scenarioCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addScenarioFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	yaml := "preset: figure8\ndt: 0.002\nt_end: 5\nworkers: 2\n"
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := scenarioCmd(t, "--config", path, "--t-end", "7")
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Preset != "figure8" || cfg.DeltaT != 0.002 || cfg.Workers != 2 {
		t.Errorf("config file values lost: %+v", cfg)
	}
	if cfg.EndTime != 7 {
		t.Errorf("t_end = %v, want the flag value 7", cfg.EndTime)
	}

	cmd = scenarioCmd(t, "--config", path)
	cfg, err = loadConfig(cmd, []string{"orbit.dat"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "orbit.dat" || cfg.Preset != "" {
		t.Errorf("input argument did not replace the preset: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	configFile = ""
	cmd := scenarioCmd(t, "--preset", "nope")
	if _, err := loadConfig(cmd, nil); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseSweepParam(t *testing.T) {
	name, values, err := parseSweepParam("dt=0.1, 0.01,1e-3")
	if err != nil {
		t.Fatal(err)
	}
	if name != "dt" || len(values) != 3 || values[2] != 1e-3 {
		t.Errorf("got %s %v", name, values)
	}

	for _, bad := range []string{"dt", "=1", "dt=", "dt=a,b"} {
		if _, _, err := parseSweepParam(bad); err == nil {
			t.Errorf("parseSweepParam(%q) succeeded", bad)
		}
	}
}

func TestRingBodies(t *testing.T) {
	bodies := ringBodies(8)
	var px, py float64
	for _, b := range bodies {
		if r := math.Hypot(b.Position[0], b.Position[1]); math.Abs(r-1) > 1e-12 {
			t.Errorf("radius = %v, want 1", r)
		}
		px += b.Mass * b.Velocity[0]
		py += b.Mass * b.Velocity[1]
	}
	if math.Abs(px) > 1e-12 || math.Abs(py) > 1e-12 {
		t.Errorf("net momentum = (%v, %v), want zero", px, py)
	}
}

func TestPresetChoices(t *testing.T) {
	choices := presetChoices()
	if len(choices) != len(config.ListPresets()) {
		t.Fatalf("got %d choices", len(choices))
	}
	for _, c := range choices {
		if c.DeltaT <= 0 || c.EndTime <= 0 || c.Description == "" {
			t.Errorf("choice %+v incomplete", c)
		}
	}

	build := startPreset(choices[0])
	sim, err := build()
	if err != nil {
		t.Fatal(err)
	}
	if sim.StepCount() != 0 {
		t.Error("fresh simulation has steps")
	}
}
