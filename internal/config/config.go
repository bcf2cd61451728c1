package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPreset        = "binary"
	DefaultSnapshotEvery = 10
	DefaultDataDir       = "./runs"
)

var (
	ErrInvalidConfig = errors.New("config: invalid")
	ErrUnknownPreset = errors.New("config: unknown preset")
)

// Config describes one run. Zero DeltaT or EndTime means the value comes
// from the input file or preset.
type Config struct {
	Input         string       `yaml:"input,omitempty"`
	Preset        string       `yaml:"preset,omitempty"`
	Bodies        []BodyConfig `yaml:"bodies,omitempty"`
	DeltaT        float64      `yaml:"dt,omitempty"`
	EndTime       float64      `yaml:"t_end,omitempty"`
	MinDistance   float64      `yaml:"min_distance,omitempty"`
	Workers       int          `yaml:"workers,omitempty"`
	SnapshotEvery int          `yaml:"snapshot_every"`
	DataDir       string       `yaml:"data_dir"`
	Verbosity     int          `yaml:"verbosity,omitempty"`
	// Metrics names the metrics to record; empty means the standard set.
	Metrics []string `yaml:"metrics,omitempty,flow"`
	// EscapeRadius marks a state unstable once a body is farther than this
	// from the origin. Zero disables the check.
	EscapeRadius float64 `yaml:"escape_radius,omitempty"`
}

type BodyConfig struct {
	Mass     float64   `yaml:"mass"`
	Position []float64 `yaml:"position,flow"`
	Velocity []float64 `yaml:"velocity,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		SnapshotEvery: DefaultSnapshotEvery,
		DataDir:       DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values a config file or flags can get wrong. Scenario
// contents are checked when the simulation is built.
func (c *Config) Validate() error {
	sources := 0
	for _, set := range []bool{c.Input != "", c.Preset != "", len(c.Bodies) > 0} {
		if set {
			sources++
		}
	}
	switch {
	case sources > 1:
		return fmt.Errorf("%w: input, preset and bodies are mutually exclusive", ErrInvalidConfig)
	case c.DeltaT < 0:
		return fmt.Errorf("%w: dt must not be negative, got %v", ErrInvalidConfig, c.DeltaT)
	case c.EndTime < 0:
		return fmt.Errorf("%w: t_end must not be negative, got %v", ErrInvalidConfig, c.EndTime)
	case c.MinDistance < 0:
		return fmt.Errorf("%w: min_distance must not be negative, got %v", ErrInvalidConfig, c.MinDistance)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	case c.SnapshotEvery < 0:
		return fmt.Errorf("%w: snapshot_every must not be negative, got %d", ErrInvalidConfig, c.SnapshotEvery)
	case c.EscapeRadius < 0:
		return fmt.Errorf("%w: escape_radius must not be negative, got %v", ErrInvalidConfig, c.EscapeRadius)
	}
	if c.Preset != "" {
		if _, err := GetPreset(c.Preset); err != nil {
			return err
		}
	}
	return nil
}

// Source names the scenario the config selects, falling back to the
// default preset.
func (c *Config) Source() string {
	switch {
	case c.Input != "":
		return c.Input
	case len(c.Bodies) > 0:
		return "inline"
	case c.Preset != "":
		return c.Preset
	default:
		return DefaultPreset
	}
}
