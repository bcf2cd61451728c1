package config

import (
	"fmt"
	"sort"
)

// Scenario is a named initial condition with its recommended time controls.
type Scenario struct {
	Description string
	DeltaT      float64
	EndTime     float64
	MinDistance float64
	Bodies      []BodyConfig
}

var Presets = map[string]*Scenario{
	"binary": {
		Description: "equal-mass circular binary, period 4.443",
		DeltaT:      0.01, EndTime: 44.43,
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{-0.5, 0}, Velocity: []float64{0, -0.7071067811865476}},
			{Mass: 1, Position: []float64{0.5, 0}, Velocity: []float64{0, 0.7071067811865476}},
		},
	},
	"sun_earth": {
		Description: "light body on a unit circular orbit",
		DeltaT:      0.015, EndTime: 468.5,
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{0, 0}, Velocity: []float64{0, 0}},
			{Mass: 3e-6, Position: []float64{0, 1}, Velocity: []float64{-1, 0}},
		},
	},
	"figure8": {
		Description: "three equal masses on the figure-eight choreography, period 6.3259",
		DeltaT:      0.001, EndTime: 63.259,
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{-0.97000436, 0.24308753}, Velocity: []float64{0.466203685, 0.43236573}},
			{Mass: 1, Position: []float64{0.97000436, -0.24308753}, Velocity: []float64{0.466203685, 0.43236573}},
			{Mass: 1, Position: []float64{0, 0}, Velocity: []float64{-0.93240737, -0.86473146}},
		},
	},
	"pythagorean": {
		Description: "Burrau's 3-4-5 problem, close encounters need a distance floor",
		DeltaT:      0.0001, EndTime: 70,
		MinDistance: 1e-3,
		Bodies: []BodyConfig{
			{Mass: 3, Position: []float64{1, 3}, Velocity: []float64{0, 0}},
			{Mass: 4, Position: []float64{-2, -1}, Velocity: []float64{0, 0}},
			{Mass: 5, Position: []float64{1, -1}, Velocity: []float64{0, 0}},
		},
	},
	"tetra3d": {
		Description: "four bodies released from the vertices of a tetrahedron with a net spin",
		DeltaT:      0.005, EndTime: 20,
		MinDistance: 1e-3,
		Bodies: []BodyConfig{
			{Mass: 1, Position: []float64{1, 1, 1}, Velocity: []float64{-0.3, 0.3, 0}},
			{Mass: 1, Position: []float64{1, -1, -1}, Velocity: []float64{0.3, 0.3, 0}},
			{Mass: 1, Position: []float64{-1, 1, -1}, Velocity: []float64{-0.3, -0.3, 0}},
			{Mass: 1, Position: []float64{-1, -1, 1}, Velocity: []float64{0.3, -0.3, 0}},
		},
	},
}

func GetPreset(name string) (*Scenario, error) {
	s, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return s, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
