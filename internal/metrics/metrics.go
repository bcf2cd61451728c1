// Package metrics provides nbody.Metric implementations for conserved
// quantities and run health.
package metrics

import "github.com/san-kum/gravsim/internal/nbody"

var (
	_ nbody.Metric = (*Energy)(nil)
	_ nbody.Metric = (*EnergyDrift)(nil)
	_ nbody.Metric = (*MomentumDrift)(nil)
	_ nbody.Metric = (*Stability)(nil)
	_ nbody.Metric = (*MinSeparation)(nil)
)

// Standard returns a fresh set of the metrics every run records.
func Standard(escapeRadius float64) []nbody.Metric {
	return []nbody.Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewMomentumDrift(),
		NewStability(escapeRadius),
		NewMinSeparation(),
	}
}
